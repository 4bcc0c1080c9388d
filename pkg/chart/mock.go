package chart

import "context"

// MockRenderer implements Renderer for tests, returning canned results
// keyed by source path. Paths with no entry render as failed.
type MockRenderer struct {
	Results map[string]RenderResult
}

// NewMockRenderer creates an empty MockRenderer.
func NewMockRenderer() *MockRenderer {
	return &MockRenderer{Results: map[string]RenderResult{}}
}

// Render implements Renderer.
func (m *MockRenderer) Render(_ context.Context, src Source) (RenderResult, bool) {
	result, ok := m.Results[src.Path]
	return result, ok
}
