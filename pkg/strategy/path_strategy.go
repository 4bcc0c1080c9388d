// Package strategy defines the policies that map a source image reference
// to its destination under the mirror registry.
package strategy

import (
	"fmt"
	"strings"

	"github.com/chartsync/chartsync/pkg/image"
)

// PathStrategy produces the destination repository path for an original
// reference under a mirror registry and path prefix.
//
// Two policies coexist on purpose and must not be conflated: the catalog
// form is a flattened per-chart identifier used in extraction output, the
// repository form is the real pushable path used by the mirror workflow.
type PathStrategy interface {
	// GeneratePath returns the destination repository,
	// e.g. "registry.internal.company.com/dockerhub/myapp/web".
	GeneratePath(ref image.Reference, registry, prefix string) string
}

// GetStrategy returns a path strategy by name.
func GetStrategy(name string) (PathStrategy, error) {
	switch name {
	case "catalog":
		return NewCatalogStrategy(), nil
	case "repository":
		return NewRepositoryStrategy(), nil
	default:
		return nil, fmt.Errorf("unknown path strategy: %s", name)
	}
}

// Build maps an original reference to its full mirror reference under the
// given strategy. The tag is always carried over unchanged.
func Build(s PathStrategy, ref image.Reference, registry, prefix string) image.Reference {
	return image.Reference{
		Repository: s.GeneratePath(ref, registry, prefix),
		Tag:        ref.Tag,
	}
}

// CatalogStrategy flattens the source repository by replacing every "/"
// with "_", producing a collision-tolerant per-chart identifier.
// Example: myapp/web -> registry/prefix/myapp_web
type CatalogStrategy struct{}

// NewCatalogStrategy creates a new CatalogStrategy.
func NewCatalogStrategy() *CatalogStrategy {
	return &CatalogStrategy{}
}

// GeneratePath implements the PathStrategy interface.
func (s *CatalogStrategy) GeneratePath(ref image.Reference, registry, prefix string) string {
	flattened := strings.ReplaceAll(ref.Repository, "/", "_")
	return join(registry, prefix, flattened)
}

// RepositoryStrategy preserves the source repository hierarchy, producing
// the path the mirror workflow actually pushes to.
// Example: myapp/web -> registry/prefix/myapp/web
type RepositoryStrategy struct{}

// NewRepositoryStrategy creates a new RepositoryStrategy.
func NewRepositoryStrategy() *RepositoryStrategy {
	return &RepositoryStrategy{}
}

// GeneratePath implements the PathStrategy interface.
func (s *RepositoryStrategy) GeneratePath(ref image.Reference, registry, prefix string) string {
	return join(registry, prefix, ref.Repository)
}

func join(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(strings.TrimSpace(p), "/")
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "/")
}
