package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chartsync/chartsync/pkg/image"
)

func TestCatalogStrategy(t *testing.T) {
	tests := []struct {
		name     string
		ref      image.Reference
		registry string
		prefix   string
		expected string
	}{
		{
			name:     "nested repository is flattened",
			ref:      image.Reference{Repository: "myapp/web", Tag: "latest"},
			registry: "registry.internal.company.com",
			prefix:   "dockerhub",
			expected: "registry.internal.company.com/dockerhub/myapp_web",
		},
		{
			name:     "single segment unchanged",
			ref:      image.Reference{Repository: "nginx", Tag: "1.23"},
			registry: "registry.internal.company.com",
			prefix:   "dockerhub",
			expected: "registry.internal.company.com/dockerhub/nginx",
		},
		{
			name:     "deeply nested path",
			ref:      image.Reference{Repository: "quay.io/prometheus/node-exporter", Tag: "v1.3.1"},
			registry: "mirror.example.com",
			prefix:   "upstream",
			expected: "mirror.example.com/upstream/quay.io_prometheus_node-exporter",
		},
		{
			name:     "empty prefix collapses",
			ref:      image.Reference{Repository: "a/b", Tag: "t"},
			registry: "reg",
			prefix:   "",
			expected: "reg/a_b",
		},
	}

	s := NewCatalogStrategy()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, s.GeneratePath(tc.ref, tc.registry, tc.prefix))
		})
	}
}

func TestRepositoryStrategy(t *testing.T) {
	s := NewRepositoryStrategy()

	got := s.GeneratePath(
		image.Reference{Repository: "myapp/web", Tag: "latest"},
		"registry.internal.company.com", "dockerhub",
	)
	assert.Equal(t, "registry.internal.company.com/dockerhub/myapp/web", got)
}

func TestBuildCarriesTag(t *testing.T) {
	ref := image.Reference{Repository: "myapp/web", Tag: "1.4.2"}

	catalog := Build(NewCatalogStrategy(), ref, "reg", "pre")
	assert.Equal(t, image.Reference{Repository: "reg/pre/myapp_web", Tag: "1.4.2"}, catalog)

	pushable := Build(NewRepositoryStrategy(), ref, "reg", "pre")
	assert.Equal(t, image.Reference{Repository: "reg/pre/myapp/web", Tag: "1.4.2"}, pushable)
}

func TestGetStrategy(t *testing.T) {
	s, err := GetStrategy("catalog")
	require.NoError(t, err)
	assert.IsType(t, &CatalogStrategy{}, s)

	s, err = GetStrategy("repository")
	require.NoError(t, err)
	assert.IsType(t, &RepositoryStrategy{}, s)

	_, err = GetStrategy("bogus")
	assert.Error(t, err)
}
