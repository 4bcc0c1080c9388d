package mirror

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chartsync/chartsync/pkg/image"
)

func TestRecordText(t *testing.T) {
	rec := Record{
		Original: image.Reference{Repository: "myapp/web", Tag: "1.4.2"},
		Mirror:   image.Reference{Repository: "registry.internal.company.com/dockerhub/myapp_web", Tag: "1.4.2"},
		Chart:    "myapp",
	}
	assert.Equal(t, "myapp/web:1.4.2|registry.internal.company.com/dockerhub/myapp_web:1.4.2|myapp", rec.Text())
}

func TestRecordJSONShape(t *testing.T) {
	rec := Record{
		Original: image.Reference{Repository: "nginx", Tag: "latest"},
		Mirror:   image.Reference{Repository: "reg/dockerhub/nginx", Tag: "latest"},
		Chart:    "web",
	}
	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "original")
	assert.Contains(t, decoded, "mirror")
	assert.Equal(t, "web", decoded["chart"])
	assert.Equal(t, false, decoded["selected"])
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "succeeded", OutcomeSucceeded.String())
	assert.Equal(t, "failed", OutcomeFailed.String())
	assert.Equal(t, "skipped-dry-run", OutcomeSkippedDryRun.String())
	assert.Equal(t, "unknown", Outcome(42).String())
}
