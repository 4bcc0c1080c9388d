package locate

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

const sampleManifest = `---
# Source: web/templates/deployment.yaml
apiVersion: apps/v1
kind: Deployment
metadata:
  name: web
spec:
  template:
    spec:
      containers:
        - name: web
          image: myapp/web:1.4.2
          ports:
            - containerPort: 8080
        - name: sidecar
          image: "quay.io/org/sidecar:v2"
      initContainers:
        - name: setup
          image: busybox:1.36
---
apiVersion: v1
kind: Pod
spec:
  containers:
    - name: main
      image: '{{ .Values.image }}'
`

const sampleValues = `replicaCount: 1
image:
  repository: myapp/web
  pullPolicy: IfNotPresent
sidecar:
  image: quay.io/org/sidecar:v2
  tag: v2
database:
  repository: postgres
`

func TestLocateManifestPasses(t *testing.T) {
	got := Locate(sampleManifest, "")

	want := []string{
		"busybox:1.36",
		"myapp/web:1.4.2",
		"quay.io/org/sidecar:v2",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Locate mismatch (-want +got):\n%s", diff)
	}
}

func TestLocateValuesPass(t *testing.T) {
	got := Locate("", sampleValues)

	// repository: values come through bare (the normalizer pairs them
	// with the default tag); image: values need a slash.
	want := []string{
		"myapp/web",
		"postgres",
		"quay.io/org/sidecar:v2",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Locate mismatch (-want +got):\n%s", diff)
	}
}

func TestLocateFiltersTemplatedCandidates(t *testing.T) {
	manifest := `
containers:
  - image: {{ .Values.image.repository }}:{{ .Values.image.tag }}
  - image: real/image:1.0
image: {{ include "chart.image" . }}
`
	got := Locate(manifest, "")
	assert.Equal(t, []string{"real/image:1.0"}, got)
}

func TestLocateIdempotentUnderDuplication(t *testing.T) {
	once := Locate(sampleManifest, sampleValues)
	twice := Locate(sampleManifest+"\n"+sampleManifest, sampleValues+"\n"+sampleValues)
	assert.Equal(t, once, twice)
}

func TestLocateEmptyInputs(t *testing.T) {
	assert.Empty(t, Locate("", ""))
}

func TestContainerPassWindowBound(t *testing.T) {
	// An image: line more than containerWindow lines below containers:
	// must not be picked up by the container pass (and has no slash, so
	// the direct pass keeps it anyway; use a slash-free value to isolate).
	var b strings.Builder
	b.WriteString("containers:\n")
	for i := 0; i < containerWindow; i++ {
		b.WriteString("  - name: filler\n")
	}
	b.WriteString("  image: far/away:1.0\n")

	got := containerPass(b.String())
	assert.Empty(t, got)
}

func TestContainerPassRequiresSlash(t *testing.T) {
	manifest := `
containers:
  - name: app
    image: standalone
  - name: other
    image: org/app:2.0
`
	got := containerPass(manifest)
	assert.Equal(t, []string{"org/app:2.0"}, got)
}

func TestDirectPassListMarkersAndQuotes(t *testing.T) {
	manifest := `
      - image: "docker.io/library/nginx:1.23"
        image: 'single/quoted:v1'
  image: bare:tag
`
	got := directPass(manifest)
	assert.Equal(t, []string{
		"docker.io/library/nginx:1.23",
		"single/quoted:v1",
		"bare:tag",
	}, got)
}
