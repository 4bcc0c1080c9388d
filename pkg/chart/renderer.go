// Package chart wraps the Helm SDK behind the rendering boundary the
// extraction pipeline consumes. Rendering a chart is best-effort: any
// load, dependency, or template failure yields an empty result rather than
// an error, so one broken chart never aborts a multi-chart batch.
package chart

import (
	"context"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
	"helm.sh/helm/v3/pkg/action"
	helmchart "helm.sh/helm/v3/pkg/chart"
	"helm.sh/helm/v3/pkg/chart/loader"
	"helm.sh/helm/v3/pkg/chartutil"
	"helm.sh/helm/v3/pkg/cli"

	"github.com/chartsync/chartsync/pkg/log"
)

// Source identifies a chart directory (or packaged .tgz) to process.
// It is a read-only input; the pipeline never mutates it.
type Source struct {
	Path string `json:"path"`
}

// RenderResult carries the materialized output for one chart.
type RenderResult struct {
	// Name is the chart name from its manifest descriptor, or the source
	// path when the descriptor could not be read.
	Name string
	// Manifest is the flat text stream of rendered Kubernetes manifests.
	Manifest string
	// Values is the chart's coalesced values re-marshalled to YAML, the
	// source for the values-pair locator pass. Coalescing includes
	// subchart defaults.
	Values string
}

// Renderer materializes a chart into the text streams the locator scans.
type Renderer interface {
	// Render returns ok=false (with an empty result) on any failure;
	// callers treat that as "zero images found for this chart".
	Render(ctx context.Context, src Source) (RenderResult, bool)
}

// HelmRenderer renders charts in-process with the Helm SDK.
type HelmRenderer struct {
	settings *cli.EnvSettings
}

// NewHelmRenderer creates a renderer using ambient Helm CLI settings.
func NewHelmRenderer() *HelmRenderer {
	return &HelmRenderer{settings: cli.New()}
}

const renderReleaseName = "chartsync"

// Render implements Renderer.
func (r *HelmRenderer) Render(ctx context.Context, src Source) (RenderResult, bool) {
	chartData, err := loadChart(src.Path)
	if err != nil {
		log.Warn("chart load failed, treating as zero images", "chart", src.Path, "error", err)
		return RenderResult{}, false
	}

	result := RenderResult{Name: chartData.Name()}
	if result.Name == "" {
		result.Name = src.Path
	}

	values, err := renderValues(chartData)
	if err != nil {
		log.Warn("chart values coalescing failed, treating as zero images", "chart", src.Path, "error", err)
		return RenderResult{}, false
	}
	result.Values = values

	manifest, err := r.template(chartData)
	if err != nil {
		log.Warn("chart render failed, treating as zero images", "chart", src.Path, "error", err)
		return RenderResult{}, false
	}
	result.Manifest = manifest

	return result, true
}

// loadChart loads a packaged chart or a chart directory. Vendored
// dependencies under charts/ are loaded with it; unresolved remote
// dependencies surface later as a template error.
func loadChart(path string) (*helmchart.Chart, error) {
	if filepath.Ext(path) == ".tgz" {
		return loader.Load(path)
	}
	return loader.LoadDir(path)
}

// renderValues re-marshals the chart's coalesced values into the YAML text
// the values-pair locator pass scans.
func renderValues(chartData *helmchart.Chart) (string, error) {
	coalesced, err := chartutil.CoalesceValues(chartData, map[string]interface{}{})
	if err != nil {
		return "", errors.Wrap(err, "coalesce values")
	}
	raw, err := yaml.Marshal(map[string]interface{}(coalesced))
	if err != nil {
		return "", errors.Wrap(err, "marshal values")
	}
	return string(raw), nil
}

// template runs a client-only dry-run install to materialize the chart's
// manifests, never contacting a cluster.
func (r *HelmRenderer) template(chartData *helmchart.Chart) (string, error) {
	actionConfig := new(action.Configuration)
	if err := actionConfig.Init(r.settings.RESTClientGetter(), "default", "", func(string, ...interface{}) {}); err != nil {
		return "", errors.Wrap(err, "initialize helm action configuration")
	}

	install := action.NewInstall(actionConfig)
	install.DryRun = true
	install.ReleaseName = renderReleaseName
	install.Namespace = "default"
	install.Replace = true
	install.ClientOnly = true
	install.IncludeCRDs = false

	rel, err := install.Run(chartData, map[string]interface{}{})
	if err != nil {
		return "", errors.Wrap(err, "template chart")
	}
	return rel.Manifest, nil
}
