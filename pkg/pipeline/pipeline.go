// Package pipeline wires the extraction stages together: chart path
// resolution, rendering, image location, normalization, and mirror path
// construction. Both the extract and mirror commands run on top of it.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/chartsync/chartsync/pkg/chart"
	"github.com/chartsync/chartsync/pkg/exitcodes"
	"github.com/chartsync/chartsync/pkg/image"
	"github.com/chartsync/chartsync/pkg/locate"
	"github.com/chartsync/chartsync/pkg/log"
	"github.com/chartsync/chartsync/pkg/mirror"
	"github.com/chartsync/chartsync/pkg/strategy"
)

// Config carries the mirror destination settings, threaded explicitly to
// every stage rather than read from ambient state.
type Config struct {
	Registry string
	Prefix   string
	Strategy strategy.PathStrategy
}

// Discover resolves each requested chart path, renders it, locates image
// candidates, and returns the annotated mirror records in chart order.
//
// A path that does not resolve to a chart is skipped with a warning; the
// batch continues. Only when every requested path is skipped does Discover
// fail, with a chart-not-found exit code. Charts that render to zero
// images are a valid, empty contribution.
func Discover(ctx context.Context, fs afero.Fs, renderer chart.Renderer, paths []string, cfg Config) ([]mirror.Record, error) {
	var records []mirror.Record
	processed := 0

	for _, path := range paths {
		if !isChartPath(fs, path) {
			log.Warn("skipping path: not a chart", "path", path)
			continue
		}
		processed++

		result, ok := renderer.Render(ctx, chart.Source{Path: path})
		if !ok {
			// Render failure contributes zero images, never aborts.
			continue
		}

		candidates := locate.Locate(result.Manifest, result.Values)
		log.Info("located image candidates", "chart", result.Name, "count", len(candidates))

		for _, raw := range candidates {
			ref, err := image.Parse(raw)
			if err != nil {
				// Malformed candidates are scanner noise; filter
				// silently rather than failing the chart.
				log.Debug("filtered candidate", "candidate", raw, "error", err)
				continue
			}
			records = append(records, mirror.Record{
				Original: *ref,
				Mirror:   strategy.Build(cfg.Strategy, *ref, cfg.Registry, cfg.Prefix),
				Chart:    result.Name,
			})
		}
	}

	if processed == 0 && len(paths) > 0 {
		return nil, &exitcodes.ExitCodeError{
			Code: exitcodes.ExitChartNotFound,
			Err:  fmt.Errorf("none of the %d requested chart paths resolved to a chart", len(paths)),
		}
	}
	return records, nil
}

// Dedupe collapses records that share the same canonical original
// reference, keeping the first occurrence (and its chart annotation).
// Aggregate scheduling must see each unique image exactly once.
func Dedupe(records []mirror.Record) []mirror.Record {
	seen := make(map[image.Reference]struct{}, len(records))
	out := make([]mirror.Record, 0, len(records))
	for _, rec := range records {
		if _, dup := seen[rec.Original]; dup {
			continue
		}
		seen[rec.Original] = struct{}{}
		out = append(out, rec)
	}
	return out
}

// isChartPath accepts a directory carrying a Chart.yaml descriptor or a
// packaged .tgz chart.
func isChartPath(fs afero.Fs, path string) bool {
	if filepath.Ext(path) == ".tgz" {
		exists, err := afero.Exists(fs, path)
		return err == nil && exists
	}
	isDir, err := afero.DirExists(fs, path)
	if err != nil || !isDir {
		return false
	}
	hasDescriptor, err := afero.Exists(fs, filepath.Join(path, "Chart.yaml"))
	return err == nil && hasDescriptor
}
