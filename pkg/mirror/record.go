// Package mirror executes and schedules the replication of located images
// into the mirror registry.
package mirror

import (
	"fmt"

	"github.com/chartsync/chartsync/pkg/image"
)

// Record is the unit of work handed to the scheduler: a located image, its
// computed mirror destination, and the chart it was found in. Immutable
// once created.
type Record struct {
	Original image.Reference `json:"original"`
	Mirror   image.Reference `json:"mirror"`
	Chart    string          `json:"chart"`
	// Selected is emitted false by extraction and flipped by downstream
	// manual curation, never by this pipeline.
	Selected bool `json:"selected"`
}

// Text renders the pipe-delimited form used by the text output format.
func (r Record) Text() string {
	return fmt.Sprintf("%s|%s|%s", r.Original, r.Mirror, r.Chart)
}

// Outcome is the terminal state of one mirror attempt. Outcomes are never
// retried within a run.
type Outcome int

const (
	// OutcomeUnknown is the zero value; no attempt has been recorded.
	OutcomeUnknown Outcome = iota
	// OutcomeSucceeded means the image was pushed to the mirror.
	OutcomeSucceeded
	// OutcomeFailed means pull, tag, or push failed for this image.
	OutcomeFailed
	// OutcomeSkippedDryRun means dry-run mode skipped all registry work.
	OutcomeSkippedDryRun
)

// String returns the outcome label used in logs and JSON summaries.
func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFailed:
		return "failed"
	case OutcomeSkippedDryRun:
		return "skipped-dry-run"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so outcomes serialize as
// their labels.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Outcome) UnmarshalText(text []byte) error {
	switch string(text) {
	case "succeeded":
		*o = OutcomeSucceeded
	case "failed":
		*o = OutcomeFailed
	case "skipped-dry-run":
		*o = OutcomeSkippedDryRun
	default:
		*o = OutcomeUnknown
	}
	return nil
}

// Result attaches an Outcome (and the failure cause, if any) to its
// originating record.
type Result struct {
	Record  Record  `json:"record"`
	Outcome Outcome `json:"outcome"`
	Err     error   `json:"-"`
}
