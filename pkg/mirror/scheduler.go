package mirror

import (
	"context"
	"sync"

	"github.com/chartsync/chartsync/pkg/log"
)

// DefaultParallelism caps in-flight mirror tasks when no explicit limit is
// configured.
const DefaultParallelism = 4

// Report aggregates the run: counters plus per-record results in input
// order. The scheduler is its sole writer for the duration of the run.
type Report struct {
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	Skipped   int      `json:"skipped"`
	Results   []Result `json:"results"`
}

// executor is satisfied by *Executor and by test stubs.
type executor interface {
	Execute(ctx context.Context, rec Record) Result
}

// Run drives the executor over every record with at most maxParallel tasks
// in flight. Workers pull record indexes from a channel and send results
// to a single collector, which is the only writer to the counters; results
// land in their originating record's slot regardless of completion order.
// A run always completes every record; there is no mid-run cancellation.
func Run(ctx context.Context, exec executor, records []Record, maxParallel int) Report {
	if maxParallel < 1 {
		maxParallel = DefaultParallelism
	}
	if maxParallel > len(records) {
		maxParallel = len(records)
	}

	report := Report{Results: make([]Result, len(records))}
	if len(records) == 0 {
		return report
	}

	type indexed struct {
		idx    int
		result Result
	}

	jobs := make(chan int)
	results := make(chan indexed)

	var wg sync.WaitGroup
	for w := 0; w < maxParallel; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results <- indexed{idx: idx, result: exec.Execute(ctx, records[idx])}
			}
		}()
	}

	go func() {
		for idx := range records {
			jobs <- idx
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for r := range results {
		report.Results[r.idx] = r.result
		switch r.result.Outcome {
		case OutcomeSucceeded:
			report.Succeeded++
		case OutcomeFailed:
			report.Failed++
		case OutcomeSkippedDryRun:
			report.Skipped++
		default:
			log.Warn("executor returned no outcome", "image", r.result.Record.Original.String())
			report.Failed++
		}
	}

	log.Info("mirror run complete",
		"total", len(records),
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"skipped", report.Skipped,
	)
	return report
}
