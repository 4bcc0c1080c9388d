package mirror

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chartsync/chartsync/pkg/image"
)

// stubExecutor tracks concurrent in-flight executions and fails the
// repositories it is told to.
type stubExecutor struct {
	inFlight int32
	maxSeen  int32
	delay    time.Duration
	fail     map[string]bool
	dryRun   bool
}

func (s *stubExecutor) Execute(_ context.Context, rec Record) Result {
	cur := atomic.AddInt32(&s.inFlight, 1)
	for {
		max := atomic.LoadInt32(&s.maxSeen)
		if cur <= max || atomic.CompareAndSwapInt32(&s.maxSeen, max, cur) {
			break
		}
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	atomic.AddInt32(&s.inFlight, -1)

	if s.dryRun {
		return Result{Record: rec, Outcome: OutcomeSkippedDryRun}
	}
	if s.fail[rec.Original.Repository] {
		return Result{Record: rec, Outcome: OutcomeFailed, Err: errors.New("push failed")}
	}
	return Result{Record: rec, Outcome: OutcomeSucceeded}
}

func makeRecords(repos ...string) []Record {
	records := make([]Record, 0, len(repos))
	for _, repo := range repos {
		records = append(records, Record{
			Original: image.Reference{Repository: repo, Tag: "latest"},
			Mirror:   image.Reference{Repository: "mirror/" + repo, Tag: "latest"},
			Chart:    "test-chart",
		})
	}
	return records
}

func TestRunCountsAndOrdering(t *testing.T) {
	records := makeRecords("a", "b", "c", "d", "e")
	exec := &stubExecutor{fail: map[string]bool{"c": true}, delay: 2 * time.Millisecond}

	report := Run(context.Background(), exec, records, 2)

	assert.Equal(t, 4, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 0, report.Skipped)
	assert.Equal(t, len(records), report.Succeeded+report.Failed)

	// Results are stored against record identity, not completion order.
	require.Len(t, report.Results, len(records))
	for i, res := range report.Results {
		assert.Equal(t, records[i].Original, res.Record.Original)
	}
	assert.Equal(t, OutcomeFailed, report.Results[2].Outcome)
	assert.Error(t, report.Results[2].Err)
}

func TestRunBoundsParallelism(t *testing.T) {
	records := makeRecords("a", "b", "c", "d", "e", "f", "g", "h")
	exec := &stubExecutor{delay: 10 * time.Millisecond}

	report := Run(context.Background(), exec, records, 3)

	assert.Equal(t, len(records), report.Succeeded)
	assert.LessOrEqual(t, atomic.LoadInt32(&exec.maxSeen), int32(3))
}

func TestRunDryRunCountsSkippedSeparately(t *testing.T) {
	records := makeRecords("a", "b", "c")
	exec := &stubExecutor{dryRun: true}

	report := Run(context.Background(), exec, records, 4)

	assert.Equal(t, 0, report.Succeeded)
	assert.Equal(t, 0, report.Failed)
	assert.Equal(t, 3, report.Skipped)
}

func TestRunEmptyInput(t *testing.T) {
	report := Run(context.Background(), &stubExecutor{}, nil, 4)
	assert.Zero(t, report.Succeeded)
	assert.Zero(t, report.Failed)
	assert.Empty(t, report.Results)
}

func TestRunDefaultsInvalidParallelism(t *testing.T) {
	records := makeRecords("a", "b")
	exec := &stubExecutor{}

	report := Run(context.Background(), exec, records, 0)

	assert.Equal(t, 2, report.Succeeded)
	assert.LessOrEqual(t, atomic.LoadInt32(&exec.maxSeen), int32(DefaultParallelism))
}
