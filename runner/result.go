package runner

import (
	"fmt"
	"strings"
	"time"

	"github.com/interoplab/conformd/profile"
	"github.com/interoplab/conformd/types"
)

// ResultStats tracks test counts at the sequence and run level.
type ResultStats struct {
	Total     int
	Passed    int
	Failed    int
	Skipped   int
	Errored   int
	Cancelled int
	StartTime time.Time
	EndTime   time.Time
}

func (s *ResultStats) record(status types.TestStatus) {
	s.Total++
	switch status {
	case types.TestStatusPass:
		s.Passed++
	case types.TestStatusFail:
		s.Failed++
	case types.TestStatusSkip:
		s.Skipped++
	case types.TestStatusError:
		s.Errored++
	case types.TestStatusCancel:
		s.Cancelled++
	}
}

// SequenceResult captures the ordered results of one sequence. Insertion
// order equals declaration order; the number of results always equals the
// number of declared tests, for every run outcome including cancellation.
type SequenceResult struct {
	ID       string
	Title    string
	Status   types.TestStatus
	Results  []types.Result
	Duration time.Duration
	Stats    ResultStats

	// Required scoring excludes optional tests entirely.
	RequiredTotal  int
	RequiredPassed int
}

// RunnerResult captures the complete conformance run.
type RunnerResult struct {
	RunID          string
	Target         string
	Sequences      []*SequenceResult
	Status         types.TestStatus
	Duration       time.Duration
	Stats          ResultStats
	ProfileSummary map[string]profile.Summary
}

// determineSequenceStatus derives the sequence verdict. A required fail or
// error fails the sequence; cancellation is surfaced honestly; a sequence
// whose precondition gate never opened, whose tail was cut by the no-data
// flag, or whose every unit skipped is inconclusive rather than failed.
func determineSequenceStatus(res *SequenceResult, gated, noData bool) types.TestStatus {
	requiredFailed := false
	anyCancelled := false
	allSkipped := len(res.Results) > 0

	for _, r := range res.Results {
		if !r.Optional && r.Status.IsTerminalFailure() {
			requiredFailed = true
		}
		if r.Status == types.TestStatusCancel {
			anyCancelled = true
		}
		if r.Status != types.TestStatusSkip {
			allSkipped = false
		}
	}

	switch {
	case requiredFailed:
		return types.TestStatusFail
	case anyCancelled:
		return types.TestStatusCancel
	case gated, noData, allSkipped:
		return types.TestStatusSkip
	default:
		return types.TestStatusPass
	}
}

// determineRunStatus derives the run verdict: pass only if every sequence
// passed.
func determineRunStatus(result *RunnerResult) types.TestStatus {
	anyFailed := false
	anyCancelled := false
	allPassed := len(result.Sequences) > 0

	for _, seq := range result.Sequences {
		switch seq.Status {
		case types.TestStatusFail:
			anyFailed = true
		case types.TestStatusCancel:
			anyCancelled = true
		}
		if seq.Status != types.TestStatusPass {
			allPassed = false
		}
	}

	switch {
	case anyFailed:
		return types.TestStatusFail
	case anyCancelled:
		return types.TestStatusCancel
	case allPassed:
		return types.TestStatusPass
	default:
		return types.TestStatusSkip
	}
}

// updateStats folds a completed sequence into the run totals.
func (r *RunnerResult) updateStats(seq *SequenceResult) {
	r.Stats.Total += seq.Stats.Total
	r.Stats.Passed += seq.Stats.Passed
	r.Stats.Failed += seq.Stats.Failed
	r.Stats.Skipped += seq.Stats.Skipped
	r.Stats.Errored += seq.Stats.Errored
	r.Stats.Cancelled += seq.Stats.Cancelled
}

// formatDuration formats the duration to seconds with 1 decimal place.
func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// String returns a formatted tree representation of the run results.
func (r *RunnerResult) String() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Conformance Run %s (%s): %s\n", r.RunID, formatDuration(r.Duration), r.Status))
	b.WriteString(fmt.Sprintf("Total: %d, Passed: %d, Failed: %d, Skipped: %d, Errored: %d, Cancelled: %d\n",
		r.Stats.Total, r.Stats.Passed, r.Stats.Failed, r.Stats.Skipped, r.Stats.Errored, r.Stats.Cancelled))

	for _, seq := range r.Sequences {
		b.WriteString(fmt.Sprintf("\nSequence: %s (%s) [%s]\n", seq.ID, formatDuration(seq.Duration), seq.Status))
		b.WriteString(fmt.Sprintf("├── Required: %d/%d passed\n", seq.RequiredPassed, seq.RequiredTotal))
		for i, res := range seq.Results {
			prefix := "├──"
			if i == len(seq.Results)-1 {
				prefix = "└──"
			}
			b.WriteString(fmt.Sprintf("%s %s [%s]", prefix, res.TestID, res.Status))
			if res.Optional {
				b.WriteString(" (optional)")
			}
			if res.Message != "" {
				b.WriteString(fmt.Sprintf(": %s", res.Message))
			}
			b.WriteString("\n")
		}
	}

	if len(r.ProfileSummary) > 0 {
		b.WriteString("\nProfiles:\n")
		for id, summary := range r.ProfileSummary {
			b.WriteString(fmt.Sprintf("├── %s: encountered=%d failed=%v\n", id, summary.Encountered, summary.Failed))
			for _, msg := range summary.Messages {
				b.WriteString(fmt.Sprintf("│       └── %s\n", msg))
			}
		}
	}
	return b.String()
}
