// Package reporting turns a completed run into the serializable structure
// consumed by any presentation layer. This is the sole contract toward a
// web UI, CLI printer or file export; none of those live in the engine.
package reporting

import (
	"time"

	"github.com/interoplab/conformd/runner"
	"github.com/interoplab/conformd/types"
)

// ReportResult is one test unit's outcome in the report.
type ReportResult struct {
	TestID      string                  `json:"test_id"`
	Title       string                  `json:"title,omitempty"`
	Status      types.TestStatus        `json:"status"`
	Message     string                  `json:"message,omitempty"`
	Link        string                  `json:"link,omitempty"`
	Optional    bool                    `json:"optional"`
	Issues      []types.ValidationIssue `json:"issues,omitempty"`
	EvidenceRef string                  `json:"evidence_ref,omitempty"`
	DurationMS  int64                   `json:"duration_ms"`
}

// ReportSequence is one sequence's outcome in the report.
type ReportSequence struct {
	SequenceID     string           `json:"sequence_id"`
	Title          string           `json:"title,omitempty"`
	Status         types.TestStatus `json:"status"`
	RequiredTotal  int              `json:"required_total"`
	RequiredPassed int              `json:"required_passed"`
	Results        []ReportResult   `json:"results"`
}

// ProfileSummary is the per-profile conformance rollup.
type ProfileSummary struct {
	Encountered int      `json:"encountered"`
	Failed      bool     `json:"failed"`
	Messages    []string `json:"messages,omitempty"`
}

// ReportStats carries the run-level counters.
type ReportStats struct {
	Total     int `json:"total"`
	Passed    int `json:"passed"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
	Errored   int `json:"errored"`
	Cancelled int `json:"cancelled"`
}

// ReportData is the complete serializable run report.
type ReportData struct {
	RunID          string                    `json:"run_id"`
	Target         string                    `json:"target,omitempty"`
	Timestamp      time.Time                 `json:"timestamp"`
	Status         types.TestStatus          `json:"status"`
	DurationMS     int64                     `json:"duration_ms"`
	Stats          ReportStats               `json:"stats"`
	Sequences      []ReportSequence          `json:"sequences"`
	ProfileSummary map[string]ProfileSummary `json:"profile_summary"`
}

// Build derives the report from a completed run. Pure function of its
// input; holds no additional state.
func Build(result *runner.RunnerResult) *ReportData {
	data := &ReportData{
		RunID:      result.RunID,
		Target:     result.Target,
		Timestamp:  result.Stats.StartTime,
		Status:     result.Status,
		DurationMS: result.Duration.Milliseconds(),
		Stats: ReportStats{
			Total:     result.Stats.Total,
			Passed:    result.Stats.Passed,
			Failed:    result.Stats.Failed,
			Skipped:   result.Stats.Skipped,
			Errored:   result.Stats.Errored,
			Cancelled: result.Stats.Cancelled,
		},
		Sequences:      make([]ReportSequence, 0, len(result.Sequences)),
		ProfileSummary: make(map[string]ProfileSummary, len(result.ProfileSummary)),
	}

	for _, seq := range result.Sequences {
		reportSeq := ReportSequence{
			SequenceID:     seq.ID,
			Title:          seq.Title,
			Status:         seq.Status,
			RequiredTotal:  seq.RequiredTotal,
			RequiredPassed: seq.RequiredPassed,
			Results:        make([]ReportResult, 0, len(seq.Results)),
		}
		for _, res := range seq.Results {
			reportSeq.Results = append(reportSeq.Results, ReportResult{
				TestID:      res.TestID,
				Title:       res.Title,
				Status:      res.Status,
				Message:     res.Message,
				Link:        res.Link,
				Optional:    res.Optional,
				Issues:      res.Issues,
				EvidenceRef: res.EvidenceRef,
				DurationMS:  res.Duration.Milliseconds(),
			})
		}
		data.Sequences = append(data.Sequences, reportSeq)
	}

	for id, summary := range result.ProfileSummary {
		data.ProfileSummary[id] = ProfileSummary{
			Encountered: summary.Encountered,
			Failed:      summary.Failed,
			Messages:    summary.Messages,
		}
	}

	return data
}
