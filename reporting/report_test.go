package reporting

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/interoplab/conformd/profile"
	"github.com/interoplab/conformd/runner"
	"github.com/interoplab/conformd/types"
)

func sampleRun() *runner.RunnerResult {
	return &runner.RunnerResult{
		RunID:    "run-42",
		Target:   "http://target.test",
		Status:   types.TestStatusFail,
		Duration: 1500 * time.Millisecond,
		Stats: runner.ResultStats{
			Total:     3,
			Passed:    1,
			Failed:    1,
			Skipped:   1,
			StartTime: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		},
		Sequences: []*runner.SequenceResult{{
			ID:             "record-retrieval",
			Title:          "Record retrieval and validation",
			Status:         types.TestStatusFail,
			RequiredTotal:  2,
			RequiredPassed: 1,
			Results: []types.Result{
				{
					SequenceID:  "record-retrieval",
					TestID:      "search-by-subject",
					Status:      types.TestStatusPass,
					EvidenceRef: "ref-1",
					Duration:    200 * time.Millisecond,
				},
				{
					SequenceID: "record-retrieval",
					TestID:     "read-each-record",
					Status:     types.TestStatusFail,
					Message:    "1 record(s) failed profile validation",
					Issues: []types.ValidationIssue{
						{Severity: types.SeverityError, Location: "code", Message: "required element missing"},
					},
				},
				{
					SequenceID: "record-retrieval",
					TestID:     "reject-unknown-id",
					Status:     types.TestStatusSkip,
					Optional:   true,
				},
			},
		}},
		ProfileSummary: map[string]profile.Summary{
			"core-observation": {
				Encountered: 2,
				Failed:      true,
				Messages:    []string{"profile core-observation: error at code: required element missing"},
			},
		},
	}
}

func TestBuild(t *testing.T) {
	data := Build(sampleRun())

	assert.Equal(t, "run-42", data.RunID)
	assert.Equal(t, "http://target.test", data.Target)
	assert.Equal(t, types.TestStatusFail, data.Status)
	assert.Equal(t, int64(1500), data.DurationMS)
	assert.Equal(t, ReportStats{Total: 3, Passed: 1, Failed: 1, Skipped: 1}, data.Stats)

	require.Len(t, data.Sequences, 1)
	seq := data.Sequences[0]
	assert.Equal(t, "record-retrieval", seq.SequenceID)
	assert.Equal(t, 2, seq.RequiredTotal)
	assert.Equal(t, 1, seq.RequiredPassed)
	require.Len(t, seq.Results, 3)
	assert.Equal(t, "ref-1", seq.Results[0].EvidenceRef)
	assert.Equal(t, int64(200), seq.Results[0].DurationMS)
	require.Len(t, seq.Results[1].Issues, 1)
	assert.True(t, seq.Results[2].Optional)

	require.Contains(t, data.ProfileSummary, "core-observation")
	assert.Equal(t, 2, data.ProfileSummary["core-observation"].Encountered)
	assert.True(t, data.ProfileSummary["core-observation"].Failed)
}

func TestBuildSerializes(t *testing.T) {
	raw, err := json.Marshal(Build(sampleRun()))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "run-42", decoded["run_id"])
	assert.Equal(t, "fail", decoded["status"])

	seqs, ok := decoded["sequences"].([]any)
	require.True(t, ok)
	require.Len(t, seqs, 1)
	seq := seqs[0].(map[string]any)
	assert.Equal(t, "record-retrieval", seq["sequence_id"])
	assert.Equal(t, float64(2), seq["required_total"])
	assert.Equal(t, float64(1), seq["required_passed"])
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.json")
	require.NoError(t, WriteJSON(path, Build(sampleRun())))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var data ReportData
	require.NoError(t, json.Unmarshal(raw, &data))
	assert.Equal(t, "run-42", data.RunID)
	require.Len(t, data.Sequences, 1)
	assert.Equal(t, types.TestStatusFail, data.Sequences[0].Status)
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	RenderTable(&buf, Build(sampleRun()))

	out := buf.String()
	assert.Contains(t, out, "record-retrieval")
	assert.Contains(t, out, "search-by-subject")
	assert.Contains(t, out, "core-observation")
	assert.Contains(t, out, "TOTAL")
}
