package reporting

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/interoplab/conformd/types"
)

// RenderTable prints the run report as a console table, colored by the
// overall run status.
func RenderTable(w io.Writer, data *ReportData) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("Conformance Results (%s, %.1fs)", data.RunID, float64(data.DurationMS)/1000))

	t.AppendHeader(table.Row{
		"Type", "ID", "Required", "Passed", "Failed", "Skipped", "Status", "Message",
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Type", AutoMerge: true},
		{Name: "ID", WidthMax: 50},
		{Name: "Required", Align: text.AlignRight},
		{Name: "Passed", Align: text.AlignRight},
		{Name: "Failed", Align: text.AlignRight},
		{Name: "Skipped", Align: text.AlignRight},
		{Name: "Message", WidthMax: 60},
	})

	for _, seq := range data.Sequences {
		t.AppendRow(table.Row{
			"Sequence",
			seq.SequenceID,
			fmt.Sprintf("%d/%d", seq.RequiredPassed, seq.RequiredTotal),
			countStatus(seq.Results, types.TestStatusPass),
			countStatus(seq.Results, types.TestStatusFail) + countStatus(seq.Results, types.TestStatusError),
			countStatus(seq.Results, types.TestStatusSkip),
			statusString(seq.Status),
			"",
		})

		for i, res := range seq.Results {
			prefix := "├──"
			if i == len(seq.Results)-1 {
				prefix = "└──"
			}
			id := res.TestID
			if res.Optional {
				id += " (optional)"
			}
			t.AppendRow(table.Row{
				"Test",
				fmt.Sprintf("%s %s", prefix, id),
				"",
				boolToInt(res.Status == types.TestStatusPass),
				boolToInt(res.Status == types.TestStatusFail || res.Status == types.TestStatusError),
				boolToInt(res.Status == types.TestStatusSkip),
				statusString(res.Status),
				res.Message,
			})
		}
		t.AppendSeparator()
	}

	for id, summary := range data.ProfileSummary {
		failed := 0
		if summary.Failed {
			failed = 1
		}
		t.AppendRow(table.Row{
			"Profile",
			id,
			"",
			summary.Encountered,
			failed,
			"",
			profileStatus(summary.Failed),
			"",
		})
	}

	switch data.Status {
	case types.TestStatusPass:
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	case types.TestStatusSkip:
		t.SetStyle(table.StyleColoredBlackOnYellowWhite)
	default:
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	}

	t.AppendFooter(table.Row{
		"TOTAL",
		"",
		"",
		data.Stats.Passed,
		data.Stats.Failed + data.Stats.Errored,
		data.Stats.Skipped,
		statusString(data.Status),
		"",
	})

	t.Render()
}

func countStatus(results []ReportResult, status types.TestStatus) int {
	n := 0
	for _, r := range results {
		if r.Status == status {
			n++
		}
	}
	return n
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// statusString returns a decorated string for a status cell.
func statusString(status types.TestStatus) string {
	switch status {
	case types.TestStatusPass:
		return "✓ pass"
	case types.TestStatusSkip:
		return "- skip"
	case types.TestStatusCancel:
		return "· cancel"
	case types.TestStatusError:
		return "! error"
	case types.TestStatusFail:
		return "✗ fail"
	default:
		return string(status)
	}
}

func profileStatus(failed bool) string {
	if failed {
		return "✗ fail"
	}
	return "✓ pass"
}
