package sequences

import (
	"context"
	"strings"

	"github.com/interoplab/conformd/types"
)

// ProfileConformance closes the run by reading the ledger: validation
// evidence gathered incrementally across the earlier sequences becomes a
// single pass/fail decision here.
func ProfileConformance() types.Sequence {
	return types.Sequence{
		ID:          "profile-conformance",
		Title:       "Accumulated profile conformance",
		Description: "Asserts that no profile accumulated validation failures anywhere in the run.",
		Tests: []types.Test{
			{
				ID:          "no-accumulated-failures",
				Title:       "No profile accumulated validation failures",
				Description: "Every profile exercised during the run must have validated cleanly.",
				Fn:          noAccumulatedFailures,
			},
		},
	}
}

func noAccumulatedFailures(ctx context.Context, env *types.Env) error {
	profiles := env.Ledger.Profiles()
	if len(profiles) == 0 {
		return types.Skipf("no profiles were exercised during this run")
	}

	var failed []string
	for _, id := range profiles {
		if env.Ledger.Failed(id) {
			failed = append(failed, id)
			for _, msg := range env.Ledger.Failures(id) {
				env.AttachIssues(types.ValidationIssue{
					Severity: types.SeverityError,
					Location: id,
					Message:  msg,
				})
			}
		}
	}

	if len(failed) > 0 {
		return types.Failf("profiles with accumulated failures: %s", strings.Join(failed, ", "))
	}
	return nil
}
