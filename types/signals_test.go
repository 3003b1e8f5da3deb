package types

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFromError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus TestStatus
		wantMsg    string
	}{
		{
			name:       "nil is pass",
			err:        nil,
			wantStatus: TestStatusPass,
			wantMsg:    "",
		},
		{
			name:       "skip signal",
			err:        Skipf("precondition %s not met", "token"),
			wantStatus: TestStatusSkip,
			wantMsg:    "precondition token not met",
		},
		{
			name:       "fail signal",
			err:        Failf("expected %d, got %d", 200, 500),
			wantStatus: TestStatusFail,
			wantMsg:    "expected 200, got 500",
		},
		{
			name:       "pass signal short-circuits with message",
			err:        Passf("verified early"),
			wantStatus: TestStatusPass,
			wantMsg:    "verified early",
		},
		{
			name:       "wait signal",
			err:        Waitf("awaiting manual authorization"),
			wantStatus: TestStatusWait,
			wantMsg:    "awaiting manual authorization",
		},
		{
			name:       "pending signal",
			err:        Pendingf("deferred to next run"),
			wantStatus: TestStatusPending,
			wantMsg:    "deferred to next run",
		},
		{
			name:       "todo sentinel",
			err:        ErrTodo,
			wantStatus: TestStatusTodo,
			wantMsg:    "not implemented",
		},
		{
			name:       "plain error is an engine fault",
			err:        fmt.Errorf("connection refused"),
			wantStatus: TestStatusError,
			wantMsg:    "connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := StatusFromError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantMsg, msg)
		})
	}
}

func TestStatusFromErrorUnwrapsSignals(t *testing.T) {
	wrapped := errors.Wrap(Failf("bad status"), "reading records")
	status, msg := StatusFromError(wrapped)
	require.Equal(t, TestStatusFail, status)
	assert.Equal(t, "bad status", msg)
}

func TestIsTerminalFailure(t *testing.T) {
	assert.True(t, TestStatusFail.IsTerminalFailure())
	assert.True(t, TestStatusError.IsTerminalFailure())

	for _, s := range []TestStatus{TestStatusPass, TestStatusSkip, TestStatusCancel, TestStatusTodo, TestStatusWait, TestStatusPending} {
		assert.False(t, s.IsTerminalFailure(), "status %s must not count against required scoring", s)
	}
}

func TestEnvIssueBuffer(t *testing.T) {
	env := &Env{}
	assert.Empty(t, env.TakeIssues())

	env.AttachIssues(ValidationIssue{Severity: SeverityError, Location: "code", Message: "missing"})
	env.AttachIssues(ValidationIssue{Severity: SeverityWarning, Location: "status", Message: "uncoded"})

	issues := env.TakeIssues()
	require.Len(t, issues, 2)
	assert.Equal(t, "code", issues[0].Location)
	assert.Equal(t, "status", issues[1].Location)

	// Drained: the next test's result must not inherit these.
	assert.Empty(t, env.TakeIssues())
}

func TestValidationOutcome(t *testing.T) {
	outcome := ValidationOutcome{
		ProfileID: "core-observation",
		Issues: []ValidationIssue{
			{Severity: SeverityWarning, Location: "status", Message: "not coded"},
			{Severity: SeverityError, Location: "code", Message: "required element missing"},
		},
	}
	assert.True(t, outcome.HasErrors())
	require.Len(t, outcome.ErrorMessages(), 1)
	assert.Contains(t, outcome.ErrorMessages()[0], "required element missing")

	warningsOnly := ValidationOutcome{
		Issues: []ValidationIssue{{Severity: SeverityWarning, Location: "x", Message: "y"}},
	}
	assert.False(t, warningsOnly.HasErrors(), "warnings alone do not fail conformance")
}
