// Package types contains shared types used across the conformance engine.
package types

// TestStatus represents the possible outcomes of a test unit execution.
type TestStatus string

const (
	TestStatusPass    TestStatus = "pass"
	TestStatusFail    TestStatus = "fail"
	TestStatusSkip    TestStatus = "skip"
	TestStatusError   TestStatus = "error"
	TestStatusCancel  TestStatus = "cancel"
	TestStatusTodo    TestStatus = "todo"
	TestStatusWait    TestStatus = "wait"
	TestStatusPending TestStatus = "pending"
)

// String implements the Stringer interface for TestStatus.
func (s TestStatus) String() string {
	return string(s)
}

// IsTerminalFailure reports whether a status counts against required scoring.
// Only fail and error do; skip is inconclusive, cancel reflects operator
// action, and wait/pending/todo are not verdicts at all.
func (s TestStatus) IsTerminalFailure() bool {
	return s == TestStatusFail || s == TestStatusError
}

// AllStatuses lists every valid status. Used for validation of recorded
// metrics and report fields.
func AllStatuses() []TestStatus {
	return []TestStatus{
		TestStatusPass,
		TestStatusFail,
		TestStatusSkip,
		TestStatusError,
		TestStatusCancel,
		TestStatusTodo,
		TestStatusWait,
		TestStatusPending,
	}
}
