package types

import (
	"errors"
	"fmt"
)

// signalError is the closed set of control signals a test body may use to
// terminate its own execution early. The sequence runner maps each signal
// deterministically to a result status; any other error returned by a body
// is classified as TestStatusError with its message captured verbatim.
type signalError struct {
	status TestStatus
	msg    string
}

func (e *signalError) Error() string {
	return e.msg
}

// Skipf signals that a precondition was not met. The result is inconclusive,
// not a defect in the target server.
func Skipf(format string, args ...any) error {
	return &signalError{status: TestStatusSkip, msg: fmt.Sprintf(format, args...)}
}

// Failf signals an assertion violation: a correctness defect in the target.
func Failf(format string, args ...any) error {
	return &signalError{status: TestStatusFail, msg: fmt.Sprintf(format, args...)}
}

// Passf signals an early success, short-circuiting the rest of the body.
func Passf(format string, args ...any) error {
	return &signalError{status: TestStatusPass, msg: fmt.Sprintf(format, args...)}
}

// Waitf signals that the test is blocked on an external asynchronous event,
// such as a manual authorization step.
func Waitf(format string, args ...any) error {
	return &signalError{status: TestStatusWait, msg: fmt.Sprintf(format, args...)}
}

// Pendingf signals that the test outcome is deferred to a later run.
func Pendingf(format string, args ...any) error {
	return &signalError{status: TestStatusPending, msg: fmt.Sprintf(format, args...)}
}

// ErrTodo marks a declared but intentionally unimplemented test.
var ErrTodo = &signalError{status: TestStatusTodo, msg: "not implemented"}

// StatusFromError classifies a body's return value. A nil error is a pass.
// A designated control signal yields its status and reason. Anything else is
// an engine/network/data-shape fault and yields TestStatusError with the
// error text unmodified.
func StatusFromError(err error) (TestStatus, string) {
	if err == nil {
		return TestStatusPass, ""
	}
	var sig *signalError
	if errors.As(err, &sig) {
		return sig.status, sig.msg
	}
	return TestStatusError, err.Error()
}
