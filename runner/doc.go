// Package runner executes ordered conformance sequences against one run
// context and aggregates their results into a run-level report.
//
// Execution is strictly sequential within a run: each test unit may depend
// on run-context and ledger state written by its predecessor, so units are
// never scheduled in parallel. A unit's fault is always contained at the
// unit boundary; the runner continues with the next unit rather than
// failing fast, because the point of a conformance report is to surface
// every check's status.
package runner
