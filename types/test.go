package types

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/log"

	"github.com/interoplab/conformd/evidence"
	"github.com/interoplab/conformd/runctx"
)

// Env carries the only capabilities a test body may touch: the run context
// and the profile ledger are the two pieces of mutable shared state a body
// is allowed to write, everything else is read-only or side-effect free
// from the engine's point of view.
type Env struct {
	Run       *runctx.Context
	Client    evidence.Client
	Validator RecordValidator
	Ledger    ProfileLedger
	Log       log.Logger

	// Supports lists the record types declared for the currently executing
	// sequence. Set by the runner before each sequence.
	Supports []string

	issues []ValidationIssue
}

// AttachIssues records structured validation detail to surface on the
// current test's result. Single-writer by construction; no locking.
func (e *Env) AttachIssues(issues ...ValidationIssue) {
	e.issues = append(e.issues, issues...)
}

// TakeIssues drains attached issues. Called by the runner after each body.
func (e *Env) TakeIssues() []ValidationIssue {
	issues := e.issues
	e.issues = nil
	return issues
}

// TestFunc is the executable body of a test unit. Returning nil means pass;
// the designated signals from signals.go end execution early; any other
// error is contained by the runner and classified as an error result.
type TestFunc func(ctx context.Context, env *Env) error

// Test is one declared conformance check. Declared at process start and
// never mutated at runtime.
type Test struct {
	ID          string
	Title       string
	Description string
	Link        string
	Optional    bool
	Fn          TestFunc
}

// Sequence is an ordered, statically declared list of tests sharing one run
// context. Order is load-bearing: later tests consume state earlier tests
// produce.
type Sequence struct {
	ID          string
	Title       string
	Description string
	Tests       []Test
}

// SequenceSpec is a sequence bound to its plan metadata, produced by the
// registry after load-time validation. Test IDs already carry the plan's
// prefix.
type SequenceSpec struct {
	Sequence

	TestIDPrefix string
	Requires     []string
	Defines      []string
	Supports     []string
}

// Result captures the outcome of a single test unit. Created exactly once
// per declared unit per run, immutable after creation.
type Result struct {
	SequenceID  string            `json:"sequence_id"`
	TestID      string            `json:"test_id"`
	Title       string            `json:"title,omitempty"`
	Status      TestStatus        `json:"status"`
	Message     string            `json:"message,omitempty"`
	Link        string            `json:"link,omitempty"`
	Optional    bool              `json:"optional,omitempty"`
	Issues      []ValidationIssue `json:"issues,omitempty"`
	EvidenceRef string            `json:"evidence_ref,omitempty"`
	Duration    time.Duration     `json:"duration"`
}
