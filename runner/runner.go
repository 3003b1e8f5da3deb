package runner

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"

	"github.com/interoplab/conformd/evidence"
	"github.com/interoplab/conformd/metrics"
	"github.com/interoplab/conformd/profile"
	"github.com/interoplab/conformd/registry"
	"github.com/interoplab/conformd/runctx"
	"github.com/interoplab/conformd/types"
)

// RunState tracks the runner's lifecycle.
type RunState int32

const (
	StateNotStarted RunState = iota
	StateRunning
	StateCompleted
)

// SequenceRunner executes the planned sequences against one run context.
type SequenceRunner interface {
	RunAll(ctx context.Context) (*RunnerResult, error)
	State() RunState
}

type runner struct {
	specs    []types.SequenceSpec
	client   evidence.Client
	profiles profile.Source
	seed     map[string]any
	target   string
	log      log.Logger
	state    atomic.Int32
}

// Config holds configuration for creating a new runner.
type Config struct {
	Registry *registry.Registry
	Client   evidence.Client
	Profiles profile.Source

	// Seed pre-populates the run context (credentials, subject id).
	Seed map[string]any

	// Target names the server under test, for logs and metrics.
	Target string

	Log log.Logger
}

// NewRunner creates a sequence runner instance.
func NewRunner(cfg Config) (SequenceRunner, error) {
	if cfg.Registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if cfg.Client == nil {
		return nil, fmt.Errorf("evidence client is required")
	}
	if cfg.Profiles == nil {
		return nil, fmt.Errorf("profile source is required")
	}
	if cfg.Log == nil {
		cfg.Log = log.New()
		cfg.Log.Error("No logger provided, using default")
	}

	specs := cfg.Registry.GetSequences()
	if len(specs) == 0 {
		return nil, fmt.Errorf("no sequences found")
	}

	return &runner{
		specs:    specs,
		client:   cfg.Client,
		profiles: cfg.Profiles,
		seed:     cfg.Seed,
		target:   cfg.Target,
		log:      cfg.Log,
	}, nil
}

// State returns the runner's current lifecycle state.
func (r *runner) State() RunState {
	return RunState(r.state.Load())
}

// RunAll executes every planned sequence in order against a fresh run
// context and ledger, and aggregates the results. Each call is an
// independent run; concurrent calls are rejected because a run owns its
// context exclusively.
func (r *runner) RunAll(ctx context.Context) (*RunnerResult, error) {
	if !r.state.CompareAndSwap(int32(StateNotStarted), int32(StateRunning)) &&
		!r.state.CompareAndSwap(int32(StateCompleted), int32(StateRunning)) {
		return nil, fmt.Errorf("run already in progress")
	}
	defer r.state.Store(int32(StateCompleted))

	start := time.Now()
	runID := uuid.New().String()
	r.log.Info("Starting conformance run", "run_id", runID, "target", r.target, "sequences", len(r.specs))

	run := runctx.NewSeeded(r.seed)
	ledger := profile.NewLedger()
	env := &types.Env{
		Run:       run,
		Client:    r.client,
		Validator: profile.NewValidator(r.profiles, ledger, r.log),
		Ledger:    ledger,
		Log:       r.log,
	}

	result := &RunnerResult{
		RunID:     runID,
		Target:    r.target,
		Stats:     ResultStats{StartTime: start},
		Sequences: make([]*SequenceResult, 0, len(r.specs)),
	}

	for _, spec := range r.specs {
		seqResult := r.runSequence(ctx, runID, spec, env)
		result.Sequences = append(result.Sequences, seqResult)
		result.updateStats(seqResult)
	}

	result.Duration = time.Since(start)
	result.Stats.EndTime = time.Now()
	result.Status = determineRunStatus(result)
	result.ProfileSummary = ledger.Summarize()

	metrics.RecordConformance(r.target, runID, string(result.Status),
		result.Stats.Total, result.Stats.Passed, result.Stats.Failed, result.Duration)
	r.log.Info("Conformance run finished", "run_id", runID, "status", result.Status)

	return result, nil
}

// runSequence executes one sequence under the containment contract. It
// always produces exactly one result per declared test, in declaration
// order, regardless of outcome.
func (r *runner) runSequence(ctx context.Context, runID string, spec types.SequenceSpec, env *types.Env) *SequenceResult {
	start := time.Now()
	res := &SequenceResult{
		ID:    spec.ID,
		Title: spec.Title,
		Stats: ResultStats{StartTime: start},
	}
	for _, t := range spec.Tests {
		if !t.Optional {
			res.RequiredTotal++
		}
	}

	// The short-circuit flag never crosses a sequence boundary.
	env.Run.ResetNoData()
	env.Supports = spec.Supports

	// Precondition gate: every required input must be present and
	// non-empty before any body runs.
	missing := firstMissingRequire(spec, env.Run)
	if missing != "" {
		r.log.Info("Sequence gated", "sequence", spec.ID, "missing", missing)
	}

	for _, t := range spec.Tests {
		var result types.Result
		switch {
		case missing != "":
			result = r.syntheticResult(spec, t, types.TestStatusSkip,
				fmt.Sprintf("required input missing: %s", missing))
		case ctx.Err() != nil:
			result = r.syntheticResult(spec, t, types.TestStatusCancel,
				"run cancelled before this test was dispatched")
		case env.Run.NoData():
			result = r.syntheticResult(spec, t, types.TestStatusSkip, env.Run.NoDataReason())
		default:
			result = r.executeTest(ctx, spec, t, env)
		}

		res.Results = append(res.Results, result)
		res.Stats.record(result.Status)
		if !t.Optional && result.Status == types.TestStatusPass {
			res.RequiredPassed++
		}
		metrics.RecordValidation(r.target, runID, spec.ID, result.TestID, result.Status)
	}

	res.Duration = time.Since(start)
	res.Stats.EndTime = time.Now()
	res.Status = determineSequenceStatus(res, missing != "", env.Run.NoData())

	r.log.Info("Sequence finished",
		"sequence", spec.ID,
		"status", res.Status,
		"required_passed", res.RequiredPassed,
		"required_total", res.RequiredTotal)

	return res
}

// executeTest runs one body under the containment contract and assembles
// its result, attributing the last evidence exchange performed during the
// body to the result.
func (r *runner) executeTest(ctx context.Context, spec types.SequenceSpec, t types.Test, env *types.Env) types.Result {
	start := time.Now()
	transcriptsBefore := len(env.Client.Transcripts())

	status, msg := r.invoke(ctx, t, env)

	result := types.Result{
		SequenceID: spec.ID,
		TestID:     t.ID,
		Title:      t.Title,
		Link:       t.Link,
		Optional:   t.Optional,
		Status:     status,
		Message:    msg,
		Issues:     env.TakeIssues(),
		Duration:   time.Since(start),
	}
	if transcripts := env.Client.Transcripts(); len(transcripts) > transcriptsBefore {
		result.EvidenceRef = transcripts[len(transcripts)-1].ID
	}
	return result
}

// invoke calls the body and classifies its outcome. An uncaught fault is
// recovered here: one unit's panic must never abort the sequence runner or
// corrupt run-context state already written by prior units.
func (r *runner) invoke(ctx context.Context, t types.Test, env *types.Env) (status types.TestStatus, msg string) {
	defer func() {
		if rec := recover(); rec != nil {
			status = types.TestStatusError
			msg = fmt.Sprintf("%v", rec)
			r.log.Error("Test body panicked", "test", t.ID, "panic", rec)
		}
	}()

	if t.Fn == nil {
		return types.TestStatusTodo, "not implemented"
	}
	r.log.Debug("Running test", "test", t.ID)
	return types.StatusFromError(t.Fn(ctx, env))
}

// syntheticResult builds a result for a test whose body was never invoked.
func (r *runner) syntheticResult(spec types.SequenceSpec, t types.Test, status types.TestStatus, msg string) types.Result {
	return types.Result{
		SequenceID: spec.ID,
		TestID:     t.ID,
		Title:      t.Title,
		Link:       t.Link,
		Optional:   t.Optional,
		Status:     status,
		Message:    msg,
	}
}

// firstMissingRequire returns the first declared required input absent from
// the run context, or "".
func firstMissingRequire(spec types.SequenceSpec, run *runctx.Context) string {
	for _, key := range spec.Requires {
		if !run.Has(key) {
			return key
		}
	}
	return ""
}
