package conformd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/interoplab/conformd/evidence"
	"github.com/interoplab/conformd/profile"
	"github.com/interoplab/conformd/registry"
	"github.com/interoplab/conformd/reporting"
	"github.com/interoplab/conformd/runner"
	"github.com/interoplab/conformd/sequences"
	"github.com/interoplab/conformd/types"
)

// Service drives conformance runs against one target: once, or repeatedly
// on an interval with a fresh run context and ledger per run.
type Service struct {
	config   *Config
	version  string
	registry *registry.Registry
	runner   runner.SequenceRunner
	result   *runner.RunnerResult

	running atomic.Bool
}

// New validates the plan, binds the built-in sequence catalog, and prepares
// the runner. Configuration errors surface here, before any run starts.
func New(ctx context.Context, config *Config, version string) (*Service, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}

	config.Log.Debug("Creating conformd with config",
		"target", config.Target,
		"plan", config.PlanFile,
		"profiles", config.ProfileDir)

	reg, err := registry.NewRegistry(registry.Config{
		Log:       config.Log,
		PlanFile:  config.PlanFile,
		Sequences: sequences.All(),
		SeedKeys: []string{
			sequences.KeyBaseURL,
			sequences.KeyBearer,
			sequences.KeySubject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create registry: %w", err)
	}

	client := evidence.NewHTTPClient(evidence.ClientConfig{
		Timeout: config.RequestTimeout,
		Bearer:  config.Bearer,
		Log:     config.Log,
	})

	seqRunner, err := runner.NewRunner(runner.Config{
		Registry: reg,
		Client:   client,
		Profiles: profile.NewDirSource(config.ProfileDir),
		Target:   config.Target,
		Log:      config.Log,
		Seed: map[string]any{
			sequences.KeyBaseURL: config.Target,
			sequences.KeyBearer:  config.Bearer,
			sequences.KeySubject: config.Subject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create runner: %w", err)
	}
	config.Log.Info("conformd.New: created registry and runner")

	return &Service{
		config:   config,
		version:  version,
		registry: reg,
		runner:   seqRunner,
	}, nil
}

// Start executes conformance runs until done. In run-once mode it returns
// after the first run, with a ConformanceError when the target failed. In
// continuous mode it re-runs on the configured interval until the context
// is cancelled; per-run failures are logged and the loop keeps going.
func (s *Service) Start(ctx context.Context) error {
	s.running.Store(true)
	defer s.running.Store(false)

	if s.config.RunOnce {
		s.config.Log.Info("Starting conformd in run-once mode", "version", s.version)
		return s.runConformance(ctx)
	}

	s.config.Log.Info("Starting conformd in continuous mode",
		"version", s.version, "interval", s.config.RunInterval)

	if err := s.runConformance(ctx); err != nil && IsRuntimeError(err) {
		return err
	}

	ticker := time.NewTicker(s.config.RunInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.config.Log.Info("conformd stopped")
			return nil
		case <-ticker.C:
			if err := s.runConformance(ctx); err != nil {
				if IsRuntimeError(err) {
					return err
				}
				s.config.Log.Warn("Conformance run failed", "err", err)
			}
		}
	}
}

// Running returns true while the service is executing.
func (s *Service) Running() bool {
	return s.running.Load()
}

// Result returns the most recent run result.
func (s *Service) Result() *runner.RunnerResult {
	return s.result
}

// runConformance performs one full run and emits its report.
func (s *Service) runConformance(ctx context.Context) error {
	result, err := s.runner.RunAll(ctx)
	if err != nil {
		return NewRuntimeError(fmt.Errorf("running conformance checks: %w", err))
	}
	s.result = result

	report := reporting.Build(result)
	reporting.RenderTable(os.Stdout, report)
	fmt.Println(result.String())

	if s.config.ReportFile != "" {
		if err := reporting.WriteJSON(s.config.ReportFile, report); err != nil {
			return NewRuntimeError(err)
		}
		s.config.Log.Info("Report written", "path", s.config.ReportFile)
	}

	if result.Status == types.TestStatusFail {
		return NewConformanceError(fmt.Sprintf("run %s: %d required check(s) failed or errored",
			result.RunID, result.Stats.Failed+result.Stats.Errored))
	}
	return nil
}
