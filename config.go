// Package conformd wires the conformance engine together: configuration,
// registry, runner, reporting and the service lifecycle around them.
package conformd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	"github.com/interoplab/conformd/flags"
)

type Config struct {
	// Target server under test.
	Target string

	// Run plan and profile definitions.
	PlanFile   string
	ProfileDir string

	// Operator-supplied session seed.
	Bearer  string
	Subject string

	// Execution settings.
	RequestTimeout time.Duration
	RunInterval    time.Duration
	RunOnce        bool
	ReportFile     string

	Log log.Logger
}

// NewConfig creates a new Config instance from the CLI context.
func NewConfig(ctx *cli.Context, logger log.Logger) (*Config, error) {
	if err := flags.CheckRequired(ctx); err != nil {
		return nil, fmt.Errorf("missing required flags: %w", err)
	}

	target := strings.TrimRight(ctx.String(flags.Target.Name), "/")
	if target == "" {
		return nil, errors.New("target is required")
	}
	planFile := ctx.String(flags.Plan.Name)
	if planFile == "" {
		return nil, errors.New("plan file is required")
	}
	profileDir := ctx.String(flags.ProfileDir.Name)
	if profileDir == "" {
		return nil, errors.New("profile directory is required")
	}

	absPlan, err := filepath.Abs(planFile)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for plan file: %w", err)
	}
	absProfiles, err := filepath.Abs(profileDir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for profile dir: %w", err)
	}

	runInterval := ctx.Duration(flags.RunInterval.Name)

	return &Config{
		Target:         target,
		PlanFile:       absPlan,
		ProfileDir:     absProfiles,
		Bearer:         ctx.String(flags.Bearer.Name),
		Subject:        ctx.String(flags.Subject.Name),
		RequestTimeout: ctx.Duration(flags.RequestTimeout.Name),
		RunInterval:    runInterval,
		RunOnce:        runInterval == 0,
		ReportFile:     ctx.String(flags.ReportFile.Name),
		Log:            logger,
	}, nil
}
