package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	conformd "github.com/interoplab/conformd"
	"github.com/interoplab/conformd/exitcodes"
	"github.com/interoplab/conformd/flags"
	"github.com/interoplab/conformd/service"
)

var (
	Version   = "v0.1.0"
	GitCommit = ""
	GitDate   = ""
)

func main() {
	app := cli.NewApp()
	app.Version = fmt.Sprintf("%s-%s-%s", Version, GitCommit, GitDate)
	app.Name = "conformd"
	app.Usage = "API Conformance Test Engine"
	app.Description = "conformd runs ordered conformance sequences against a live server and reports pass/fail/error per check"
	app.Flags = flags.Flags
	app.Action = run
	app.ExitErrHandler = func(c *cli.Context, err error) {
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			cli.HandleExitCoder(exitErr)
		} else if err != nil {
			if conformd.IsRuntimeError(err) {
				cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.RuntimeErr))
			} else if conformd.IsConformanceError(err) {
				cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.ConformanceFailure))
			} else {
				cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.ConformanceFailure))
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Ambient healthz/metrics endpoints live for the process, not per run.
	svc := service.New()
	svc.Start(ctx)
	defer svc.Shutdown()

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Crit("Application failed", "message", err)
	}
}

func run(ctx *cli.Context) error {
	handler := log.NewTerminalHandlerWithLevel(os.Stderr, logLevel(ctx), true)
	logger := log.NewLogger(handler)
	log.SetDefault(logger)

	cfg, err := conformd.NewConfig(ctx, logger)
	if err != nil {
		return conformd.NewRuntimeError(fmt.Errorf("failed to create config: %w", err))
	}

	cfg.Log.Debug("Config",
		"target", cfg.Target,
		"plan", cfg.PlanFile,
		"profiles", cfg.ProfileDir,
		"runOnce", cfg.RunOnce)

	svc, err := conformd.New(ctx.Context, cfg, Version)
	if err != nil {
		return conformd.NewRuntimeError(fmt.Errorf("failed to create conformd: %w", err))
	}

	return svc.Start(ctx.Context)
}

func logLevel(ctx *cli.Context) slog.Level {
	if ctx.Bool(flags.LogDebug.Name) {
		return log.LevelDebug
	}
	return log.LevelInfo
}
