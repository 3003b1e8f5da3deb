// Package flags defines the CLI surface of conformd.
package flags

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"
)

const EnvVarPrefix = "CONFORMD"

// prefixEnvVars derives the environment variable names for a flag.
func prefixEnvVars(name string) []string {
	return []string{EnvVarPrefix + "_" + name}
}

var (
	Target = &cli.StringFlag{
		Name:     "target",
		Value:    "",
		Required: true,
		EnvVars:  prefixEnvVars("TARGET"),
		Usage:    "Base URL of the server under test (eg. 'https://api.example.org/v1')",
	}
	Plan = &cli.StringFlag{
		Name:     "plan",
		Value:    "",
		Required: true,
		EnvVars:  prefixEnvVars("PLAN"),
		Usage:    "Path to the run plan file (eg. 'plan.yaml')",
	}
	ProfileDir = &cli.StringFlag{
		Name:     "profiles",
		Value:    "",
		Required: true,
		EnvVars:  prefixEnvVars("PROFILES"),
		Usage:    "Directory holding profile definitions, one '<profile-id>.yaml' per profile",
	}
	Bearer = &cli.StringFlag{
		Name:    "bearer",
		Value:   "",
		EnvVars: prefixEnvVars("BEARER"),
		Usage:   "Bearer credential presented to the target",
	}
	Subject = &cli.StringFlag{
		Name:    "subject",
		Value:   "",
		EnvVars: prefixEnvVars("SUBJECT"),
		Usage:   "Subject identifier whose records the run exercises",
	}
	RequestTimeout = &cli.DurationFlag{
		Name:    "request-timeout",
		Value:   30 * time.Second,
		EnvVars: prefixEnvVars("REQUEST_TIMEOUT"),
		Usage:   "Bounded wait for each network interaction; exceeding it errors that test only",
	}
	RunInterval = &cli.DurationFlag{
		Name:    "run-interval",
		Value:   0,
		EnvVars: prefixEnvVars("RUN_INTERVAL"),
		Usage:   "Interval between runs (e.g. '1h', '30m'). Set to 0 or omit for run-once mode.",
	}
	ReportFile = &cli.StringFlag{
		Name:    "report",
		Value:   "",
		EnvVars: prefixEnvVars("REPORT"),
		Usage:   "Path to write the JSON run report; omit to skip the file export",
	}
	LogDebug = &cli.BoolFlag{
		Name:    "log-debug",
		Value:   false,
		EnvVars: prefixEnvVars("LOG_DEBUG"),
		Usage:   "Enable debug logging",
	}
)

var requiredFlags = []cli.Flag{
	Target,
	Plan,
	ProfileDir,
}

var optionalFlags = []cli.Flag{
	Bearer,
	Subject,
	RequestTimeout,
	RunInterval,
	ReportFile,
	LogDebug,
}

var Flags []cli.Flag

func init() {
	Flags = append(requiredFlags, optionalFlags...)
}

func CheckRequired(ctx *cli.Context) error {
	for _, f := range requiredFlags {
		if !ctx.IsSet(f.Names()[0]) {
			return fmt.Errorf("flag %s is required", f.Names()[0])
		}
	}
	return nil
}
