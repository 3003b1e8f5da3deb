// Package exitcodes defines the standard exit codes used by conformd.
package exitcodes

// Exit code constants used by conformd:
//
// * Success (0): every required check passed
// * ConformanceFailure (1): the target failed one or more required checks
// * RuntimeErr (2): configuration or engine error, no verdict reached
const (
	Success            = 0
	ConformanceFailure = 1
	RuntimeErr         = 2
)
