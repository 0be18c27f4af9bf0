//go:generate go run go.uber.org/mock/mockgen -source=runner.go -destination=../../mocks/mock_runner.go -package=mocks
package adb

import (
	"context"
	"errors"
)

// ErrLaunch is returned when the adb process could not be started at all.
// It is distinct from a command that ran and exited non-zero.
var ErrLaunch = errors.New("failed to launch adb")

// Result is the outcome of one adb invocation
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Successful reports whether the process exited with code zero
func (r Result) Successful() bool {
	return r.ExitCode == 0
}

// Text returns stderr when present, otherwise stdout.
// Remote failures are reported to the user with this text verbatim.
func (r Result) Text() string {
	if r.Stderr != "" {
		return r.Stderr
	}
	return r.Stdout
}

// Runner runs adb against a device.
// serial selects the device with -s; an empty serial addresses the adb server.
type Runner interface {
	// Run executes argv and captures stdout and stderr
	Run(ctx context.Context, serial string, argv []string) (Result, error)
	// Stream executes argv and calls onLine for every line of combined output,
	// in order, on the calling goroutine, before returning
	Stream(ctx context.Context, serial string, argv []string, onLine func(line string)) (Result, error)
}
