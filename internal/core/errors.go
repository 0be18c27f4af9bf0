package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNoDevice is returned before any remote call when no device is selected
	ErrNoDevice = errors.New("No device selected!")
	// ErrInvalidName is returned when a new file name contains a path separator
	ErrInvalidName = errors.New("Invalid name")
	// ErrNotOpenable is returned when trying to read a directory as a file
	ErrNotOpenable = errors.New("is a directory")
)

// RemoteError carries the raw text of a failed (or noisy) remote command verbatim
type RemoteError struct {
	Op       string
	ExitCode int
	Text     string

	// Tolerated marks exit code 1 from a listing, which means "no matches"
	Tolerated bool
}

func (e *RemoteError) Error() string {
	if e.Text != "" {
		return e.Text
	}
	return fmt.Sprintf("%s failed with exit code %d", e.Op, e.ExitCode)
}

// Informational reports whether the command itself succeeded and the error
// only carries text it wrote to stderr
func (e *RemoteError) Informational() bool {
	return e.ExitCode == 0 || e.Tolerated
}

// ParseError is returned when command output does not have the expected shape
type ParseError struct {
	Raw string
}

func (e *ParseError) Error() string {
	return "Unexpected string:\n" + e.Raw
}

// IsFatal reports whether err should be treated as a failure.
// Informational remote errors accompany a successful result and are not fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var remote *RemoteError
	if errors.As(err, &remote) {
		return !remote.Informational()
	}
	return true
}
