// Package repository implements the file and device operations of the explorer
// on top of adb. Every call blocks until the adb process exits.
package repository

import (
	"strings"

	"ADBExplorer/internal/core"
	"ADBExplorer/pkg/adb"
)

// TransferObserver is notified when a push or pull finishes
type TransferObserver interface {
	ObserveTransfer(direction string, ok bool)
}

// Transfer directions
const (
	DirectionDownload = "download"
	DirectionUpload   = "upload"
)

// Option configures a FileRepository
type Option func(*FileRepository)

// WithTransferObserver reports finished transfers to o
func WithTransferObserver(o TransferObserver) Option {
	return func(r *FileRepository) {
		r.observer = o
	}
}

func remoteError(op string, res adb.Result) error {
	return &core.RemoteError{
		Op:       op,
		ExitCode: res.ExitCode,
		Text:     strings.TrimRight(res.Text(), "\r\n"),
	}
}

// notice returns the stderr text of a command that otherwise succeeded, or nil
func notice(op string, res adb.Result) error {
	text := strings.TrimRight(res.Stderr, "\r\n")
	if text == "" {
		return nil
	}
	return &core.RemoteError{Op: op, ExitCode: res.ExitCode, Text: text}
}

// listingError tolerates exit code 1, which ls uses for "no such file"
func listingError(op string, res adb.Result) error {
	switch {
	case res.Successful():
		return notice(op, res)
	case res.ExitCode == 1:
		return &core.RemoteError{
			Op:        op,
			ExitCode:  res.ExitCode,
			Text:      strings.TrimRight(res.Text(), "\r\n"),
			Tolerated: true,
		}
	default:
		return remoteError(op, res)
	}
}

func shellArgs(prefix []string, args ...string) []string {
	out := make([]string, 0, len(prefix)+len(args))
	out = append(out, prefix...)
	return append(out, args...)
}
