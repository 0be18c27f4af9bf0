package adb

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultCommandTimeout is the timeout for one-shot adb commands
	DefaultCommandTimeout = 5 * time.Minute
	// DefaultTransferTimeout is the timeout for adb pull/push
	DefaultTransferTimeout = 30 * time.Minute

	maxLineSize = 1024 * 1024
)

// Observer is notified after every adb invocation
type Observer interface {
	ObserveCommand(command string, exitCode int, duration time.Duration)
}

// ExecRunner implements Runner by spawning the adb binary
type ExecRunner struct {
	Binary          string
	CommandTimeout  time.Duration
	TransferTimeout time.Duration
	Observer        Observer
	logger          zerolog.Logger
}

// NewExecRunner creates a runner for the given adb binary
func NewExecRunner(binary string, logger zerolog.Logger) *ExecRunner {
	if binary == "" {
		binary = "adb"
	}
	return &ExecRunner{
		Binary:          binary,
		CommandTimeout:  DefaultCommandTimeout,
		TransferTimeout: DefaultTransferTimeout,
		logger:          logger.With().Str("component", "adb").Logger(),
	}
}

func (r *ExecRunner) args(serial string, argv []string) []string {
	if serial == "" {
		return argv
	}
	return append([]string{"-s", serial}, argv...)
}

// Run executes argv and captures both output streams
func (r *ExecRunner) Run(ctx context.Context, serial string, argv []string) (Result, error) {
	ctx, cancel := withTimeout(ctx, r.CommandTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.Binary, r.args(serial, argv)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger.Debug().Strs("argv", cmd.Args).Msg("Run")
	start := time.Now()
	if err := cmd.Start(); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrLaunch, err)
	}
	code, err := exitCode(ctx, cmd.Wait())
	r.observe(argv, code, time.Since(start))

	res := Result{ExitCode: code, Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		return res, err
	}
	r.logger.Debug().Strs("argv", cmd.Args).Int("exitCode", code).Msg("Run: done")
	return res, nil
}

// Stream executes argv and delivers each line of output to onLine as it
// arrives. Lines are split on both "\n" and "\r" because adb redraws its
// progress line with carriage returns. stdout and stderr are split
// separately, so a warning never lands inside a half-written progress line;
// onLine always runs on the calling goroutine.
func (r *ExecRunner) Stream(ctx context.Context, serial string, argv []string, onLine func(string)) (Result, error) {
	ctx, cancel := withTimeout(ctx, r.TransferTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.Binary, r.args(serial, argv)...)
	outR, outW := io.Pipe()
	errR, errW := io.Pipe()
	var stdout, stderr bytes.Buffer
	cmd.Stdout = io.MultiWriter(&stdout, outW)
	cmd.Stderr = io.MultiWriter(&stderr, errW)

	r.logger.Debug().Strs("argv", cmd.Args).Msg("Stream")
	start := time.Now()
	if err := cmd.Start(); err != nil {
		outW.Close()
		errW.Close()
		return Result{}, fmt.Errorf("%w: %v", ErrLaunch, err)
	}

	done := make(chan error, 1)
	go func() {
		err := cmd.Wait()
		outW.Close()
		errW.Close()
		done <- err
	}()

	lines := make(chan string)
	var readers sync.WaitGroup
	for _, pr := range []*io.PipeReader{outR, errR} {
		readers.Add(1)
		go func(pr *io.PipeReader) {
			defer readers.Done()
			r.scanLines(pr, lines)
		}(pr)
	}
	go func() {
		readers.Wait()
		close(lines)
	}()

	for line := range lines {
		if line == "" || onLine == nil {
			continue
		}
		onLine(line)
	}

	code, err := exitCode(ctx, <-done)
	r.observe(argv, code, time.Since(start))

	res := Result{ExitCode: code, Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		return res, err
	}
	r.logger.Debug().Strs("argv", cmd.Args).Int("exitCode", code).Msg("Stream: done")
	return res, nil
}

// scanLines sends every line of pr to lines. Output past an overlong line
// is drained so the process never blocks on a full pipe.
func (r *ExecRunner) scanLines(pr *io.PipeReader, lines chan<- string) {
	scanner := bufio.NewScanner(pr)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	scanner.Split(scanAnyLines)
	for scanner.Scan() {
		lines <- scanner.Text()
	}
	if err := scanner.Err(); err != nil {
		r.logger.Warn().Err(err).Msg("Stream: output reader stopped, draining")
		_, _ = io.Copy(io.Discard, pr)
	}
}

func (r *ExecRunner) observe(argv []string, code int, d time.Duration) {
	if r.Observer == nil || len(argv) == 0 {
		return
	}
	command := argv[0]
	if command == "shell" && len(argv) > 1 {
		command += " " + argv[1]
	}
	r.Observer.ObserveCommand(command, code, d)
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// exitCode converts the error from cmd.Wait into an exit code.
// A non-zero exit is not an error; a killed process is reported through ctx.
func exitCode(ctx context.Context, waitErr error) (int, error) {
	if waitErr == nil {
		return 0, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return -1, fmt.Errorf("adb interrupted: %w", ctxErr)
	}
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, fmt.Errorf("adb wait: %w", waitErr)
}

// scanAnyLines is a bufio.SplitFunc that splits on "\n" or "\r"
func scanAnyLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
