package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gookit/color"
	"github.com/spf13/cobra"

	"ADBExplorer/internal/core"
	"ADBExplorer/internal/repository"
	"ADBExplorer/pkg/adb"
	"ADBExplorer/pkg/state"
)

// app holds everything a single command needs
type app struct {
	client  *adb.Client
	state   *state.StateManager
	files   *repository.FileRepository
	devices *repository.DeviceRepository
}

func newRunner() *adb.ExecRunner {
	runner := adb.NewExecRunner(cfg.ADBPath, logger)
	runner.CommandTimeout = cfg.CommandTimeout
	runner.TransferTimeout = cfg.TransferTimeout
	return runner
}

// openApp wires the repositories on top of the persisted session
func openApp() (*app, error) {
	sm, err := state.NewStateManager(cfg.StateFile(), core.DefaultDirectory)
	if err != nil {
		return nil, err
	}

	client := adb.NewClient(newRunner())
	return &app{
		client:  client,
		state:   sm,
		files:   repository.NewFileRepository(client, sm, cfg.DownloadsDir, logger),
		devices: repository.NewDeviceRepository(client, logger),
	}, nil
}

func (a *app) Close() error {
	return a.state.Close()
}

// withApp adapts fn to a cobra RunE, opening and closing the app around it
func withApp(fn func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(cmd.Context(), a, args)
	}
}

// requireDevice fails early with the same error the repositories return
func (a *app) requireDevice() (*core.Device, error) {
	d := a.state.Device()
	if d == nil {
		return nil, core.ErrNoDevice
	}
	return d, nil
}

// check prints informational errors and returns only fatal ones
func check(err error) error {
	if err == nil {
		return nil
	}
	if core.IsFatal(err) {
		return err
	}
	printNotice(err.Error())
	return nil
}

func printNotice(text string) {
	if jsonOutput {
		NewJSONReporter(os.Stderr).ReportLog("warn", text)
		return
	}
	fmt.Fprintln(os.Stderr, color.Yellow.Render(text))
}
