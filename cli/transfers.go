package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"ADBExplorer/pkg/adb"
	"ADBExplorer/pkg/state"
	"ADBExplorer/pkg/transfer"
)

const (
	directionPull = "pull"
	directionPush = "push"
)

type transferFunc func(ctx context.Context, sink transfer.ProgressSink, source string) (string, error)

// runTransfers runs the transfers one at a time and records each in the history.
// It stops early when ctx is cancelled.
func runTransfers(ctx context.Context, a *app, direction, destination string, sources []string, fn transferFunc) error {
	reporter := newTransferReporter(direction, len(sources))
	var failed int

	for _, source := range sources {
		if ctx.Err() != nil {
			break
		}
		sink := reporter.Start(source)
		text, err := fn(ctx, sink, source)
		reporter.Finish(source, text, err)

		if recErr := a.state.RecordTransfer(state.Transfer{
			Direction:   direction,
			Source:      source,
			Destination: destination,
			OK:          err == nil,
			At:          time.Now(),
		}); recErr != nil {
			logger.Warn().Err(recErr).Msg("failed to record transfer")
		}
		if err != nil {
			failed++
		}
	}
	reporter.Wait()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s interrupted: %w", direction, err)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d transfers failed", failed, len(sources))
	}
	return nil
}

func newPullCmd() *cobra.Command {
	var destination string

	cmd := &cobra.Command{
		Use:   "pull <remote> [remote...]",
		Short: "Download remote files or directories",
		Long: `Download remote files or directories.

Files go to a per-device folder under ADBX_DOWNLOADS_DIR unless --dest is given.

Examples:
  adbx pull DCIM/Camera
  adbx pull IMG_0001.jpg IMG_0002.jpg --dest ./photos`,
		Args: cobra.MinimumNArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			device, err := a.requireDevice()
			if err != nil {
				return err
			}

			sources := lo.Map(args, func(p string, _ int) string {
				return adb.ResolvePath(a.state.Directory(), p)
			})

			if destination == "" {
				return runTransfers(ctx, a, directionPull, a.files.DeviceDownloadsDir(*device), sources, a.files.Download)
			}

			dest, err := filepath.Abs(destination)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(dest, 0755); err != nil {
				return fmt.Errorf("failed to create destination directory: %w", err)
			}
			return runTransfers(ctx, a, directionPull, dest, sources,
				func(ctx context.Context, sink transfer.ProgressSink, source string) (string, error) {
					return a.files.DownloadTo(ctx, sink, source, dest)
				})
		}),
	}

	cmd.Flags().StringVarP(&destination, "dest", "d", "", "Local destination directory")
	return cmd
}

func newPushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "push <local> [local...]",
		Short: "Upload local files or directories into the current directory",
		Args:  cobra.MinimumNArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			if _, err := a.requireDevice(); err != nil {
				return err
			}

			sources := make([]string, 0, len(args))
			for _, p := range args {
				abs, err := filepath.Abs(p)
				if err != nil {
					return err
				}
				if _, err := os.Stat(abs); err != nil {
					return err
				}
				sources = append(sources, abs)
			}
			return runTransfers(ctx, a, directionPush, a.state.Directory(), sources, a.files.Upload)
		}),
	}
}

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent pulls and pushes",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			transfers := a.state.Transfers()
			if limit > 0 && len(transfers) > limit {
				transfers = transfers[len(transfers)-limit:]
			}

			if jsonOutput {
				NewJSONReporter(os.Stdout).Emit("history", transfers)
				return nil
			}
			if len(transfers) == 0 {
				fmt.Println("No transfers yet")
				return nil
			}

			table := newTable(os.Stdout, []string{"When", "Direction", "Source", "Destination", "Status"})
			table.AppendBulk(lo.Map(transfers, func(t state.Transfer, _ int) []string {
				status := "ok"
				if !t.OK {
					status = "failed"
				}
				return []string{t.At.Format("2006-01-02 15:04"), t.Direction, t.Source, t.Destination, status}
			}))
			table.Render()
			return nil
		}),
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries to show (0 for all)")
	return cmd
}
