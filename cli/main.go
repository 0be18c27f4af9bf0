package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"ADBExplorer/internal/config"
	"ADBExplorer/internal/logging"
	"ADBExplorer/internal/prereq"
)

var (
	jsonOutput bool
	logLevel   string

	cfg    *config.Config
	logger zerolog.Logger
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if jsonOutput {
			NewJSONReporter(os.Stderr).ReportError(err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// newRootCmd creates the adbx command tree
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "adbx",
		Short: "Browse and transfer files on Android devices over adb",
		Long: `adbx - a file explorer for Android devices.

The selected device and current directory are remembered between runs.

Examples:
  adbx devices
  adbx use emulator-5554
  adbx cd DCIM/Camera
  adbx ls --human
  adbx pull IMG_0001.jpg IMG_0002.jpg
  adbx serve`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			logger = logging.NewCLI(cfg.LogLevel)

			// doctor explains a missing adb itself
			if cmd.Name() == "doctor" {
				return nil
			}
			if _, err := prereq.Locate(cfg.ADBPath); err != nil {
				return fmt.Errorf("adb is not installed or not on PATH (%s), run 'adbx doctor': %w", cfg.ADBPath, err)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output machine-readable JSON (one event per line)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (overrides ADBX_LOG_LEVEL)")

	rootCmd.AddCommand(
		newDevicesCmd(),
		newConnectCmd(),
		newDisconnectCmd(),
		newUseCmd(),
		newCdCmd(),
		newPwdCmd(),
		newLsCmd(),
		newStatCmd(),
		newCatCmd(),
		newMvCmd(),
		newRmCmd(),
		newMkdirCmd(),
		newPullCmd(),
		newPushCmd(),
		newHistoryCmd(),
		newServeCmd(),
		newDoctorCmd(),
	)
	return rootCmd
}
