package main

import (
	"fmt"
	"os"

	"github.com/gookit/color"
	"github.com/spf13/cobra"

	"ADBExplorer/internal/prereq"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that adb is installed and working",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report := prereq.Run(cmd.Context(), cfg.ADBPath, newRunner())

			if jsonOutput {
				NewJSONReporter(os.Stdout).Emit("prereq", report)
			} else {
				for _, check := range report.Checks {
					fmt.Printf("%s %s\n", statusBadge(check.Status), check.Name)
					fmt.Printf("    %s\n", check.Details)
					for _, step := range check.RemediationSteps {
						fmt.Printf("    %s\n", step)
					}
				}
			}

			if report.OverallStatus == prereq.StatusFail {
				return fmt.Errorf("prerequisites missing")
			}
			return nil
		},
	}
}

func statusBadge(status string) string {
	switch status {
	case prereq.StatusOK:
		return color.Green.Render("[ ok ]")
	case prereq.StatusWarn:
		return color.Yellow.Render("[warn]")
	}
	return color.Red.Render("[fail]")
}
