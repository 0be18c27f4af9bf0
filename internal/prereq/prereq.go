// Package prereq checks that the adb toolchain is usable on this machine.
package prereq

import (
	"context"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"ADBExplorer/pkg/adb"
)

// Check statuses
const (
	StatusOK   = "ok"
	StatusWarn = "warn"
	StatusFail = "fail"
)

const platformToolsURL = "https://developer.android.com/tools/releases/platform-tools"

// Check represents a single prerequisite check
type Check struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Status           string   `json:"status"`
	Details          string   `json:"details"`
	RemediationSteps []string `json:"remediationSteps,omitempty"`
	Links            []string `json:"links,omitempty"`
}

// Report contains all prerequisite checks
type Report struct {
	OverallStatus string    `json:"overallStatus"`
	OS            string    `json:"os"`
	Checks        []Check   `json:"checks"`
	Timestamp     time.Time `json:"timestamp"`
}

// Locate resolves the adb binary; it is the cheap part of CheckADB
func Locate(binary string) (string, error) {
	return exec.LookPath(binary)
}

// Run builds the full report. runner is used to execute `adb version`.
func Run(ctx context.Context, binary string, runner adb.Runner) Report {
	report := Report{
		OS:        runtime.GOOS,
		Checks:    []Check{CheckADB(ctx, binary, runner)},
		Timestamp: time.Now(),
	}
	report.OverallStatus = overall(report.Checks)
	return report
}

func overall(checks []Check) string {
	status := StatusOK
	for _, c := range checks {
		switch c.Status {
		case StatusFail:
			return StatusFail
		case StatusWarn:
			status = StatusWarn
		}
	}
	return status
}

// CheckADB verifies adb is on PATH and runs
func CheckADB(ctx context.Context, binary string, runner adb.Runner) Check {
	check := Check{
		ID:     "adb",
		Name:   "Android Debug Bridge (ADB)",
		Status: StatusFail,
	}

	path, err := Locate(binary)
	if err != nil {
		check.Details = binary + " not found in PATH."
		check.RemediationSteps = installSteps(runtime.GOOS)
		check.Links = []string{platformToolsURL}
		return check
	}

	res, err := adb.NewClient(runner).Version(ctx)
	if err != nil || !res.Successful() {
		check.Status = StatusWarn
		check.Details = "ADB found at " + path + " but failed to execute"
		if err != nil {
			check.Details += ": " + err.Error()
		}
		check.RemediationSteps = []string{"Reinstall ADB or check installation."}
		return check
	}

	check.Status = StatusOK
	check.Details = "ADB found at: " + path + "\nVersion: " + firstLine(res.Stdout)
	return check
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(line)
}

func installSteps(goos string) []string {
	switch goos {
	case "linux":
		return []string{
			"Install ADB using your package manager:",
			"  Ubuntu/Debian: sudo apt install adb",
			"  Fedora: sudo dnf install android-tools",
			"  Arch: sudo pacman -S android-tools",
		}
	case "windows":
		return []string{
			"Download Platform Tools from Android Developer website:",
			"  1. Visit: " + platformToolsURL,
			"  2. Download Windows zip file",
			"  3. Extract to a folder (e.g., C:\\adb)",
			"  4. Add folder to PATH environment variable",
		}
	case "darwin":
		return []string{
			"Install via Homebrew: brew install --cask android-platform-tools",
			"Or download from: " + platformToolsURL,
		}
	}
	return []string{"Download Platform Tools from: " + platformToolsURL}
}
