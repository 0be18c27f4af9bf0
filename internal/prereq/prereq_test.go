package prereq

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"ADBExplorer/mocks"
	"ADBExplorer/pkg/adb"
)

// "sh" stands in for adb so LookPath succeeds on any test machine
const presentBinary = "sh"

func TestCheckADB_OK(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	runner := mocks.NewMockRunner(ctrl)
	ctx := context.Background()

	runner.EXPECT().
		Run(ctx, "", []string{"version"}).
		Return(adb.Result{Stdout: "Android Debug Bridge version 1.0.41\nVersion 34.0.5-10900879\n"}, nil)

	check := CheckADB(ctx, presentBinary, runner)
	req.Equal(StatusOK, check.Status)
	req.Contains(check.Details, "Version: Android Debug Bridge version 1.0.41")
	req.Empty(check.RemediationSteps)
}

func TestCheckADB_NotRunnable(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	runner := mocks.NewMockRunner(ctrl)
	ctx := context.Background()

	runner.EXPECT().
		Run(ctx, "", []string{"version"}).
		Return(adb.Result{}, errors.New("exec format error"))

	check := CheckADB(ctx, presentBinary, runner)
	req.Equal(StatusWarn, check.Status)
	req.Contains(check.Details, "exec format error")
}

func TestCheckADB_Missing(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	runner := mocks.NewMockRunner(ctrl)

	runner.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	check := CheckADB(context.Background(), "adbx-no-such-binary", runner)
	req.Equal(StatusFail, check.Status)
	req.NotEmpty(check.RemediationSteps)
	req.Equal([]string{platformToolsURL}, check.Links)
}

func TestRun_Overall(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	runner := mocks.NewMockRunner(ctrl)

	report := Run(context.Background(), "adbx-no-such-binary", runner)
	req.Equal(StatusFail, report.OverallStatus)
	req.Len(report.Checks, 1)
	req.False(report.Timestamp.IsZero())
}

func TestOverall(t *testing.T) {
	req := require.New(t)

	req.Equal(StatusOK, overall(nil))
	req.Equal(StatusWarn, overall([]Check{{Status: StatusOK}, {Status: StatusWarn}}))
	req.Equal(StatusFail, overall([]Check{{Status: StatusWarn}, {Status: StatusFail}}))
}

func TestInstallSteps(t *testing.T) {
	req := require.New(t)

	for _, goos := range []string{"linux", "windows", "darwin", "plan9"} {
		req.NotEmpty(installSteps(goos), goos)
	}
	req.Contains(installSteps("darwin")[0], "brew")
}
