package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFromEnviron_Defaults(t *testing.T) {
	req := require.New(t)
	home := t.TempDir()
	t.Setenv("HOME", home)
	unsetAll(t)

	cfg, err := FromEnviron()
	req.NoError(err)
	req.Equal("adb", cfg.ADBPath)
	req.Equal("info", cfg.LogLevel)
	req.Equal(8765, cfg.APIPort)
	req.Equal(5*time.Minute, cfg.CommandTimeout)
	req.Equal(30*time.Minute, cfg.TransferTimeout)
	req.Equal(filepath.Join(home, "Downloads", "ADB Explorer"), cfg.DownloadsDir)
	req.Equal(filepath.Join(home, ".adbexplorer"), cfg.Home)
	req.Equal(filepath.Join(home, ".adbexplorer", "session.md"), cfg.StateFile())
}

func TestFromEnviron_Overrides(t *testing.T) {
	req := require.New(t)
	t.Setenv("ADBX_ADB_PATH", "/opt/platform-tools/adb")
	t.Setenv("ADBX_DOWNLOADS_DIR", "/tmp/pulls")
	t.Setenv("ADBX_HOME", "/tmp/adbx")
	t.Setenv("ADBX_LOG_LEVEL", "DEBUG")
	t.Setenv("ADBX_API_PORT", "9000")
	t.Setenv("ADBX_COMMAND_TIMEOUT", "10s")
	t.Setenv("ADBX_TRANSFER_TIMEOUT", "1h")

	cfg, err := FromEnviron()
	req.NoError(err)
	req.Equal("/opt/platform-tools/adb", cfg.ADBPath)
	req.Equal("/tmp/pulls", cfg.DownloadsDir)
	req.Equal("/tmp/adbx", cfg.Home)
	req.Equal("debug", cfg.LogLevel)
	req.Equal(9000, cfg.APIPort)
	req.Equal(10*time.Second, cfg.CommandTimeout)
	req.Equal(time.Hour, cfg.TransferTimeout)
}

// unsetAll clears every ADBX_ variable for the duration of the test
func unsetAll(t *testing.T) {
	t.Helper()
	for _, key := range []string{"ADBX_ADB_PATH", "ADBX_DOWNLOADS_DIR", "ADBX_HOME", "ADBX_LOG_LEVEL", "ADBX_API_PORT", "ADBX_COMMAND_TIMEOUT", "ADBX_TRANSFER_TIMEOUT"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestFromEnviron_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "unknown log level", key: "ADBX_LOG_LEVEL", value: "chatty"},
		{name: "port out of range", key: "ADBX_API_PORT", value: "70000"},
		{name: "port not a number", key: "ADBX_API_PORT", value: "http"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unsetAll(t)
			t.Setenv("ADBX_HOME", t.TempDir())
			t.Setenv("ADBX_DOWNLOADS_DIR", t.TempDir())
			t.Setenv(tt.key, tt.value)

			_, err := FromEnviron()
			require.Error(t, err)
		})
	}
}
