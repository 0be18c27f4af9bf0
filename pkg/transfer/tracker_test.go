package transfer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseProgressLine(t *testing.T) {
	tests := []struct {
		line        string
		wantOK      bool
		wantPercent int
		wantMessage string
	}{
		{line: "[ 42%] /sdcard/DCIM/IMG_0001.jpg", wantOK: true, wantPercent: 42, wantMessage: "/sdcard/DCIM/IMG_0001.jpg"},
		{line: "[100%] /sdcard/a", wantOK: true, wantPercent: 100, wantMessage: "/sdcard/a"},
		{line: "[  0%] x", wantOK: true, wantPercent: 0, wantMessage: "x"},
		{line: "[ 10%]", wantOK: true, wantPercent: 10, wantMessage: ""},
		// the message always starts at a fixed offset, even without a "%"
		{line: "[ 42] remaining text", wantOK: true, wantPercent: 42, wantMessage: "emaining text"},
		{line: "[999%] overflow", wantOK: false},
		{line: "[abc] not progress", wantOK: false},
		{line: "[   ] blank", wantOK: false},
		{line: "[1", wantOK: false},
		{line: "/sdcard/a: 1 file pulled, 0 skipped. 3.1 MB/s", wantOK: false},
		{line: "adb: error: failed to stat remote object", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			percent, message, ok := ParseProgressLine(tt.line)
			require.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				require.Equal(t, tt.wantPercent, percent)
				require.Equal(t, tt.wantMessage, message)
			}
		})
	}
}

func TestTracker(t *testing.T) {
	req := require.New(t)

	type event struct {
		message string
		percent int
	}
	var events []event
	tracker := NewTracker(SinkFunc(func(message string, percent int) {
		events = append(events, event{message, percent})
	}))

	for _, line := range []string{
		"[  5%] /sdcard/a.jpg",
		"[ 60%] /sdcard/a.jpg",
		"adb: warning: skipping special file '/sdcard/fifo'",
		"",
		"/sdcard/: 1 file pulled, 1 skipped.",
	} {
		tracker.Consume(line)
	}

	req.Equal([]event{{"/sdcard/a.jpg", 5}, {"/sdcard/a.jpg", 60}}, events)
	req.Equal([]string{
		"adb: warning: skipping special file '/sdcard/fifo'",
		"/sdcard/: 1 file pulled, 1 skipped.",
	}, tracker.Messages())
	req.Equal("adb: warning: skipping special file '/sdcard/fifo'\n/sdcard/: 1 file pulled, 1 skipped.", tracker.Text())
}

func TestTracker_NilSink(t *testing.T) {
	tracker := NewTracker(nil)
	tracker.Consume("[ 50%] /sdcard/a")
	require.Empty(t, tracker.Messages())
	require.Equal(t, "", tracker.Text())
}
