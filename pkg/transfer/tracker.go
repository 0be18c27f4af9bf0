// Package transfer tracks the progress of adb push/pull from their output lines.
package transfer

import (
	"strconv"
	"strings"
)

// progress lines look like "[ 42%] /sdcard/DCIM/IMG_0001.jpg"
const (
	percentStart = 1
	percentEnd   = 4
	headerWidth  = 7
)

// ProgressSink receives progress events during a transfer.
// There is no guarantee of a final 100% event.
type ProgressSink interface {
	Progress(message string, percent int)
}

// SinkFunc adapts a function to ProgressSink
type SinkFunc func(message string, percent int)

func (f SinkFunc) Progress(message string, percent int) {
	f(message, percent)
}

// Tracker splits transfer output into progress events and diagnostic messages
type Tracker struct {
	sink     ProgressSink
	messages []string
}

// NewTracker creates a tracker reporting to sink (may be nil)
func NewTracker(sink ProgressSink) *Tracker {
	return &Tracker{sink: sink}
}

// Consume handles one output line
func (t *Tracker) Consume(line string) {
	if percent, message, ok := ParseProgressLine(line); ok {
		if t.sink != nil {
			t.sink.Progress(message, percent)
		}
		return
	}
	if line != "" {
		t.messages = append(t.messages, line)
	}
}

// Messages returns the diagnostic lines in the order they were seen
func (t *Tracker) Messages() []string {
	out := make([]string, len(t.messages))
	copy(out, t.messages)
	return out
}

// Text joins the diagnostic lines with newlines
func (t *Tracker) Text() string {
	return strings.Join(t.messages, "\n")
}

// ParseProgressLine recognises a progress line.
// The percentage lives in line[1:4]; the message starts after the 7 character header.
func ParseProgressLine(line string) (percent int, message string, ok bool) {
	if !strings.HasPrefix(line, "[") || len(line) < percentEnd {
		return 0, "", false
	}
	field := strings.TrimSpace(line[percentStart:percentEnd])
	if field == "" || !isDigits(field) {
		return 0, "", false
	}
	percent, err := strconv.Atoi(field)
	if err != nil || percent > 100 {
		return 0, "", false
	}
	if len(line) > headerWidth {
		message = line[headerWidth:]
	}
	return percent, message, true
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
