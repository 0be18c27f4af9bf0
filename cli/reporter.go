package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"golang.org/x/term"

	"ADBExplorer/pkg/transfer"
)

const labelWidth = 48

// TransferReporter shows the progress of one or more sequential transfers
type TransferReporter interface {
	// Start returns the sink for the transfer of source
	Start(source string) transfer.ProgressSink
	// Finish reports the outcome; text holds the diagnostics adb printed
	Finish(source, text string, err error)
	// Wait flushes any rendering before the command exits
	Wait()
}

// newTransferReporter picks the reporter for the output mode and terminal
func newTransferReporter(direction string, count int) TransferReporter {
	switch {
	case jsonOutput:
		return &jsonTransferReporter{r: NewJSONReporter(os.Stdout), direction: direction}
	case !isTerminal(os.Stderr):
		return &TextReporter{out: os.Stderr}
	case count > 1:
		return NewMultiReporter(os.Stderr, count)
	default:
		return &BarReporter{out: os.Stderr}
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// shorten keeps the tail of s, which is where file names are
func shorten(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return "..." + string(r[len(r)-width+3:])
}

// BarSink renders a single transfer as a progressbar
type BarSink struct {
	bar *progressbar.ProgressBar
}

// NewBarSink creates a 0-100 bar labelled with the transfer source
func NewBarSink(out io.Writer, label string) *BarSink {
	return &BarSink{
		bar: progressbar.NewOptions(100,
			progressbar.OptionSetDescription(shorten(label, labelWidth)),
			progressbar.OptionSetWriter(out),
			progressbar.OptionSetWidth(30),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprint(out, "\n")
			}),
			progressbar.OptionSetRenderBlankState(true),
		),
	}
}

// Progress moves the bar; the message is the file adb is currently copying
func (s *BarSink) Progress(message string, percent int) {
	s.bar.Describe(shorten(message, labelWidth))
	_ = s.bar.Set(percent)
}

// Close completes the bar on success and leaves it where it stopped otherwise
func (s *BarSink) Close(ok bool) {
	if ok {
		_ = s.bar.Finish()
		return
	}
	_ = s.bar.Exit()
}

// BarReporter shows one progressbar per transfer, one after the other
type BarReporter struct {
	out  io.Writer
	sink *BarSink
}

func (r *BarReporter) Start(source string) transfer.ProgressSink {
	r.sink = NewBarSink(r.out, source)
	return r.sink
}

func (r *BarReporter) Finish(source, text string, err error) {
	if r.sink != nil {
		r.sink.Close(err == nil)
		r.sink = nil
	}
	reportOutcome(r.out, source, text, err)
}

func (r *BarReporter) Wait() {}

// MultiReporter stacks one mpb bar per source
type MultiReporter struct {
	progress *mpb.Progress
	total    int
	index    int
	bars     map[string]*mpb.Bar
	mu       sync.Mutex
}

// NewMultiReporter creates a bar container for count transfers
func NewMultiReporter(out io.Writer, count int) *MultiReporter {
	return &MultiReporter{
		progress: mpb.New(
			mpb.WithOutput(out),
			mpb.WithRefreshRate(150*time.Millisecond),
			mpb.WithWidth(60),
		),
		total: count,
		bars:  make(map[string]*mpb.Bar),
	}
}

func (r *MultiReporter) Start(source string) transfer.ProgressSink {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.index++
	label := fmt.Sprintf("[%d/%d] %s", r.index, r.total, shorten(source, labelWidth))
	bar := r.progress.AddBar(100,
		mpb.PrependDecorators(
			decor.Name(label, decor.WCSyncSpaceR),
		),
		mpb.AppendDecorators(
			decor.Percentage(decor.WCSyncSpace),
			decor.Name("  "),
			decor.Elapsed(decor.ET_STYLE_GO),
		),
	)
	r.bars[source] = bar

	return transfer.SinkFunc(func(_ string, percent int) {
		bar.SetCurrent(int64(percent))
	})
}

func (r *MultiReporter) Finish(source, text string, err error) {
	r.mu.Lock()
	bar := r.bars[source]
	r.mu.Unlock()

	if bar == nil {
		return
	}
	// adb does not always report 100%
	if err == nil {
		bar.SetCurrent(100)
	} else {
		bar.Abort(false)
	}
}

func (r *MultiReporter) Wait() {
	r.progress.Wait()
}

// TextReporter prints a line each time the percentage changes, for logs and pipes
type TextReporter struct {
	out  io.Writer
	last int
}

func (r *TextReporter) Start(source string) transfer.ProgressSink {
	r.last = -1
	fmt.Fprintf(r.out, "Transferring %s\n", source)
	return transfer.SinkFunc(func(message string, percent int) {
		if percent == r.last {
			return
		}
		r.last = percent
		fmt.Fprintf(r.out, "[%3d%%] %s\n", percent, message)
	})
}

func (r *TextReporter) Finish(source, text string, err error) {
	reportOutcome(r.out, source, text, err)
}

func (r *TextReporter) Wait() {}

func reportOutcome(out io.Writer, source, text string, err error) {
	if err != nil {
		fmt.Fprintf(out, "Failed: %s: %v\n", source, err)
		return
	}
	if text != "" {
		fmt.Fprintln(out, text)
	}
}

// JSONEvent is the structured event format for machine-readable output
type JSONEvent struct {
	Type      string      `json:"type"`
	Timestamp string      `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// JSONProgressData contains transfer progress in structured form
type JSONProgressData struct {
	Direction string `json:"direction"`
	Source    string `json:"source"`
	Message   string `json:"message"`
	Percent   int    `json:"percent"`
}

// JSONTransferData is the outcome of one transfer
type JSONTransferData struct {
	Direction string `json:"direction"`
	Source    string `json:"source"`
	Success   bool   `json:"success"`
	Output    string `json:"output,omitempty"`
	Error     string `json:"error,omitempty"`
}

// JSONLogData contains log information in structured form
type JSONLogData struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// JSONErrorData contains error information in structured form
type JSONErrorData struct {
	Message string `json:"message"`
}

// JSONReporter outputs machine-readable JSON lines for scripting/automation
type JSONReporter struct {
	encoder *json.Encoder
	mu      sync.Mutex
}

func NewJSONReporter(out io.Writer) *JSONReporter {
	return &JSONReporter{
		encoder: json.NewEncoder(out),
	}
}

func (r *JSONReporter) emit(eventType string, data interface{}) {
	event := JSONEvent{
		Type:      eventType,
		Timestamp: time.Now().Format(time.RFC3339Nano),
		Data:      data,
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.encoder.Encode(event)
}

// Emit writes an arbitrary result event
func (r *JSONReporter) Emit(eventType string, data interface{}) {
	r.emit(eventType, data)
}

func (r *JSONReporter) ReportError(err error) {
	r.emit("error", JSONErrorData{Message: err.Error()})
}

func (r *JSONReporter) ReportLog(level, message string) {
	r.emit("log", JSONLogData{Level: level, Message: message})
}

type jsonTransferReporter struct {
	r         *JSONReporter
	direction string
}

func (j *jsonTransferReporter) Start(source string) transfer.ProgressSink {
	j.r.emit("transfer_start", JSONProgressData{Direction: j.direction, Source: source})
	return transfer.SinkFunc(func(message string, percent int) {
		j.r.emit("progress", JSONProgressData{
			Direction: j.direction,
			Source:    source,
			Message:   message,
			Percent:   percent,
		})
	})
}

func (j *jsonTransferReporter) Finish(source, text string, err error) {
	data := JSONTransferData{Direction: j.direction, Source: source, Success: err == nil, Output: text}
	if err != nil {
		data.Error = err.Error()
	}
	j.r.emit("transfer_complete", data)
}

func (j *jsonTransferReporter) Wait() {}
