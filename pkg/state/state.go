// Package state persists the CLI session between invocations in an
// append-only markdown file. The latest entry of each kind wins on load.
package state

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"ADBExplorer/internal/core"
)

// compactThreshold is the number of lines after which the file is rewritten on load
const compactThreshold = 500

// Transfer is one recorded pull or push
type Transfer struct {
	Direction   string
	Source      string
	Destination string
	OK          bool
	At          time.Time
}

// StateManager manages the markdown state file with thread-safe operations.
// It implements core.Session.
type StateManager struct {
	mu         sync.Mutex
	stateFile  string
	device     *core.Device
	directory  string
	transfers  []Transfer
	lineCount  int
	fileHandle *os.File
	writer     *bufio.Writer
}

var (
	// - [device] <serial> | Name: <name>; an empty serial clears the selection
	devicePattern = regexp.MustCompile(`^\s*-\s+\[device\]\s*(\S*)(?:\s*\|\s*Name:\s*(.*?))?\s*$`)
	// - [dir] <path>
	dirPattern = regexp.MustCompile(`^\s*-\s+\[dir\]\s+(.+?)\s*$`)
	// - [pull] <source> | Destination: <dest> | Status: <ok|failed> | At: <timestamp>
	transferPattern = regexp.MustCompile(`^\s*-\s+\[(pull|push)\]\s+(.+?)\s*\|\s*Destination:\s*(.+?)\s*\|\s*Status:\s*(\S+)(?:\s*\|\s*At:\s*(.+?))?\s*$`)
)

const timestampLayout = "2006-01-02 15:04:05"

// NewStateManager creates a new StateManager and loads existing state.
// defaultDir is used until a directory has been recorded.
func NewStateManager(stateFile, defaultDir string) (*StateManager, error) {
	sm := &StateManager{
		stateFile: stateFile,
		directory: defaultDir,
	}

	if err := sm.loadState(); err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(stateFile), 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	flags := os.O_APPEND | os.O_CREATE | os.O_WRONLY
	if sm.lineCount > compactThreshold {
		flags = os.O_TRUNC | os.O_CREATE | os.O_WRONLY
	}

	var err error
	sm.fileHandle, err = os.OpenFile(stateFile, flags, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open state file: %w", err)
	}
	sm.writer = bufio.NewWriter(sm.fileHandle)

	if flags&os.O_TRUNC != 0 {
		if err := sm.writeSnapshot(); err != nil {
			sm.fileHandle.Close()
			return nil, err
		}
	}
	return sm, nil
}

// loadState parses the markdown file
func (sm *StateManager) loadState() error {
	file, err := os.Open(sm.stateFile)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		sm.lineCount++
		line := strings.TrimSpace(scanner.Text())

		if matches := devicePattern.FindStringSubmatch(line); matches != nil {
			if matches[1] == "" {
				sm.device = nil
				continue
			}
			sm.device = &core.Device{ID: matches[1], State: core.DeviceStateDevice, Name: matches[2]}
			continue
		}

		if matches := dirPattern.FindStringSubmatch(line); matches != nil {
			sm.directory = matches[1]
			continue
		}

		if matches := transferPattern.FindStringSubmatch(line); matches != nil {
			t := Transfer{
				Direction:   matches[1],
				Source:      matches[2],
				Destination: matches[3],
				OK:          matches[4] == "ok",
			}
			if matches[5] != "" {
				t.At, _ = time.ParseInLocation(timestampLayout, matches[5], time.Local)
			}
			sm.transfers = append(sm.transfers, t)
		}
	}
	return scanner.Err()
}

// writeSnapshot rewrites the current state as a fresh log
func (sm *StateManager) writeSnapshot() error {
	fmt.Fprintf(sm.writer, "# ADB Explorer session\n\n")
	if sm.device != nil {
		fmt.Fprintf(sm.writer, "- [device] %s | Name: %s\n", sm.device.ID, sm.device.Name)
	}
	if sm.directory != "" {
		fmt.Fprintf(sm.writer, "- [dir] %s\n", sm.directory)
	}
	for _, t := range sm.transfers {
		sm.writeTransfer(t)
	}
	if err := sm.writer.Flush(); err != nil {
		return fmt.Errorf("failed to compact state file: %w", err)
	}
	return nil
}

func (sm *StateManager) writeTransfer(t Transfer) {
	status := "ok"
	if !t.OK {
		status = "failed"
	}
	fmt.Fprintf(sm.writer, "- [%s] %s | Destination: %s | Status: %s | At: %s\n",
		t.Direction, t.Source, t.Destination, status, t.At.Format(timestampLayout))
}

func (sm *StateManager) appendLine(line string) error {
	if _, err := sm.writer.WriteString(line); err != nil {
		return fmt.Errorf("failed to write to state file: %w", err)
	}
	return sm.writer.Flush()
}

// Device returns the selected device, or nil
func (sm *StateManager) Device() *core.Device {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.device == nil {
		return nil
	}
	d := *sm.device
	return &d
}

// Directory returns the current remote directory
func (sm *StateManager) Directory() string {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.directory
}

// SetDevice records the selected device. nil clears the selection.
func (sm *StateManager) SetDevice(d *core.Device) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if d == nil {
		sm.device = nil
		return sm.appendLine("- [device] \n")
	}
	dev := *d
	sm.device = &dev
	return sm.appendLine(fmt.Sprintf("- [device] %s | Name: %s\n", dev.ID, dev.Name))
}

// SetDirectory records the current directory; a trailing "/" is added if missing
func (sm *StateManager) SetDirectory(dir string) error {
	if !strings.HasSuffix(dir, "/") {
		dir += "/"
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.directory = dir
	return sm.appendLine(fmt.Sprintf("- [dir] %s\n", dir))
}

// RecordTransfer appends a finished pull or push to the history
func (sm *StateManager) RecordTransfer(t Transfer) error {
	if t.At.IsZero() {
		t.At = time.Now()
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.transfers = append(sm.transfers, t)
	sm.writeTransfer(t)
	if err := sm.writer.Flush(); err != nil {
		return fmt.Errorf("failed to write transfer to state file: %w", err)
	}
	return nil
}

// Transfers returns a copy of the transfer history, oldest first
func (sm *StateManager) Transfers() []Transfer {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	result := make([]Transfer, len(sm.transfers))
	copy(result, sm.transfers)
	return result
}

// Close closes the state file
func (sm *StateManager) Close() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if err := sm.writer.Flush(); err != nil {
		return err
	}
	return sm.fileHandle.Close()
}
