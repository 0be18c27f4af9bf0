//go:generate go run go.uber.org/mock/mockgen -source=session.go -destination=../../mocks/mock_session.go -package=mocks
package core

import (
	"strings"
	"sync"
)

// DefaultDirectory is where a fresh session starts
const DefaultDirectory = "/sdcard/"

// Session exposes the currently selected device and remote directory.
// The repositories only read it; selection is owned by the caller.
type Session interface {
	// Device returns the selected device, or nil when none is selected
	Device() *Device
	// Directory returns the current remote directory, ending in "/"
	Directory() string
}

// MemorySession is an in-process Session guarded by a mutex
type MemorySession struct {
	mu        sync.RWMutex
	device    *Device
	directory string
}

// NewMemorySession creates a session rooted at dir
func NewMemorySession(dir string) *MemorySession {
	s := &MemorySession{}
	s.SetDirectory(dir)
	return s
}

func (s *MemorySession) Device() *Device {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.device == nil {
		return nil
	}
	d := *s.device
	return &d
}

func (s *MemorySession) Directory() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.directory
}

// SetDevice selects a device. nil clears the selection.
func (s *MemorySession) SetDevice(d *Device) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d == nil {
		s.device = nil
		return
	}
	dev := *d
	s.device = &dev
}

// SetDirectory changes the current directory; a trailing "/" is added if missing
func (s *MemorySession) SetDirectory(dir string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if dir != "" && !strings.HasSuffix(dir, "/") {
		dir += "/"
	}
	s.directory = dir
}
