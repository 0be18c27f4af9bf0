// Package core provides the core types for ADBExplorer: remote files, devices,
// the active session and the error taxonomy shared by every adapter.
// This package must NOT import any adapter-specific code (Cobra, Gin, exec).
// It should be fully testable without a device attached.
package core

import (
	"fmt"
	"strings"
	"time"
)

// FileType classifies a remote filesystem entry
type FileType string

const (
	FileTypeFile      FileType = "file"
	FileTypeDirectory FileType = "directory"
	FileTypeLink      FileType = "link"
	FileTypeUnknown   FileType = "unknown"
)

// ListingDateLayout is the date/time layout used by `ls -l` on Android.
// Some toybox builds add seconds.
const (
	ListingDateLayout        = "2006-01-02 15:04"
	listingDateSecondsLayout = "2006-01-02 15:04:05"
)

// File is one remote filesystem entry as reported by a listing.
// A File is created fresh on every listing/stat call and never mutated afterwards.
type File struct {
	Path        string   `json:"path"`
	Name        string   `json:"name"`
	Type        FileType `json:"type"`
	LinkType    FileType `json:"linkType,omitempty"` // only set when Type == FileTypeLink
	Link        string   `json:"link,omitempty"`     // raw symlink target
	Permissions string   `json:"permissions"`
	Owner       string   `json:"owner"`
	Group       string   `json:"group"`
	Size        string   `json:"size"`
	DateRaw     string   `json:"dateRaw"`
}

// IsDir reports whether the entry is a directory
func (f File) IsDir() bool {
	return f.Type == FileTypeDirectory
}

// Location returns the parent directory of the file, always ending in "/"
func (f File) Location() string {
	return Location(f.Path)
}

// ModTime parses DateRaw. The zero time is returned when it cannot be parsed.
func (f File) ModTime() time.Time {
	for _, layout := range []string{ListingDateLayout, listingDateSecondsLayout} {
		if t, err := time.ParseInLocation(layout, f.DateRaw, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Date returns a display form of the modification date.
// Entries from the current year omit the year.
func (f File) Date() string {
	t := f.ModTime()
	if t.IsZero() {
		return f.DateRaw
	}
	if t.Year() == time.Now().Year() {
		return t.Format("02 Jan 15:04")
	}
	return t.Format("02 Jan 2006")
}

// String returns the type-qualified path, e.g. "Directory '/sdcard/DCIM'"
func (f File) String() string {
	kind := "File"
	switch f.Type {
	case FileTypeDirectory:
		kind = "Directory"
	case FileTypeLink:
		kind = "Link"
	}
	return fmt.Sprintf("%s '%s'", kind, f.Path)
}

// Location returns the parent directory of a remote path, always ending in "/"
func Location(path string) string {
	trimmed := strings.TrimRight(path, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 {
		return ""
	}
	return trimmed[:idx+1]
}
