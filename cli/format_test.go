package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"ADBExplorer/internal/core"
)

func TestFormatSize(t *testing.T) {
	tests := []struct {
		name  string
		file  core.File
		human bool
		want  string
	}{
		{"raw", core.File{Type: core.FileTypeFile, Size: "1048576"}, false, "1048576"},
		{"human", core.File{Type: core.FileTypeFile, Size: "1048576"}, true, "1.0 MiB"},
		{"small", core.File{Type: core.FileTypeFile, Size: "42"}, true, "42 B"},
		{"directory keeps block size", core.File{Type: core.FileTypeDirectory, Size: "4096"}, true, "4096"},
		{"device node", core.File{Type: core.FileTypeUnknown, Size: "10, 1"}, true, "10, 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, formatSize(tt.file, tt.human))
		})
	}
}

func TestDisplayName(t *testing.T) {
	req := require.New(t)

	link := core.File{Name: "sdcard", Type: core.FileTypeLink, Link: "/storage/self/primary"}
	req.Equal("sdcard -> /storage/self/primary", displayName(link, false))
	req.Equal("notes.txt", displayName(core.File{Name: "notes.txt", Type: core.FileTypeFile}, true))
	req.Contains(displayName(core.File{Name: "DCIM", Type: core.FileTypeDirectory}, true), "DCIM")
}

func TestTypeLabel(t *testing.T) {
	req := require.New(t)

	req.Equal("Directory", typeLabel(core.File{Type: core.FileTypeDirectory}))
	req.Equal("File", typeLabel(core.File{Type: core.FileTypeFile}))
	req.Equal("Link to directory", typeLabel(core.File{Type: core.FileTypeLink, LinkType: core.FileTypeDirectory}))
	req.Equal("Link to file", typeLabel(core.File{Type: core.FileTypeLink, LinkType: core.FileTypeFile}))
	req.Equal("Link", typeLabel(core.File{Type: core.FileTypeLink, LinkType: core.FileTypeUnknown}))
	req.Equal("Unknown", typeLabel(core.File{Type: core.FileTypeUnknown}))
}

func TestIsBrowsable(t *testing.T) {
	req := require.New(t)

	req.True(isBrowsable(core.File{Type: core.FileTypeDirectory}))
	req.True(isBrowsable(core.File{Type: core.FileTypeLink, LinkType: core.FileTypeDirectory}))
	req.False(isBrowsable(core.File{Type: core.FileTypeLink, LinkType: core.FileTypeFile}))
	req.False(isBrowsable(core.File{Type: core.FileTypeFile}))
}

func TestRenderProperties(t *testing.T) {
	req := require.New(t)

	var buf bytes.Buffer
	renderProperties(&buf, core.File{
		Path:        "/sdcard",
		Name:        "sdcard",
		Type:        core.FileTypeLink,
		LinkType:    core.FileTypeDirectory,
		Link:        "/storage/self/primary",
		Permissions: "lrw-r--r--",
		Owner:       "root",
		Group:       "root",
		Size:        "21",
		DateRaw:     "2009-01-01 02:00",
	}, false)

	out := buf.String()
	req.Contains(out, "Link to directory")
	req.Contains(out, "Target:")
	req.Contains(out, "/storage/self/primary")
	req.Contains(out, "01 Jan 2009")
}

func TestRenderListing(t *testing.T) {
	req := require.New(t)

	var buf bytes.Buffer
	renderListing(&buf, []core.File{
		{Name: "DCIM", Type: core.FileTypeDirectory, Permissions: "drwxrwx--x", Owner: "root", Group: "sdcard_rw", Size: "4096", DateRaw: "2022-01-15 10:32"},
		{Name: "big.bin", Type: core.FileTypeFile, Permissions: "-rw-rw----", Owner: "root", Group: "sdcard_rw", Size: "2097152", DateRaw: "2022-01-15 10:33"},
	}, true, false)

	out := buf.String()
	req.Contains(out, "DCIM")
	req.Contains(out, "2.0 MiB")
	req.Contains(out, "sdcard_rw")
}

func TestRenderDevices(t *testing.T) {
	req := require.New(t)

	var buf bytes.Buffer
	renderDevices(&buf, nil, "")
	req.Equal("No devices attached\n", buf.String())

	buf.Reset()
	renderDevices(&buf, []core.Device{
		{ID: "emulator-5554", State: core.DeviceStateDevice, Name: "sdk gphone64"},
		{ID: "10.0.0.7:5555", State: core.DeviceStateOffline},
	}, "emulator-5554")

	out := buf.String()
	req.Contains(out, "*")
	req.Contains(out, "sdk gphone64")
	req.Contains(out, "offline")
}
