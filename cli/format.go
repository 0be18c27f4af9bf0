package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/gookit/color"

	"ADBExplorer/internal/core"
)

// formatSize returns the listing size, optionally as IEC units.
// Sizes that are not plain numbers (device nodes) are kept as listed.
func formatSize(f core.File, human bool) string {
	if f.IsDir() || !human {
		return f.Size
	}
	n, err := strconv.ParseUint(f.Size, 10, 64)
	if err != nil {
		return f.Size
	}
	return humanize.IBytes(n)
}

// displayName colours directories and links and appends the link target
func displayName(f core.File, colour bool) string {
	name := f.Name
	if colour {
		switch {
		case f.IsDir():
			name = color.Blue.Render(name)
		case f.Type == core.FileTypeLink:
			name = color.Cyan.Render(name)
		}
	}
	if f.Type == core.FileTypeLink && f.Link != "" {
		name += " -> " + f.Link
	}
	return name
}

// typeLabel describes the entry type, including what a link points at
func typeLabel(f core.File) string {
	switch f.Type {
	case core.FileTypeDirectory:
		return "Directory"
	case core.FileTypeLink:
		switch f.LinkType {
		case core.FileTypeDirectory:
			return "Link to directory"
		case core.FileTypeFile:
			return "Link to file"
		}
		return "Link"
	case core.FileTypeFile:
		return "File"
	}
	return "Unknown"
}

// isBrowsable reports whether cd can enter the entry
func isBrowsable(f core.File) bool {
	return f.IsDir() || (f.Type == core.FileTypeLink && f.LinkType == core.FileTypeDirectory)
}

// renderProperties prints the properties view of a single entry
func renderProperties(out io.Writer, f core.File, human bool) {
	rows := [][2]string{
		{"Name", f.Name},
		{"Path", f.Path},
		{"Type", typeLabel(f)},
		{"Size", formatSize(f, human)},
		{"Permissions", f.Permissions},
		{"Owner", f.Owner},
		{"Group", f.Group},
		{"Modified", f.Date()},
	}
	if f.Type == core.FileTypeLink {
		rows = append(rows, [2]string{"Target", f.Link})
	}
	for _, row := range rows {
		fmt.Fprintf(out, "%-12s %s\n", row[0]+":", row[1])
	}
}
