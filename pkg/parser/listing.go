// Package parser converts the text output of adb commands into core types.
// Every function here is pure: no process is spawned and nothing is cached.
package parser

import (
	"path"
	"regexp"
	"strings"

	"github.com/samber/lo"

	"ADBExplorer/internal/core"
	"ADBExplorer/pkg/adb"
)

// entryPattern matches one `ls -l` line from toybox or the older toolbox:
//
//	drwxrwx--x 4 root sdcard_rw 4096 2022-01-15 10:32 DCIM
//	drwxrwx--- root sdcard_r 2014-01-01 12:00 DCIM
//	crw-rw-rw- 1 root root 1, 3 2022-01-01 00:00 null
var entryPattern = regexp.MustCompile(
	`^([-bcdlps][-rwxsStT]{9}[.+@]?)\s+` +
		`(?:\d+\s+)?` +
		`(\S+)\s+(\S+)\s+` +
		`(?:(\d+(?:,\s*\d+)?)\s+)?` +
		`(\d{4}-\d{2}-\d{2})\s+(\d{2}:\d{2}(?::\d{2})?)\s+` +
		`(.+)$`)

const linkArrow = " -> "

// ParseEntry parses a single `ls -l` line.
// ok is false when the line does not have the expected column layout.
func ParseEntry(line string) (file *core.File, ok bool) {
	m := entryPattern.FindStringSubmatch(strings.TrimRight(line, "\r\n"))
	if m == nil {
		return nil, false
	}

	f := &core.File{
		Type:        typeOf(m[1]),
		Permissions: m[1],
		Owner:       m[2],
		Group:       m[3],
		Size:        m[4],
		DateRaw:     m[5] + " " + m[6],
	}

	name := m[7]
	if f.Type == core.FileTypeLink {
		if idx := strings.Index(name, linkArrow); idx >= 0 {
			f.Link = name[idx+len(linkArrow):]
			name = name[:idx]
		}
	}
	if strings.HasPrefix(name, "/") {
		f.Path = name
	}
	f.Name = baseName(name)
	return f, true
}

// ResolveLinkType classifies a symlink target from the output of listing
// the link path with a trailing "/"
func ResolveLinkType(probeOutput string) core.FileType {
	switch {
	case strings.HasPrefix(probeOutput, "d"):
		return core.FileTypeDirectory
	case strings.Contains(probeOutput, "Not a"):
		return core.FileTypeFile
	default:
		return core.FileTypeUnknown
	}
}

// ParseDirMarkers returns the set of paths, ending in "/", listed by `ls -d <dir>*/`
func ParseDirMarkers(raw string) map[string]struct{} {
	lines := lo.Map(strings.Split(raw, "\n"), func(l string, _ int) string {
		return strings.TrimSpace(l)
	})
	return lo.Keyify(lo.Filter(lines, func(l string, _ int) bool {
		return strings.HasSuffix(l, "/")
	}))
}

// ParseListing parses the output of `ls -a -l <basePath>`.
// dirMarkers disambiguates directories and symlinked directories.
// Entries keep the order of the raw text; malformed lines are skipped.
func ParseListing(raw string, dirMarkers map[string]struct{}, basePath string) []core.File {
	base := adb.EnsureTrailingSlash(basePath)
	files := make([]core.File, 0)

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" || strings.HasPrefix(line, "total ") {
			continue
		}
		f, ok := ParseEntry(line)
		if !ok || f.Name == "." || f.Name == ".." {
			continue
		}

		f.Path = base + f.Name
		_, isDir := dirMarkers[f.Path+"/"]
		switch {
		case f.Type == core.FileTypeLink && isDir:
			f.LinkType = core.FileTypeDirectory
		case f.Type == core.FileTypeLink:
			f.LinkType = core.FileTypeFile
		case isDir:
			f.Type = core.FileTypeDirectory
		}
		files = append(files, *f)
	}
	return files
}

func typeOf(permissions string) core.FileType {
	switch permissions[0] {
	case 'd':
		return core.FileTypeDirectory
	case 'l':
		return core.FileTypeLink
	default:
		return core.FileTypeFile
	}
}

func baseName(name string) string {
	trimmed := strings.TrimRight(name, "/")
	if trimmed == "" {
		return name
	}
	return path.Base(trimmed)
}
