package adb

import (
	"path"
	"strings"
)

// EscapePath makes a remote path safe to pass through `adb shell`.
// Only spaces are escaped; other paths are returned unchanged.
func EscapePath(p string) string {
	return strings.ReplaceAll(p, " ", `\ `)
}

// ResolvePath resolves p against the current remote directory cwd.
// An empty p means cwd itself.
func ResolvePath(cwd, p string) string {
	if p == "" || p == "." || p == "./" {
		return cwd
	}
	if strings.HasPrefix(p, "/") {
		return p
	}

	trailing := strings.HasSuffix(p, "/")
	resolved := path.Join(EnsureTrailingSlash(cwd), strings.TrimPrefix(p, "./"))
	if trailing && resolved != "/" {
		resolved += "/"
	}
	return resolved
}

// EnsureTrailingSlash appends "/" to non-empty paths that lack it
func EnsureTrailingSlash(p string) string {
	if p == "" || strings.HasSuffix(p, "/") {
		return p
	}
	return p + "/"
}
