package adb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEscapePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "/sdcard/DCIM", want: "/sdcard/DCIM"},
		{in: "/sdcard/My Photos/a b.jpg", want: `/sdcard/My\ Photos/a\ b.jpg`},
		{in: "", want: ""},
		{in: "/sdcard/it's", want: "/sdcard/it's"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, EscapePath(tt.in), tt.in)
	}
}

func TestResolvePath(t *testing.T) {
	tests := []struct {
		name string
		cwd  string
		p    string
		want string
	}{
		{name: "empty is cwd", cwd: "/sdcard/", p: "", want: "/sdcard/"},
		{name: "dot is cwd", cwd: "/sdcard/", p: ".", want: "/sdcard/"},
		{name: "absolute", cwd: "/sdcard/", p: "/data/local/tmp", want: "/data/local/tmp"},
		{name: "relative", cwd: "/sdcard/", p: "DCIM", want: "/sdcard/DCIM"},
		{name: "relative without cwd slash", cwd: "/sdcard", p: "./DCIM", want: "/sdcard/DCIM"},
		{name: "trailing slash kept", cwd: "/sdcard/", p: "DCIM/", want: "/sdcard/DCIM/"},
		{name: "parent", cwd: "/sdcard/DCIM/", p: "..", want: "/sdcard"},
		{name: "parent of root", cwd: "/", p: "../", want: "/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ResolvePath(tt.cwd, tt.p))
		})
	}
}

func TestEnsureTrailingSlash(t *testing.T) {
	req := require.New(t)
	req.Equal("/sdcard/", EnsureTrailingSlash("/sdcard"))
	req.Equal("/sdcard/", EnsureTrailingSlash("/sdcard/"))
	req.Equal("", EnsureTrailingSlash(""))
}
