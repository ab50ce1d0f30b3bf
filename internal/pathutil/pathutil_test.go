package pathutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitKeep(t *testing.T) {
	tests := []struct {
		name string
		path string
		want []string
	}{
		{name: "unix", path: "/a/b/c.txt", want: []string{"", "a", "b", "c.txt"}},
		{name: "windows", path: `C:\Game\natives`, want: []string{"C:", "Game", "natives"}},
		{name: "mixed", path: `a/b\c`, want: []string{"a", "b", "c"}},
		{name: "empty segments kept", path: "/a//b", want: []string{"", "a", "", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitKeep(tt.path))
		})
	}
}

func TestSeparator(t *testing.T) {
	assert.Equal(t, `\`, Separator(`C:\x`))
	assert.Equal(t, "/", Separator("/x/y"))
	assert.Equal(t, "/", Separator("name"))
}

func TestParent(t *testing.T) {
	tests := []struct {
		path   string
		want   string
		wantOK bool
	}{
		{path: "/data/mods/a", want: "/data/mods", wantOK: true},
		{path: `C:\Game\x.pak`, want: `C:\Game`, wantOK: true},
		{path: "/a", want: "", wantOK: false},
		{path: "name", want: "", wantOK: false},
		{path: "/", want: "", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := Parent(tt.path)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestBase(t *testing.T) {
	tests := map[string]string{
		"/a/b/c.pak":      "c.pak",
		`C:\Game\mod\`:    "mod",
		"plain":           "plain",
		`C:\Game\natives`: "natives",
	}
	for in, want := range tests {
		assert.Equal(t, want, Base(in), "Base(%q)", in)
	}
}

func TestJoin(t *testing.T) {
	tests := []struct {
		dir, name, want string
	}{
		{dir: "/out", name: "a.pak", want: "/out/a.pak"},
		{dir: "/out/", name: "a.pak", want: "/out/a.pak"},
		{dir: `D:\out`, name: "a.pak", want: `D:\out\a.pak`},
		{dir: "", name: "a.pak", want: "a.pak"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Join(tt.dir, tt.name), "Join(%q, %q)", tt.dir, tt.name)
	}
}

func TestEnsureExt(t *testing.T) {
	tests := []struct {
		name, want string
	}{
		{name: "mod", want: "mod.pak"},
		{name: "mod.pak", want: "mod.pak"},
		{name: "MOD.PAK", want: "MOD.PAK"},
		{name: "mod.zip", want: "mod.zip.pak"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EnsureExt(tt.name, ".pak"), "EnsureExt(%q)", tt.name)
	}
}

func TestToSlash(t *testing.T) {
	assert.Equal(t, "a/b/c", ToSlash(`a\b/c`))
}
