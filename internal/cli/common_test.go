package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eigeen/ree-pak-gui/internal/engine"
	"github.com/eigeen/ree-pak-gui/internal/fsops"
	"github.com/eigeen/ree-pak-gui/internal/planner"
)

func TestFormatJSON(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
	}{
		{"simple map", map[string]string{"key": "value"}},
		{"empty map", map[string]string{}},
		{"array", []string{"a", "b", "c"}},
		{"progress", engine.ProgressState{Working: true, TotalFileCount: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := formatJSON(tt.input)
			require.NoError(t, err)
			assert.True(t, json.Valid([]byte(got)), "formatJSON() produced invalid JSON: %s", got)
		})
	}
}

func TestFormatError(t *testing.T) {
	assert.Contains(t, formatError(os.ErrNotExist), "Error:")
}

func TestOutputJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, outputJSON(&buf, map[string]string{"test": "value"}))

	var v map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &v))
	assert.Equal(t, "value", v["test"])
}

func TestPrintFunctions(t *testing.T) {
	var buf bytes.Buffer

	PrintSuccess(&buf, "Success message")
	PrintWarning(&buf, "Warning message")
	PrintError(&buf, "Error message")
	PrintInfo(&buf, "Info message")
	PrintTable(&buf, []string{"A", "B"}, [][]string{{"1", "two"}})

	out := buf.String()
	for _, want := range []string{"Success message", "Warning message", "Error message", "Info message", "two"} {
		assert.Contains(t, out, want)
	}
}

func TestPrintCount(t *testing.T) {
	assert.Equal(t, "1 archive", PrintCount(1, "archive", "archives"))
	assert.Equal(t, "3 archives", PrintCount(3, "archive", "archives"))
}

func TestParseResolutions(t *testing.T) {
	tests := []struct {
		name    string
		resolve []string
		drop    []string
		want    map[string]int
		wantErr bool
	}{
		{
			name: "empty",
			want: map[string]int{},
		},
		{
			name:    "resolve and drop",
			resolve: []string{"/a.txt=0", "/b/c.txt=2"},
			drop:    []string{"/d.txt"},
			want:    map[string]int{"/a.txt": 0, "/b/c.txt": 2, "/d.txt": planner.DropEntry},
		},
		{
			name:    "path containing equals sign",
			resolve: []string{"/x=y.txt=1"},
			want:    map[string]int{"/x=y.txt": 1},
		},
		{
			name:    "drop wins over resolve",
			resolve: []string{"/a.txt=1"},
			drop:    []string{"/a.txt"},
			want:    map[string]int{"/a.txt": planner.DropEntry},
		},
		{name: "missing index", resolve: []string{"/a.txt="}, wantErr: true},
		{name: "missing path", resolve: []string{"=1"}, wantErr: true},
		{name: "no separator", resolve: []string{"/a.txt"}, wantErr: true},
		{name: "negative index", resolve: []string{"/a.txt=-1"}, wantErr: true},
		{name: "non-numeric index", resolve: []string{"/a.txt=first"}, wantErr: true},
		{name: "empty drop", drop: []string{""}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseResolutions(tt.resolve, tt.drop)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCollectInputs(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "mod.pak")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	items, err := collectInputs(fsops.NewRealFS(), []string{dir, file})
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, dir, items[0].Path)
	assert.False(t, items[0].IsFile)
	assert.Equal(t, file, items[1].Path)
	assert.True(t, items[1].IsFile)

	_, err = collectInputs(fsops.NewRealFS(), []string{filepath.Join(dir, "missing")})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestProgressPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := newProgressPrinter(&buf)

	p.update(engine.ProgressState{})
	assert.Zero(t, buf.Len(), "idle progress should print nothing, got %q", buf.String())

	p.update(engine.ProgressState{Working: true, TotalFileCount: 4, FinishFileCount: 1, CurrentFile: "/a.txt"})
	p.update(engine.ProgressState{Working: true, TotalFileCount: 4, FinishFileCount: 4, CurrentFile: "/b.txt"})
	p.update(engine.ProgressState{TotalFileCount: 4, FinishFileCount: 4})

	out := buf.String()
	for _, want := range []string{" 25.0%", "1/4 /a.txt", "100.0%", "4/4 /b.txt"} {
		assert.Contains(t, out, want)
	}
	assert.True(t, len(out) > 0 && out[len(out)-1] == '\n', "finished progress should end the line")
}
