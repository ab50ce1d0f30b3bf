package scanner

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eigeen/ree-pak-gui/internal/archive"
	"github.com/eigeen/ree-pak-gui/internal/archive/archivetest"
	"github.com/eigeen/ree-pak-gui/internal/fsops"
	"github.com/eigeen/ree-pak-gui/internal/hash"
)

// failingFS wraps RealFS and fails ReadDir for selected directories.
type failingFS struct {
	*fsops.RealFS
	failDirs map[string]bool
}

func (f *failingFS) ReadDir(path string) ([]fs.DirEntry, error) {
	if f.failDirs[path] {
		return nil, os.ErrPermission
	}
	return f.RealFS.ReadDir(path)
}

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func relPaths(entries []ScannedEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.RelativePath)
	}
	return out
}

func TestScan_Folder(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"b.txt":             "bb",
		"a/deep/x.tex":      "xxxx",
		"a/y.tex":           "y",
		"natives/STM/z.mdf": "zzz",
	})

	s := New(fsops.NewRealFS(), archivetest.NewFake(), log.New(io.Discard), nil)
	entries, err := s.Scan(context.Background(), InputItem{Path: root})
	require.NoError(t, err)

	assert.Equal(t, []string{"/a/deep/x.tex", "/a/y.tex", "/b.txt", "/natives/STM/z.mdf"}, relPaths(entries))
	assert.Equal(t, filepath.Join(root, "a", "deep", "x.tex"), entries[0].SourcePath)
	assert.Equal(t, uint64(4), entries[0].Size)
	assert.False(t, entries[0].ModifiedDate.IsZero())
}

func TestScan_FolderSkipsUnreadableSubdirectory(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"ok/a.txt":     "a",
		"locked/b.txt": "b",
	})

	fsys := &failingFS{RealFS: fsops.NewRealFS(), failDirs: map[string]bool{filepath.Join(root, "locked"): true}}
	s := New(fsys, archivetest.NewFake(), log.New(io.Discard), nil)

	entries, err := s.Scan(context.Background(), InputItem{Path: root})
	require.NoError(t, err)
	assert.Equal(t, []string{"/ok/a.txt"}, relPaths(entries))
}

func TestScan_FolderRootUnreadable(t *testing.T) {
	s := New(fsops.NewRealFS(), archivetest.NewFake(), log.New(io.Discard), nil)

	_, err := s.Scan(context.Background(), InputItem{Path: filepath.Join(t.TempDir(), "missing")})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrScanFailure)

	var scanErr *ScanError
	require.True(t, errors.As(err, &scanErr))
	assert.Contains(t, scanErr.Path, "missing")
}

func TestScan_Archive(t *testing.T) {
	dir := t.TempDir()
	pakPath := filepath.Join(dir, "mod.pak")
	require.NoError(t, os.WriteFile(pakPath, []byte("header"), 0644))

	engine := archivetest.NewFake()
	engine.Headers[pakPath] = &archive.Header{Entries: []archive.Entry{
		{Hash: hash.Pair{Low: 1, High: 2}, UncompressedSize: 100},
		{Hash: hash.Pair{Low: 3, High: 4}, UncompressedSize: 200},
	}}

	s := New(fsops.NewRealFS(), engine, log.New(io.Discard), nil)
	entries, err := s.Scan(context.Background(), InputItem{Path: pakPath, IsFile: true})
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, "entry_1_2", entries[0].RelativePath)
	assert.Equal(t, pakPath+":entry_1_2", entries[0].SourcePath)
	assert.Equal(t, uint64(100), entries[0].Size)
	assert.Equal(t, "entry_3_4", entries[1].RelativePath)
}

func TestScan_ArchiveHeaderFailure(t *testing.T) {
	dir := t.TempDir()
	pakPath := filepath.Join(dir, "broken.pak")
	require.NoError(t, os.WriteFile(pakPath, nil, 0644))

	engine := archivetest.NewFake()
	engine.HeaderErr[pakPath] = errors.New("bad magic")

	s := New(fsops.NewRealFS(), engine, log.New(io.Discard), nil)
	_, err := s.Scan(context.Background(), InputItem{Path: pakPath, IsFile: true})
	assert.ErrorIs(t, err, ErrScanFailure)
	assert.ErrorIs(t, err, archive.ErrEngineFailure)
}

func TestScan_LooseFileUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	s := New(fsops.NewRealFS(), archivetest.NewFake(), log.New(io.Discard), nil)
	_, err := s.Scan(context.Background(), InputItem{Path: path, IsFile: true})
	assert.ErrorIs(t, err, ErrUnsupportedInput)
	assert.ErrorIs(t, err, ErrScanFailure)
}

func TestIsArchive(t *testing.T) {
	s := New(fsops.NewRealFS(), archivetest.NewFake(), log.New(io.Discard), []string{".pak", ".zip"})

	assert.True(t, s.IsArchive("/x/a.pak"))
	assert.True(t, s.IsArchive(`C:\x\A.PAK`))
	assert.True(t, s.IsArchive("b.zip"))
	assert.False(t, s.IsArchive("c.tex"))
	assert.False(t, s.IsArchive("pak"))
}

func TestRelativeKey(t *testing.T) {
	assert.Equal(t, "/a/b.txt", relativeKey("/root", "/root/a/b.txt"))
	assert.Equal(t, "/a/b.txt", relativeKey(`C:\root`, `C:\root\a\b.txt`))
	assert.Equal(t, "/a.txt", relativeKey("/root/", "/root/a.txt"))
}
