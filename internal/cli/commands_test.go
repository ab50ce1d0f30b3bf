package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eigeen/ree-pak-gui/internal/archive"
	"github.com/eigeen/ree-pak-gui/internal/engine"
	"github.com/eigeen/ree-pak-gui/internal/planner"
)

// runCLI executes a fresh command tree with an isolated config root.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("PAKMERGE_ROOT", t.TempDir())

	rootCmd := NewRootCommand()
	rootCmd.SetArgs(args)
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func readMember(t *testing.T, archivePath, name string) string {
	t.Helper()
	zr, err := zip.OpenReader(archivePath)
	require.NoError(t, err)
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(data)
	}
	require.Failf(t, "member not found", "%s not in %s", name, archivePath)
	return ""
}

// conflictingMods creates two mod folders that both supply shared.txt.
func conflictingMods(t *testing.T) (string, string) {
	t.Helper()
	base := t.TempDir()
	modA := filepath.Join(base, "modA")
	modB := filepath.Join(base, "modB")
	writeFiles(t, modA, map[string]string{"shared.txt": "A", "only_a.txt": "a"})
	writeFiles(t, modB, map[string]string{"shared.txt": "B", "sub/only_b.txt": "b"})
	return modA, modB
}

func decodeResult(t *testing.T, stdout string) engine.ExportResult {
	t.Helper()
	var result engine.ExportResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &result), "invalid JSON result:\n%s", stdout)
	return result
}

func TestPackCommand_NoArgs(t *testing.T) {
	_, _, err := runCLI(t, "pack")
	assert.Error(t, err, "expected error when no inputs are given")
}

func TestPackCommand_InvalidMode(t *testing.T) {
	_, _, err := runCLI(t, "pack", "--mode", "bundle", t.TempDir())
	assert.ErrorIs(t, err, planner.ErrInvalidConfig)
}

func TestPackCommand_SingleRequiresOut(t *testing.T) {
	modA, modB := conflictingMods(t)
	_, _, err := runCLI(t, "pack", "--mode", "single", "--no-progress", modA, modB)
	assert.ErrorIs(t, err, engine.ErrExportDirRequired)
}

func TestPackCommand_SingleDefaultResolution(t *testing.T) {
	modA, modB := conflictingMods(t)
	outDir := t.TempDir()

	stdout, stderr, err := runCLI(t, "pack", "--mode", "single", "--out", outDir, "--auto-root=false", "--json", modA, modB)
	require.NoError(t, err, "stderr: %s", stderr)

	result := decodeResult(t, stdout)
	require.True(t, result.Success, "result: %+v", result)
	require.Len(t, result.Files, 1)

	packed := result.Files[0]
	assert.Equal(t, outDir, filepath.Dir(packed.Path))
	assert.Len(t, packed.Files, 3)
	assert.Equal(t, "B", readMember(t, packed.Path, "shared.txt"), "last source should win")
	assert.Contains(t, result.FileTree, "shared.txt")
}

func TestPackCommand_SingleWithResolve(t *testing.T) {
	modA, modB := conflictingMods(t)
	outDir := t.TempDir()

	stdout, stderr, err := runCLI(t, "pack", "--mode", "single", "--out", outDir, "--auto-root=false",
		"--json", "--resolve", "/shared.txt=0", modA, modB)
	require.NoError(t, err, "stderr: %s", stderr)

	result := decodeResult(t, stdout)
	require.Len(t, result.Files, 1)
	assert.Equal(t, "A", readMember(t, result.Files[0].Path, "shared.txt"))
}

func TestPackCommand_SingleWithDrop(t *testing.T) {
	modA, modB := conflictingMods(t)
	outDir := t.TempDir()

	stdout, stderr, err := runCLI(t, "pack", "--mode", "single", "--out", outDir, "--auto-root=false",
		"--json", "--drop", "/shared.txt", modA, modB)
	require.NoError(t, err, "stderr: %s", stderr)

	result := decodeResult(t, stdout)
	require.Len(t, result.Files, 1)

	var paths []string
	for _, f := range result.Files[0].Files {
		paths = append(paths, f.Path)
	}
	assert.NotContains(t, paths, "/shared.txt")
	assert.Len(t, paths, 2)
}

func TestPackCommand_StrictRefusesUnresolved(t *testing.T) {
	modA, modB := conflictingMods(t)
	outDir := t.TempDir()

	_, _, err := runCLI(t, "pack", "--mode", "single", "--out", outDir, "--strict", "--no-progress", modA, modB)
	require.ErrorIs(t, err, engine.ErrConflictsPending)

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "nothing should be written")
}

func TestPackCommand_IndividualWritesNextToInput(t *testing.T) {
	modA, _ := conflictingMods(t)

	stdout, stderr, err := runCLI(t, "pack", "--no-progress", modA)
	require.NoError(t, err, "stderr: %s", stderr)

	assert.FileExists(t, filepath.Join(filepath.Dir(modA), "modA.pak"))
	assert.Contains(t, stdout, "Export Complete")
	assert.Contains(t, stdout, "Wrote 1 archive")
}

func TestConflictsCommand_JSON(t *testing.T) {
	modA, modB := conflictingMods(t)

	stdout, _, err := runCLI(t, "conflicts", "--json", modA, modB)
	require.NoError(t, err)

	var groups []planner.ConflictGroup
	require.NoError(t, json.Unmarshal([]byte(stdout), &groups), "invalid JSON:\n%s", stdout)
	require.Len(t, groups, 1)

	g := groups[0]
	assert.Equal(t, "/shared.txt", g.RelativePath)
	require.Len(t, g.Sources, 2)
	assert.Equal(t, 1, g.SelectedSource)
	assert.Equal(t, filepath.Join(modA, "shared.txt"), g.Sources[0].SourcePath)
}

func TestConflictsCommand_NoConflicts(t *testing.T) {
	base := t.TempDir()
	modA := filepath.Join(base, "modA")
	modB := filepath.Join(base, "modB")
	writeFiles(t, modA, map[string]string{"a.txt": "a"})
	writeFiles(t, modB, map[string]string{"b.txt": "b"})

	stdout, _, err := runCLI(t, "conflicts", modA, modB)
	require.NoError(t, err)
	assert.Contains(t, stdout, "No conflicts")
}

func TestInspectCommand_JSON(t *testing.T) {
	modA, _ := conflictingMods(t)
	outDir := t.TempDir()

	_, stderr, err := runCLI(t, "pack", "--out", outDir, "--auto-root=false", "--no-progress", modA)
	require.NoError(t, err, "stderr: %s", stderr)

	stdout, _, err := runCLI(t, "inspect", "--json", filepath.Join(outDir, "modA.pak"))
	require.NoError(t, err)

	var header archive.Header
	require.NoError(t, json.Unmarshal([]byte(stdout), &header), "invalid JSON:\n%s", stdout)

	var names []string
	for _, e := range header.Entries {
		names = append(names, e.Name)
	}
	assert.ElementsMatch(t, []string{"/shared.txt", "/only_a.txt"}, names)
}

func TestInspectCommand_NotAnArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.pak")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0644))

	_, _, err := runCLI(t, "inspect", path)
	assert.Error(t, err, "expected error for a file that is not an archive")
}
