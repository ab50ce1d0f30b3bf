package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPaths(t *testing.T) {
	t.Run("returns paths based on home directory", func(t *testing.T) {
		t.Setenv(RootEnv, "")

		paths, err := DefaultPaths()
		require.NoError(t, err)

		assert.NotEmpty(t, paths.Root)
		assert.Equal(t, filepath.Join(paths.Root, "config.toml"), paths.Config)
		assert.Equal(t, ".pakmerge", filepath.Base(paths.Root))
	})

	t.Run("respects PAKMERGE_ROOT environment variable", func(t *testing.T) {
		customRoot := "/custom/pakmerge/path"
		t.Setenv(RootEnv, customRoot)

		paths, err := DefaultPaths()
		require.NoError(t, err)

		assert.Equal(t, customRoot, paths.Root)
		assert.Equal(t, filepath.Join(customRoot, "config.toml"), paths.Config)
	})
}

func TestPaths_EnsureDirectories(t *testing.T) {
	t.Run("creates nested root", func(t *testing.T) {
		deepRoot := filepath.Join(t.TempDir(), "a", "b", "pakmerge")

		require.NoError(t, PathsAt(deepRoot).EnsureDirectories())
		assert.DirExists(t, deepRoot)
	})

	t.Run("succeeds if directories already exist", func(t *testing.T) {
		assert.NoError(t, PathsAt(t.TempDir()).EnsureDirectories())
	})
}
