package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadSettings_MissingFileUsesDefaults(t *testing.T) {
	s, err := LoadSettings(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)

	want := DefaultSettings()
	assert.Equal(t, want.LogLevel, s.LogLevel)
	assert.Equal(t, want.Export, s.Export)
	assert.Equal(t, want.Markers, s.Markers)
	assert.Equal(t, []string{".pak"}, s.Archive.Extensions)
}

func TestLoadSettings_ReadsFile(t *testing.T) {
	path := writeSettings(t, `
log_level = "debug"

[export]
mode = "single"
directory = "/out"
auto_detect_root = false
fast_mode = true

[markers]
root = "assets"
child = "data"

[archive]
extensions = [".pak", ".zip"]
`)

	s, err := LoadSettings(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", s.LogLevel)
	assert.Equal(t, ExportSettings{Mode: "single", Directory: "/out", AutoDetectRoot: false, FastMode: true}, s.Export)
	assert.Equal(t, "assets", s.Markers.Root)
	assert.Equal(t, "data", s.Markers.Child)
	assert.Equal(t, []string{".pak", ".zip"}, s.Archive.Extensions)
}

func TestLoadSettings_EnvOverridesFile(t *testing.T) {
	path := writeSettings(t, `
[export]
fast_mode = false
`)
	t.Setenv("PAKMERGE_EXPORT_FAST_MODE", "true")
	t.Setenv("PAKMERGE_LOG_LEVEL", "error")

	s, err := LoadSettings(path)
	require.NoError(t, err)

	assert.True(t, s.Export.FastMode, "FastMode should be overridden by environment")
	assert.Equal(t, "error", s.LogLevel)
}

func TestLoadSettings_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		sentinel error
	}{
		{
			name:     "unknown mode",
			content:  "[export]\nmode = \"both\"\n",
			sentinel: ErrInvalidSettings,
		},
		{
			name:     "empty marker",
			content:  "[markers]\nroot = \"\"\n",
			sentinel: ErrInvalidSettings,
		},
		{
			name:     "extension without dot",
			content:  "[archive]\nextensions = [\"pak\"]\n",
			sentinel: ErrInvalidSettings,
		},
		{
			name:    "malformed toml",
			content: "[export\nmode = ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSettings(writeSettings(t, tt.content))
			require.Error(t, err)
			if tt.sentinel != nil {
				assert.ErrorIs(t, err, tt.sentinel)
			}
		})
	}
}
