package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. PAKMERGE_LOG_LEVEL or
// PAKMERGE_EXPORT_FAST_MODE.
const EnvPrefix = "PAKMERGE"

// ErrInvalidSettings is returned for settings that fail validation.
var ErrInvalidSettings = errors.New("invalid settings")

// Settings are the user-level defaults read from config.toml.
type Settings struct {
	LogLevel string          `mapstructure:"log_level"`
	Export   ExportSettings  `mapstructure:"export"`
	Markers  MarkerSettings  `mapstructure:"markers"`
	Archive  ArchiveSettings `mapstructure:"archive"`
}

// ExportSettings are defaults for export flags.
type ExportSettings struct {
	Mode           string `mapstructure:"mode"`
	Directory      string `mapstructure:"directory"`
	AutoDetectRoot bool   `mapstructure:"auto_detect_root"`
	FastMode       bool   `mapstructure:"fast_mode"`
}

// MarkerSettings name the directory pair that identifies a canonical root.
type MarkerSettings struct {
	Root  string `mapstructure:"root"`
	Child string `mapstructure:"child"`
}

// ArchiveSettings control which loose files are treated as archives.
type ArchiveSettings struct {
	Extensions []string `mapstructure:"extensions"`
}

// DefaultSettings returns the built-in settings.
func DefaultSettings() Settings {
	return Settings{
		LogLevel: "warn",
		Export: ExportSettings{
			Mode:           "individual",
			AutoDetectRoot: true,
		},
		Markers: MarkerSettings{
			Root:  "natives",
			Child: "STM",
		},
		Archive: ArchiveSettings{
			Extensions: []string{".pak"},
		},
	}
}

// LoadSettings reads settings from the TOML file at path over the
// defaults, then applies PAKMERGE_* environment overrides. A missing file
// is not an error.
func LoadSettings(path string) (*Settings, error) {
	v := viper.New()

	defaults := DefaultSettings()
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("export.mode", defaults.Export.Mode)
	v.SetDefault("export.directory", defaults.Export.Directory)
	v.SetDefault("export.auto_detect_root", defaults.Export.AutoDetectRoot)
	v.SetDefault("export.fast_mode", defaults.Export.FastMode)
	v.SetDefault("markers.root", defaults.Markers.Root)
	v.SetDefault("markers.child", defaults.Markers.Child)
	v.SetDefault("archive.extensions", defaults.Archive.Extensions)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			v.SetConfigType("toml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read settings %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat settings %s: %w", path, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the settings for values no command can use.
func (s *Settings) Validate() error {
	switch s.Export.Mode {
	case "individual", "single":
	default:
		return fmt.Errorf("%w: export.mode must be individual or single, got %q", ErrInvalidSettings, s.Export.Mode)
	}
	if s.Markers.Root == "" || s.Markers.Child == "" {
		return fmt.Errorf("%w: markers.root and markers.child must not be empty", ErrInvalidSettings)
	}
	for _, ext := range s.Archive.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("%w: archive extension %q must start with '.'", ErrInvalidSettings, ext)
		}
	}
	return nil
}
