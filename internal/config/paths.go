// Package config manages pakmerge configuration and filesystem paths.
//
// The default root is ~/.pakmerge/ holding config.toml. Settings are read
// from that file and may be overridden by PAKMERGE_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// RootEnv overrides the data root directory.
const RootEnv = "PAKMERGE_ROOT"

// Paths contains the filesystem paths used by pakmerge.
type Paths struct {
	// Root is the base directory for pakmerge data (default: ~/.pakmerge)
	Root string

	// Config is the path to the settings file
	Config string
}

// DefaultPaths returns the default paths for pakmerge.
// Paths can be overridden with environment variables:
// - PAKMERGE_ROOT: Override the root directory
func DefaultPaths() (*Paths, error) {
	root := os.Getenv(RootEnv)
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		root = filepath.Join(home, ".pakmerge")
	}

	return PathsAt(root), nil
}

// PathsAt returns the paths rooted at root.
func PathsAt(root string) *Paths {
	return &Paths{
		Root:   root,
		Config: filepath.Join(root, "config.toml"),
	}
}

// EnsureDirectories creates all necessary directories if they don't exist.
func (p *Paths) EnsureDirectories() error {
	if err := os.MkdirAll(p.Root, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", p.Root, err)
	}
	return nil
}
