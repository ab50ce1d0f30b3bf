package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/eigeen/ree-pak-gui/internal/archive/zippak"
	"github.com/eigeen/ree-pak-gui/internal/clock"
	"github.com/eigeen/ree-pak-gui/internal/config"
	"github.com/eigeen/ree-pak-gui/internal/engine"
	"github.com/eigeen/ree-pak-gui/internal/fsops"
	"github.com/eigeen/ree-pak-gui/internal/hash"
	"github.com/eigeen/ree-pak-gui/internal/logging"
	"github.com/eigeen/ree-pak-gui/internal/planner"
	"github.com/eigeen/ree-pak-gui/internal/rootdetect"
	"github.com/eigeen/ree-pak-gui/internal/scanner"
)

// app bundles the wired components used by commands.
type app struct {
	settings *config.Settings
	logger   *log.Logger
	fs       fsops.FS
	archiver *zippak.Engine
	analyzer *planner.ConflictAnalyzer
	engine   *engine.Engine
}

// newApp loads settings and wires real implementations of all dependencies.
// Log output goes to logOut.
func newApp(opts *rootOptions, logOut io.Writer) (*app, error) {
	paths, err := config.DefaultPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to get config paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, err
	}

	settings, err := config.LoadSettings(paths.Config)
	if err != nil {
		return nil, err
	}

	level := settings.LogLevel
	if opts.logLevel != "" {
		level = opts.logLevel
	}
	logger, err := logging.New(logOut, level)
	if err != nil {
		return nil, err
	}
	logger.Debug("settings loaded", "path", paths.Config)

	fs := fsops.NewRealFS()
	archiver := zippak.New(fs, hash.NewXXHasher(), logger)
	sc := scanner.New(fs, archiver, logger, settings.Archive.Extensions)
	detector := rootdetect.New(fs, rootdetect.Markers{
		Root:  settings.Markers.Root,
		Child: settings.Markers.Child,
	})
	namer := planner.NewNamer(fs, detector, &clock.RealClock{})
	analyzer := planner.NewConflictAnalyzer(sc, logger)

	return &app{
		settings: settings,
		logger:   logger,
		fs:       fs,
		archiver: archiver,
		analyzer: analyzer,
		engine:   engine.New(archiver, analyzer, planner.NewPlanner(detector, namer, logger), logger),
	}, nil
}

// collectInputs resolves command arguments to absolute input items.
func collectInputs(fs fsops.FS, args []string) ([]scanner.InputItem, error) {
	items := make([]scanner.InputItem, 0, len(args))
	for _, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", arg, err)
		}
		info, err := fs.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("input %s: %w", arg, err)
		}
		items = append(items, scanner.InputItem{Path: abs, IsFile: !info.IsDir()})
	}
	return items, nil
}

// formatJSON formats a value as JSON.
func formatJSON(v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// formatError formats an error for display.
func formatError(err error) string {
	return errorColor.Sprintf("Error: %v", err)
}

// outputJSON writes a value as indented JSON.
func outputJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
