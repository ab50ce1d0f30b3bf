package planner

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/eigeen/ree-pak-gui/internal/clock"
	"github.com/eigeen/ree-pak-gui/internal/fsops"
	"github.com/eigeen/ree-pak-gui/internal/pathutil"
	"github.com/eigeen/ree-pak-gui/internal/rootdetect"
	"github.com/eigeen/ree-pak-gui/internal/scanner"
)

// DefaultExtension is appended to generated output names.
const DefaultExtension = ".pak"

// fallbackName is used when an input has no usable base name.
const fallbackName = "output"

// Namer generates output file names.
type Namer struct {
	fs       fsops.FS
	detector *rootdetect.Detector
	clock    clock.Clock
	ext      string
}

// NewNamer creates a new Namer.
func NewNamer(fs fsops.FS, detector *rootdetect.Detector, clk clock.Clock) *Namer {
	return &Namer{
		fs:       fs,
		detector: detector,
		clock:    clk,
		ext:      DefaultExtension,
	}
}

// UniqueName returns baseName, or baseName with an incrementing "-N" suffix
// before its extension, such that directory/name neither exists on disk nor
// is in reserved (full output paths already claimed by the current plan).
//
// The existence check races with concurrent external writers; the Archive
// Engine refuses to overwrite, so a lost race fails the write instead of
// clobbering a file.
func (n *Namer) UniqueName(directory, baseName string, reserved map[string]struct{}) (string, error) {
	ext := filepath.Ext(baseName)
	stem := strings.TrimSuffix(baseName, ext)

	name := baseName
	for counter := 1; ; counter++ {
		full := pathutil.Join(directory, name)
		if _, taken := reserved[full]; !taken {
			exists, err := n.fs.Exists(full)
			if err != nil {
				return "", fmt.Errorf("failed to check output path %s: %w", full, err)
			}
			if !exists {
				return name, nil
			}
		}
		name = fmt.Sprintf("%s-%d%s", stem, counter, ext)
	}
}

// DefaultName derives an output name for one input. With root detection
// enabled and a marker pair found, the name is the directory owning the root
// ("Game.pak" for Game/natives/STM/...). Otherwise it is the input's base
// name with the archive extension appended if missing.
func (n *Namer) DefaultName(inputPath string, cfg ExportConfig) string {
	if cfg.AutoDetectRoot {
		if owner, ok := n.detector.OwnerFor(inputPath); ok {
			return owner + n.ext
		}
	}
	base := pathutil.Base(inputPath)
	if base == "" {
		base = fallbackName
	}
	return pathutil.EnsureExt(base, n.ext)
}

// MergedName derives the output name of a merge export: the root owner of
// the first input when detection is enabled and succeeds, otherwise a
// timestamped "merged-<YYYYMMDDThhmmssZ>" name.
func (n *Namer) MergedName(inputs []scanner.InputItem, cfg ExportConfig) string {
	if cfg.AutoDetectRoot && len(inputs) > 0 {
		if owner, ok := n.detector.OwnerFor(inputs[0].Path); ok {
			return owner + n.ext
		}
	}
	return "merged-" + clock.Stamp(n.clock) + n.ext
}
