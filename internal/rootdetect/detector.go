// Package rootdetect locates the canonical root directory of an input.
//
// A root is recognized by a two-segment marker: a directory named like the
// root marker (default "natives") immediately followed by one named like the
// child marker (default "STM"). Matching is case-insensitive. The detected
// root is the path truncated through the root marker segment.
package rootdetect

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/eigeen/ree-pak-gui/internal/fsops"
	"github.com/eigeen/ree-pak-gui/internal/pathutil"
)

// Default marker names.
const (
	DefaultRootMarker  = "natives"
	DefaultChildMarker = "STM"
)

// Markers configures the two-segment marker pattern.
type Markers struct {
	Root  string
	Child string
}

// DefaultMarkers returns the natives/STM marker pair.
func DefaultMarkers() Markers {
	return Markers{Root: DefaultRootMarker, Child: DefaultChildMarker}
}

// Detector finds canonical roots.
type Detector struct {
	fs      fsops.FS
	markers Markers
}

// New creates a Detector. Empty marker names fall back to the defaults.
func New(fs fsops.FS, markers Markers) *Detector {
	if markers.Root == "" {
		markers.Root = DefaultRootMarker
	}
	if markers.Child == "" {
		markers.Child = DefaultChildMarker
	}
	return &Detector{fs: fs, markers: markers}
}

// markerIndex returns the index of the root marker segment in segs, or -1.
func (d *Detector) markerIndex(segs []string) int {
	for i := 0; i+1 < len(segs); i++ {
		if strings.EqualFold(segs[i], d.markers.Root) && strings.EqualFold(segs[i+1], d.markers.Child) {
			return i
		}
	}
	return -1
}

// DetectRoot returns the path truncated through the root marker, keeping the
// separator style of anchorFilePath. ok is false when no marker pair exists.
func (d *Detector) DetectRoot(anchorFilePath string) (string, bool) {
	segs := pathutil.SplitKeep(anchorFilePath)
	idx := d.markerIndex(segs)
	if idx < 0 {
		return "", false
	}
	return strings.Join(segs[:idx+1], pathutil.Separator(anchorFilePath)), true
}

// OwnerName returns the segment immediately preceding the root marker in
// path, e.g. "Game" for "C:\Game\natives\STM\x". ok is false when there is
// no marker pair or nothing precedes it.
func (d *Detector) OwnerName(path string) (string, bool) {
	segs := pathutil.SplitKeep(path)
	idx := d.markerIndex(segs)
	if idx <= 0 || segs[idx-1] == "" {
		return "", false
	}
	return segs[idx-1], true
}

// FindAnchor returns the file used to look for a root. A file is its own
// anchor; for a folder it is the first file reached by a depth-first descent
// in listing order. Unreadable subdirectories are passed over.
func (d *Detector) FindAnchor(path string) (string, error) {
	info, err := d.fs.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return path, nil
	}

	type node struct {
		path  string
		isDir bool
	}
	stack := []node{{path: path, isDir: true}}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !n.isDir {
			return n.path, nil
		}

		entries, err := d.fs.ReadDir(n.path)
		if err != nil {
			continue
		}
		for i := len(entries) - 1; i >= 0; i-- {
			stack = append(stack, node{
				path:  filepath.Join(n.path, entries[i].Name()),
				isDir: entries[i].IsDir(),
			})
		}
	}
	return "", fmt.Errorf("no file found under %s", path)
}

// RootFor checks path (directly, then through its anchor file) and returns
// the detected root.
func (d *Detector) RootFor(path string) (string, bool) {
	if root, ok := d.DetectRoot(path); ok {
		return root, true
	}
	anchor, err := d.FindAnchor(path)
	if err != nil {
		return "", false
	}
	return d.DetectRoot(anchor)
}

// OwnerFor is OwnerName applied to path or, failing that, its anchor file.
func (d *Detector) OwnerFor(path string) (string, bool) {
	if name, ok := d.OwnerName(path); ok {
		return name, true
	}
	anchor, err := d.FindAnchor(path)
	if err != nil {
		return "", false
	}
	return d.OwnerName(anchor)
}
