package engine

import (
	"github.com/eigeen/ree-pak-gui/internal/archive"
)

// State is the orchestrator's position in the export lifecycle.
type State int

const (
	// StateIdle means no export is running.
	StateIdle State = iota

	// StateScanning covers conflict analysis and planning.
	StateScanning

	// StateConflictsPending means a merge export is waiting for the caller
	// to resolve conflicts and call ProceedWithMergeExport.
	StateConflictsPending

	// StateWriting means the Archive Engine is writing an output.
	StateWriting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScanning:
		return "scanning"
	case StateConflictsPending:
		return "conflicts-pending"
	case StateWriting:
		return "writing"
	default:
		return "unknown"
	}
}

// ProgressState is a snapshot of write progress.
type ProgressState struct {
	Working         bool   `json:"working"`
	CurrentFile     string `json:"currentFile"`
	TotalFileCount  uint32 `json:"totalFileCount"`
	FinishFileCount uint32 `json:"finishFileCount"`
}

// Percent returns progress in [0, 100]. It is 0 until the total is known.
func (p ProgressState) Percent() float64 {
	if p.TotalFileCount == 0 {
		return 0
	}
	return float64(p.FinishFileCount) / float64(p.TotalFileCount) * 100
}

// ExportResult is the outcome of the last export attempt.
type ExportResult struct {
	Success bool                    `json:"success"`
	Files   []archive.PackedArchive `json:"files"`
	Error   string                  `json:"error"`

	// FileTree is the rendered member tree of Files, set on success.
	FileTree string `json:"fileTree,omitempty"`
}

func (r ExportResult) clone() ExportResult {
	if r.Files == nil {
		return r
	}
	files := make([]archive.PackedArchive, len(r.Files))
	for i, a := range r.Files {
		files[i] = archive.PackedArchive{
			Path:  a.Path,
			Files: append([]archive.PackedFile(nil), a.Files...),
		}
	}
	r.Files = files
	return r
}
