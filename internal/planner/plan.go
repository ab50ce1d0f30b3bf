package planner

import (
	"errors"
	"fmt"
)

// Mode selects how inputs map to output archives.
type Mode string

const (
	// ModeIndividual writes one output archive per input.
	ModeIndividual Mode = "individual"

	// ModeSingle merges every input into one output archive.
	ModeSingle Mode = "single"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeIndividual, ModeSingle:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("%w: unknown export mode %q (want individual or single)", ErrInvalidConfig, s)
	}
}

// ExportConfig is the caller-owned export configuration.
type ExportConfig struct {
	Mode Mode `json:"mode"`

	// ExportDirectory is the destination. Optional in individual mode, where
	// each output lands next to its input.
	ExportDirectory string `json:"exportDirectory"`

	// AutoDetectRoot replaces each source by its detected root and derives
	// output names from it.
	AutoDetectRoot bool `json:"autoDetectRoot"`

	// FastMode is passed through to the Archive Engine.
	FastMode bool `json:"fastMode"`
}

// PlanEntry is one output archive to write.
type PlanEntry struct {
	// Sources are the folders and archives to pack, in precedence order.
	Sources []string `json:"sources"`

	// OutputPath is unique in its directory at plan time.
	OutputPath string `json:"outputPath"`

	// Skip lists source references excluded by conflict resolution.
	Skip []string `json:"skip,omitempty"`
}

// ExportPlan is the ordered list of archives to write.
type ExportPlan struct {
	Entries []PlanEntry `json:"entries"`
}

// NewExportPlan creates a new empty ExportPlan.
func NewExportPlan() *ExportPlan {
	return &ExportPlan{Entries: []PlanEntry{}}
}

// AddEntry appends an entry to the plan.
func (p *ExportPlan) AddEntry(entry PlanEntry) {
	p.Entries = append(p.Entries, entry)
}

// OutputPaths lists every planned output path in order.
func (p *ExportPlan) OutputPaths() []string {
	paths := make([]string, 0, len(p.Entries))
	for _, e := range p.Entries {
		paths = append(paths, e.OutputPath)
	}
	return paths
}

var (
	// ErrMissingParentPath is returned in individual mode when no export
	// directory is configured and an input has no parent directory.
	ErrMissingParentPath = errors.New("failed to get parent path from input")

	// ErrExportDirRequired is returned for merge exports without a destination.
	ErrExportDirRequired = errors.New("export directory is required for merge export")

	// ErrInvalidResolution is returned when a resolution index is out of range.
	ErrInvalidResolution = errors.New("invalid conflict resolution")

	// ErrInvalidConfig is returned for malformed export configuration.
	ErrInvalidConfig = errors.New("invalid export configuration")

	// ErrNoInputs is returned when planning is asked to do nothing.
	ErrNoInputs = errors.New("no inputs to export")
)
