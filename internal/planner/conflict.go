package planner

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/eigeen/ree-pak-gui/internal/scanner"
)

// DropEntry as a SelectedSource removes the entry from the merge.
const DropEntry = -1

// SourceRef is one contributor to a conflicted path.
type SourceRef struct {
	SourcePath   string    `json:"sourcePath"`
	Size         uint64    `json:"size"`
	ModifiedDate time.Time `json:"modifiedDate"`
}

// ConflictGroup is a relative path produced by two or more sources.
type ConflictGroup struct {
	RelativePath string      `json:"relativePath"`
	Sources      []SourceRef `json:"sources"`

	// SelectedSource indexes Sources, or is DropEntry.
	SelectedSource int `json:"selectedSource"`
}

// Selected returns the chosen source. ok is false when the entry is dropped.
func (g ConflictGroup) Selected() (SourceRef, bool) {
	if g.SelectedSource < 0 || g.SelectedSource >= len(g.Sources) {
		return SourceRef{}, false
	}
	return g.Sources[g.SelectedSource], true
}

// Scanner enumerates the entries of one input.
type Scanner interface {
	Scan(ctx context.Context, input scanner.InputItem) ([]scanner.ScannedEntry, error)
}

// ConflictAnalyzer finds relative paths contributed by more than one input.
type ConflictAnalyzer struct {
	scanner Scanner
	logger  *log.Logger
}

// NewConflictAnalyzer creates a new ConflictAnalyzer.
func NewConflictAnalyzer(s Scanner, logger *log.Logger) *ConflictAnalyzer {
	return &ConflictAnalyzer{
		scanner: s,
		logger:  logger,
	}
}

// Analyze scans inputs in the given order and returns one group per key that
// more than one entry maps to. Groups are ordered by first appearance.
//
// Each group defaults to its last-scanned source, so reordering inputs changes
// the default resolution. Inputs that fail to scan are logged and skipped.
func (a *ConflictAnalyzer) Analyze(ctx context.Context, inputs []scanner.InputItem) []ConflictGroup {
	var order []string
	byKey := make(map[string][]SourceRef)

	for _, input := range inputs {
		if ctx.Err() != nil {
			a.logger.Warn("conflict analysis interrupted", "error", ctx.Err())
			break
		}
		entries, err := a.scanner.Scan(ctx, input)
		if err != nil {
			a.logger.Warn("skipping input in conflict analysis", "path", input.Path, "error", err)
			continue
		}
		for _, entry := range entries {
			if _, seen := byKey[entry.RelativePath]; !seen {
				order = append(order, entry.RelativePath)
			}
			byKey[entry.RelativePath] = append(byKey[entry.RelativePath], SourceRef{
				SourcePath:   entry.SourcePath,
				Size:         entry.Size,
				ModifiedDate: entry.ModifiedDate,
			})
		}
	}

	conflicts := []ConflictGroup{}
	for _, key := range order {
		sources := byKey[key]
		if len(sources) < 2 {
			continue
		}
		conflicts = append(conflicts, ConflictGroup{
			RelativePath:   key,
			Sources:        sources,
			SelectedSource: len(sources) - 1,
		})
	}

	a.logger.Debug("conflict analysis complete", "inputs", len(inputs), "paths", len(order), "conflicts", len(conflicts))
	return conflicts
}

// ApplyResolutions returns a copy of groups with SelectedSource overridden
// by resolutions, keyed by RelativePath. Keys with no group are ignored.
func ApplyResolutions(groups []ConflictGroup, resolutions map[string]int) ([]ConflictGroup, error) {
	resolved := make([]ConflictGroup, len(groups))
	for i, g := range groups {
		g.Sources = append([]SourceRef(nil), g.Sources...)
		if choice, ok := resolutions[g.RelativePath]; ok {
			if choice < DropEntry || choice >= len(g.Sources) {
				return nil, fmt.Errorf("%w: %s has %d sources, got index %d", ErrInvalidResolution, g.RelativePath, len(g.Sources), choice)
			}
			g.SelectedSource = choice
		}
		resolved[i] = g
	}
	return resolved, nil
}

// SkipRefs lists every source reference a resolved merge must leave out:
// all sources of a dropped group, and every non-selected source otherwise.
func SkipRefs(groups []ConflictGroup) []string {
	var skip []string
	for _, g := range groups {
		for i, src := range g.Sources {
			if i != g.SelectedSource {
				skip = append(skip, src.SourcePath)
			}
		}
	}
	return skip
}
