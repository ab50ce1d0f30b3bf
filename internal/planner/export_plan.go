package planner

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/eigeen/ree-pak-gui/internal/pathutil"
	"github.com/eigeen/ree-pak-gui/internal/rootdetect"
	"github.com/eigeen/ree-pak-gui/internal/scanner"
)

// Planner builds export plans.
type Planner struct {
	detector *rootdetect.Detector
	namer    *Namer
	logger   *log.Logger
}

// NewPlanner creates a new Planner.
func NewPlanner(detector *rootdetect.Detector, namer *Namer, logger *log.Logger) *Planner {
	return &Planner{
		detector: detector,
		namer:    namer,
		logger:   logger,
	}
}

// BuildExportPlan generates the plan for inputs under cfg. In single mode,
// conflicts must already carry the caller's resolutions (see
// ApplyResolutions); they are ignored in individual mode, where inputs never
// share an output.
//
// Planning errors are fatal and returned before any output is written.
func (p *Planner) BuildExportPlan(
	ctx context.Context,
	inputs []scanner.InputItem,
	cfg ExportConfig,
	conflicts []ConflictGroup,
) (*ExportPlan, error) {
	if len(inputs) == 0 {
		return nil, ErrNoInputs
	}

	switch cfg.Mode {
	case ModeIndividual:
		return p.buildIndividual(ctx, inputs, cfg)
	case ModeSingle:
		return p.buildSingle(ctx, inputs, cfg, conflicts)
	default:
		return nil, fmt.Errorf("%w: unknown export mode %q", ErrInvalidConfig, cfg.Mode)
	}
}

func (p *Planner) buildIndividual(ctx context.Context, inputs []scanner.InputItem, cfg ExportConfig) (*ExportPlan, error) {
	plan := NewExportPlan()
	reserved := make(map[string]struct{})

	for _, input := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		dir := cfg.ExportDirectory
		if dir == "" {
			parent, ok := pathutil.Parent(input.Path)
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrMissingParentPath, input.Path)
			}
			dir = parent
		}

		name, err := p.namer.UniqueName(dir, p.namer.DefaultName(input.Path, cfg), reserved)
		if err != nil {
			return nil, err
		}
		outputPath := pathutil.Join(dir, name)
		reserved[outputPath] = struct{}{}

		plan.AddEntry(PlanEntry{
			Sources:    p.resolveSources([]string{input.Path}, cfg),
			OutputPath: outputPath,
		})
	}

	p.logger.Debug("built individual export plan", "entries", len(plan.Entries))
	return plan, nil
}

func (p *Planner) buildSingle(ctx context.Context, inputs []scanner.InputItem, cfg ExportConfig, conflicts []ConflictGroup) (*ExportPlan, error) {
	if cfg.ExportDirectory == "" {
		return nil, ErrExportDirRequired
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name, err := p.namer.UniqueName(cfg.ExportDirectory, p.namer.MergedName(inputs, cfg), nil)
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(inputs))
	for _, input := range inputs {
		paths = append(paths, input.Path)
	}

	plan := NewExportPlan()
	plan.AddEntry(PlanEntry{
		Sources:    p.resolveSources(paths, cfg),
		OutputPath: pathutil.Join(cfg.ExportDirectory, name),
		Skip:       SkipRefs(conflicts),
	})

	p.logger.Debug("built merge export plan", "sources", len(plan.Entries[0].Sources), "skipped", len(plan.Entries[0].Skip))
	return plan, nil
}

// resolveSources substitutes detected roots when enabled, collapsing
// duplicates while keeping first-occurrence order.
func (p *Planner) resolveSources(paths []string, cfg ExportConfig) []string {
	if !cfg.AutoDetectRoot {
		return append([]string(nil), paths...)
	}

	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, path := range paths {
		resolved := path
		if root, ok := p.detector.RootFor(path); ok {
			resolved = root
		}
		if _, dup := seen[resolved]; dup {
			continue
		}
		seen[resolved] = struct{}{}
		out = append(out, resolved)
	}
	return out
}
