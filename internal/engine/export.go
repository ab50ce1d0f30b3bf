package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/eigeen/ree-pak-gui/internal/archive"
	"github.com/eigeen/ree-pak-gui/internal/planner"
	"github.com/eigeen/ree-pak-gui/internal/scanner"
	"github.com/eigeen/ree-pak-gui/internal/tree"
)

// HandleExport resets the previous progress and result, then runs an export
// in cfg.Mode. It blocks until the export ends; callers that want to observe
// progress register observers or poll Progress from another goroutine.
//
// A merge export that finds conflicts writes nothing, leaves the engine in
// StateConflictsPending and returns ErrConflictsPending. The groups are
// available from Conflicts.
func (e *Engine) HandleExport(ctx context.Context, inputs []scanner.InputItem, cfg planner.ExportConfig) error {
	e.logger.Debug("handle export",
		"inputs", len(inputs),
		"mode", cfg.Mode,
		"exportDirectory", cfg.ExportDirectory,
		"autoDetectRoot", cfg.AutoDetectRoot)

	switch cfg.Mode {
	case planner.ModeIndividual:
		gen, err := e.begin()
		if err != nil {
			return err
		}
		defer e.release()
		return e.planAndWrite(ctx, gen, inputs, cfg, nil)

	case planner.ModeSingle:
		conflicts, err := e.HandleMergeExport(ctx, inputs, cfg)
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return fmt.Errorf("%w: %d conflicting paths", ErrConflictsPending, len(conflicts))
		}
		return nil

	default:
		return fmt.Errorf("%w: unknown export mode %q", planner.ErrInvalidConfig, cfg.Mode)
	}
}

// HandleMergeExport analyzes inputs for conflicts. With none, it writes the
// merged archive and returns an empty list. Otherwise it returns the
// conflicts without writing and waits in StateConflictsPending.
func (e *Engine) HandleMergeExport(ctx context.Context, inputs []scanner.InputItem, cfg planner.ExportConfig) ([]planner.ConflictGroup, error) {
	if cfg.ExportDirectory == "" {
		return nil, ErrExportDirRequired
	}
	cfg.Mode = planner.ModeSingle

	gen, err := e.begin()
	if err != nil {
		return nil, err
	}
	defer e.release()

	conflicts := e.analyzer.Analyze(ctx, inputs)
	if err := ctx.Err(); err != nil {
		e.fail(gen, nil, err.Error())
		return nil, err
	}

	if len(conflicts) > 0 {
		e.guarded(gen, func() (bool, bool) {
			e.state = StateConflictsPending
			e.conflicts = conflicts
			return false, false
		})
		e.logger.Info("merge export waiting for conflict resolution", "conflicts", len(conflicts))
		return e.Conflicts(), nil
	}

	return []planner.ConflictGroup{}, e.planAndWrite(ctx, gen, inputs, cfg, nil)
}

// ProceedWithMergeExport writes the merged archive using the pending
// conflicts and the resolutions set by SetConflictResolutions. Conflicts
// without a resolution keep their default source. Pending conflicts and
// resolutions are consumed: a later call starts without them.
//
// Called from any other state, no conflicts are known and every member is
// taken from the last source that supplies it.
func (e *Engine) ProceedWithMergeExport(ctx context.Context, inputs []scanner.InputItem, cfg planner.ExportConfig) error {
	cfg.Mode = planner.ModeSingle

	var (
		gen         uint64
		conflicts   []planner.ConflictGroup
		resolutions map[string]int
		busy        bool
		fresh       bool
	)
	e.mutate(func() (bool, bool) {
		if e.active {
			busy = true
			return false, false
		}
		e.active = true
		if e.state == StateConflictsPending {
			conflicts = e.conflicts
			resolutions = e.resolutions
		} else {
			fresh = true
			e.progress = ProgressState{}
			e.result = ExportResult{Files: []archive.PackedArchive{}}
		}
		e.conflicts = nil
		e.resolutions = nil
		e.generation++
		gen = e.generation
		e.state = StateScanning
		return fresh, fresh
	})
	if busy {
		return ErrExportInProgress
	}
	defer e.release()

	resolved, err := planner.ApplyResolutions(conflicts, resolutions)
	if err != nil {
		e.fail(gen, nil, err.Error())
		return err
	}
	return e.planAndWrite(ctx, gen, inputs, cfg, resolved)
}

// begin resets progress, result and pending conflicts for a new export.
// On success the caller owns the engine until it calls release.
func (e *Engine) begin() (uint64, error) {
	var gen uint64
	var err error
	e.mutate(func() (bool, bool) {
		if e.active {
			err = ErrExportInProgress
			return false, false
		}
		e.active = true
		e.generation++
		gen = e.generation
		e.state = StateScanning
		e.progress = ProgressState{}
		e.result = ExportResult{Files: []archive.PackedArchive{}}
		e.conflicts = nil
		e.resolutions = nil
		return true, true
	})
	return gen, err
}

func (e *Engine) planAndWrite(
	ctx context.Context,
	gen uint64,
	inputs []scanner.InputItem,
	cfg planner.ExportConfig,
	conflicts []planner.ConflictGroup,
) error {
	plan, err := e.planner.BuildExportPlan(ctx, inputs, cfg, conflicts)
	if err != nil {
		e.fail(gen, nil, err.Error())
		return err
	}
	e.logger.Debug("export plan built", "outputs", plan.OutputPaths())
	return e.writePlan(ctx, gen, plan, cfg)
}

// writePlan writes plan entries one at a time, waiting for each event
// stream to close before starting the next. The first failure aborts the
// remaining entries.
func (e *Engine) writePlan(ctx context.Context, gen uint64, plan *planner.ExportPlan, cfg planner.ExportConfig) error {
	written := []archive.PackedArchive{}

	for i, entry := range plan.Entries {
		if err := ctx.Err(); err != nil {
			e.fail(gen, written, err.Error())
			return err
		}
		next, ok := e.startWrite(gen)
		if !ok {
			return ErrCancelledByUser
		}
		gen = next

		e.logger.Info("writing archive",
			"output", entry.OutputPath,
			"sources", len(entry.Sources),
			"skipped", len(entry.Skip),
			"entry", i+1,
			"of", len(plan.Entries))

		events, err := e.archiver.Pack(ctx, archive.PackRequest{
			Sources:  entry.Sources,
			Output:   entry.OutputPath,
			Skip:     entry.Skip,
			FastMode: cfg.FastMode,
		})
		if err != nil {
			if !e.isCurrent(gen) {
				return ErrCancelledByUser
			}
			if !errors.Is(err, ErrArchiveEngineFailure) {
				err = &archive.EngineError{Op: "pack", Path: entry.OutputPath, Err: err}
			}
			e.fail(gen, written, err.Error())
			return err
		}
		if !e.isCurrent(gen) {
			// Terminated before the write registered with the Archive Engine.
			e.logger.Debug("stopping write cancelled before it started", "output", entry.OutputPath)
			e.stopArchiver(ctx)
		}

		archives, err := e.consume(gen, entry.OutputPath, events, written)
		if err != nil {
			return err
		}
		written = append(written, archives...)
	}

	e.guarded(gen, func() (bool, bool) {
		e.state = StateIdle
		return false, false
	})
	e.logger.Info("export finished", "archives", len(written))
	return nil
}

// startWrite opens a new generation for the next write, unless prev was
// cancelled.
func (e *Engine) startWrite(prev uint64) (uint64, bool) {
	var next uint64
	ok := e.guarded(prev, func() (bool, bool) {
		e.generation++
		next = e.generation
		e.state = StateWriting
		e.progress = ProgressState{Working: true}
		return true, false
	})
	return next, ok
}

// consume applies the events of one write in arrival order until the
// stream closes. Events of a stale generation change nothing.
func (e *Engine) consume(gen uint64, output string, events <-chan archive.Event, written []archive.PackedArchive) ([]archive.PackedArchive, error) {
	var (
		finished []archive.PackedArchive
		failure  string
		failed   bool
		terminal bool
	)

	for ev := range events {
		if terminal {
			e.logger.Debug("ignoring event after end of stream", "output", output)
			continue
		}

		switch ev := ev.(type) {
		case archive.WorkStart:
			e.guarded(gen, func() (bool, bool) {
				e.progress = ProgressState{Working: true, TotalFileCount: ev.Count}
				return true, false
			})

		case archive.FileDone:
			e.guarded(gen, func() (bool, bool) {
				e.progress.CurrentFile = ev.Path
				done := min(ev.FinishCount, e.progress.TotalFileCount)
				if done > e.progress.FinishFileCount {
					e.progress.FinishFileCount = done
				}
				return true, false
			})

		case archive.WorkFinished:
			terminal = true
			finished = ev.Archives
			all := append(append([]archive.PackedArchive{}, written...), ev.Archives...)
			e.guarded(gen, func() (bool, bool) {
				e.state = StateIdle
				e.progress.Working = false
				e.result = ExportResult{Success: true, Files: all, FileTree: tree.Render(all)}
				return true, true
			})

		case archive.Error:
			terminal = true
			failed = true
			failure = ev.Message
			if failure == "" {
				failure = "archive engine reported an unspecified error"
			}
			e.fail(gen, written, failure)
		}
	}

	if !e.isCurrent(gen) {
		e.logger.Debug("write ended after cancellation", "output", output)
		return nil, ErrCancelledByUser
	}
	if failed {
		return nil, &archive.EngineError{Op: "pack", Path: output, Err: errors.New(failure)}
	}
	if !terminal {
		err := &archive.EngineError{Op: "pack", Path: output, Err: errors.New("event stream closed without a result")}
		e.fail(gen, written, err.Error())
		return nil, err
	}
	return finished, nil
}

// fail ends export gen with a failed result. Archives already written by
// earlier plan entries stay listed in the result.
func (e *Engine) fail(gen uint64, written []archive.PackedArchive, message string) {
	e.logger.Error("export failed", "error", message)
	e.guarded(gen, func() (bool, bool) {
		e.state = StateIdle
		e.progress.Working = false
		e.result = ExportResult{
			Success: false,
			Files:   append([]archive.PackedArchive{}, written...),
			Error:   message,
		}
		return true, true
	})
}
