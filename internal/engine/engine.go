// Package engine provides the export orchestrator.
//
// The engine package sits between callers (the CLI) and the lower-level
// components. It runs conflict analysis, builds export plans, drives the
// Archive Engine through its event stream and keeps the progress and result
// state that callers observe.
//
// Key components:
//   - Engine: owns the export state machine and its snapshots
//   - HandleExport / HandleMergeExport / ProceedWithMergeExport: export entry points
//   - TerminateExport: cooperative cancellation with generation tagging
package engine

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/eigeen/ree-pak-gui/internal/archive"
	"github.com/eigeen/ree-pak-gui/internal/planner"
)

// Engine orchestrates export operations.
// One Engine drives at most one export at a time.
type Engine struct {
	archiver archive.Engine
	analyzer *planner.ConflictAnalyzer
	planner  *planner.Planner
	logger   *log.Logger

	// notifyMu orders snapshot dispatch so observers see replacements in
	// the order they were made.
	notifyMu sync.Mutex

	mu          sync.Mutex
	active      bool
	state       State
	progress    ProgressState
	result      ExportResult
	generation  uint64
	conflicts   []planner.ConflictGroup
	resolutions map[string]int

	progressObservers []func(ProgressState)
	resultObservers   []func(ExportResult)
}

// New creates a new Engine with the given dependencies.
func New(
	archiver archive.Engine,
	analyzer *planner.ConflictAnalyzer,
	plnr *planner.Planner,
	logger *log.Logger,
) *Engine {
	return &Engine{
		archiver: archiver,
		analyzer: analyzer,
		planner:  plnr,
		logger:   logger,
		result:   ExportResult{Files: []archive.PackedArchive{}},
	}
}

// Progress returns a snapshot of the current progress.
func (e *Engine) Progress() ProgressState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.progress
}

// Result returns a snapshot of the last export result.
func (e *Engine) Result() ExportResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.result.clone()
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Conflicts returns the groups found by the last merge analysis.
func (e *Engine) Conflicts() []planner.ConflictGroup {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]planner.ConflictGroup, len(e.conflicts))
	for i, g := range e.conflicts {
		g.Sources = append([]planner.SourceRef(nil), g.Sources...)
		out[i] = g
	}
	return out
}

// OnProgress registers fn to receive every new progress snapshot.
// Observers run synchronously on the goroutine that changed the state.
// They may read snapshots but must not call methods that change state.
func (e *Engine) OnProgress(fn func(ProgressState)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.progressObservers = append(e.progressObservers, fn)
}

// OnResult registers fn to receive every new result snapshot.
func (e *Engine) OnResult(fn func(ExportResult)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resultObservers = append(e.resultObservers, fn)
}

// SetConflictResolutions records the caller's choices for the pending
// conflicts, keyed by relative path. A value is a source index or
// planner.DropEntry. Resolutions are validated when the merge proceeds.
func (e *Engine) SetConflictResolutions(resolutions map[string]int) {
	copied := make(map[string]int, len(resolutions))
	for k, v := range resolutions {
		copied[k] = v
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resolutions = copied
}

// TerminateExport cancels the write in flight. Local state returns to idle
// at once, whatever the Archive Engine answers; a failed cancellation is
// logged as a warning. Events still arriving from the cancelled write are
// discarded.
func (e *Engine) TerminateExport(ctx context.Context) error {
	var notWriting bool
	e.mutate(func() (bool, bool) {
		if e.state != StateWriting {
			notWriting = true
			return false, false
		}
		e.generation++
		e.state = StateIdle
		e.progress = ProgressState{}
		return true, false
	})
	if notWriting {
		return ErrNotWriting
	}

	e.stopArchiver(ctx)
	e.logger.Warn("export cancelled")
	return nil
}

// stopArchiver asks the Archive Engine to stop. Failures are only logged.
func (e *Engine) stopArchiver(ctx context.Context) {
	if err := e.archiver.TerminatePack(ctx); err != nil && !errors.Is(err, archive.ErrNotRunning) {
		e.logger.Warn("failed to cancel archive write", "error", err)
	}
}

// mutate runs fn under the lock and then notifies observers of whichever
// snapshots fn reports as replaced. A later mutate waits until the
// observers of an earlier one have returned.
func (e *Engine) mutate(fn func() (progressChanged, resultChanged bool)) {
	e.notifyMu.Lock()
	defer e.notifyMu.Unlock()

	e.mu.Lock()
	progressChanged, resultChanged := fn()
	progress := e.progress
	result := e.result.clone()
	var progressObservers []func(ProgressState)
	var resultObservers []func(ExportResult)
	if progressChanged {
		progressObservers = append(progressObservers, e.progressObservers...)
	}
	if resultChanged {
		resultObservers = append(resultObservers, e.resultObservers...)
	}
	e.mu.Unlock()

	for _, fn := range progressObservers {
		fn(progress)
	}
	for _, fn := range resultObservers {
		fn(result.clone())
	}
}

// guarded is mutate for work tagged with gen. It does nothing and returns
// false once gen is stale.
func (e *Engine) guarded(gen uint64, fn func() (progressChanged, resultChanged bool)) bool {
	current := true
	e.mutate(func() (bool, bool) {
		if e.generation != gen {
			current = false
			return false, false
		}
		return fn()
	})
	return current
}

// release ends the call that began an export.
func (e *Engine) release() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.active = false
}

func (e *Engine) isCurrent(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.generation == gen
}
