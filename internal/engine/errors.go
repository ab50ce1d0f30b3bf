package engine

import (
	"errors"

	"github.com/eigeen/ree-pak-gui/internal/archive"
	"github.com/eigeen/ree-pak-gui/internal/planner"
	"github.com/eigeen/ree-pak-gui/internal/scanner"
)

var (
	// ErrScanFailure marks an input that could not be scanned. Analysis
	// logs and skips such inputs.
	ErrScanFailure = scanner.ErrScanFailure

	// ErrMissingParentPath indicates an individual export input with no
	// parent directory and no configured export directory.
	ErrMissingParentPath = planner.ErrMissingParentPath

	// ErrExportDirRequired indicates a merge export without a destination.
	ErrExportDirRequired = planner.ErrExportDirRequired

	// ErrArchiveEngineFailure indicates a failed write or header read.
	ErrArchiveEngineFailure = archive.ErrEngineFailure

	// ErrCancelledByUser is returned by an export call whose write was
	// terminated.
	ErrCancelledByUser = errors.New("export cancelled by user")

	// ErrNotWriting indicates TerminateExport was called with no write in flight.
	ErrNotWriting = errors.New("no export is being written")

	// ErrExportInProgress indicates an export call while another is running.
	ErrExportInProgress = errors.New("an export is already in progress")

	// ErrConflictsPending is returned by HandleExport when a merge export
	// stopped to wait for conflict resolutions.
	ErrConflictsPending = errors.New("merge conflicts require resolution")
)
