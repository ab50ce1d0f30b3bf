package archive

import (
	"errors"
	"fmt"
)

var (
	// ErrEngineFailure marks any failed Archive Engine command.
	ErrEngineFailure = errors.New("archive engine failure")

	// ErrPackAlreadyRunning is returned when Pack is called while another
	// pack is still in flight.
	ErrPackAlreadyRunning = errors.New("a pack operation is already running")

	// ErrNotRunning is returned by TerminatePack when nothing is in flight.
	ErrNotRunning = errors.New("no pack operation is running")

	// ErrTerminated is reported when a pack stops on request.
	ErrTerminated = errors.New("pack terminated")

	// ErrOutputExists is returned when the output archive already exists.
	ErrOutputExists = errors.New("output file already exists")
)

// EngineError carries the command and path of a failed engine call.
// It matches ErrEngineFailure under errors.Is.
type EngineError struct {
	Op   string
	Path string
	Err  error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrEngineFailure.
func (e *EngineError) Is(target error) bool {
	return target == ErrEngineFailure
}
