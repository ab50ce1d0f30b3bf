package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/eigeen/ree-pak-gui/internal/engine"
)

// progressPrinter redraws a single status line for each progress snapshot.
type progressPrinter struct {
	w io.Writer

	mu      sync.Mutex
	lastLen int
	active  bool
}

func newProgressPrinter(w io.Writer) *progressPrinter {
	return &progressPrinter{w: w}
}

func (p *progressPrinter) update(s engine.ProgressState) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !s.Working {
		if p.active {
			_, _ = fmt.Fprintln(p.w)
			p.active = false
			p.lastLen = 0
		}
		return
	}

	line := fmt.Sprintf("[%5.1f%%] %d/%d %s", s.Percent(), s.FinishFileCount, s.TotalFileCount, s.CurrentFile)
	_, _ = dimColor.Fprintf(p.w, "\r%-*s", p.lastLen, line)
	p.lastLen = len(line)
	p.active = true
}

// watchInterrupt routes SIGINT and SIGTERM to the engine: a write in flight
// is terminated, anything else cancels ctx. The returned stop func must be
// called once the export returns.
func watchInterrupt(ctx context.Context, eng *engine.Engine, w io.Writer) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)
	sigs := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	go func() {
		for {
			select {
			case <-sigs:
				err := eng.TerminateExport(context.Background())
				switch {
				case err == nil:
					PrintWarning(w, "Export cancelled")
				case errors.Is(err, engine.ErrNotWriting):
					cancel()
				default:
					PrintWarning(w, fmt.Sprintf("Failed to cancel export: %v", err))
				}
			case <-done:
				return
			}
		}
	}()

	return ctx, func() {
		signal.Stop(sigs)
		close(done)
		cancel()
	}
}
