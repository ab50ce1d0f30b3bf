// Package archivetest provides a scriptable archive.Engine for tests.
package archivetest

import (
	"context"
	"fmt"
	"sync"

	"github.com/eigeen/ree-pak-gui/internal/archive"
)

// Fake implements archive.Engine.
//
// ReadHeader answers from Headers. Pack records the request and either
// replays Script (when set) or, in manual mode, hands the send side of the
// stream to the test through Opened.
type Fake struct {
	mu sync.Mutex

	Headers   map[string]*archive.Header
	HeaderErr map[string]error

	// Script returns the events to replay for a request. The stream is
	// closed after the last one.
	Script func(req archive.PackRequest) []archive.Event

	// BeforePack, when set, runs at the start of Pack outside the fake's
	// lock, so it may call back into the caller.
	BeforePack func(req archive.PackRequest)

	// PackErr, when set, makes Pack fail synchronously.
	PackErr error

	// TerminateErr is returned by TerminatePack.
	TerminateErr error

	// Opened receives each manual stream. Tests send events on it and close it.
	Opened chan chan<- archive.Event

	requests   []archive.PackRequest
	terminates int
}

// NewFake creates a Fake in scripted mode with a script that emits a
// one-file successful pack per request.
func NewFake() *Fake {
	return &Fake{
		Headers:   make(map[string]*archive.Header),
		HeaderErr: make(map[string]error),
		Script:    SucceedWith(1),
	}
}

// NewManualFake creates a Fake whose streams are driven by the test.
func NewManualFake() *Fake {
	f := NewFake()
	f.Script = nil
	f.Opened = make(chan chan<- archive.Event, 4)
	return f
}

// SucceedWith returns a script that reports n files and finishes.
func SucceedWith(n uint32) func(req archive.PackRequest) []archive.Event {
	return func(req archive.PackRequest) []archive.Event {
		events := []archive.Event{archive.WorkStart{Count: n}}
		packed := archive.PackedArchive{Path: req.Output}
		for i := uint32(1); i <= n; i++ {
			name := fmt.Sprintf("/file%d.bin", i)
			events = append(events, archive.FileDone{Path: name, FinishCount: i})
			packed.Files = append(packed.Files, archive.PackedFile{Path: name, Size: 1024})
		}
		return append(events, archive.WorkFinished{Archives: []archive.PackedArchive{packed}})
	}
}

// FailWith returns a script that starts and then reports msg.
func FailWith(msg string) func(req archive.PackRequest) []archive.Event {
	return func(req archive.PackRequest) []archive.Event {
		return []archive.Event{archive.WorkStart{Count: 1}, archive.Error{Message: msg}}
	}
}

// ReadHeader implements archive.Engine.
func (f *Fake) ReadHeader(ctx context.Context, path string) (*archive.Header, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.HeaderErr[path]; ok {
		return nil, &archive.EngineError{Op: "read header", Path: path, Err: err}
	}
	if h, ok := f.Headers[path]; ok {
		return h, nil
	}
	return nil, &archive.EngineError{Op: "read header", Path: path, Err: fmt.Errorf("no such archive")}
}

// Pack implements archive.Engine.
func (f *Fake) Pack(ctx context.Context, req archive.PackRequest) (<-chan archive.Event, error) {
	if f.BeforePack != nil {
		f.BeforePack(req)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.PackErr != nil {
		return nil, &archive.EngineError{Op: "pack", Path: req.Output, Err: f.PackErr}
	}

	if f.Script == nil {
		ch := make(chan archive.Event, 16)
		f.Opened <- ch
		return ch, nil
	}

	events := f.Script(req)
	ch := make(chan archive.Event, len(events))
	for _, ev := range events {
		ch <- ev
	}
	close(ch)
	return ch, nil
}

// TerminatePack implements archive.Engine.
func (f *Fake) TerminatePack(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.terminates++
	return f.TerminateErr
}

// Requests returns a copy of the recorded pack requests.
func (f *Fake) Requests() []archive.PackRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]archive.PackRequest(nil), f.requests...)
}

// Terminates returns how many times TerminatePack was called.
func (f *Fake) Terminates() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.terminates
}
