// Package zippak implements archive.Engine over zip containers.
//
// Members are keyed by their name hash pair. When several sources supply the
// same member, the later source wins but the member keeps the position of its
// first appearance, so output order is stable across re-packs.
package zippak

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zip"

	"github.com/eigeen/ree-pak-gui/internal/archive"
	"github.com/eigeen/ree-pak-gui/internal/fsops"
	"github.com/eigeen/ree-pak-gui/internal/hash"
)

// eventBuffer bounds how far the writer may run ahead of the consumer.
const eventBuffer = 64

// Engine is a zip-backed archive.Engine.
type Engine struct {
	fs     fsops.FS
	hasher hash.NameHasher
	logger *log.Logger

	mu        sync.Mutex
	running   bool
	terminate atomic.Bool
}

// New creates a new Engine.
func New(fs fsops.FS, hasher hash.NameHasher, logger *log.Logger) *Engine {
	return &Engine{
		fs:     fs,
		hasher: hasher,
		logger: logger,
	}
}

// manifestEntry is one member scheduled for writing.
type manifestEntry struct {
	pair hash.Pair
	// name is the member name without a leading '/'.
	name string
	// realPath is set for loose files.
	realPath string
	// fromArchive is set for members copied out of an existing archive.
	fromArchive string
}

// manifest preserves first-insertion order while letting later inserts
// replace the value.
type manifest struct {
	order   []uint64
	entries map[uint64]manifestEntry
}

func newManifest() *manifest {
	return &manifest{entries: make(map[uint64]manifestEntry)}
}

func (m *manifest) put(e manifestEntry) {
	key := e.pair.Uint64()
	if _, ok := m.entries[key]; !ok {
		m.order = append(m.order, key)
	}
	m.entries[key] = e
}

func (m *manifest) each(fn func(manifestEntry) error) error {
	for _, key := range m.order {
		if err := fn(m.entries[key]); err != nil {
			return err
		}
	}
	return nil
}

// ReadHeader implements archive.Engine.
func (e *Engine) ReadHeader(ctx context.Context, path string) (*archive.Header, error) {
	zr, closer, err := e.openZip(path)
	if err != nil {
		return nil, &archive.EngineError{Op: "read header", Path: path, Err: err}
	}
	defer func() {
		_ = closer.Close()
	}()

	header := &archive.Header{}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		header.Entries = append(header.Entries, archive.Entry{
			Hash:             e.hasher.HashName(f.Name),
			Name:             "/" + hash.NormalizeName(f.Name),
			CompressedSize:   f.CompressedSize64,
			UncompressedSize: f.UncompressedSize64,
		})
	}
	return header, nil
}

// Pack implements archive.Engine.
func (e *Engine) Pack(ctx context.Context, req archive.PackRequest) (<-chan archive.Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		return nil, &archive.EngineError{Op: "pack", Path: req.Output, Err: archive.ErrPackAlreadyRunning}
	}
	exists, err := e.fs.Exists(req.Output)
	if err != nil {
		return nil, &archive.EngineError{Op: "pack", Path: req.Output, Err: err}
	}
	if exists {
		return nil, &archive.EngineError{Op: "pack", Path: req.Output, Err: archive.ErrOutputExists}
	}

	e.running = true
	e.terminate.Store(false)

	events := make(chan archive.Event, eventBuffer)
	go func() {
		defer func() {
			e.mu.Lock()
			e.running = false
			e.mu.Unlock()
			close(events)
		}()

		packed, err := e.pack(ctx, req, events)
		if err != nil {
			e.logger.Error("pack failed", "output", req.Output, "error", err)
			events <- archive.Error{Message: err.Error()}
			return
		}
		events <- archive.WorkFinished{Archives: []archive.PackedArchive{packed}}
	}()

	return events, nil
}

// TerminatePack implements archive.Engine.
func (e *Engine) TerminatePack(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running {
		return &archive.EngineError{Op: "terminate", Err: archive.ErrNotRunning}
	}
	e.terminate.Store(true)
	e.logger.Warn("pack termination requested")
	return nil
}

func (e *Engine) stopRequested(ctx context.Context) error {
	if e.terminate.Load() {
		return archive.ErrTerminated
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", archive.ErrTerminated, err)
	}
	return nil
}

func (e *Engine) pack(ctx context.Context, req archive.PackRequest, events chan<- archive.Event) (archive.PackedArchive, error) {
	packed := archive.PackedArchive{Path: req.Output}

	skip := make(map[string]struct{}, len(req.Skip))
	for _, ref := range req.Skip {
		skip[ref] = struct{}{}
	}

	m := newManifest()
	for _, source := range req.Sources {
		if err := e.stopRequested(ctx); err != nil {
			return packed, err
		}
		if err := e.collect(source, skip, m); err != nil {
			return packed, err
		}
	}

	events <- archive.WorkStart{Count: uint32(len(m.order))}

	if err := e.fs.MkdirAll(filepath.Dir(req.Output), 0755); err != nil {
		return packed, fmt.Errorf("failed to create output directory: %w", err)
	}
	tmpPath := fmt.Sprintf("%s.%s.tmp", req.Output, uuid.NewString())
	out, err := e.fs.CreateExclusive(tmpPath)
	if err != nil {
		return packed, fmt.Errorf("failed to create output: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = out.Close()
			_ = e.fs.Remove(tmpPath)
		}
	}()

	method := zip.Deflate
	if req.FastMode {
		method = zip.Store
	}

	zw := zip.NewWriter(out)
	readers := make(map[string]*zip.Reader)
	var closers []io.Closer
	defer func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}()

	var finished uint32
	err = m.each(func(entry manifestEntry) error {
		if err := e.stopRequested(ctx); err != nil {
			return err
		}

		src, donePath, err := e.openMember(entry, readers, &closers)
		if err != nil {
			return err
		}
		w, err := zw.CreateHeader(&zip.FileHeader{Name: entry.name, Method: method})
		if err != nil {
			_ = src.Close()
			return fmt.Errorf("failed to add %s: %w", entry.name, err)
		}
		n, err := io.Copy(w, src)
		_ = src.Close()
		if err != nil {
			return fmt.Errorf("failed to write %s: %w", entry.name, err)
		}

		finished++
		packed.Files = append(packed.Files, archive.PackedFile{
			Path: "/" + entry.name,
			Hash: entry.pair,
			Size: uint64(n),
		})
		events <- archive.FileDone{Path: donePath, FinishCount: finished}
		return nil
	})
	if err != nil {
		return packed, err
	}

	if err := zw.Close(); err != nil {
		return packed, fmt.Errorf("failed to finalize archive: %w", err)
	}
	if err := out.Close(); err != nil {
		return packed, fmt.Errorf("failed to close output: %w", err)
	}
	committed = true
	if err := e.fs.Rename(tmpPath, req.Output); err != nil {
		_ = e.fs.Remove(tmpPath)
		return packed, fmt.Errorf("failed to move output into place: %w", err)
	}
	return packed, nil
}

// collect adds every member of source to m.
func (e *Engine) collect(source string, skip map[string]struct{}, m *manifest) error {
	info, err := e.fs.Stat(source)
	if err != nil {
		return fmt.Errorf("failed to stat source %s: %w", source, err)
	}

	if !info.IsDir() {
		header, err := e.ReadHeader(context.Background(), source)
		if err != nil {
			return fmt.Errorf("not a readable archive: %w", err)
		}
		for _, entry := range header.Entries {
			if _, ok := skip[archive.MemberRef(source, entry.Key())]; ok {
				continue
			}
			m.put(manifestEntry{
				pair:        entry.Hash,
				name:        hash.NormalizeName(entry.Name),
				fromArchive: source,
			})
		}
		return nil
	}

	stack := []string{source}
	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := e.fs.ReadDir(dir)
		if err != nil {
			return fmt.Errorf("failed to list %s: %w", dir, err)
		}
		// Push in reverse so the listing order is visited first-to-last.
		for i := len(entries) - 1; i >= 0; i-- {
			full := filepath.Join(dir, entries[i].Name())
			if entries[i].IsDir() {
				stack = append(stack, full)
				continue
			}
			if _, ok := skip[full]; ok {
				continue
			}
			rel, err := filepath.Rel(source, full)
			if err != nil {
				return fmt.Errorf("failed to relativize %s: %w", full, err)
			}
			name := hash.NormalizeName(filepath.ToSlash(rel))
			m.put(manifestEntry{
				pair:     e.hasher.HashName(name),
				name:     name,
				realPath: full,
			})
		}
	}
	return nil
}

// openMember returns a reader for entry and the path to report in FileDone.
func (e *Engine) openMember(entry manifestEntry, readers map[string]*zip.Reader, closers *[]io.Closer) (io.ReadCloser, string, error) {
	if entry.realPath != "" {
		f, err := e.fs.Open(entry.realPath)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open %s: %w", entry.realPath, err)
		}
		return f, entry.realPath, nil
	}

	zr, ok := readers[entry.fromArchive]
	if !ok {
		var closer io.Closer
		var err error
		zr, closer, err = e.openZip(entry.fromArchive)
		if err != nil {
			return nil, "", err
		}
		readers[entry.fromArchive] = zr
		*closers = append(*closers, closer)
	}

	for _, f := range zr.File {
		if strings.EqualFold(hash.NormalizeName(f.Name), entry.name) {
			rc, err := f.Open()
			if err != nil {
				return nil, "", fmt.Errorf("failed to open member %s: %w", f.Name, err)
			}
			return rc, fmt.Sprintf("%s:%s", entry.fromArchive, entry.pair), nil
		}
	}
	return nil, "", fmt.Errorf("member %s not found in %s", entry.name, entry.fromArchive)
}

func (e *Engine) openZip(path string) (*zip.Reader, io.Closer, error) {
	info, err := e.fs.Stat(path)
	if err != nil {
		return nil, nil, err
	}
	if info.IsDir() {
		return nil, nil, errors.New("is a directory")
	}
	f, err := e.fs.Open(path)
	if err != nil {
		return nil, nil, err
	}
	zr, err := zip.NewReader(f, info.Size())
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	return zr, f, nil
}
