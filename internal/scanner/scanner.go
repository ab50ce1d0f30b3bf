// Package scanner enumerates the entries an input contributes to a merge.
//
// Folder inputs are walked depth-first with an explicit work list; every file
// at any depth becomes one entry keyed by its '/'-rooted path relative to the
// folder. Archive inputs are listed through the Archive Engine's header read
// and keyed by the member name hash pair, since names may not be resident.
//
// The scanner never reads file contents. Size and modification time are
// carried for display only.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/eigeen/ree-pak-gui/internal/archive"
	"github.com/eigeen/ree-pak-gui/internal/fsops"
	"github.com/eigeen/ree-pak-gui/internal/pathutil"
)

// DefaultArchiveExtensions lists the extensions recognized as containers.
var DefaultArchiveExtensions = []string{".pak"}

var (
	// ErrScanFailure marks an input that could not be scanned at all.
	ErrScanFailure = errors.New("scan failure")

	// ErrUnsupportedInput is returned for loose files that are not archives.
	ErrUnsupportedInput = errors.New("unsupported input: not a folder or archive")
)

// InputItem is one caller-selected input.
type InputItem struct {
	Path   string `json:"path"`
	IsFile bool   `json:"isFile"`
}

// ScannedEntry is one file contributed by an input.
type ScannedEntry struct {
	// RelativePath is the grouping key: a '/'-rooted relative path for folder
	// inputs, or an entry_<low>_<high> key for archive members.
	RelativePath string `json:"relativePath"`

	// SourcePath is a filesystem path, or archivePath:key for archive members.
	SourcePath string `json:"sourcePath"`

	Size         uint64    `json:"size"`
	ModifiedDate time.Time `json:"modifiedDate"`
}

// ScanError carries the input path of a failed scan. It matches
// ErrScanFailure under errors.Is.
type ScanError struct {
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("failed to scan %s: %v", e.Path, e.Err)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrScanFailure.
func (e *ScanError) Is(target error) bool {
	return target == ErrScanFailure
}

// Scanner turns inputs into entries.
type Scanner struct {
	fs         fsops.FS
	engine     archive.Engine
	logger     *log.Logger
	extensions []string
}

// New creates a Scanner. A nil extensions list selects the defaults.
func New(fs fsops.FS, engine archive.Engine, logger *log.Logger, extensions []string) *Scanner {
	if len(extensions) == 0 {
		extensions = DefaultArchiveExtensions
	}
	return &Scanner{
		fs:         fs,
		engine:     engine,
		logger:     logger,
		extensions: extensions,
	}
}

// IsArchive reports whether path has a container extension.
func (s *Scanner) IsArchive(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, want := range s.extensions {
		if ext == strings.ToLower(want) {
			return true
		}
	}
	return false
}

// Scan enumerates the entries of input. A returned error is always a
// *ScanError; entries from unreadable subdirectories are skipped with a
// warning rather than failing the scan.
func (s *Scanner) Scan(ctx context.Context, input InputItem) ([]ScannedEntry, error) {
	if input.IsFile {
		if !s.IsArchive(input.Path) {
			return nil, &ScanError{Path: input.Path, Err: ErrUnsupportedInput}
		}
		return s.scanArchive(ctx, input.Path)
	}
	return s.scanFolder(ctx, input.Path)
}

func (s *Scanner) scanArchive(ctx context.Context, path string) ([]ScannedEntry, error) {
	info, err := s.fs.Stat(path)
	if err != nil {
		return nil, &ScanError{Path: path, Err: err}
	}
	header, err := s.engine.ReadHeader(ctx, path)
	if err != nil {
		return nil, &ScanError{Path: path, Err: err}
	}

	entries := make([]ScannedEntry, 0, len(header.Entries))
	for _, entry := range header.Entries {
		key := entry.Key()
		entries = append(entries, ScannedEntry{
			RelativePath: key,
			SourcePath:   archive.MemberRef(path, key),
			Size:         entry.UncompressedSize,
			ModifiedDate: info.ModTime(),
		})
	}
	s.logger.Debug("scanned archive", "path", path, "entries", len(entries))
	return entries, nil
}

func (s *Scanner) scanFolder(ctx context.Context, root string) ([]ScannedEntry, error) {
	rootEntries, err := s.fs.ReadDir(root)
	if err != nil {
		return nil, &ScanError{Path: root, Err: err}
	}

	type node struct {
		path  string
		entry fs.DirEntry
	}
	var stack []node
	// Children are pushed in reverse so they pop in listing order.
	push := func(dir string, children []fs.DirEntry) {
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, node{path: filepath.Join(dir, children[i].Name()), entry: children[i]})
		}
	}
	push(root, rootEntries)

	var entries []ScannedEntry
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, &ScanError{Path: root, Err: err}
		}

		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if n.entry.IsDir() {
			children, err := s.fs.ReadDir(n.path)
			if err != nil {
				s.logger.Warn("skipping unreadable directory", "path", n.path, "error", err)
				continue
			}
			push(n.path, children)
			continue
		}

		info, err := n.entry.Info()
		if err != nil {
			s.logger.Warn("skipping unreadable file", "path", n.path, "error", err)
			continue
		}
		entries = append(entries, ScannedEntry{
			RelativePath: relativeKey(root, n.path),
			SourcePath:   n.path,
			Size:         uint64(info.Size()),
			ModifiedDate: info.ModTime(),
		})
	}

	s.logger.Debug("scanned folder", "path", root, "files", len(entries))
	return entries, nil
}

// relativeKey renders path relative to root with '/' separators and a
// leading '/'.
func relativeKey(root, path string) string {
	rel := strings.TrimPrefix(path, root)
	rel = pathutil.ToSlash(rel)
	if !strings.HasPrefix(rel, "/") {
		rel = "/" + rel
	}
	return rel
}
