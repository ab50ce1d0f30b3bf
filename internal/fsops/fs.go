// Package fsops provides the filesystem abstraction used by pakmerge.
//
// Every directory listing, stat and output-file creation goes through the FS
// interface so that scanning, naming and packing can be exercised against
// fakes in tests.
//
// Key features:
//   - Stable, name-sorted directory listings
//   - Existence checks that distinguish "missing" from I/O failure
//   - Atomic output placement via temp file + rename
package fsops

import (
	"io"
	"io/fs"
	"os"
)

// File is a readable file handle. Archive containers need random access.
type File interface {
	io.Reader
	io.ReaderAt
	io.Seeker
	io.Closer
}

// FS provides an abstraction for filesystem operations.
type FS interface {
	// Stat returns file info, following symlinks.
	Stat(path string) (os.FileInfo, error)

	// ReadDir lists a directory sorted by file name.
	ReadDir(path string) ([]fs.DirEntry, error)

	// Exists checks if a path exists.
	Exists(path string) (bool, error)

	// MkdirAll creates a directory and all parent directories.
	MkdirAll(path string, perm os.FileMode) error

	// Open opens a file for reading.
	Open(path string) (File, error)

	// CreateExclusive creates a new file, failing if it already exists.
	CreateExclusive(path string) (io.WriteCloser, error)

	// Rename moves oldpath to newpath.
	Rename(oldpath, newpath string) error

	// Remove removes a file or empty directory.
	Remove(path string) error
}

// RealFS implements FS using actual OS operations.
type RealFS struct{}

// NewRealFS creates a new RealFS.
func NewRealFS() *RealFS {
	return &RealFS{}
}

// Stat returns file info, following symlinks.
func (fs *RealFS) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

// ReadDir lists a directory sorted by file name.
func (fs *RealFS) ReadDir(path string) ([]fs.DirEntry, error) {
	return os.ReadDir(path)
}

// Exists checks if a path exists.
func (fs *RealFS) Exists(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// MkdirAll creates a directory and all parent directories.
func (fs *RealFS) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// Open opens a file for reading.
func (fs *RealFS) Open(path string) (File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// CreateExclusive creates a new file, failing if it already exists.
// The parent directory must exist.
func (fs *RealFS) CreateExclusive(path string) (io.WriteCloser, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Rename moves oldpath to newpath.
func (fs *RealFS) Rename(oldpath, newpath string) error {
	return os.Rename(oldpath, newpath)
}

// Remove removes a file or empty directory.
func (fs *RealFS) Remove(path string) error {
	return os.Remove(path)
}
