package archive

import (
	"context"

	"github.com/eigeen/ree-pak-gui/internal/hash"
)

// Entry is one row of an archive's entry table.
type Entry struct {
	// Hash identifies the member. Raw names may not be resident.
	Hash hash.Pair

	// Name is the member name when the container stores it, empty otherwise.
	Name string

	CompressedSize   uint64
	UncompressedSize uint64
}

// Key returns the grouping key for this entry.
func (e Entry) Key() string {
	return e.Hash.Key()
}

// Header is the decoded entry table of an archive.
type Header struct {
	Entries []Entry
}

// PackRequest describes one archive to write.
type PackRequest struct {
	// Sources are folders or archives, in precedence order: a member supplied
	// by a later source replaces the same member from an earlier one.
	Sources []string

	// Output is the archive path to create. It must not exist.
	Output string

	// Skip lists source references to leave out. A reference is either a
	// loose file path or an archive member reference (see MemberRef).
	Skip []string

	// FastMode trades compression ratio for speed.
	FastMode bool
}

// Engine is the Archive Engine command interface.
type Engine interface {
	// ReadHeader returns the entry table of the archive at path.
	ReadHeader(ctx context.Context, path string) (*Header, error)

	// Pack starts writing req.Output and returns its event stream. The stream
	// delivers events in emission order, ends with exactly one WorkFinished
	// or Error, and is then closed.
	Pack(ctx context.Context, req PackRequest) (<-chan Event, error)

	// TerminatePack asks the in-flight Pack to stop. Best effort.
	TerminatePack(ctx context.Context) error
}

// PackedFile is one member written to an output archive.
type PackedFile struct {
	// Path is the member path with a leading '/', or the hex hash when the
	// name is unknown.
	Path string
	Hash hash.Pair
	Size uint64
}

// PackedArchive summarizes one written archive.
type PackedArchive struct {
	Path  string
	Files []PackedFile
}

// MemberRef builds the composite reference for an archive member.
func MemberRef(archivePath, key string) string {
	return archivePath + ":" + key
}
