// Package hash provides the member-name hash pair used to key archive
// entries.
//
// Containers do not always keep member names resident, so entries are
// identified by two 32-bit hashes of the normalized name: one over the
// lower-cased form and one over the upper-cased form. The pair is what the
// conflict analyzer sees for archive inputs.
package hash

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Pair identifies an archive member by name hashes.
type Pair struct {
	Low  uint32
	High uint32
}

// Uint64 packs the pair into a single value, High in the upper half.
func (p Pair) Uint64() uint64 {
	return uint64(p.High)<<32 | uint64(p.Low)
}

// Key renders the pair as the string key used to group archive entries.
func (p Pair) Key() string {
	return fmt.Sprintf("entry_%d_%d", p.Low, p.High)
}

// String implements fmt.Stringer.
func (p Pair) String() string {
	return fmt.Sprintf("%016X", p.Uint64())
}

// NameHasher computes the hash pair of an archive member name.
type NameHasher interface {
	HashName(name string) Pair
}

// XXHasher implements NameHasher with xxhash64, truncated to 32 bits per half.
type XXHasher struct{}

// NewXXHasher creates a new XXHasher.
func NewXXHasher() *XXHasher {
	return &XXHasher{}
}

// HashName normalizes name to a forward-slash path without a leading
// separator and hashes its lower- and upper-case forms.
func (h *XXHasher) HashName(name string) Pair {
	normalized := NormalizeName(name)
	return Pair{
		Low:  uint32(xxhash.Sum64String(strings.ToLower(normalized))),
		High: uint32(xxhash.Sum64String(strings.ToUpper(normalized))),
	}
}

// NormalizeName converts name to the canonical member form: '/' separators,
// no leading separator.
func NormalizeName(name string) string {
	return strings.TrimLeft(strings.ReplaceAll(name, "\\", "/"), "/")
}
