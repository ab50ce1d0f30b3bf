package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestXXHasher_HashName(t *testing.T) {
	h := NewXXHasher()

	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, h.HashName("natives/STM/a.tex"), h.HashName("natives/STM/a.tex"))
	})

	t.Run("case insensitive", func(t *testing.T) {
		assert.Equal(t, h.HashName("natives/STM/a.tex"), h.HashName("NATIVES/stm/A.TEX"))
	})

	t.Run("separator and leading slash normalized", func(t *testing.T) {
		assert.Equal(t, h.HashName("/natives/STM/a.tex"), h.HashName(`natives\STM\a.tex`))
	})

	t.Run("different names differ", func(t *testing.T) {
		assert.NotEqual(t, h.HashName("a.tex"), h.HashName("b.tex"))
	})
}

func TestPair(t *testing.T) {
	p := Pair{Low: 1, High: 2}

	assert.Equal(t, uint64(0x0000000200000001), p.Uint64())
	assert.Equal(t, "entry_1_2", p.Key())
	assert.Equal(t, "0000000200000001", p.String())
}

func TestNormalizeName(t *testing.T) {
	tests := map[string]string{
		"/a/b.txt":  "a/b.txt",
		`\a\b.txt`:  "a/b.txt",
		"a/b.txt":   "a/b.txt",
		"//a/b.txt": "a/b.txt",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeName(in), "NormalizeName(%q)", in)
	}
}
