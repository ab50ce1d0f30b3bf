// Package tree renders packed archive summaries as box-drawing file trees.
package tree

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/eigeen/ree-pak-gui/internal/archive"
)

const (
	branch   = "├── "
	lastItem = "└── "
	pipe     = "│   "
	blank    = "    "
)

var units = []string{"B", "KB", "MB", "GB", "TB"}

// FormatSize renders bytes in 1024-based units with two decimals.
// The unit is floor(log1024(bytes)), clamped to TB.
func FormatSize(bytes uint64) string {
	if bytes == 0 {
		return "0.00 B"
	}
	exp := 0
	for scaled := bytes; scaled >= 1024 && exp < len(units)-1; scaled /= 1024 {
		exp++
	}
	value := float64(bytes) / math.Pow(1024, float64(exp))
	return fmt.Sprintf("%.2f %s", value, units[exp])
}

type node struct {
	name     string
	size     uint64
	isFile   bool
	children map[string]*node
}

func newDir(name string) *node {
	return &node{name: name, children: make(map[string]*node)}
}

func (n *node) insert(path string, size uint64) {
	segments := strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' })
	if len(segments) == 0 {
		return
	}
	cur := n
	for i, seg := range segments {
		child, ok := cur.children[seg]
		if i == len(segments)-1 {
			if !ok {
				child = &node{name: seg}
				cur.children[seg] = child
			}
			child.isFile = true
			child.size = size
			return
		}
		if !ok {
			child = newDir(seg)
			cur.children[seg] = child
		} else if child.children == nil {
			child.children = make(map[string]*node)
		}
		cur = child
	}
}

func (n *node) sorted() []*node {
	out := make([]*node, 0, len(n.children))
	for _, c := range n.children {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

func (n *node) label() string {
	if n.isFile && len(n.children) == 0 {
		return fmt.Sprintf("%s (%s)", n.name, FormatSize(n.size))
	}
	return n.name
}

// Render draws one section per archive, headed by the archive path.
// Children at each level are sorted by name.
func Render(archives []archive.PackedArchive) string {
	var b strings.Builder
	for i, a := range archives {
		if i > 0 {
			b.WriteByte('\n')
		}
		root := newDir(a.Path)
		for _, f := range a.Files {
			root.insert(f.Path, f.Size)
		}
		b.WriteString(a.Path)
		b.WriteByte('\n')
		writeChildren(&b, root, "")
	}
	return b.String()
}

func writeChildren(b *strings.Builder, n *node, prefix string) {
	children := n.sorted()
	for i, c := range children {
		connector, next := branch, pipe
		if i == len(children)-1 {
			connector, next = lastItem, blank
		}
		b.WriteString(prefix)
		b.WriteString(connector)
		b.WriteString(c.label())
		b.WriteByte('\n')
		if len(c.children) > 0 {
			writeChildren(b, c, prefix+next)
		}
	}
}
