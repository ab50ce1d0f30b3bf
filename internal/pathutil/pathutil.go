// Package pathutil handles paths whose separator style is decided by the
// caller rather than the host OS. Inputs may arrive as Windows paths on a
// Unix host (and the reverse), so both '/' and '\' are treated as separators
// and output keeps the style of the input.
package pathutil

import "strings"

func isSep(r rune) bool {
	return r == '/' || r == '\\'
}

// SplitKeep breaks path on either separator, keeping empty segments, so
// that joining the result with the original separator reproduces the path.
func SplitKeep(path string) []string {
	return strings.Split(strings.ReplaceAll(path, "\\", "/"), "/")
}

// Separator reports the separator style used by path: '\' if it contains
// one, '/' otherwise.
func Separator(path string) string {
	if strings.Contains(path, "\\") {
		return "\\"
	}
	return "/"
}

// Parent returns everything before the last separator. ok is false when path
// has no separator or the parent would be empty (e.g. "/" or "name").
func Parent(path string) (string, bool) {
	idx := strings.LastIndexAny(path, "/\\")
	if idx <= 0 {
		return "", false
	}
	return path[:idx], true
}

// Base returns the final path segment.
func Base(path string) string {
	trimmed := strings.TrimRightFunc(path, isSep)
	idx := strings.LastIndexAny(trimmed, "/\\")
	return trimmed[idx+1:]
}

// Join appends name to dir using dir's separator style.
func Join(dir, name string) string {
	if dir == "" {
		return name
	}
	sep := Separator(dir)
	return strings.TrimRightFunc(dir, isSep) + sep + name
}

// EnsureExt appends ext to name unless name already ends with it.
func EnsureExt(name, ext string) string {
	if strings.HasSuffix(strings.ToLower(name), strings.ToLower(ext)) {
		return name
	}
	return name + ext
}

// ToSlash rewrites every '\' to '/'.
func ToSlash(path string) string {
	return strings.ReplaceAll(path, "\\", "/")
}
