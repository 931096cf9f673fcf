package notes

import "strings"

// Category paths are slash-delimited strings over a flat note table; there
// is no folder entity. The canonical root is the empty string: "" and "/"
// both normalize to "", and a canonical non-root path has no leading or
// trailing separator and no empty segments.

// Separator is the category path separator.
const Separator = "/"

// NormalizePath returns the canonical form of a category path: segments are
// whitespace-trimmed, empty segments collapsed, no leading or trailing
// separator. Total (never fails) and idempotent.
//
// Examples:
//   - "研究/AI/深層学習" → "研究/AI/深層学習"
//   - "/a//b/"          → "a/b"
//   - "/", "", "  "     → ""
func NormalizePath(path string) string {
	return strings.Join(SplitPath(path), Separator)
}

// SplitPath returns the canonical segments of a path, nil for the root.
func SplitPath(path string) []string {
	if path == "" {
		return nil
	}
	var segments []string
	for _, seg := range strings.Split(path, Separator) {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		segments = append(segments, seg)
	}
	return segments
}

// JoinPath joins a parent path and a leaf name into a canonical full path.
// An empty parent means the leaf sits at the root.
//
// Examples:
//   - JoinPath("研究/AI", "深層学習") → "研究/AI/深層学習"
//   - JoinPath("", "メモ")           → "メモ"
func JoinPath(parentPath, name string) string {
	return NormalizePath(parentPath + Separator + name)
}

// ParentPath returns the canonical parent of a path, "" for top-level paths
// and for the root itself.
func ParentPath(path string) string {
	segments := SplitPath(path)
	if len(segments) <= 1 {
		return ""
	}
	return strings.Join(segments[:len(segments)-1], Separator)
}

// LeafName returns the final segment of a path, "" for the root.
func LeafName(path string) string {
	segments := SplitPath(path)
	if len(segments) == 0 {
		return ""
	}
	return segments[len(segments)-1]
}

// PathDepth returns the number of segments in a path; 0 for the root.
func PathDepth(path string) int {
	return len(SplitPath(path))
}

// IsDescendantOrSelf reports whether candidate equals ancestor or sits
// anywhere under it. Prefix matches only count on a separator boundary, so
// "ab/c" is not a descendant of "a". The root is an ancestor of everything.
// Used to block moving a category into itself or its own subtree.
func IsDescendantOrSelf(candidate, ancestor string) bool {
	candidate = NormalizePath(candidate)
	ancestor = NormalizePath(ancestor)

	if ancestor == "" {
		return true
	}
	if candidate == ancestor {
		return true
	}
	return strings.HasPrefix(candidate, ancestor+Separator)
}

// RewritePrefix replaces the ancestor prefix of path with newPrefix,
// preserving the remainder. The caller must have established that path is a
// descendant-or-self of oldPrefix.
func RewritePrefix(path, oldPrefix, newPrefix string) string {
	path = NormalizePath(path)
	oldPrefix = NormalizePath(oldPrefix)
	newPrefix = NormalizePath(newPrefix)

	if path == oldPrefix {
		return newPrefix
	}
	remainder := strings.TrimPrefix(path, oldPrefix+Separator)
	return JoinPath(newPrefix, remainder)
}
