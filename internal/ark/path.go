package ark

import (
	"path"
	"strings"
)

// NormalizePath canonicalizes an in-archive path: backslashes become forward
// slashes, a leading slash is enforced, redundant separators and dot segments
// collapse, and trailing slashes are stripped. The root is "/".
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	p = path.Clean(p)
	return p
}

// ParentPath returns the immediate parent of a normalized path.
// The parent of the root is the root itself.
func ParentPath(p string) string {
	if p == "/" {
		return "/"
	}
	parent := path.Dir(p)
	return parent
}

// BaseName returns the final segment of a normalized path.
func BaseName(p string) string {
	return path.Base(p)
}

// isDescendant reports whether child lies strictly under parent.
// Both paths must be normalized.
func isDescendant(parent, child string) bool {
	if parent == "/" {
		return child != "/"
	}
	return strings.HasPrefix(child, parent+"/")
}
