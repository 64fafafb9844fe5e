package util

import (
	"path"
	"strings"
)

// HasTraversal reports whether key contains a ".." path segment.
func HasTraversal(key string) bool {
	for _, seg := range strings.FieldsFunc(key, func(r rune) bool { return r == '/' || r == '\\' }) {
		if seg == ".." {
			return true
		}
	}
	return false
}

// StripFromFirstDot drops everything from the first "." onward.
// "a/resume.v2.tex" becomes "a/resume"; a key without a dot is returned as is.
func StripFromFirstDot(key string) string {
	if i := strings.Index(key, "."); i >= 0 {
		return key[:i]
	}
	return key
}

// TrimExt drops the extension of the last path element only.
func TrimExt(key string) string {
	return strings.TrimSuffix(key, path.Ext(key))
}

// CleanKey normalizes a storage key to a slash-separated relative path.
func CleanKey(key string) string {
	return strings.TrimLeft(path.Clean("/"+strings.ReplaceAll(key, "\\", "/")), "/")
}
