package pathutil

import (
	"path/filepath"
	"strings"
)

// Normalize returns a canonical filesystem path string.
// It removes trailing slashes, collapses "." and "..", and
// preserves relative paths when provided.
func Normalize(path string) string {
	if path == "" {
		return path
	}
	return filepath.Clean(path)
}

// Absolute returns the cleaned absolute form of path. Symlinks are not
// resolved. When the working directory cannot be determined the cleaned
// input is returned unchanged.
func Absolute(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Normalize(path)
	}
	return abs
}

// Ext returns the extension of path without the leading dot, or "" when the
// base name has none. A leading dot alone (".bashrc") is not an extension.
func Ext(path string) string {
	base := filepath.Base(path)
	idx := strings.LastIndexByte(base, '.')
	if idx <= 0 || idx == len(base)-1 {
		return ""
	}
	return base[idx+1:]
}
