// Package sandbox implements the confinement layer: path validation
// against a configured root, durable session state, and bounded execution
// of the R interpreter.
package sandbox

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// ErrNoRoot is returned by Resolve when no root directory is configured.
var ErrNoRoot = errors.New("no root directory configured")

// ErrOutsideRoot is returned by Resolve when the candidate path realizes
// to a location outside the root directory.
var ErrOutsideRoot = errors.New("path is outside the working directory")

// Resolve validates candidate against root and returns its absolute,
// symlink-realized form. The result is guaranteed to be root itself or a
// descendant of it; `..` traversal, absolute-path override and symlink
// escapes are all rejected.
//
// Resolve is a pure function over the filesystem at call time. The window
// between this check and any subsequent use of the path is accepted as a
// known limitation.
func Resolve(root, candidate string) (string, error) {
	if root == "" {
		return "", ErrNoRoot
	}

	realRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return "", fmt.Errorf("resolving root: %w", err)
	}

	path := candidate
	if !filepath.IsAbs(path) {
		path = filepath.Join(realRoot, path)
	}

	resolved, err := realize(filepath.Clean(path))
	if err != nil {
		return "", err
	}

	if !descends(realRoot, resolved) {
		return "", ErrOutsideRoot
	}
	return resolved, nil
}

// realize resolves symlinks in path. Trailing segments that do not exist
// yet (e.g. a file about to be created) are joined onto the realized form
// of their nearest existing ancestor. The input must be absolute and
// cleaned, so lexical joining of the tail cannot reintroduce "..".
func realize(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err == nil {
		return resolved, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}

	dir := filepath.Dir(path)
	if dir == path {
		// Filesystem root does not exist; nothing more to resolve.
		return path, nil
	}
	realDir, err := realize(dir)
	if err != nil {
		return "", err
	}
	return filepath.Join(realDir, filepath.Base(path)), nil
}

// descends reports whether path is root or a proper descendant of it.
// Both arguments must already be absolute and symlink-realized.
func descends(root, path string) bool {
	if path == root {
		return true
	}
	return strings.HasPrefix(path, root+string(filepath.Separator))
}
