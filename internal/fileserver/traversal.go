package fileserver

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideRoot is returned when the canonicalized requested path is not a
// descendant of the canonicalized mount root.
var ErrOutsideRoot = errors.New("fileserver: requested file outside of served directory")

// Resolve canonicalizes root and root+subpath and checks that the latter is
// a descendant of the former, the way caddy's static file handler resolves
// a request path before ever opening a file. A missing root or target is
// reported as os.ErrNotExist so callers can answer 404; a target that
// escapes root is reported as ErrOutsideRoot so callers can answer 400.
func Resolve(root, subpath string) (string, error) {
	canonicalRoot, err := canonicalize(root)
	if err != nil {
		return "", err
	}

	target := filepath.Join(root, filepath.FromSlash(subpath))

	canonicalTarget, err := canonicalize(target)
	if err != nil {
		return "", err
	}

	if canonicalTarget != canonicalRoot &&
		!strings.HasPrefix(canonicalTarget, canonicalRoot+string(filepath.Separator)) {
		return "", ErrOutsideRoot
	}

	return canonicalTarget, nil
}

// canonicalize resolves p to an absolute path with symlinks evaluated, so
// that traversal attempts via symlinked directories are caught by the same
// prefix check as plain ".." segments.
func canonicalize(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", err
	}

	return resolved, nil
}

// IsNotExist reports whether err indicates the canonicalized path does not
// exist (should be answered with 404, not 400).
func IsNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
