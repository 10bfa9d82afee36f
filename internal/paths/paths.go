// Package paths normalizes file paths to the repo-relative, forward-slash
// form used as the canonical file identity throughout the index.
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// Canonicalize converts an absolute path to a repo-relative canonical path:
// symlinks are resolved, the path is made relative to the repo root, and
// separators are normalized to forward slashes.
func Canonicalize(absolutePath string, repoRoot string) (string, error) {
	resolved, err := filepath.EvalSymlinks(absolutePath)
	if err != nil {
		// If the file doesn't exist yet, use the path as-is
		if os.IsNotExist(err) {
			resolved = absolutePath
		} else {
			return "", err
		}
	}

	repoRootResolved, err := filepath.EvalSymlinks(repoRoot)
	if err != nil {
		if os.IsNotExist(err) {
			repoRootResolved = repoRoot
		} else {
			return "", err
		}
	}

	relativePath, err := filepath.Rel(repoRootResolved, resolved)
	if err != nil {
		return "", err
	}

	return filepath.ToSlash(relativePath), nil
}

// IsWithinRepo checks if a path is within the repository root
func IsWithinRepo(path string, repoRoot string) bool {
	canonical, err := Canonicalize(path, repoRoot)
	if err != nil {
		return false
	}

	// Path is outside repo if it starts with ..
	return !strings.HasPrefix(canonical, "..")
}

// Normalize normalizes a path by converting backslashes to forward slashes.
// Useful for paths that are already repo-relative.
func Normalize(path string) string {
	return filepath.ToSlash(path)
}

// Join joins a repo root with a canonical path, converting back to the
// OS-specific separator.
func Join(repoRoot string, canonicalPath string) string {
	normalized := strings.ReplaceAll(canonicalPath, "\\", "/")
	parts := strings.Split(normalized, "/")
	return filepath.Join(append([]string{repoRoot}, parts...)...)
}

// Dir returns the canonical directory of a canonical path ("" for the root).
func Dir(canonicalPath string) string {
	dir := filepath.ToSlash(filepath.Dir(canonicalPath))
	if dir == "." {
		return ""
	}
	return dir
}

// Stem returns the file name without its extension.
func Stem(canonicalPath string) string {
	base := canonicalPath
	if idx := strings.LastIndex(base, "/"); idx >= 0 {
		base = base[idx+1:]
	}
	if idx := strings.LastIndex(base, "."); idx > 0 {
		base = base[:idx]
	}
	return base
}
