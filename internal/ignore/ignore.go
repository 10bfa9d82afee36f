// Package ignore applies exclusion patterns to canonical file paths.
//
// Patterns come from two places: the .orc/ignore file (gitignore syntax)
// and the deadcode.excludePatterns config list. The same Matcher is used
// at index time and at every analysis query boundary, so a pattern added
// after indexing still filters stale rows out of reports.
package ignore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// IgnoreFileName is the pattern file inside the .orc directory.
const IgnoreFileName = "ignore"

// Matcher reports whether a canonical repo-relative path is excluded.
type Matcher struct {
	gi       *gitignore.GitIgnore
	patterns []string
}

// Load builds a Matcher from .orc/ignore plus any extra patterns.
// A missing ignore file is not an error.
func Load(repoRoot string, extraPatterns []string) (*Matcher, error) {
	var lines []string

	path := filepath.Join(repoRoot, ".orc", IgnoreFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading ignore file: %w", err)
		}
	} else {
		lines = append(lines, strings.Split(string(data), "\n")...)
	}

	lines = append(lines, extraPatterns...)

	return FromPatterns(lines), nil
}

// FromPatterns builds a Matcher from gitignore-style pattern lines.
func FromPatterns(lines []string) *Matcher {
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		cleaned = append(cleaned, line)
	}
	return &Matcher{
		gi:       gitignore.CompileIgnoreLines(cleaned...),
		patterns: cleaned,
	}
}

// Match reports whether the canonical path is excluded.
func (m *Matcher) Match(canonicalPath string) bool {
	if m == nil || m.gi == nil {
		return false
	}
	return m.gi.MatchesPath(canonicalPath)
}

// Patterns returns the active pattern lines.
func (m *Matcher) Patterns() []string {
	if m == nil {
		return nil
	}
	return m.patterns
}

// AddPattern appends a pattern line to .orc/ignore, creating the file if
// needed. Duplicate lines are skipped.
func AddPattern(repoRoot, pattern string) error {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return fmt.Errorf("empty ignore pattern")
	}

	orcDir := filepath.Join(repoRoot, ".orc")
	if err := os.MkdirAll(orcDir, 0755); err != nil {
		return fmt.Errorf("creating .orc directory: %w", err)
	}

	path := filepath.Join(orcDir, IgnoreFileName)
	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading ignore file: %w", err)
	}

	for _, line := range strings.Split(string(existing), "\n") {
		if strings.TrimSpace(line) == pattern {
			return nil // already present
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening ignore file: %w", err)
	}
	defer f.Close()

	content := pattern + "\n"
	if len(existing) > 0 && !strings.HasSuffix(string(existing), "\n") {
		content = "\n" + content
	}
	if _, err := f.WriteString(content); err != nil {
		return fmt.Errorf("writing ignore file: %w", err)
	}
	return nil
}
