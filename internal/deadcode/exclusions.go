package deadcode

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ExclusionRules determines which functions are never reported as dead,
// whatever their incoming edges say.
type ExclusionRules struct {
	allowlist       []string
	excludePatterns []string
}

// NewExclusionRules builds rules from the configured dynamic-dispatch
// allowlist (function name globs) and exclude patterns (path globs).
func NewExclusionRules(allowlist, excludePatterns []string) *ExclusionRules {
	return &ExclusionRules{
		allowlist:       allowlist,
		excludePatterns: excludePatterns,
	}
}

// ShouldExclude returns a reason if the function must be skipped, or "".
func (r *ExclusionRules) ShouldExclude(name, path string) string {
	base := lastNameSegment(name)

	// Dunder methods are called by the runtime, not by name.
	if strings.HasPrefix(base, "__") && strings.HasSuffix(base, "__") {
		return "dunder method"
	}

	// Test code is exercised by the test runner.
	if IsTestFile(path) {
		return "test file"
	}
	if strings.HasPrefix(base, "test_") || strings.HasPrefix(base, "Test") {
		return "test function"
	}

	for _, pattern := range r.allowlist {
		if ok, err := doublestar.Match(pattern, base); err == nil && ok {
			return "allowlisted name"
		}
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			return "allowlisted name"
		}
	}

	for _, pattern := range r.excludePatterns {
		if ok, err := doublestar.Match(pattern, path); err == nil && ok {
			return "excluded path"
		}
	}

	return ""
}

// IsTestFile reports whether a canonical path holds test code.
func IsTestFile(path string) bool {
	base := path
	if idx := strings.LastIndex(base, "/"); idx >= 0 {
		base = base[idx+1:]
	}
	if strings.HasPrefix(base, "test_") || strings.HasPrefix(base, "conftest.") {
		return true
	}
	for _, marker := range []string{"_test.py", ".test.js", ".test.ts", ".test.tsx", ".spec.js", ".spec.ts", ".spec.tsx"} {
		if strings.HasSuffix(base, marker) {
			return true
		}
	}
	for _, dir := range []string{"tests/", "test/", "__tests__/"} {
		if strings.HasPrefix(path, dir) || strings.Contains(path, "/"+dir) {
			return true
		}
	}
	return false
}

func lastNameSegment(name string) string {
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		return name[idx+1:]
	}
	return name
}
