// Package parser extracts flat records (functions, classes, imports) from
// source files. Each language sits behind the same Parser interface, so a
// weaker regex-based implementation is a drop-in variant of the tree-sitter
// one; records carry a provenance field flagging which produced them.
package parser

import (
	"regexp"
	"strings"
)

// Language represents a supported programming language.
type Language string

const (
	LangPython     Language = "python"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangTSX        Language = "tsx"
)

// Provenance records which parser implementation emitted a record set.
// Regex-derived records are lower confidence than tree-sitter ones.
type Provenance string

const (
	ProvenanceTreeSitter Provenance = "treesitter"
	ProvenanceRegex      Provenance = "regex"
)

// FileRecord describes an indexed source file.
type FileRecord struct {
	Path         string // canonical repo-relative path
	Language     Language
	LineCount    int
	HasMainGuard bool // python: file contains an if __name__ == "__main__" guard
	Provenance   Provenance
}

// FunctionRecord describes a single function or method.
// Methods are recorded with a qualified name ("Class.method").
type FunctionRecord struct {
	Name       string
	StartLine  int
	EndLine    int
	Params     []string
	Calls      []string // raw call-name strings as written in source, unresolved
	Decorators []string
	Complexity int // cyclomatic: decision points + 1
	Exported   bool
}

// ClassRecord describes a class definition with unresolved base-class names.
type ClassRecord struct {
	Name      string
	StartLine int
	Bases     []string
}

// ImportRecord describes an import statement as written.
type ImportRecord struct {
	Module   string   // module path as written, without leading dots
	Symbols  []string // imported names, empty for plain "import x"
	Line     int
	Relative bool
	Level    int // number of leading dots for relative imports
	Raw      string
}

// FlatRecords is the complete parser output for one file.
type FlatRecords struct {
	File      FileRecord
	Functions []FunctionRecord
	Classes   []ClassRecord
	Imports   []ImportRecord
}

// LanguageFromExtension returns the Language for a file extension.
func LanguageFromExtension(ext string) (Language, bool) {
	switch ext {
	case ".py", ".pyw":
		return LangPython, true
	case ".js", ".mjs", ".cjs", ".jsx":
		return LangJavaScript, true
	case ".ts", ".mts", ".cts":
		return LangTypeScript, true
	case ".tsx":
		return LangTSX, true
	default:
		return "", false
	}
}

// Extensions returns the file extensions recognized for a language.
func Extensions(lang Language) []string {
	switch lang {
	case LangPython:
		return []string{".py", ".pyw"}
	case LangJavaScript:
		return []string{".js", ".mjs", ".cjs", ".jsx"}
	case LangTypeScript:
		return []string{".ts", ".mts", ".cts"}
	case LangTSX:
		return []string{".tsx"}
	default:
		return nil
	}
}

var mainGuardRe = regexp.MustCompile(`(?m)^if\s+__name__\s*==\s*["']__main__["']`)

// hasMainGuard reports whether python source contains a main guard.
func hasMainGuard(source []byte) bool {
	return mainGuardRe.Match(source)
}

// isPythonExported reports whether a python name is public by convention.
// For qualified method names only the method part is considered.
func isPythonExported(name string) bool {
	base := name
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			base = name[i+1:]
			break
		}
	}
	if base == "" {
		return false
	}
	return base[0] != '_'
}

// moduleFromSpecifier normalizes a JS import specifier into an ImportRecord.
// "./a/b" is relative level 1, each "../" adds one level; bare specifiers
// ("react", "lodash/get") are non-relative.
func moduleFromSpecifier(spec string) ImportRecord {
	rec := ImportRecord{Module: spec}
	if !strings.HasPrefix(spec, ".") {
		return rec
	}
	rec.Relative = true
	rec.Level = 1
	rest := spec
	if strings.HasPrefix(rest, "./") {
		rest = rest[2:]
	}
	for strings.HasPrefix(rest, "../") {
		rec.Level++
		rest = rest[3:]
	}
	rec.Module = strings.TrimPrefix(rest, "/")
	return rec
}

// countLines returns the number of lines in source.
func countLines(source []byte) int {
	if len(source) == 0 {
		return 0
	}
	n := 1
	for _, b := range source {
		if b == '\n' {
			n++
		}
	}
	if source[len(source)-1] == '\n' {
		n--
	}
	return n
}
