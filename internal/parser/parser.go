package parser

import "fmt"

// Parser turns a source file into flat records.
//
// Implementations are not safe for concurrent use; each worker goroutine
// must construct its own Parser.
type Parser interface {
	Language() Language
	Parse(path string, source []byte) (*FlatRecords, error)
}

// ForLanguage returns a parser for the given language, preferring the
// tree-sitter implementation when available and falling back to the regex
// variant otherwise. The returned records' provenance field says which one
// ran.
func ForLanguage(lang Language) (Parser, error) {
	switch lang {
	case LangPython, LangJavaScript, LangTypeScript, LangTSX:
		return newParser(lang), nil
	default:
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}
}
