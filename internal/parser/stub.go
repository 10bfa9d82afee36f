//go:build !cgo

package parser

// Without cgo the tree-sitter grammars are unavailable, so every language
// falls back to the regex parser.
func newParser(lang Language) Parser {
	return NewRegexParser(lang)
}
