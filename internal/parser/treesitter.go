//go:build cgo

package parser

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// newParser returns the tree-sitter parser for a language.
func newParser(lang Language) Parser {
	switch lang {
	case LangPython:
		return newPythonParser()
	default:
		return newScriptParser(lang)
	}
}

// sitterLanguage returns the tree-sitter grammar for a language.
func sitterLanguage(lang Language) *sitter.Language {
	switch lang {
	case LangPython:
		return python.GetLanguage()
	case LangJavaScript:
		return javascript.GetLanguage()
	case LangTypeScript:
		return typescript.GetLanguage()
	case LangTSX:
		return tsx.GetLanguage()
	default:
		return nil
	}
}

// decisionNodeTypes returns the node types that contribute to cyclomatic
// complexity (decision points) for a language.
func decisionNodeTypes(lang Language) map[string]bool {
	switch lang {
	case LangPython:
		return map[string]bool{
			"if_statement":             true,
			"elif_clause":              true,
			"for_statement":            true,
			"while_statement":          true,
			"except_clause":            true,
			"boolean_operator":         true, // and, or
			"conditional_expression":   true, // ternary
			"list_comprehension":       true,
			"dictionary_comprehension": true,
			"set_comprehension":        true,
			"generator_expression":     true,
		}
	case LangJavaScript, LangTypeScript, LangTSX:
		return map[string]bool{
			"if_statement":      true,
			"for_statement":     true,
			"for_in_statement":  true,
			"while_statement":   true,
			"do_statement":      true,
			"switch_case":       true,
			"catch_clause":      true,
			"ternary_expression": true,
			"binary_expression": true, // only counted when && or ||
		}
	default:
		return nil
	}
}

// countDecisions walks a function subtree and returns the cyclomatic
// complexity: matching decision nodes + 1. For binary_expression nodes only
// the boolean operators && and || count.
func countDecisions(node *sitter.Node, source []byte, lang Language) int {
	decisions := decisionNodeTypes(lang)
	complexity := 1

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if decisions[n.Type()] {
			if n.Type() == "binary_expression" {
				if isBooleanBinary(n, source) {
					complexity++
				}
			} else {
				complexity++
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(node)

	return complexity
}

// isBooleanBinary reports whether a binary_expression is && or ||.
func isBooleanBinary(node *sitter.Node, source []byte) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		content := nodeText(child, source)
		if content == "&&" || content == "||" {
			return true
		}
	}
	return false
}

// nodeText returns the source text of a tree-sitter node.
func nodeText(node *sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}

// collectNodes finds all descendants of the given types, in document order.
func collectNodes(root *sitter.Node, types map[string]bool) []*sitter.Node {
	var result []*sitter.Node

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if types[n.Type()] {
			result = append(result, n)
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)

	return result
}
