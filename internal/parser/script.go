//go:build cgo

package parser

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// scriptParser extracts flat records from JavaScript/TypeScript/TSX source
// via tree-sitter. Coverage is narrower than the Python parser: default
// exports and re-exports are not chased.
type scriptParser struct {
	lang   Language
	parser *sitter.Parser
}

func newScriptParser(lang Language) *scriptParser {
	p := sitter.NewParser()
	p.SetLanguage(sitterLanguage(lang))
	return &scriptParser{lang: lang, parser: p}
}

func (p *scriptParser) Language() Language { return p.lang }

func (p *scriptParser) Parse(path string, source []byte) (*FlatRecords, error) {
	tree, err := p.parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	root := tree.RootNode()

	records := &FlatRecords{
		File: FileRecord{
			Path:       path,
			Language:   p.lang,
			LineCount:  countLines(source),
			Provenance: ProvenanceTreeSitter,
		},
	}

	declTypes := map[string]bool{
		"function_declaration":           true,
		"generator_function_declaration": true,
		"method_definition":              true,
	}
	for _, fn := range collectNodes(root, declTypes) {
		records.Functions = append(records.Functions, p.extractFunction(fn, source))
	}

	// Arrow functions and function expressions bound to a name.
	for _, decl := range collectNodes(root, map[string]bool{"variable_declarator": true}) {
		value := decl.ChildByFieldName("value")
		if value == nil {
			continue
		}
		if value.Type() != "arrow_function" && value.Type() != "function_expression" && value.Type() != "function" {
			continue
		}
		rec := p.extractFunction(value, source)
		if name := decl.ChildByFieldName("name"); name != nil {
			rec.Name = nodeText(name, source)
		}
		rec.Exported = hasExportAncestor(decl)
		records.Functions = append(records.Functions, rec)
	}

	for _, cls := range collectNodes(root, map[string]bool{"class_declaration": true}) {
		records.Classes = append(records.Classes, p.extractClass(cls, source))
	}

	records.Imports = p.extractImports(root, source)

	return records, nil
}

func (p *scriptParser) extractFunction(node *sitter.Node, source []byte) FunctionRecord {
	name := "<anonymous>"
	if n := node.ChildByFieldName("name"); n != nil {
		name = nodeText(n, source)
	}
	if node.Type() == "method_definition" {
		if cls := scriptEnclosingClassName(node, source); cls != "" {
			name = cls + "." + name
		}
	}

	var params []string
	if formal := node.ChildByFieldName("parameters"); formal != nil {
		for i := 0; i < int(formal.ChildCount()); i++ {
			child := formal.Child(i)
			if child == nil {
				continue
			}
			switch child.Type() {
			case "identifier":
				params = append(params, nodeText(child, source))
			case "required_parameter", "optional_parameter", "assignment_pattern", "rest_pattern":
				if ident := firstIdentifier(child, source); ident != "" {
					params = append(params, ident)
				}
			}
		}
	}

	return FunctionRecord{
		Name:       name,
		StartLine:  int(node.StartPoint().Row) + 1,
		EndLine:    int(node.EndPoint().Row) + 1,
		Params:     params,
		Calls:      scriptCallNames(node.ChildByFieldName("body"), source),
		Complexity: countDecisions(node, source, p.lang),
		Exported:   hasExportAncestor(node),
	}
}

func (p *scriptParser) extractClass(node *sitter.Node, source []byte) ClassRecord {
	rec := ClassRecord{
		Name:      "<anonymous>",
		StartLine: int(node.StartPoint().Row) + 1,
	}
	if n := node.ChildByFieldName("name"); n != nil {
		rec.Name = nodeText(n, source)
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil || child.Type() != "class_heritage" {
			continue
		}
		for j := 0; j < int(child.ChildCount()); j++ {
			base := child.Child(j)
			if base == nil {
				continue
			}
			switch base.Type() {
			case "identifier", "member_expression":
				rec.Bases = append(rec.Bases, nodeText(base, source))
			}
		}
	}
	return rec
}

func (p *scriptParser) extractImports(root *sitter.Node, source []byte) []ImportRecord {
	var records []ImportRecord

	for _, imp := range collectNodes(root, map[string]bool{"import_statement": true}) {
		src := imp.ChildByFieldName("source")
		if src == nil {
			continue
		}
		rec := moduleFromSpecifier(strings.Trim(nodeText(src, source), "'\"`"))
		rec.Line = int(imp.StartPoint().Row) + 1
		rec.Raw = firstLine(nodeText(imp, source))

		for _, spec := range collectNodes(imp, map[string]bool{"import_specifier": true}) {
			if name := spec.ChildByFieldName("name"); name != nil {
				rec.Symbols = append(rec.Symbols, nodeText(name, source))
			}
		}
		records = append(records, rec)
	}

	// CommonJS: require("x")
	for _, call := range collectNodes(root, map[string]bool{"call_expression": true}) {
		fn := call.ChildByFieldName("function")
		if fn == nil || nodeText(fn, source) != "require" {
			continue
		}
		args := call.ChildByFieldName("arguments")
		if args == nil {
			continue
		}
		for i := 0; i < int(args.ChildCount()); i++ {
			arg := args.Child(i)
			if arg == nil || arg.Type() != "string" {
				continue
			}
			rec := moduleFromSpecifier(strings.Trim(nodeText(arg, source), "'\"`"))
			rec.Line = int(call.StartPoint().Row) + 1
			rec.Raw = firstLine(nodeText(call, source))
			records = append(records, rec)
			break
		}
	}

	return records
}

// scriptCallNames collects raw call targets inside a body subtree.
// Member calls keep their dotted form as written ("this.helper").
func scriptCallNames(body *sitter.Node, source []byte) []string {
	if body == nil {
		return nil
	}
	var calls []string
	for _, call := range collectNodes(body, map[string]bool{"call_expression": true}) {
		fn := call.ChildByFieldName("function")
		if fn == nil {
			continue
		}
		switch fn.Type() {
		case "identifier":
			name := nodeText(fn, source)
			if name == "require" {
				continue // recorded as an import
			}
			calls = append(calls, name)
		case "member_expression":
			calls = append(calls, strings.ReplaceAll(nodeText(fn, source), "?.", "."))
		}
	}
	return calls
}

func scriptEnclosingClassName(node *sitter.Node, source []byte) string {
	current := node.Parent()
	for current != nil {
		if current.Type() == "class_declaration" || current.Type() == "class" {
			if name := current.ChildByFieldName("name"); name != nil {
				return nodeText(name, source)
			}
			return ""
		}
		current = current.Parent()
	}
	return ""
}

func hasExportAncestor(node *sitter.Node) bool {
	current := node.Parent()
	for current != nil {
		if current.Type() == "export_statement" {
			return true
		}
		current = current.Parent()
	}
	return false
}
