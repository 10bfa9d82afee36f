//go:build cgo

package parser

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// pythonParser extracts flat records from Python source via tree-sitter.
type pythonParser struct {
	parser *sitter.Parser
}

func newPythonParser() *pythonParser {
	p := sitter.NewParser()
	p.SetLanguage(sitterLanguage(LangPython))
	return &pythonParser{parser: p}
}

func (p *pythonParser) Language() Language { return LangPython }

func (p *pythonParser) Parse(path string, source []byte) (*FlatRecords, error) {
	tree, err := p.parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	// Partial trees are still usable; records from files with syntax
	// errors are simply incomplete.
	root := tree.RootNode()

	records := &FlatRecords{
		File: FileRecord{
			Path:         path,
			Language:     LangPython,
			LineCount:    countLines(source),
			HasMainGuard: hasMainGuard(source),
			Provenance:   ProvenanceTreeSitter,
		},
	}

	for _, fn := range collectNodes(root, map[string]bool{"function_definition": true}) {
		records.Functions = append(records.Functions, p.extractFunction(fn, source))
	}
	for _, cls := range collectNodes(root, map[string]bool{"class_definition": true}) {
		records.Classes = append(records.Classes, p.extractClass(cls, source))
	}
	for _, imp := range collectNodes(root, map[string]bool{
		"import_statement":      true,
		"import_from_statement": true,
	}) {
		records.Imports = append(records.Imports, p.extractImports(imp, source)...)
	}

	return records, nil
}

func (p *pythonParser) extractFunction(node *sitter.Node, source []byte) FunctionRecord {
	name := "<anonymous>"
	if n := node.ChildByFieldName("name"); n != nil {
		name = nodeText(n, source)
	}
	if cls := pythonEnclosingClassName(node, source); cls != "" {
		name = cls + "." + name
	}

	rec := FunctionRecord{
		Name:       name,
		StartLine:  int(node.StartPoint().Row) + 1,
		EndLine:    int(node.EndPoint().Row) + 1,
		Params:     pythonParams(node.ChildByFieldName("parameters"), source),
		Calls:      pythonCallNames(node.ChildByFieldName("body"), source),
		Decorators: pythonDecorators(node, source),
		Complexity: countDecisions(node, source, LangPython),
		Exported:   isPythonExported(name),
	}
	return rec
}

func (p *pythonParser) extractClass(node *sitter.Node, source []byte) ClassRecord {
	rec := ClassRecord{
		Name:      "<anonymous>",
		StartLine: int(node.StartPoint().Row) + 1,
	}
	if n := node.ChildByFieldName("name"); n != nil {
		rec.Name = nodeText(n, source)
	}
	if supers := node.ChildByFieldName("superclasses"); supers != nil {
		for i := 0; i < int(supers.ChildCount()); i++ {
			child := supers.Child(i)
			if child == nil {
				continue
			}
			switch child.Type() {
			case "identifier", "attribute":
				rec.Bases = append(rec.Bases, nodeText(child, source))
			}
		}
	}
	return rec
}

// extractImports handles both "import a.b" and "from .a import b, c".
func (p *pythonParser) extractImports(node *sitter.Node, source []byte) []ImportRecord {
	line := int(node.StartPoint().Row) + 1
	raw := firstLine(nodeText(node, source))

	if node.Type() == "import_statement" {
		// "import a.b, c.d as e" yields one record per module.
		var records []ImportRecord
		for i := 0; i < int(node.ChildCount()); i++ {
			child := node.Child(i)
			if child == nil {
				continue
			}
			switch child.Type() {
			case "dotted_name":
				records = append(records, ImportRecord{
					Module: nodeText(child, source), Line: line, Raw: raw,
				})
			case "aliased_import":
				if name := child.ChildByFieldName("name"); name != nil {
					records = append(records, ImportRecord{
						Module: nodeText(name, source), Line: line, Raw: raw,
					})
				}
			}
		}
		return records
	}

	// import_from_statement
	rec := ImportRecord{Line: line, Raw: raw}
	if mod := node.ChildByFieldName("module_name"); mod != nil {
		switch mod.Type() {
		case "dotted_name":
			rec.Module = nodeText(mod, source)
		case "relative_import":
			rec.Relative = true
			for i := 0; i < int(mod.ChildCount()); i++ {
				child := mod.Child(i)
				if child == nil {
					continue
				}
				switch child.Type() {
				case "import_prefix":
					rec.Level = len(nodeText(child, source))
				case "dotted_name":
					rec.Module = nodeText(child, source)
				}
			}
		}
	}

	// Imported names follow the module_name child.
	sawModule := false
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		if !sawModule {
			if child.Type() == "dotted_name" || child.Type() == "relative_import" {
				sawModule = true
			}
			continue
		}
		switch child.Type() {
		case "dotted_name", "identifier":
			rec.Symbols = append(rec.Symbols, nodeText(child, source))
		case "aliased_import":
			if name := child.ChildByFieldName("name"); name != nil {
				rec.Symbols = append(rec.Symbols, nodeText(name, source))
			}
		case "wildcard_import":
			rec.Symbols = append(rec.Symbols, "*")
		}
	}

	return []ImportRecord{rec}
}

// pythonParams extracts parameter names, including self/cls when present.
func pythonParams(params *sitter.Node, source []byte) []string {
	if params == nil {
		return nil
	}
	var names []string
	for i := 0; i < int(params.ChildCount()); i++ {
		child := params.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "identifier":
			names = append(names, nodeText(child, source))
		case "typed_parameter", "default_parameter", "typed_default_parameter",
			"list_splat_pattern", "dictionary_splat_pattern":
			if ident := firstIdentifier(child, source); ident != "" {
				names = append(names, ident)
			}
		}
	}
	return names
}

// pythonCallNames collects raw call-name strings inside a function body.
// Attribute calls keep their dotted form as written ("self.helper").
func pythonCallNames(body *sitter.Node, source []byte) []string {
	if body == nil {
		return nil
	}
	var calls []string
	for _, call := range collectNodes(body, map[string]bool{"call": true}) {
		fn := call.ChildByFieldName("function")
		if fn == nil {
			continue
		}
		switch fn.Type() {
		case "identifier", "attribute":
			calls = append(calls, nodeText(fn, source))
		}
	}
	return calls
}

// pythonDecorators returns decorator texts (without the @) when the function
// or class is wrapped in a decorated_definition.
func pythonDecorators(node *sitter.Node, source []byte) []string {
	parent := node.Parent()
	if parent == nil || parent.Type() != "decorated_definition" {
		return nil
	}
	var decorators []string
	for i := 0; i < int(parent.ChildCount()); i++ {
		child := parent.Child(i)
		if child != nil && child.Type() == "decorator" {
			text := strings.TrimPrefix(firstLine(nodeText(child, source)), "@")
			decorators = append(decorators, text)
		}
	}
	return decorators
}

// pythonEnclosingClassName walks up to an enclosing class_definition and
// returns its name, handling decorated definitions.
func pythonEnclosingClassName(fn *sitter.Node, source []byte) string {
	current := fn.Parent()
	for current != nil {
		if current.Type() == "class_definition" {
			if name := current.ChildByFieldName("name"); name != nil {
				return nodeText(name, source)
			}
			return ""
		}
		// Stop at an intervening function: its class is not ours.
		if current.Type() == "function_definition" {
			return ""
		}
		current = current.Parent()
	}
	return ""
}

// firstIdentifier returns the text of the first identifier descendant.
func firstIdentifier(node *sitter.Node, source []byte) string {
	if node.Type() == "identifier" {
		return nodeText(node, source)
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		if found := firstIdentifier(child, source); found != "" {
			return found
		}
	}
	return ""
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}
