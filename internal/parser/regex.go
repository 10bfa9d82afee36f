package parser

import (
	"regexp"
	"strings"
)

// regexParser is the line-oriented fallback used when tree-sitter is not
// available (non-cgo builds) or for dialects the grammars cannot handle.
// Its records carry ProvenanceRegex so downstream consumers can treat them
// as lower confidence.
type regexParser struct {
	lang Language
}

// NewRegexParser returns the regex-based fallback parser for a language.
func NewRegexParser(lang Language) Parser {
	return &regexParser{lang: lang}
}

func (p *regexParser) Language() Language { return p.lang }

func (p *regexParser) Parse(path string, source []byte) (*FlatRecords, error) {
	if p.lang == LangPython {
		return p.parsePython(path, source), nil
	}
	return p.parseScript(path, source), nil
}

var (
	pyDefRe       = regexp.MustCompile(`^(\s*)(?:async\s+)?def\s+([A-Za-z_]\w*)\s*\(([^)]*)`)
	pyClassRe     = regexp.MustCompile(`^(\s*)class\s+([A-Za-z_]\w*)\s*(?:\(([^)]*)\))?\s*:`)
	pyImportRe    = regexp.MustCompile(`^\s*import\s+([\w. ,]+)`)
	pyFromRe      = regexp.MustCompile(`^\s*from\s+([.\w]+)\s+import\s+(.+)`)
	pyDecoratorRe = regexp.MustCompile(`^\s*@\s*([\w.]+)`)
	pyCallRe      = regexp.MustCompile(`([A-Za-z_][\w.]*)\s*\(`)
	pyDecisionRe  = regexp.MustCompile(`\b(if|elif|for|while|except|and|or)\b`)

	pyCallKeywords = map[string]bool{
		"def": true, "class": true, "if": true, "elif": true, "while": true,
		"for": true, "return": true, "lambda": true, "print": false,
	}
)

type pyScope struct {
	name   string
	indent int
}

func (p *regexParser) parsePython(path string, source []byte) *FlatRecords {
	lines := strings.Split(string(source), "\n")

	records := &FlatRecords{
		File: FileRecord{
			Path:         path,
			Language:     LangPython,
			LineCount:    countLines(source),
			HasMainGuard: hasMainGuard(source),
			Provenance:   ProvenanceRegex,
		},
	}

	var classStack []pyScope
	var pendingDecorators []string

	for i, line := range lines {
		indent := indentWidth(line)
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && !strings.HasPrefix(trimmed, "#") {
			// Leaving a class body pops it off the stack.
			for len(classStack) > 0 && indent <= classStack[len(classStack)-1].indent {
				classStack = classStack[:len(classStack)-1]
			}
		}

		if m := pyDecoratorRe.FindStringSubmatch(line); m != nil {
			pendingDecorators = append(pendingDecorators, m[1])
			continue
		}

		if m := pyClassRe.FindStringSubmatch(line); m != nil {
			rec := ClassRecord{Name: m[2], StartLine: i + 1}
			for _, base := range strings.Split(m[3], ",") {
				base = strings.TrimSpace(base)
				if base != "" && base != "object" {
					rec.Bases = append(rec.Bases, base)
				}
			}
			records.Classes = append(records.Classes, rec)
			classStack = append(classStack, pyScope{name: m[2], indent: indentWidth(m[1])})
			pendingDecorators = nil
			continue
		}

		if m := pyDefRe.FindStringSubmatch(line); m != nil {
			name := m[2]
			if len(classStack) > 0 && indentWidth(m[1]) > classStack[len(classStack)-1].indent {
				name = classStack[len(classStack)-1].name + "." + name
			}
			end := pythonBlockEnd(lines, i, indentWidth(m[1]))
			body := lines[i+1 : end]

			records.Functions = append(records.Functions, FunctionRecord{
				Name:       name,
				StartLine:  i + 1,
				EndLine:    end,
				Params:     splitParams(m[3]),
				Calls:      pythonRegexCalls(body),
				Decorators: pendingDecorators,
				Complexity: pythonRegexComplexity(body),
				Exported:   isPythonExported(name),
			})
			pendingDecorators = nil
			continue
		}
		pendingDecorators = nil

		if m := pyFromRe.FindStringSubmatch(line); m != nil {
			module := m[1]
			level := 0
			for level < len(module) && module[level] == '.' {
				level++
			}
			rec := ImportRecord{
				Module:   module[level:],
				Line:     i + 1,
				Relative: level > 0,
				Level:    level,
				Raw:      trimmed,
			}
			for _, sym := range strings.Split(strings.TrimSuffix(m[2], "\\"), ",") {
				sym = strings.TrimSpace(sym)
				sym = strings.TrimPrefix(sym, "(")
				sym = strings.TrimSuffix(sym, ")")
				if idx := strings.Index(sym, " as "); idx >= 0 {
					sym = sym[:idx]
				}
				sym = strings.TrimSpace(sym)
				if sym != "" {
					rec.Symbols = append(rec.Symbols, sym)
				}
			}
			records.Imports = append(records.Imports, rec)
			continue
		}

		if m := pyImportRe.FindStringSubmatch(line); m != nil {
			for _, module := range strings.Split(m[1], ",") {
				module = strings.TrimSpace(module)
				if idx := strings.Index(module, " as "); idx >= 0 {
					module = module[:idx]
				}
				module = strings.TrimSpace(module)
				if module != "" {
					records.Imports = append(records.Imports, ImportRecord{
						Module: module, Line: i + 1, Raw: trimmed,
					})
				}
			}
		}
	}

	return records
}

// pythonBlockEnd returns the 1-based end line of a block starting at line
// startIdx (0-based) with the given indent: the last line before the next
// non-blank line at an equal or smaller indent.
func pythonBlockEnd(lines []string, startIdx, indent int) int {
	end := startIdx + 1
	for j := startIdx + 1; j < len(lines); j++ {
		trimmed := strings.TrimSpace(lines[j])
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if indentWidth(lines[j]) <= indent {
			break
		}
		end = j + 1
	}
	return end
}

func pythonRegexCalls(body []string) []string {
	var calls []string
	for _, line := range body {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "def ") || strings.HasPrefix(trimmed, "class ") {
			continue
		}
		for _, m := range pyCallRe.FindAllStringSubmatch(line, -1) {
			name := m[1]
			base := name
			if idx := strings.Index(base, "."); idx >= 0 {
				base = base[:idx]
			}
			if pyCallKeywords[base] {
				continue
			}
			calls = append(calls, name)
		}
	}
	return calls
}

func pythonRegexComplexity(body []string) int {
	complexity := 1
	for _, line := range body {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			continue
		}
		complexity += len(pyDecisionRe.FindAllString(line, -1))
	}
	return complexity
}

var (
	jsFuncRe     = regexp.MustCompile(`^\s*(export\s+)?(?:default\s+)?(?:async\s+)?function\s*\*?\s*([A-Za-z_$][\w$]*)\s*\(([^)]*)`)
	jsArrowRe    = regexp.MustCompile(`^\s*(export\s+)?(?:const|let|var)\s+([A-Za-z_$][\w$]*)\s*=\s*(?:async\s*)?(?:\(([^)]*)\)|[A-Za-z_$][\w$]*)\s*=>`)
	jsClassRe    = regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?class\s+([A-Za-z_$][\w$]*)(?:\s+extends\s+([\w.$]+))?`)
	jsImportRe   = regexp.MustCompile(`^\s*import\s+(?:(.+?)\s+from\s+)?['"]([^'"]+)['"]`)
	jsRequireRe  = regexp.MustCompile(`require\(\s*['"]([^'"]+)['"]`)
	jsCallRe     = regexp.MustCompile(`([A-Za-z_$][\w$.]*)\s*\(`)
	jsDecisionRe = regexp.MustCompile(`\b(if|for|while|case|catch)\b|&&|\|\||\?`)

	jsCallKeywords = map[string]bool{
		"function": true, "if": true, "for": true, "while": true, "switch": true,
		"catch": true, "return": true, "require": true, "typeof": true,
	}
)

func (p *regexParser) parseScript(path string, source []byte) *FlatRecords {
	lines := strings.Split(string(source), "\n")

	records := &FlatRecords{
		File: FileRecord{
			Path:       path,
			Language:   p.lang,
			LineCount:  countLines(source),
			Provenance: ProvenanceRegex,
		},
	}

	for i, line := range lines {
		var name, params string
		exported := false

		if m := jsFuncRe.FindStringSubmatch(line); m != nil {
			exported, name, params = m[1] != "", m[2], m[3]
		} else if m := jsArrowRe.FindStringSubmatch(line); m != nil {
			exported, name, params = m[1] != "", m[2], m[3]
		}

		if name != "" {
			end := jsBlockEnd(lines, i)
			body := lines[i:end]
			records.Functions = append(records.Functions, FunctionRecord{
				Name:       name,
				StartLine:  i + 1,
				EndLine:    end,
				Params:     splitParams(params),
				Calls:      jsRegexCalls(body, name),
				Complexity: jsRegexComplexity(body),
				Exported:   exported,
			})
			continue
		}

		if m := jsClassRe.FindStringSubmatch(line); m != nil {
			rec := ClassRecord{Name: m[1], StartLine: i + 1}
			if m[2] != "" {
				rec.Bases = append(rec.Bases, m[2])
			}
			records.Classes = append(records.Classes, rec)
			continue
		}

		if m := jsImportRe.FindStringSubmatch(line); m != nil {
			rec := moduleFromSpecifier(m[2])
			rec.Line = i + 1
			rec.Raw = strings.TrimSpace(line)
			rec.Symbols = jsImportedSymbols(m[1])
			records.Imports = append(records.Imports, rec)
			continue
		}

		for _, m := range jsRequireRe.FindAllStringSubmatch(line, -1) {
			rec := moduleFromSpecifier(m[1])
			rec.Line = i + 1
			rec.Raw = strings.TrimSpace(line)
			records.Imports = append(records.Imports, rec)
		}
	}

	return records
}

// jsBlockEnd finds the end line of a braced block by brace counting.
// A declaration line that opens no brace (single-expression arrow) is its
// own block.
func jsBlockEnd(lines []string, startIdx int) int {
	if !strings.Contains(lines[startIdx], "{") {
		return startIdx + 1
	}
	depth := 0
	for j := startIdx; j < len(lines); j++ {
		for _, ch := range lines[j] {
			switch ch {
			case '{':
				depth++
			case '}':
				depth--
			}
		}
		if depth <= 0 {
			return j + 1
		}
	}
	return len(lines)
}

func jsImportedSymbols(clause string) []string {
	clause = strings.TrimSpace(clause)
	if clause == "" {
		return nil
	}
	clause = strings.Trim(clause, "{}")
	var symbols []string
	for _, sym := range strings.Split(clause, ",") {
		sym = strings.TrimSpace(sym)
		if idx := strings.Index(sym, " as "); idx >= 0 {
			sym = strings.TrimSpace(sym[:idx])
		}
		if sym != "" && sym != "*" {
			symbols = append(symbols, sym)
		}
	}
	return symbols
}

func jsRegexCalls(body []string, selfName string) []string {
	var calls []string
	for idx, line := range body {
		for _, m := range jsCallRe.FindAllStringSubmatch(line, -1) {
			name := m[1]
			base := name
			if i := strings.Index(base, "."); i >= 0 {
				base = base[:i]
			}
			if jsCallKeywords[base] {
				continue
			}
			// Skip the declaration itself on the first line.
			if idx == 0 && name == selfName {
				continue
			}
			calls = append(calls, name)
		}
	}
	return calls
}

func jsRegexComplexity(body []string) int {
	complexity := 1
	for _, line := range body {
		complexity += len(jsDecisionRe.FindAllString(line, -1))
	}
	return complexity
}

func indentWidth(line string) int {
	width := 0
	for _, ch := range line {
		switch ch {
		case ' ':
			width++
		case '\t':
			width += 8
		default:
			return width
		}
	}
	return width
}

func splitParams(raw string) []string {
	var params []string
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		// Drop type annotations and defaults.
		for _, sep := range []string{":", "="} {
			if idx := strings.Index(p, sep); idx >= 0 {
				p = strings.TrimSpace(p[:idx])
			}
		}
		p = strings.TrimLeft(p, "*&.")
		if p != "" {
			params = append(params, p)
		}
	}
	return params
}
