// Package resolver turns raw parser output into graph edges: import
// statements become file dependency edges, raw call names become call edges
// tagged with a resolution outcome. Imports and calls that point outside the
// indexed tree stay external and produce no edges; ambiguous call names are
// kept but flagged unresolved rather than guessed at.
package resolver

import (
	"sort"
	"strings"

	"orc/internal/paths"
	"orc/internal/storage"
)

// Result holds everything resolution derives from one index run.
type Result struct {
	Dependencies []storage.FileDependency
	Calls        []storage.ResolvedCall
}

// Resolve computes dependency and call edges over the merged records of an
// index run. Rows must carry their final IDs; resolution never mutates them.
func Resolve(files []storage.File, functions []storage.Function, imports []storage.Import) *Result {
	return &Result{
		Dependencies: ResolveImports(files, imports),
		Calls:        ResolveCalls(functions),
	}
}

// ResolveImports maps import statements onto indexed files. Each import
// yields at most one dependency edge; imports of modules outside the tree
// (stdlib, site-packages, node_modules) yield none.
func ResolveImports(files []storage.File, imports []storage.Import) []storage.FileDependency {
	byPath := make(map[string]*storage.File, len(files))
	byID := make(map[int64]*storage.File, len(files))
	moduleIndex := make(map[string][]*storage.File)
	for i := range files {
		f := &files[i]
		byPath[f.Path] = f
		byID[f.ID] = f
		if f.Language == "python" {
			moduleIndex[pythonModulePath(f.Path)] = append(moduleIndex[pythonModulePath(f.Path)], f)
		}
	}

	var deps []storage.FileDependency
	seen := make(map[[2]int64]bool)

	for _, imp := range imports {
		src, ok := byID[imp.FileID]
		if !ok {
			continue
		}

		var target *storage.File
		if src.Language == "python" {
			target = resolvePythonImport(src, imp, byPath, moduleIndex)
		} else {
			target = resolveScriptImport(src, imp, byPath)
		}
		if target == nil || target.ID == src.ID {
			continue
		}

		key := [2]int64{src.ID, target.ID}
		if seen[key] {
			continue
		}
		seen[key] = true
		deps = append(deps, storage.FileDependency{
			SourceFileID: src.ID,
			TargetFileID: target.ID,
			Line:         imp.Line,
		})
	}

	return deps
}

// pythonModulePath converts a file path into its dotted module path.
// "pkg/__init__.py" names the package "pkg" itself.
func pythonModulePath(filePath string) string {
	p := strings.TrimSuffix(strings.TrimSuffix(filePath, ".py"), ".pyw")
	p = strings.TrimSuffix(p, "/__init__")
	if p == "__init__" {
		return ""
	}
	return strings.ReplaceAll(p, "/", ".")
}

func resolvePythonImport(src *storage.File, imp storage.Import, byPath map[string]*storage.File, moduleIndex map[string][]*storage.File) *storage.File {
	if imp.Relative {
		return resolvePythonRelative(src, imp, byPath)
	}
	return resolvePythonAbsolute(imp, moduleIndex)
}

func resolvePythonRelative(src *storage.File, imp storage.Import, byPath map[string]*storage.File) *storage.File {
	// Level 1 is the file's own package; each extra dot climbs one package.
	dir := paths.Dir(src.Path)
	for i := 1; i < imp.Level; i++ {
		if dir == "" {
			return nil
		}
		dir = paths.Dir(dir)
	}

	if imp.Module == "" {
		// "from . import name": each symbol names a sibling module.
		for _, sym := range imp.Symbols {
			if f := lookupPythonFile(byPath, joinCanonical(dir, sym)); f != nil {
				return f
			}
		}
		return nil
	}

	base := joinCanonical(dir, strings.ReplaceAll(imp.Module, ".", "/"))
	if f := lookupPythonFile(byPath, base); f != nil {
		return f
	}
	// "from .pkg import mod" where mod is itself a module file.
	for _, sym := range imp.Symbols {
		if sym == "*" {
			continue
		}
		if f := lookupPythonFile(byPath, base+"/"+sym); f != nil {
			return f
		}
	}
	return nil
}

func resolvePythonAbsolute(imp storage.Import, moduleIndex map[string][]*storage.File) *storage.File {
	candidates := moduleIndex[imp.Module]
	if len(candidates) == 0 {
		// The project root may not be the import root (src/ layouts), so
		// fall back to a dotted-suffix match.
		suffix := "." + imp.Module
		for module, fs := range moduleIndex {
			if strings.HasSuffix(module, suffix) {
				candidates = append(candidates, fs...)
			}
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	if len(candidates) == 1 {
		return candidates[0]
	}
	// Multiple files can claim the same module path under odd layouts;
	// pick the shortest path, then lexicographically smallest, so repeated
	// runs produce identical edges.
	sort.Slice(candidates, func(i, j int) bool {
		if len(candidates[i].Path) != len(candidates[j].Path) {
			return len(candidates[i].Path) < len(candidates[j].Path)
		}
		return candidates[i].Path < candidates[j].Path
	})
	return candidates[0]
}

func lookupPythonFile(byPath map[string]*storage.File, base string) *storage.File {
	if f, ok := byPath[base+".py"]; ok {
		return f
	}
	if f, ok := byPath[base+"/__init__.py"]; ok {
		return f
	}
	return nil
}

var scriptExtensions = []string{".js", ".jsx", ".ts", ".tsx", ".mjs", ".cjs"}

func resolveScriptImport(src *storage.File, imp storage.Import, byPath map[string]*storage.File) *storage.File {
	if !imp.Relative {
		// Bare specifiers resolve through node_modules; outside the tree.
		return nil
	}

	dir := paths.Dir(src.Path)
	for i := 1; i < imp.Level; i++ {
		if dir == "" {
			return nil
		}
		dir = paths.Dir(dir)
	}

	base := joinCanonical(dir, imp.Module)
	if f, ok := byPath[base]; ok {
		return f
	}
	for _, ext := range scriptExtensions {
		if f, ok := byPath[base+ext]; ok {
			return f
		}
	}
	for _, ext := range scriptExtensions {
		if f, ok := byPath[base+"/index"+ext]; ok {
			return f
		}
	}
	return nil
}

// joinCanonical joins canonical repo-relative segments with "/".
func joinCanonical(dir, rest string) string {
	if dir == "" {
		return rest
	}
	if rest == "" {
		return dir
	}
	return dir + "/" + rest
}
