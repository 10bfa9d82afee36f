// Package entrypoints detects where execution can enter the indexed code:
// main guards, CLI and route decorators, test functions, and script
// declarations in pyproject.toml or package.json. Each entry carries a
// confidence; declared scripts rank above decorator heuristics.
package entrypoints

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"orc/internal/logging"
	"orc/internal/storage"
)

// Detection confidences per entry kind.
const (
	confMainGuard  = 0.90
	confCLI        = 0.85
	confRoute      = 0.85
	confTest       = 0.95
	confScriptDecl = 0.95
)

// Detect scans the merged records plus any project manifests under repoRoot
// and returns entry points with sequential IDs.
func Detect(repoRoot string, files []storage.File, functions []storage.Function, logger *logging.Logger) []storage.EntryPoint {
	var entries []storage.EntryPoint
	nextID := int64(1)
	add := func(ep storage.EntryPoint) {
		ep.ID = nextID
		nextID++
		entries = append(entries, ep)
	}

	for _, f := range files {
		if f.HasMainGuard {
			add(storage.EntryPoint{
				FileID:     f.ID,
				Kind:       storage.EntryMainGuard,
				Name:       f.Path,
				Confidence: confMainGuard,
			})
		}
	}

	for _, fn := range functions {
		if kind, ok := decoratorKind(fn.Decorators); ok {
			conf := confCLI
			if kind == storage.EntryRoute {
				conf = confRoute
			}
			add(storage.EntryPoint{
				FileID:     fn.FileID,
				FunctionID: fn.ID,
				Kind:       kind,
				Name:       fn.Name,
				Confidence: conf,
			})
			continue
		}
		if isTestFunction(fn.Name) {
			add(storage.EntryPoint{
				FileID:     fn.FileID,
				FunctionID: fn.ID,
				Kind:       storage.EntryTest,
				Name:       fn.Name,
				Confidence: confTest,
			})
		}
	}

	for _, ep := range detectPyprojectScripts(repoRoot, files, functions, logger) {
		add(ep)
	}
	for _, ep := range detectPackageScripts(repoRoot, files, logger) {
		add(ep)
	}

	return entries
}

var cliDecorators = []string{"command", "group", "click", "typer"}
var routeDecorators = []string{"route", "get", "post", "put", "delete", "patch", "websocket"}

// decoratorKind classifies a function by its decorators. CLI registration
// wins over routes when a function somehow carries both.
func decoratorKind(decorators []string) (string, bool) {
	for _, dec := range decorators {
		lower := strings.ToLower(dec)
		last := lower
		if idx := strings.LastIndex(last, "."); idx >= 0 {
			last = last[idx+1:]
		}
		if idx := strings.Index(last, "("); idx >= 0 {
			last = last[:idx]
		}
		for _, marker := range cliDecorators {
			if last == marker || strings.HasPrefix(lower, marker+".") {
				return storage.EntryCLI, true
			}
		}
	}
	for _, dec := range decorators {
		lower := strings.ToLower(dec)
		last := lower
		if idx := strings.LastIndex(last, "."); idx >= 0 {
			last = last[idx+1:]
		}
		if idx := strings.Index(last, "("); idx >= 0 {
			last = last[:idx]
		}
		// Route decorators hang off an app-like object ("app.get"); a bare
		// "get" is more likely a property accessor.
		if !strings.Contains(lower, ".") && last != "route" {
			continue
		}
		for _, marker := range routeDecorators {
			if last == marker {
				return storage.EntryRoute, true
			}
		}
	}
	return "", false
}

func isTestFunction(name string) bool {
	base := name
	if idx := strings.LastIndex(base, "."); idx >= 0 {
		base = base[idx+1:]
	}
	return strings.HasPrefix(base, "test_") || strings.HasPrefix(base, "Test")
}

// pyprojectFile mirrors the script tables of pyproject.toml.
type pyprojectFile struct {
	Project struct {
		Scripts    map[string]string `toml:"scripts"`
		GuiScripts map[string]string `toml:"gui-scripts"`
	} `toml:"project"`
	Tool struct {
		Poetry struct {
			Scripts map[string]string `toml:"scripts"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

// detectPyprojectScripts reads [project.scripts] and [tool.poetry.scripts]
// and maps each "module.path:function" target onto an indexed function.
func detectPyprojectScripts(repoRoot string, files []storage.File, functions []storage.Function, logger *logging.Logger) []storage.EntryPoint {
	data, err := os.ReadFile(filepath.Join(repoRoot, "pyproject.toml"))
	if err != nil {
		return nil
	}

	var manifest pyprojectFile
	if err := toml.Unmarshal(data, &manifest); err != nil {
		logger.Warn("Failed to parse pyproject.toml", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}

	scripts := make(map[string]string)
	for name, target := range manifest.Project.Scripts {
		scripts[name] = target
	}
	for name, target := range manifest.Project.GuiScripts {
		scripts[name] = target
	}
	for name, target := range manifest.Tool.Poetry.Scripts {
		scripts[name] = target
	}

	var entries []storage.EntryPoint
	for _, name := range sortedKeys(scripts) {
		target := scripts[name]
		module, funcName, found := strings.Cut(target, ":")
		if !found {
			funcName = ""
		}
		file := findPythonModule(files, module)
		if file == nil {
			continue
		}
		ep := storage.EntryPoint{
			FileID:     file.ID,
			Kind:       storage.EntryScriptDecl,
			Name:       name,
			Confidence: confScriptDecl,
		}
		if funcName != "" {
			for _, fn := range functions {
				if fn.FileID == file.ID && fn.Name == funcName {
					ep.FunctionID = fn.ID
					break
				}
			}
		}
		entries = append(entries, ep)
	}
	return entries
}

// packageFile mirrors the entry fields of package.json. bin is either a
// string or a name-to-path table.
type packageFile struct {
	Main string          `json:"main"`
	Bin  json.RawMessage `json:"bin"`
}

func detectPackageScripts(repoRoot string, files []storage.File, logger *logging.Logger) []storage.EntryPoint {
	data, err := os.ReadFile(filepath.Join(repoRoot, "package.json"))
	if err != nil {
		return nil
	}

	var manifest packageFile
	if err := json.Unmarshal(data, &manifest); err != nil {
		logger.Warn("Failed to parse package.json", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}

	targets := make(map[string]string)
	if manifest.Main != "" {
		targets["main"] = manifest.Main
	}
	if len(manifest.Bin) > 0 {
		var single string
		if err := json.Unmarshal(manifest.Bin, &single); err == nil {
			targets["bin"] = single
		} else {
			var table map[string]string
			if err := json.Unmarshal(manifest.Bin, &table); err == nil {
				for name, path := range table {
					targets[name] = path
				}
			}
		}
	}

	var entries []storage.EntryPoint
	for _, name := range sortedKeys(targets) {
		canonical := strings.TrimPrefix(strings.TrimPrefix(targets[name], "./"), "/")
		for i := range files {
			if files[i].Path == canonical {
				entries = append(entries, storage.EntryPoint{
					FileID:     files[i].ID,
					Kind:       storage.EntryPackageScript,
					Name:       name,
					Confidence: confScriptDecl,
				})
				break
			}
		}
	}
	return entries
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// findPythonModule matches a dotted module path against indexed files,
// accepting a dotted-suffix match for src/ layouts.
func findPythonModule(files []storage.File, module string) *storage.File {
	if module == "" {
		return nil
	}
	asPath := strings.ReplaceAll(module, ".", "/")
	var fallback *storage.File
	for i := range files {
		f := &files[i]
		if f.Language != "python" {
			continue
		}
		if f.Path == asPath+".py" || f.Path == asPath+"/__init__.py" {
			return f
		}
		if fallback == nil && (strings.HasSuffix(f.Path, "/"+asPath+".py") || strings.HasSuffix(f.Path, "/"+asPath+"/__init__.py")) {
			fallback = f
		}
	}
	return fallback
}
