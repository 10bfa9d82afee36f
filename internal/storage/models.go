// Package storage persists the index in a SQLite database under .orc/.
// Slice-valued columns (params, calls, decorators, bases, symbols) are
// stored as JSON text.
package storage

import "encoding/json"

// Call resolution outcomes as stored in resolved_calls.outcome.
const (
	OutcomeResolved   = "resolved"
	OutcomeUnresolved = "unresolved"
	OutcomeExternal   = "external"
)

// Entry point kinds as stored in entry_points.kind.
const (
	EntryMainGuard     = "main_guard"
	EntryCLI           = "cli_decorator"
	EntryRoute         = "route_decorator"
	EntryTest          = "test"
	EntryScriptDecl    = "script_declaration" // pyproject [project.scripts] et al.
	EntryPackageScript = "package_script"     // package.json main/bin
)

// File is a stored source file row.
type File struct {
	ID           int64
	Path         string
	Language     string
	LineCount    int
	HasMainGuard bool
	Provenance   string
	ContentHash  string
}

// Function is a stored function row. Name carries the qualified form for
// methods ("Class.method").
type Function struct {
	ID         int64
	FileID     int64
	Name       string
	StartLine  int
	EndLine    int
	Params     []string
	Calls      []string
	Decorators []string
	Complexity int
	Exported   bool
}

// Lines returns the function length in lines.
func (f *Function) Lines() int {
	return f.EndLine - f.StartLine + 1
}

// Class is a stored class row.
type Class struct {
	ID        int64
	FileID    int64
	Name      string
	StartLine int
	Bases     []string
}

// Import is a stored import row.
type Import struct {
	ID       int64
	FileID   int64
	Module   string
	Symbols  []string
	Line     int
	Relative bool
	Level    int
	Raw      string
}

// FileDependency is a resolved import edge between two indexed files.
type FileDependency struct {
	SourceFileID int64
	TargetFileID int64
	Line         int
}

// ResolvedCall is a call edge with its resolution outcome. CalleeFunctionID
// is set only for OutcomeResolved.
type ResolvedCall struct {
	ID               int64
	CallerFunctionID int64
	CalleeFunctionID int64
	CalleeName       string
	Outcome          string
}

// EntryPoint is a detected execution entry. FunctionID is zero for
// file-level entries like a main guard with top-level statements.
type EntryPoint struct {
	ID         int64
	FileID     int64
	FunctionID int64
	Kind       string
	Name       string
	Confidence float64
}

// Snapshot is the complete output of one index run, written atomically.
type Snapshot struct {
	Files        []File
	Functions    []Function
	Classes      []Class
	Imports      []Import
	Dependencies []FileDependency
	Calls        []ResolvedCall
	EntryPoints  []EntryPoint
}

func marshalStrings(values []string) string {
	if len(values) == 0 {
		return "[]"
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func unmarshalStrings(data string) []string {
	if data == "" || data == "[]" {
		return nil
	}
	var values []string
	if err := json.Unmarshal([]byte(data), &values); err != nil {
		return nil
	}
	return values
}
