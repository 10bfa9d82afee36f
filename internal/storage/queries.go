package storage

import (
	"database/sql"
	"fmt"
)

// Counts summarizes the stored index for status and report output.
type Counts struct {
	Files           int `json:"files"`
	Functions       int `json:"functions"`
	Classes         int `json:"classes"`
	Imports         int `json:"imports"`
	Dependencies    int `json:"dependencies"`
	ResolvedCalls   int `json:"resolvedCalls"`
	UnresolvedCalls int `json:"unresolvedCalls"`
	ExternalCalls   int `json:"externalCalls"`
	EntryPoints     int `json:"entryPoints"`
}

// GetCounts returns row counts across all index tables.
func (db *DB) GetCounts() (*Counts, error) {
	c := &Counts{}
	scalars := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM files", &c.Files},
		{"SELECT COUNT(*) FROM functions", &c.Functions},
		{"SELECT COUNT(*) FROM classes", &c.Classes},
		{"SELECT COUNT(*) FROM imports", &c.Imports},
		{"SELECT COUNT(*) FROM file_dependencies", &c.Dependencies},
		{"SELECT COUNT(*) FROM resolved_calls WHERE outcome = 'resolved'", &c.ResolvedCalls},
		{"SELECT COUNT(*) FROM resolved_calls WHERE outcome = 'unresolved'", &c.UnresolvedCalls},
		{"SELECT COUNT(*) FROM resolved_calls WHERE outcome = 'external'", &c.ExternalCalls},
		{"SELECT COUNT(*) FROM entry_points", &c.EntryPoints},
	}
	for _, s := range scalars {
		if err := db.QueryRow(s.query).Scan(s.dest); err != nil {
			return nil, fmt.Errorf("failed to count rows: %w", err)
		}
	}
	return c, nil
}

// FunctionInfo is a function row joined with its file for display.
type FunctionInfo struct {
	Function
	FilePath string
	Language string
}

const functionInfoColumns = `
	f.id, f.file_id, f.name, f.start_line, f.end_line,
	f.params_json, f.calls_json, f.decorators_json, f.complexity, f.exported,
	fi.path, fi.language
`

func scanFunctionInfo(rows *sql.Rows) (FunctionInfo, error) {
	var info FunctionInfo
	var params, calls, decorators string
	var exported int
	err := rows.Scan(
		&info.ID, &info.FileID, &info.Name, &info.StartLine, &info.EndLine,
		&params, &calls, &decorators, &info.Complexity, &exported,
		&info.FilePath, &info.Language,
	)
	if err != nil {
		return info, err
	}
	info.Params = unmarshalStrings(params)
	info.Calls = unmarshalStrings(calls)
	info.Decorators = unmarshalStrings(decorators)
	info.Exported = exported != 0
	return info, nil
}

func (db *DB) queryFunctionInfos(query string, args ...interface{}) ([]FunctionInfo, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query functions: %w", err)
	}
	defer rows.Close()

	var infos []FunctionInfo
	for rows.Next() {
		info, err := scanFunctionInfo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan function row: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// AllFunctions returns every stored function joined with its file.
func (db *DB) AllFunctions() ([]FunctionInfo, error) {
	return db.queryFunctionInfos(`
		SELECT ` + functionInfoColumns + `
		FROM functions f JOIN files fi ON fi.id = f.file_id
		ORDER BY fi.path, f.start_line
	`)
}

// FunctionsByMinComplexity returns functions at or above a complexity
// threshold, most complex first.
func (db *DB) FunctionsByMinComplexity(min int) ([]FunctionInfo, error) {
	return db.queryFunctionInfos(`
		SELECT `+functionInfoColumns+`
		FROM functions f JOIN files fi ON fi.id = f.file_id
		WHERE f.complexity >= ?
		ORDER BY f.complexity DESC, fi.path, f.start_line
	`, min)
}

// FunctionsByMinLines returns functions whose span is at least min lines,
// longest first.
func (db *DB) FunctionsByMinLines(min int) ([]FunctionInfo, error) {
	return db.queryFunctionInfos(`
		SELECT `+functionInfoColumns+`
		FROM functions f JOIN files fi ON fi.id = f.file_id
		WHERE (f.end_line - f.start_line + 1) >= ?
		ORDER BY (f.end_line - f.start_line + 1) DESC, fi.path, f.start_line
	`, min)
}

// AllFiles returns every stored file ordered by path.
func (db *DB) AllFiles() ([]File, error) {
	rows, err := db.Query(`
		SELECT id, path, language, line_count, has_main_guard, provenance, content_hash
		FROM files ORDER BY path
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query files: %w", err)
	}
	defer rows.Close()

	var files []File
	for rows.Next() {
		var f File
		var mainGuard int
		if err := rows.Scan(&f.ID, &f.Path, &f.Language, &f.LineCount, &mainGuard, &f.Provenance, &f.ContentHash); err != nil {
			return nil, fmt.Errorf("failed to scan file row: %w", err)
		}
		f.HasMainGuard = mainGuard != 0
		files = append(files, f)
	}
	return files, rows.Err()
}

// FilesByMinLines returns files with at least min lines, largest first.
func (db *DB) FilesByMinLines(min int) ([]File, error) {
	rows, err := db.Query(`
		SELECT id, path, language, line_count, has_main_guard, provenance, content_hash
		FROM files WHERE line_count >= ?
		ORDER BY line_count DESC, path
	`, min)
	if err != nil {
		return nil, fmt.Errorf("failed to query files: %w", err)
	}
	defer rows.Close()

	var files []File
	for rows.Next() {
		var f File
		var mainGuard int
		if err := rows.Scan(&f.ID, &f.Path, &f.Language, &f.LineCount, &mainGuard, &f.Provenance, &f.ContentHash); err != nil {
			return nil, fmt.Errorf("failed to scan file row: %w", err)
		}
		f.HasMainGuard = mainGuard != 0
		files = append(files, f)
	}
	return files, rows.Err()
}

// AllClasses returns every stored class.
func (db *DB) AllClasses() ([]Class, error) {
	rows, err := db.Query("SELECT id, file_id, name, start_line, bases_json FROM classes ORDER BY file_id, start_line")
	if err != nil {
		return nil, fmt.Errorf("failed to query classes: %w", err)
	}
	defer rows.Close()

	var classes []Class
	for rows.Next() {
		var cls Class
		var bases string
		if err := rows.Scan(&cls.ID, &cls.FileID, &cls.Name, &cls.StartLine, &bases); err != nil {
			return nil, fmt.Errorf("failed to scan class row: %w", err)
		}
		cls.Bases = unmarshalStrings(bases)
		classes = append(classes, cls)
	}
	return classes, rows.Err()
}

// AllImports returns every stored import.
func (db *DB) AllImports() ([]Import, error) {
	rows, err := db.Query("SELECT id, file_id, module, symbols_json, line, relative, level, raw FROM imports ORDER BY file_id, line")
	if err != nil {
		return nil, fmt.Errorf("failed to query imports: %w", err)
	}
	defer rows.Close()

	var imports []Import
	for rows.Next() {
		var imp Import
		var symbols string
		var relative int
		if err := rows.Scan(&imp.ID, &imp.FileID, &imp.Module, &symbols, &imp.Line, &relative, &imp.Level, &imp.Raw); err != nil {
			return nil, fmt.Errorf("failed to scan import row: %w", err)
		}
		imp.Symbols = unmarshalStrings(symbols)
		imp.Relative = relative != 0
		imports = append(imports, imp)
	}
	return imports, rows.Err()
}

// AllDependencies returns every file dependency edge.
func (db *DB) AllDependencies() ([]FileDependency, error) {
	rows, err := db.Query("SELECT source_file_id, target_file_id, line FROM file_dependencies ORDER BY source_file_id, target_file_id")
	if err != nil {
		return nil, fmt.Errorf("failed to query dependencies: %w", err)
	}
	defer rows.Close()

	var deps []FileDependency
	for rows.Next() {
		var dep FileDependency
		if err := rows.Scan(&dep.SourceFileID, &dep.TargetFileID, &dep.Line); err != nil {
			return nil, fmt.Errorf("failed to scan dependency row: %w", err)
		}
		deps = append(deps, dep)
	}
	return deps, rows.Err()
}

// AllCalls returns every call edge with its resolution outcome.
func (db *DB) AllCalls() ([]ResolvedCall, error) {
	rows, err := db.Query("SELECT id, caller_function_id, callee_function_id, callee_name, outcome FROM resolved_calls ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query calls: %w", err)
	}
	defer rows.Close()

	var calls []ResolvedCall
	for rows.Next() {
		var call ResolvedCall
		var callee sql.NullInt64
		if err := rows.Scan(&call.ID, &call.CallerFunctionID, &callee, &call.CalleeName, &call.Outcome); err != nil {
			return nil, fmt.Errorf("failed to scan call row: %w", err)
		}
		if callee.Valid {
			call.CalleeFunctionID = callee.Int64
		}
		calls = append(calls, call)
	}
	return calls, rows.Err()
}

// AllEntryPoints returns every detected entry point.
func (db *DB) AllEntryPoints() ([]EntryPoint, error) {
	rows, err := db.Query("SELECT id, file_id, function_id, kind, name, confidence FROM entry_points ORDER BY file_id, id")
	if err != nil {
		return nil, fmt.Errorf("failed to query entry points: %w", err)
	}
	defer rows.Close()

	var entries []EntryPoint
	for rows.Next() {
		var ep EntryPoint
		var fnID sql.NullInt64
		if err := rows.Scan(&ep.ID, &ep.FileID, &fnID, &ep.Kind, &ep.Name, &ep.Confidence); err != nil {
			return nil, fmt.Errorf("failed to scan entry point row: %w", err)
		}
		if fnID.Valid {
			ep.FunctionID = fnID.Int64
		}
		entries = append(entries, ep)
	}
	return entries, rows.Err()
}

// IncomingResolvedCounts returns, per function ID, the number of resolved
// call edges pointing at it.
func (db *DB) IncomingResolvedCounts() (map[int64]int, error) {
	rows, err := db.Query(`
		SELECT callee_function_id, COUNT(*)
		FROM resolved_calls
		WHERE outcome = 'resolved'
		GROUP BY callee_function_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query incoming call counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var id int64
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count row: %w", err)
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

// UnresolvedCalleeNames returns, per callee name, the number of unresolved
// call edges carrying it. Dead-code confidence drops for functions whose
// name shows up here.
func (db *DB) UnresolvedCalleeNames() (map[string]int, error) {
	rows, err := db.Query(`
		SELECT callee_name, COUNT(*)
		FROM resolved_calls
		WHERE outcome = 'unresolved'
		GROUP BY callee_name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query unresolved callee names: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count row: %w", err)
		}
		counts[name] = n
	}
	return counts, rows.Err()
}
