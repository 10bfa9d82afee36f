package storage

import (
	"database/sql"
	"fmt"
)

// ReplaceAll replaces the entire index with a new snapshot in a single
// transaction. Rows carry pre-assigned IDs so cross-references between
// tables (call edges, dependency edges) are consistent; a failure anywhere
// leaves the previous index untouched.
func (db *DB) ReplaceAll(snap *Snapshot) error {
	return db.WithTx(func(tx *sql.Tx) error {
		tables := []string{
			"resolved_calls", "entry_points", "file_dependencies",
			"imports", "classes", "functions", "files",
		}
		for _, table := range tables {
			if _, err := tx.Exec("DELETE FROM " + table); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}

		if err := insertFiles(tx, snap.Files); err != nil {
			return err
		}
		if err := insertFunctions(tx, snap.Functions); err != nil {
			return err
		}
		if err := insertClasses(tx, snap.Classes); err != nil {
			return err
		}
		if err := insertImports(tx, snap.Imports); err != nil {
			return err
		}
		if err := insertDependencies(tx, snap.Dependencies); err != nil {
			return err
		}
		if err := insertCalls(tx, snap.Calls); err != nil {
			return err
		}
		return insertEntryPoints(tx, snap.EntryPoints)
	})
}

func insertFiles(tx *sql.Tx, files []File) error {
	stmt, err := tx.Prepare(`
		INSERT INTO files (id, path, language, line_count, has_main_guard, provenance, content_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, f := range files {
		if _, err := stmt.Exec(f.ID, f.Path, f.Language, f.LineCount, boolToInt(f.HasMainGuard), f.Provenance, f.ContentHash); err != nil {
			return fmt.Errorf("failed to insert file %s: %w", f.Path, err)
		}
	}
	return nil
}

func insertFunctions(tx *sql.Tx, functions []Function) error {
	stmt, err := tx.Prepare(`
		INSERT INTO functions (id, file_id, name, start_line, end_line, params_json, calls_json, decorators_json, complexity, exported)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, fn := range functions {
		if _, err := stmt.Exec(
			fn.ID, fn.FileID, fn.Name, fn.StartLine, fn.EndLine,
			marshalStrings(fn.Params), marshalStrings(fn.Calls), marshalStrings(fn.Decorators),
			fn.Complexity, boolToInt(fn.Exported),
		); err != nil {
			return fmt.Errorf("failed to insert function %s: %w", fn.Name, err)
		}
	}
	return nil
}

func insertClasses(tx *sql.Tx, classes []Class) error {
	stmt, err := tx.Prepare(`
		INSERT INTO classes (id, file_id, name, start_line, bases_json)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, cls := range classes {
		if _, err := stmt.Exec(cls.ID, cls.FileID, cls.Name, cls.StartLine, marshalStrings(cls.Bases)); err != nil {
			return fmt.Errorf("failed to insert class %s: %w", cls.Name, err)
		}
	}
	return nil
}

func insertImports(tx *sql.Tx, imports []Import) error {
	stmt, err := tx.Prepare(`
		INSERT INTO imports (id, file_id, module, symbols_json, line, relative, level, raw)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, imp := range imports {
		if _, err := stmt.Exec(imp.ID, imp.FileID, imp.Module, marshalStrings(imp.Symbols), imp.Line, boolToInt(imp.Relative), imp.Level, imp.Raw); err != nil {
			return fmt.Errorf("failed to insert import %s: %w", imp.Module, err)
		}
	}
	return nil
}

func insertDependencies(tx *sql.Tx, deps []FileDependency) error {
	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO file_dependencies (source_file_id, target_file_id, line)
		VALUES (?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, dep := range deps {
		if _, err := stmt.Exec(dep.SourceFileID, dep.TargetFileID, dep.Line); err != nil {
			return fmt.Errorf("failed to insert dependency edge: %w", err)
		}
	}
	return nil
}

func insertCalls(tx *sql.Tx, calls []ResolvedCall) error {
	stmt, err := tx.Prepare(`
		INSERT INTO resolved_calls (id, caller_function_id, callee_function_id, callee_name, outcome)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, call := range calls {
		var callee interface{}
		if call.Outcome == OutcomeResolved {
			callee = call.CalleeFunctionID
		}
		if _, err := stmt.Exec(call.ID, call.CallerFunctionID, callee, call.CalleeName, call.Outcome); err != nil {
			return fmt.Errorf("failed to insert call edge %s: %w", call.CalleeName, err)
		}
	}
	return nil
}

func insertEntryPoints(tx *sql.Tx, entries []EntryPoint) error {
	stmt, err := tx.Prepare(`
		INSERT INTO entry_points (id, file_id, function_id, kind, name, confidence)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, ep := range entries {
		var fnID interface{}
		if ep.FunctionID != 0 {
			fnID = ep.FunctionID
		}
		if _, err := stmt.Exec(ep.ID, ep.FileID, fnID, ep.Kind, ep.Name, ep.Confidence); err != nil {
			return fmt.Errorf("failed to insert entry point %s: %w", ep.Name, err)
		}
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
