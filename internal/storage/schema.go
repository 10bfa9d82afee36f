package storage

import (
	"database/sql"
	"fmt"
)

const currentSchemaVersion = 1

// initializeSchema creates all tables for a new database.
func (db *DB) initializeSchema() error {
	return db.WithTx(func(tx *sql.Tx) error {
		if err := createSchemaVersionTable(tx); err != nil {
			return err
		}
		if err := createFilesTable(tx); err != nil {
			return err
		}
		if err := createFunctionsTable(tx); err != nil {
			return err
		}
		if err := createClassesTable(tx); err != nil {
			return err
		}
		if err := createImportsTable(tx); err != nil {
			return err
		}
		if err := createFileDependenciesTable(tx); err != nil {
			return err
		}
		if err := createResolvedCallsTable(tx); err != nil {
			return err
		}
		if err := createEntryPointsTable(tx); err != nil {
			return err
		}
		if err := setSchemaVersion(tx, currentSchemaVersion); err != nil {
			return err
		}

		db.logger.Info("Database schema initialized", map[string]interface{}{
			"version": currentSchemaVersion,
		})
		return nil
	})
}

// runMigrations runs any pending schema migrations.
func (db *DB) runMigrations() error {
	version, err := db.getSchemaVersion()
	if err != nil {
		return err
	}

	if version == currentSchemaVersion {
		db.logger.Debug("Database schema is up to date", map[string]interface{}{
			"version": version,
		})
		return nil
	}
	if version == 0 {
		// schema_version missing but the file exists: treat as new.
		return db.initializeSchema()
	}

	db.logger.Info("Running database migrations", map[string]interface{}{
		"from_version": version,
		"to_version":   currentSchemaVersion,
	})

	// Migration functions go here as the schema evolves.

	return nil
}

func (db *DB) getSchemaVersion() (int, error) {
	var tableName string
	err := db.QueryRow(`
		SELECT name FROM sqlite_master
		WHERE type='table' AND name='schema_version'
	`).Scan(&tableName)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var version int
	err = db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return version, nil
}

func setSchemaVersion(tx *sql.Tx, version int) error {
	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	_, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version)
	return err
}

func createSchemaVersionTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`)
	return err
}

func createFilesTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS files (
			id INTEGER PRIMARY KEY,
			path TEXT NOT NULL UNIQUE,
			language TEXT NOT NULL,
			line_count INTEGER NOT NULL,
			has_main_guard INTEGER NOT NULL DEFAULT 0,
			provenance TEXT NOT NULL CHECK(provenance IN ('treesitter', 'regex')),
			content_hash TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create files table: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_files_language ON files(language)",
		"CREATE INDEX IF NOT EXISTS idx_files_line_count ON files(line_count)",
	}
	for _, indexSQL := range indexes {
		if _, err := tx.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

func createFunctionsTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS functions (
			id INTEGER PRIMARY KEY,
			file_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			start_line INTEGER NOT NULL,
			end_line INTEGER NOT NULL,
			params_json TEXT NOT NULL,
			calls_json TEXT NOT NULL,
			decorators_json TEXT NOT NULL,
			complexity INTEGER NOT NULL,
			exported INTEGER NOT NULL DEFAULT 0,

			FOREIGN KEY (file_id) REFERENCES files(id) ON DELETE CASCADE
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create functions table: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_functions_file_id ON functions(file_id)",
		"CREATE INDEX IF NOT EXISTS idx_functions_name ON functions(name)",
		"CREATE INDEX IF NOT EXISTS idx_functions_complexity ON functions(complexity)",
	}
	for _, indexSQL := range indexes {
		if _, err := tx.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

func createClassesTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS classes (
			id INTEGER PRIMARY KEY,
			file_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			start_line INTEGER NOT NULL,
			bases_json TEXT NOT NULL,

			FOREIGN KEY (file_id) REFERENCES files(id) ON DELETE CASCADE
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create classes table: %w", err)
	}
	if _, err := tx.Exec("CREATE INDEX IF NOT EXISTS idx_classes_file_id ON classes(file_id)"); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	return nil
}

func createImportsTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS imports (
			id INTEGER PRIMARY KEY,
			file_id INTEGER NOT NULL,
			module TEXT NOT NULL,
			symbols_json TEXT NOT NULL,
			line INTEGER NOT NULL,
			relative INTEGER NOT NULL DEFAULT 0,
			level INTEGER NOT NULL DEFAULT 0,
			raw TEXT NOT NULL,

			FOREIGN KEY (file_id) REFERENCES files(id) ON DELETE CASCADE
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create imports table: %w", err)
	}
	if _, err := tx.Exec("CREATE INDEX IF NOT EXISTS idx_imports_file_id ON imports(file_id)"); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	return nil
}

func createFileDependenciesTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS file_dependencies (
			source_file_id INTEGER NOT NULL,
			target_file_id INTEGER NOT NULL,
			line INTEGER NOT NULL,

			PRIMARY KEY (source_file_id, target_file_id, line),
			FOREIGN KEY (source_file_id) REFERENCES files(id) ON DELETE CASCADE,
			FOREIGN KEY (target_file_id) REFERENCES files(id) ON DELETE CASCADE
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create file_dependencies table: %w", err)
	}
	if _, err := tx.Exec("CREATE INDEX IF NOT EXISTS idx_file_dependencies_target ON file_dependencies(target_file_id)"); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	return nil
}

func createResolvedCallsTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS resolved_calls (
			id INTEGER PRIMARY KEY,
			caller_function_id INTEGER NOT NULL,
			callee_function_id INTEGER,
			callee_name TEXT NOT NULL,
			outcome TEXT NOT NULL CHECK(outcome IN ('resolved', 'unresolved', 'external')),

			FOREIGN KEY (caller_function_id) REFERENCES functions(id) ON DELETE CASCADE,
			FOREIGN KEY (callee_function_id) REFERENCES functions(id) ON DELETE CASCADE,

			CHECK(
				(outcome = 'resolved' AND callee_function_id IS NOT NULL) OR
				(outcome != 'resolved' AND callee_function_id IS NULL)
			)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create resolved_calls table: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_resolved_calls_caller ON resolved_calls(caller_function_id)",
		"CREATE INDEX IF NOT EXISTS idx_resolved_calls_callee ON resolved_calls(callee_function_id)",
		"CREATE INDEX IF NOT EXISTS idx_resolved_calls_name ON resolved_calls(callee_name)",
	}
	for _, indexSQL := range indexes {
		if _, err := tx.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

func createEntryPointsTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS entry_points (
			id INTEGER PRIMARY KEY,
			file_id INTEGER NOT NULL,
			function_id INTEGER,
			kind TEXT NOT NULL,
			name TEXT NOT NULL,
			confidence REAL NOT NULL CHECK(confidence >= 0.0 AND confidence <= 1.0),

			FOREIGN KEY (file_id) REFERENCES files(id) ON DELETE CASCADE,
			FOREIGN KEY (function_id) REFERENCES functions(id) ON DELETE CASCADE
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create entry_points table: %w", err)
	}
	if _, err := tx.Exec("CREATE INDEX IF NOT EXISTS idx_entry_points_function ON entry_points(function_id)"); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	return nil
}
