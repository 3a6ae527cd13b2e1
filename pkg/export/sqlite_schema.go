// Package export renders laid-out size trees to static artifacts: SVG and
// PNG snapshots of the sunburst, and a SQLite database for ad-hoc queries.
//
// This file implements SQLite schema creation for the database export.
package export

import (
	"database/sql"
	"fmt"
)

// Schema version for tracking migrations
const SchemaVersion = 2

// CreateSchema creates all tables, indexes, and views in the database.
func CreateSchema(db *sql.DB) error {
	if err := createCoreTables(db); err != nil {
		return fmt.Errorf("create core tables: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}

	if err := createViews(db); err != nil {
		return fmt.Errorf("create views: %w", err)
	}

	if err := createMetaTable(db); err != nil {
		return fmt.Errorf("create meta table: %w", err)
	}

	return nil
}

// createCoreTables creates the nodes, inputs, outputs, contributions, and imports tables.
func createCoreTables(db *sql.DB) error {
	// Nodes table - the size tree with its full-circle layout
	nodesSQL := `
		CREATE TABLE IF NOT EXISTS nodes (
			path TEXT PRIMARY KEY,
			parent TEXT,
			name TEXT NOT NULL,
			bytes INTEGER NOT NULL,
			depth INTEGER NOT NULL,
			is_dir INTEGER NOT NULL,
			color TEXT NOT NULL,
			start_angle REAL NOT NULL,
			sweep_angle REAL NOT NULL
		)
	`
	if _, err := db.Exec(nodesSQL); err != nil {
		return fmt.Errorf("create nodes table: %w", err)
	}

	// Inputs table - every input, including those no output kept
	inputsSQL := `
		CREATE TABLE IF NOT EXISTS inputs (
			path TEXT PRIMARY KEY,
			bytes INTEGER NOT NULL
		)
	`
	if _, err := db.Exec(inputsSQL); err != nil {
		return fmt.Errorf("create inputs table: %w", err)
	}

	outputsSQL := `
		CREATE TABLE IF NOT EXISTS outputs (
			path TEXT PRIMARY KEY,
			bytes INTEGER NOT NULL,
			entry_point TEXT,
			is_source_map INTEGER NOT NULL
		)
	`
	if _, err := db.Exec(outputsSQL); err != nil {
		return fmt.Errorf("create outputs table: %w", err)
	}

	// Contributions table - bytes each input adds to each output
	contribSQL := `
		CREATE TABLE IF NOT EXISTS contributions (
			output TEXT NOT NULL,
			input TEXT NOT NULL,
			bytes_in_output INTEGER NOT NULL,
			PRIMARY KEY (output, input),
			FOREIGN KEY (output) REFERENCES outputs(path)
		)
	`
	if _, err := db.Exec(contribSQL); err != nil {
		return fmt.Errorf("create contributions table: %w", err)
	}

	importsSQL := `
		CREATE TABLE IF NOT EXISTS imports (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			importer TEXT NOT NULL,
			path TEXT NOT NULL,
			kind TEXT,
			external INTEGER NOT NULL DEFAULT 0
		)
	`
	if _, err := db.Exec(importsSQL); err != nil {
		return fmt.Errorf("create imports table: %w", err)
	}

	return nil
}

// createIndexes creates performance indexes for common queries.
func createIndexes(db *sql.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_nodes_parent ON nodes(parent)`,
		`CREATE INDEX IF NOT EXISTS idx_nodes_bytes ON nodes(bytes DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_contrib_input ON contributions(input)`,
		`CREATE INDEX IF NOT EXISTS idx_imports_path ON imports(path)`,
		`CREATE INDEX IF NOT EXISTS idx_imports_importer ON imports(importer)`,
	}

	for _, sql := range indexes {
		if _, err := db.Exec(sql); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}

	return nil
}

// createViews creates convenience views over the core tables.
func createViews(db *sql.DB) error {
	views := []string{
		`CREATE VIEW IF NOT EXISTS largest_files AS
			SELECT path, bytes, depth
			FROM nodes
			WHERE is_dir = 0
			ORDER BY bytes DESC, path ASC`,
		`CREATE VIEW IF NOT EXISTS tree_shaken AS
			SELECT path
			FROM nodes
			WHERE is_dir = 0 AND bytes = 0
			ORDER BY path`,
	}
	for _, sql := range views {
		if _, err := db.Exec(sql); err != nil {
			return fmt.Errorf("create view: %w", err)
		}
	}
	return nil
}

// createMetaTable creates the export metadata table.
func createMetaTable(db *sql.DB) error {
	metaSQL := `
		CREATE TABLE IF NOT EXISTS export_meta (
			key TEXT PRIMARY KEY,
			value TEXT
		)
	`
	if _, err := db.Exec(metaSQL); err != nil {
		return fmt.Errorf("create export_meta table: %w", err)
	}

	return nil
}

// OptimizeDatabase runs post-export optimizations. It should be called after
// all data is inserted.
func OptimizeDatabase(db *sql.DB, pageSize int) error {
	if pageSize <= 0 {
		pageSize = 4096
	}

	optimizations := []string{
		`PRAGMA journal_mode=DELETE`,
		fmt.Sprintf(`PRAGMA page_size=%d`, pageSize),
		`ANALYZE`,
		`PRAGMA optimize`,
	}

	for _, sql := range optimizations {
		if _, err := db.Exec(sql); err != nil {
			// Some pragmas may fail depending on state, continue
			continue
		}
	}

	// VACUUM must be last and outside transaction
	if _, err := db.Exec(`VACUUM`); err != nil {
		return fmt.Errorf("vacuum: %w", err)
	}

	return nil
}

// InsertMetaValue inserts or replaces a metadata key-value pair.
func InsertMetaValue(db *sql.DB, key, value string) error {
	_, err := db.Exec(`INSERT OR REPLACE INTO export_meta (key, value) VALUES (?, ?)`, key, value)
	return err
}
