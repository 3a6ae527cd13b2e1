package datasource

import (
	"database/sql"
	"fmt"
	"strconv"

	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/burst/pkg/export"
	"github.com/vanderheijden86/burst/pkg/metafile"
)

// SQLiteReader reopens a database written by export.SQLiteExporter and
// rebuilds the metafile it was exported from.
type SQLiteReader struct {
	db      *sql.DB
	path    string
	version int
}

// NewSQLiteReader opens an exported database for reading
func NewSQLiteReader(source DataSource) (*SQLiteReader, error) {
	if source.Type != SourceTypeSQLite {
		return nil, fmt.Errorf("source is not SQLite: %s", source.Type)
	}

	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=ro", source.Path))
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}

	r := &SQLiteReader{db: db, path: source.Path}
	if err := r.checkSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

// Close closes the database connection
func (r *SQLiteReader) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteReader) checkSchema() error {
	var value string
	err := r.db.QueryRow(`SELECT value FROM export_meta WHERE key = 'schema_version'`).Scan(&value)
	if err != nil {
		return fmt.Errorf("%s is not a burst export: %w", r.path, err)
	}
	v, err := strconv.Atoi(value)
	if err != nil || v > export.SchemaVersion {
		return fmt.Errorf("%s has unsupported schema version %q", r.path, value)
	}
	r.version = v
	return nil
}

// Meta returns one export_meta value, or "" when the key is absent.
func (r *SQLiteReader) Meta(key string) string {
	var value sql.NullString
	if err := r.db.QueryRow(`SELECT value FROM export_meta WHERE key = ?`, key).Scan(&value); err != nil {
		return ""
	}
	return value.String
}

// LoadMetafile rebuilds inputs, outputs and import edges. Version 1 exports
// carry no inputs table; their inputs come from contributions and report the
// bytes their node had.
func (r *SQLiteReader) LoadMetafile() (*metafile.Metafile, error) {
	m := &metafile.Metafile{
		Inputs:  make(map[string]metafile.Input),
		Outputs: make(map[string]metafile.Output),
	}

	if r.version >= 2 {
		if err := r.loadInputs(m); err != nil {
			return nil, err
		}
	}
	if err := r.loadOutputs(m); err != nil {
		return nil, err
	}
	if err := r.loadContributions(m); err != nil {
		return nil, err
	}
	if err := r.loadImports(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *SQLiteReader) loadInputs(m *metafile.Metafile) error {
	rows, err := r.db.Query(`SELECT path, bytes FROM inputs`)
	if err != nil {
		return fmt.Errorf("query inputs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var path string
		var in metafile.Input
		if err := rows.Scan(&path, &in.Bytes); err != nil {
			return fmt.Errorf("scan input: %w", err)
		}
		m.Inputs[path] = in
	}
	return rows.Err()
}

func (r *SQLiteReader) loadOutputs(m *metafile.Metafile) error {
	rows, err := r.db.Query(`SELECT path, bytes, entry_point FROM outputs`)
	if err != nil {
		return fmt.Errorf("query outputs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var path string
		var bytes int64
		var entry sql.NullString
		if err := rows.Scan(&path, &bytes, &entry); err != nil {
			return fmt.Errorf("scan output: %w", err)
		}
		m.Outputs[path] = metafile.Output{
			Bytes:      bytes,
			Inputs:     make(map[string]metafile.OutputInput),
			EntryPoint: entry.String,
		}
	}
	return rows.Err()
}

func (r *SQLiteReader) loadContributions(m *metafile.Metafile) error {
	rows, err := r.db.Query(`
		SELECT c.output, c.input, c.bytes_in_output, COALESCE(n.bytes, 0)
		FROM contributions c
		LEFT JOIN nodes n ON n.path = c.input
	`)
	if err != nil {
		return fmt.Errorf("query contributions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var output, input string
		var inOutput, nodeBytes int64
		if err := rows.Scan(&output, &input, &inOutput, &nodeBytes); err != nil {
			return fmt.Errorf("scan contribution: %w", err)
		}
		out, ok := m.Outputs[output]
		if !ok {
			continue
		}
		out.Inputs[input] = metafile.OutputInput{BytesInOutput: inOutput}
		if _, ok := m.Inputs[input]; !ok {
			m.Inputs[input] = metafile.Input{Bytes: nodeBytes}
		}
	}
	return rows.Err()
}

func (r *SQLiteReader) loadImports(m *metafile.Metafile) error {
	rows, err := r.db.Query(`SELECT importer, path, COALESCE(kind, ''), external FROM imports ORDER BY id`)
	if err != nil {
		return fmt.Errorf("query imports: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var importer string
		var imp metafile.Import
		if err := rows.Scan(&importer, &imp.Path, &imp.Kind, &imp.External); err != nil {
			return fmt.Errorf("scan import: %w", err)
		}
		in := m.Inputs[importer]
		in.Imports = append(in.Imports, imp)
		m.Inputs[importer] = in
	}
	return rows.Err()
}
