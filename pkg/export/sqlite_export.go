package export

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/vanderheijden86/burst/pkg/debug"
	"github.com/vanderheijden86/burst/pkg/metafile"
	"github.com/vanderheijden86/burst/pkg/metrics"
	"github.com/vanderheijden86/burst/pkg/sunburst"
	"github.com/vanderheijden86/burst/pkg/version"

	_ "modernc.org/sqlite"
)

// SQLiteExporter writes a size tree and the metafile it came from to a
// SQLite database.
type SQLiteExporter struct {
	Tree   *sunburst.Tree
	Meta   *metafile.Metafile
	Config SQLiteExportConfig
}

// NewSQLiteExporter creates a new exporter with the given data.
func NewSQLiteExporter(tree *sunburst.Tree, meta *metafile.Metafile) *SQLiteExporter {
	return &SQLiteExporter{
		Tree:   tree,
		Meta:   meta,
		Config: DefaultSQLiteExportConfig(),
	}
}

// Export writes the database to dbPath, replacing any existing file.
func (e *SQLiteExporter) Export(dbPath string) error {
	defer metrics.Timer(metrics.Export)()
	if e.Tree == nil || e.Tree.Root == nil {
		return fmt.Errorf("no tree to export")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing database: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	dbClosed := false
	defer func() {
		if !dbClosed {
			db.Close()
		}
	}()

	if err := CreateSchema(db); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	nodes := e.GetExportedNodes()
	if err := insertNodes(db, nodes); err != nil {
		return fmt.Errorf("insert nodes: %w", err)
	}

	if err := e.insertInputs(db); err != nil {
		return fmt.Errorf("insert inputs: %w", err)
	}

	if err := e.insertOutputs(db); err != nil {
		return fmt.Errorf("insert outputs: %w", err)
	}

	if err := e.insertImports(db); err != nil {
		return fmt.Errorf("insert imports: %w", err)
	}

	if err := e.insertMeta(db, len(nodes)); err != nil {
		return fmt.Errorf("insert meta: %w", err)
	}

	if err := OptimizeDatabase(db, e.Config.PageSize); err != nil {
		return fmt.Errorf("optimize database: %w", err)
	}

	if err := db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	dbClosed = true

	debug.Log("export: wrote %d nodes to %s", len(nodes), dbPath)
	return nil
}

// GetExportedNodes flattens the tree top-down with the full-circle layout.
func (e *SQLiteExporter) GetExportedNodes() []ExportNode {
	if e.Tree == nil || e.Tree.Root == nil {
		return nil
	}
	var out []ExportNode
	sunburst.Walk(e.Tree.Root, sunburst.FullCircle(), func(n *sunburst.Node, w sunburst.Wedge) bool {
		row := ExportNode{
			Path:       n.Path,
			Name:       n.Name,
			Bytes:      n.Bytes,
			Depth:      int(w.Depth),
			IsDir:      n.IsDir(),
			Color:      n.Color,
			StartAngle: w.StartAngle,
			SweepAngle: w.SweepAngle,
		}
		if n.Parent != nil {
			row.Parent = n.Parent.Path
		}
		out = append(out, row)
		return true
	})
	return out
}

// insertNodes inserts all tree nodes into the database.
func insertNodes(db *sql.DB, nodes []ExportNode) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO nodes (path, parent, name, bytes, depth, is_dir, color, start_angle, sweep_angle)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, n := range nodes {
		var parent *string
		if n.Depth > 0 {
			p := n.Parent
			parent = &p
		}
		_, err := stmt.Exec(n.Path, parent, n.Name, n.Bytes, n.Depth, n.IsDir, n.Color, n.StartAngle, n.SweepAngle)
		if err != nil {
			return fmt.Errorf("insert node %s: %w", n.Path, err)
		}
	}

	return tx.Commit()
}

// insertInputs records the full input set. Tree-shaken inputs appear in no
// output and would otherwise be lost on reopen.
func (e *SQLiteExporter) insertInputs(db *sql.DB) error {
	if e.Meta == nil {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO inputs (path, bytes) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, path := range e.Meta.InputPaths() {
		if _, err := stmt.Exec(metafile.StripDisabledPathPrefix(path), e.Meta.Inputs[path].Bytes); err != nil {
			return fmt.Errorf("insert input %s: %w", path, err)
		}
	}

	return tx.Commit()
}

// insertOutputs inserts outputs and their per-input contributions.
func (e *SQLiteExporter) insertOutputs(db *sql.DB) error {
	if e.Meta == nil {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	outStmt, err := tx.Prepare(`
		INSERT INTO outputs (path, bytes, entry_point, is_source_map)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer outStmt.Close()

	contribStmt, err := tx.Prepare(`
		INSERT INTO contributions (output, input, bytes_in_output)
		VALUES (?, ?, ?)
		ON CONFLICT(output, input) DO UPDATE SET bytes_in_output = bytes_in_output + excluded.bytes_in_output
	`)
	if err != nil {
		return err
	}
	defer contribStmt.Close()

	for _, path := range e.Meta.OutputPaths() {
		out := e.Meta.Outputs[path]
		var entry *string
		if out.EntryPoint != "" {
			entry = &out.EntryPoint
		}
		if _, err := outStmt.Exec(path, out.Bytes, entry, metafile.IsSourceMapPath(path)); err != nil {
			return fmt.Errorf("insert output %s: %w", path, err)
		}
		for in, c := range out.Inputs {
			if _, err := contribStmt.Exec(path, metafile.StripDisabledPathPrefix(in), c.BytesInOutput); err != nil {
				return fmt.Errorf("insert contribution %s->%s: %w", in, path, err)
			}
		}
	}

	return tx.Commit()
}

// insertImports inserts the import edges of every input.
func (e *SQLiteExporter) insertImports(db *sql.DB) error {
	if e.Meta == nil {
		return nil
	}

	total := 0
	for _, in := range e.Meta.Inputs {
		total += len(in.Imports)
	}
	if total == 0 {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO imports (importer, path, kind, external)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, importer := range e.Meta.InputPaths() {
		for _, imp := range e.Meta.Inputs[importer].Imports {
			_, err := stmt.Exec(metafile.StripDisabledPathPrefix(importer), imp.Path, imp.Kind, imp.External)
			if err != nil {
				return fmt.Errorf("insert import %s->%s: %w", importer, imp.Path, err)
			}
		}
	}

	return tx.Commit()
}

// insertMeta inserts export metadata.
func (e *SQLiteExporter) insertMeta(db *sql.DB, nodeCount int) error {
	m := ExportMeta{
		Version:     version.Version,
		GeneratedAt: time.Now().UTC(),
		NodeCount:   nodeCount,
		TotalBytes:  e.Tree.Root.Bytes,
		Title:       e.Config.Title,
	}
	if e.Meta != nil {
		m.OutputCount = len(e.Meta.Outputs)
	}

	meta := map[string]string{
		"version":        m.Version,
		"generated_at":   m.GeneratedAt.Format(time.RFC3339),
		"node_count":     strconv.Itoa(m.NodeCount),
		"output_count":   strconv.Itoa(m.OutputCount),
		"total_bytes":    strconv.FormatInt(m.TotalBytes, 10),
		"root":           e.Tree.Root.Path,
		"max_depth":      strconv.Itoa(e.Tree.MaxDepth),
		"schema_version": strconv.Itoa(SchemaVersion),
	}
	if m.Title != "" {
		meta["title"] = m.Title
	}

	for key, value := range meta {
		if err := InsertMetaValue(db, key, value); err != nil {
			return fmt.Errorf("insert meta %s: %w", key, err)
		}
	}

	return nil
}
