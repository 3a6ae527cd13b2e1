package export

import "time"

// ExportNode is one row of the nodes table.
type ExportNode struct {
	Path       string  `json:"path"`
	Parent     string  `json:"parent,omitempty"`
	Name       string  `json:"name"`
	Bytes      int64   `json:"bytes"`
	Depth      int     `json:"depth"`
	IsDir      bool    `json:"is_dir"`
	Color      string  `json:"color"`
	StartAngle float64 `json:"start_angle"`
	SweepAngle float64 `json:"sweep_angle"`
}

// ExportMeta contains metadata about the export.
type ExportMeta struct {
	Version     string    `json:"version"`
	GeneratedAt time.Time `json:"generated_at"`
	NodeCount   int       `json:"node_count"`
	OutputCount int       `json:"output_count"`
	TotalBytes  int64     `json:"total_bytes"`
	Title       string    `json:"title,omitempty"`
}

// SQLiteExportConfig configures the SQLite export process.
type SQLiteExportConfig struct {
	// Title is stored in export_meta when set
	Title string

	// PageSize is the SQLite page size applied before VACUUM
	PageSize int
}

// DefaultSQLiteExportConfig returns the default export configuration.
func DefaultSQLiteExportConfig() SQLiteExportConfig {
	return SQLiteExportConfig{
		PageSize: 4096,
	}
}
