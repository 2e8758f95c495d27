// Package importer implements the import pipeline for the seven DB-VP
// tables: header validation, per-row transformation, the three write
// strategies, optional truncation, file discovery, and the orchestrated
// run that ties them together. The pipeline produces a structured Report;
// rendering it is left to callers.
package importer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the database surface the pipeline needs. It is satisfied by
// *pgx.Conn, *pgxpool.Pool, pgxpool.Conn and pgx.Tx, and by fakes in tests.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Mode selects the write strategy for a run.
type Mode string

const (
	ModeInsert Mode = "insert"
	ModeUpdate Mode = "update"
	ModeUpsert Mode = "upsert"
)

// ParseMode parses a user-supplied mode string. The empty string selects
// the default insert mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeInsert:
		return ModeInsert, nil
	case ModeUpdate:
		return ModeUpdate, nil
	case ModeUpsert:
		return ModeUpsert, nil
	default:
		return "", fmt.Errorf("unknown mode %q (valid: insert, update, upsert)", s)
	}
}

// Options configures a single run. Immutable for the run's duration.
type Options struct {
	Mode     Mode
	Truncate bool

	// InputDir is the directory scanned for table files.
	InputDir string

	// RowErrorLimit caps the row errors retained per table in the report.
	// Zero selects the default; errors beyond the cap are still counted.
	RowErrorLimit int
}

// DefaultRowErrorLimit is applied when Options.RowErrorLimit is zero.
const DefaultRowErrorLimit = 50

// Stats are the import counters, kept per table and aggregated per run.
type Stats struct {
	Processed int `json:"processed"`
	Inserted  int `json:"inserted"`
	Updated   int `json:"updated"`
	Errors    int `json:"errors"`
	Skipped   int `json:"skipped"`
}

// Merge adds another accumulator into this one.
func (s *Stats) Merge(o Stats) {
	s.Processed += o.Processed
	s.Inserted += o.Inserted
	s.Updated += o.Updated
	s.Errors += o.Errors
	s.Skipped += o.Skipped
}

// RowError describes one failed data row. Row is the 1-based data row
// ordinal, not counting the header.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// FileInfo is the discovery record for one table's input file.
type FileInfo struct {
	Table   string    `json:"table"`
	Path    string    `json:"path,omitempty"`
	Size    int64     `json:"size"`
	Rows    int       `json:"rows"`
	ModTime time.Time `json:"mod_time,omitzero"`
	Missing bool      `json:"missing"`
}

// TableResult is the outcome of importing one table.
type TableResult struct {
	Table string `json:"table"`
	Label string `json:"label"`
	File  string `json:"file,omitempty"`

	// Fatal marks a table whose import was aborted before row processing
	// (unknown table, primary key column absent, truncate failure).
	// A missing input file is an expected skip, not a fatal outcome.
	Fatal   bool   `json:"fatal,omitempty"`
	Message string `json:"message,omitempty"`

	MissingColumns []string `json:"missing_columns,omitempty"`
	ExtraColumns   []string `json:"extra_columns,omitempty"`

	Stats            Stats         `json:"stats"`
	RowErrors        []RowError    `json:"row_errors,omitempty"`
	RowErrorsOmitted int           `json:"row_errors_omitted,omitempty"`
	Duration         time.Duration `json:"duration"`
}

// Report is the structured result of one full run.
type Report struct {
	ID         string        `json:"id"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Mode       Mode          `json:"mode"`
	Truncate   bool          `json:"truncate"`
	InputDir   string        `json:"input_dir"`
	Files      []FileInfo    `json:"files"`
	Tables     []TableResult `json:"tables"`
	Totals     Stats         `json:"totals"`
	Success    bool          `json:"success"`
}

// Duration returns the wall-clock time of the run.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
