package importer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/giotroni/DB-VP/internal/schema"
	"github.com/giotroni/DB-VP/internal/tabular"
)

// ProgressFunc is called after each processed row of a table. Used by the
// CLI to drive a progress bar; nil disables it.
type ProgressFunc func(table string, current, total int)

// Runner drives one full import run: discovery, then every table in import
// order, each independently. Rows are written one at a time over a single
// serially-used connection.
type Runner struct {
	DB  DBTX
	Log *slog.Logger

	// Progress, when set, receives per-row progress for each table.
	Progress ProgressFunc
}

// Run executes the pipeline and returns the structured report. A table's
// complete failure (missing file, fatal header mismatch, truncate failure)
// never aborts the run; every table is attempted in order. The returned
// error is reserved for run-level faults.
func (r *Runner) Run(ctx context.Context, opts Options) (*Report, error) {
	log := r.Log
	if log == nil {
		log = slog.Default()
	}
	if opts.Mode == "" {
		opts.Mode = ModeInsert
	}
	if opts.RowErrorLimit <= 0 {
		opts.RowErrorLimit = DefaultRowErrorLimit
	}

	report := &Report{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
		Mode:      opts.Mode,
		Truncate:  opts.Truncate,
		InputDir:  opts.InputDir,
	}

	files, err := Discover(opts.InputDir)
	if err != nil {
		return nil, fmt.Errorf("discover input files: %w", err)
	}
	report.Files = files

	byTable := make(map[string]FileInfo, len(files))
	for _, f := range files {
		byTable[f.Table] = f
	}

	log.Info("import run started",
		"run_id", report.ID,
		"mode", opts.Mode,
		"truncate", opts.Truncate,
		"input_dir", opts.InputDir,
	)

	for _, name := range schema.ImportOrder {
		res := r.importTable(ctx, log, opts, name, byTable[name])
		report.Tables = append(report.Tables, res)
		report.Totals.Merge(res.Stats)
	}

	report.FinishedAt = time.Now()
	report.Success = report.Totals.Errors == 0

	log.Info("import run finished",
		"run_id", report.ID,
		"processed", report.Totals.Processed,
		"inserted", report.Totals.Inserted,
		"updated", report.Totals.Updated,
		"errors", report.Totals.Errors,
		"skipped", report.Totals.Skipped,
		"duration", report.Duration(),
	)

	return report, nil
}

// importTable runs the pipeline for one table. All failures are recorded
// in the result; none propagate.
func (r *Runner) importTable(ctx context.Context, log *slog.Logger, opts Options, name string, file FileInfo) TableResult {
	start := time.Now()

	t, _ := schema.Get(name)
	res := TableResult{Table: name, Label: t.Label}

	defer func() {
		log.Info("table finished",
			"table", name,
			"processed", res.Stats.Processed,
			"inserted", res.Stats.Inserted,
			"updated", res.Stats.Updated,
			"errors", res.Stats.Errors,
			"skipped", res.Stats.Skipped,
		)
	}()

	if file.Missing {
		res.Message = "input file missing"
		res.Duration = time.Since(start)
		log.Info("table skipped", "table", name, "reason", "input file missing")
		return res
	}
	res.File = file.Path

	if opts.Truncate {
		if err := Truncate(ctx, r.DB, name); err != nil {
			res.Fatal = true
			res.Message = err.Error()
			res.Duration = time.Since(start)
			log.Error("truncate failed", "table", name, "error", err)
			return res
		}
		log.Info("table truncated", "table", name)
	}

	parsed, err := tabular.Read(file.Path)
	if err != nil {
		res.Fatal = true
		res.Message = fmt.Sprintf("read %s: %v", file.Path, err)
		res.Duration = time.Since(start)
		log.Error("read failed", "table", name, "file", file.Path, "error", err)
		return res
	}

	v := ValidateHeaders(name, parsed.Headers)
	res.MissingColumns = v.MissingColumns
	res.ExtraColumns = v.ExtraColumns
	if v.Fatal {
		res.Fatal = true
		res.Message = v.Message
		res.Duration = time.Since(start)
		log.Error("header validation failed", "table", name, "error", v.Message)
		return res
	}
	if len(v.MissingColumns) > 0 {
		log.Warn("columns missing from file, defaults apply",
			"table", name, "columns", v.MissingColumns)
	}
	if len(v.ExtraColumns) > 0 {
		log.Warn("unknown columns in file, ignored",
			"table", name, "columns", v.ExtraColumns)
	}

	res.Stats.Skipped = parsed.BlankRows

	idx := tabular.MakeHeaderIndex(parsed.Headers)
	writer := NewWriter(r.DB, t, opts.Mode)
	pkName := t.PrimaryKey().Name

	for i, row := range parsed.Rows {
		line := i + 1 // 1-based data row ordinal, header not counted
		res.Stats.Processed++

		values, err := TransformRow(t, idx, row)
		if err != nil {
			r.rowError(log, &res, opts, name, line, err)
			continue
		}

		if pk, _ := values[pkName].(string); pk == "" {
			r.rowError(log, &res, opts, name, line, fmt.Errorf("empty primary key %s", pkName))
			continue
		}

		outcome, err := writer.Write(ctx, values)
		if IsNoMatch(err) {
			log.Debug("update matched no row", "table", name, "row", line)
			err = nil
		}
		if err != nil {
			r.rowError(log, &res, opts, name, line, err)
			continue
		}

		switch outcome {
		case OutcomeInserted:
			res.Stats.Inserted++
		case OutcomeUpdated:
			res.Stats.Updated++
		case OutcomeDuplicate:
			// Absorbed: processed, but neither inserted nor skipped.
		}

		if r.Progress != nil {
			r.Progress(name, line, len(parsed.Rows))
		}
	}

	res.Duration = time.Since(start)
	return res
}

// rowError counts one failed row, keeping at most RowErrorLimit messages.
func (r *Runner) rowError(log *slog.Logger, res *TableResult, opts Options, table string, line int, err error) {
	res.Stats.Errors++
	if len(res.RowErrors) < opts.RowErrorLimit {
		res.RowErrors = append(res.RowErrors, RowError{Row: line, Message: err.Error()})
	} else {
		res.RowErrorsOmitted++
	}
	log.Warn("row failed", "table", table, "row", line, "error", err)
}
