// Package report renders finished import runs: plain text for the CLI,
// standalone HTML for the web dashboard, plus a bounded in-memory history.
// The pipeline itself never writes to a terminal; it hands its Report here.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/giotroni/DB-VP/internal/importer"
)

// timeUnit is the rounding applied to displayed durations.
const timeUnit = time.Millisecond

// RenderConsole writes a human-readable run summary to w.
func RenderConsole(w io.Writer, r *importer.Report) {
	fmt.Fprintf(w, "Import run %s\n", r.ID)
	fmt.Fprintf(w, "  mode=%s truncate=%v input=%s duration=%s\n\n",
		r.Mode, r.Truncate, r.InputDir, r.Duration().Round(timeUnit))

	fmt.Fprintf(w, "  %-20s %-9s %9s %9s %9s %9s %9s\n",
		"table", "status", "processed", "inserted", "updated", "errors", "skipped")
	fmt.Fprintf(w, "  %s\n", strings.Repeat("-", 80))

	for _, t := range r.Tables {
		fmt.Fprintf(w, "  %-20s %-9s %9d %9d %9d %9d %9d\n",
			t.Table, tableStatus(t),
			t.Stats.Processed, t.Stats.Inserted, t.Stats.Updated, t.Stats.Errors, t.Stats.Skipped)

		if t.Fatal {
			fmt.Fprintf(w, "    ! %s\n", t.Message)
		}
		if len(t.MissingColumns) > 0 {
			fmt.Fprintf(w, "    missing columns: %s\n", strings.Join(t.MissingColumns, ", "))
		}
		if len(t.ExtraColumns) > 0 {
			fmt.Fprintf(w, "    ignored columns: %s\n", strings.Join(t.ExtraColumns, ", "))
		}
		for _, re := range t.RowErrors {
			fmt.Fprintf(w, "    row %d: %s\n", re.Row, re.Message)
		}
		if t.RowErrorsOmitted > 0 {
			fmt.Fprintf(w, "    ... and %d more row errors\n", t.RowErrorsOmitted)
		}
	}

	fmt.Fprintf(w, "  %s\n", strings.Repeat("-", 80))
	fmt.Fprintf(w, "  %-20s %-9s %9d %9d %9d %9d %9d\n",
		"total", "", r.Totals.Processed, r.Totals.Inserted, r.Totals.Updated,
		r.Totals.Errors, r.Totals.Skipped)

	if r.Success {
		fmt.Fprintf(w, "\nOK: import completed without errors\n")
	} else {
		fmt.Fprintf(w, "\nWARNING: import completed with %d error(s)\n", r.Totals.Errors)
	}
}

// tableStatus summarizes one table outcome for the status column.
func tableStatus(t importer.TableResult) string {
	switch {
	case t.Fatal:
		return "fatal"
	case t.File == "":
		return "missing"
	case t.Stats.Errors > 0:
		return "warnings"
	default:
		return "ok"
	}
}
