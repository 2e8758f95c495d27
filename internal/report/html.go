package report

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/giotroni/DB-VP/internal/importer"
)

// pageStyle is shared by every rendered page. Kept deliberately small:
// the pages are operational views, not a product UI.
const pageStyle = `
body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; margin: 2rem; color: #1a202c; }
h1 { font-size: 1.4rem; } h2 { font-size: 1.1rem; margin-top: 2rem; }
table { border-collapse: collapse; margin-top: 0.75rem; }
th, td { border: 1px solid #cbd5e0; padding: 0.35rem 0.75rem; text-align: left; font-size: 0.9rem; }
th { background: #edf2f7; }
td.num { text-align: right; font-variant-numeric: tabular-nums; }
.ok { color: #276749; } .warn { color: #975a16; } .fatal { color: #9b2c2c; }
.muted { color: #718096; }
ul.findings { font-size: 0.85rem; color: #718096; }
`

// HTMLReport renders one finished run as a standalone HTML page.
func HTMLReport(r *importer.Report) string {
	var b strings.Builder

	writeHead(&b, "Import run "+r.ID)

	fmt.Fprintf(&b, "<h1>Import run %s</h1>\n", html.EscapeString(r.ID))
	fmt.Fprintf(&b, "<p class=%q>mode %s · truncate %v · input %s · started %s · took %s</p>\n",
		"muted",
		html.EscapeString(string(r.Mode)), r.Truncate,
		html.EscapeString(r.InputDir),
		r.StartedAt.Format(time.RFC3339),
		r.Duration().Round(timeUnit))

	if r.Success {
		b.WriteString("<p class=\"ok\">Completed without errors.</p>\n")
	} else {
		fmt.Fprintf(&b, "<p class=\"warn\">Completed with %d error(s).</p>\n", r.Totals.Errors)
	}

	b.WriteString("<h2>Tables</h2>\n<table>\n")
	b.WriteString("<tr><th>Table</th><th>Status</th><th>Processed</th><th>Inserted</th><th>Updated</th><th>Errors</th><th>Skipped</th></tr>\n")
	for _, t := range r.Tables {
		status := tableStatus(t)
		fmt.Fprintf(&b, "<tr><td>%s</td><td class=%q>%s</td>%s</tr>\n",
			html.EscapeString(t.Label),
			statusClass(status), status,
			statCells(t.Stats))
	}
	fmt.Fprintf(&b, "<tr><td><b>Total</b></td><td></td>%s</tr>\n", statCells(r.Totals))
	b.WriteString("</table>\n")

	for _, t := range r.Tables {
		if !t.Fatal && len(t.MissingColumns) == 0 && len(t.ExtraColumns) == 0 && len(t.RowErrors) == 0 {
			continue
		}
		fmt.Fprintf(&b, "<h2>%s</h2>\n<ul class=\"findings\">\n", html.EscapeString(t.Label))
		if t.Fatal {
			fmt.Fprintf(&b, "<li class=\"fatal\">%s</li>\n", html.EscapeString(t.Message))
		}
		if len(t.MissingColumns) > 0 {
			fmt.Fprintf(&b, "<li>missing columns: %s</li>\n", html.EscapeString(strings.Join(t.MissingColumns, ", ")))
		}
		if len(t.ExtraColumns) > 0 {
			fmt.Fprintf(&b, "<li>ignored columns: %s</li>\n", html.EscapeString(strings.Join(t.ExtraColumns, ", ")))
		}
		for _, re := range t.RowErrors {
			fmt.Fprintf(&b, "<li>row %d: %s</li>\n", re.Row, html.EscapeString(re.Message))
		}
		if t.RowErrorsOmitted > 0 {
			fmt.Fprintf(&b, "<li>... and %d more row errors</li>\n", t.RowErrorsOmitted)
		}
		b.WriteString("</ul>\n")
	}

	b.WriteString("</body></html>\n")
	return b.String()
}

// HTMLDashboard renders the landing page: discovered files and, when
// present, the most recent run.
func HTMLDashboard(files []importer.FileInfo, last *importer.Report) string {
	var b strings.Builder

	writeHead(&b, "DB-VP import")

	b.WriteString("<h1>DB-VP import</h1>\n")

	b.WriteString("<h2>Input files</h2>\n<table>\n")
	b.WriteString("<tr><th>Table</th><th>File</th><th>Rows</th><th>Size</th><th>Modified</th></tr>\n")
	for _, f := range files {
		if f.Missing {
			fmt.Fprintf(&b, "<tr><td>%s</td><td class=\"muted\" colspan=\"4\">missing</td></tr>\n",
				html.EscapeString(f.Table))
			continue
		}
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%s</td><td class=\"num\">%d</td><td class=\"num\">%d</td><td>%s</td></tr>\n",
			html.EscapeString(f.Table),
			html.EscapeString(f.Path),
			f.Rows, f.Size,
			f.ModTime.Format("2006-01-02 15:04:05"))
	}
	b.WriteString("</table>\n")

	b.WriteString("<h2>Last run</h2>\n")
	if last == nil {
		b.WriteString("<p class=\"muted\">No runs yet.</p>\n")
	} else {
		verdict, class := "ok", "ok"
		if !last.Success {
			verdict, class = fmt.Sprintf("%d error(s)", last.Totals.Errors), "warn"
		}
		fmt.Fprintf(&b, "<p><a href=\"/runs/%s/report\">%s</a> · %s · mode %s · <span class=%q>%s</span></p>\n",
			html.EscapeString(last.ID), html.EscapeString(last.ID),
			last.StartedAt.Format(time.RFC3339),
			html.EscapeString(string(last.Mode)),
			class, verdict)
	}

	b.WriteString("</body></html>\n")
	return b.String()
}

func writeHead(b *strings.Builder, title string) {
	b.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\">\n")
	fmt.Fprintf(b, "<title>%s</title>\n", html.EscapeString(title))
	fmt.Fprintf(b, "<style>%s</style>\n</head>\n<body>\n", pageStyle)
}

func statusClass(status string) string {
	switch status {
	case "fatal":
		return "fatal"
	case "warnings":
		return "warn"
	case "missing":
		return "muted"
	default:
		return "ok"
	}
}

func statCells(s importer.Stats) string {
	return fmt.Sprintf("<td class=\"num\">%d</td><td class=\"num\">%d</td><td class=\"num\">%d</td><td class=\"num\">%d</td><td class=\"num\">%d</td>",
		s.Processed, s.Inserted, s.Updated, s.Errors, s.Skipped)
}
