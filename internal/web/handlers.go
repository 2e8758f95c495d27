package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/giotroni/DB-VP/internal/importer"
	"github.com/giotroni/DB-VP/internal/logging"
	"github.com/giotroni/DB-VP/internal/report"
	"github.com/giotroni/DB-VP/internal/schema"
	"github.com/giotroni/DB-VP/internal/tabular"
)

// writeJSON encodes v as JSON and writes it to w.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already sent; nothing to do but log.
		slog.Error("json encode error", "error", err)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// handleHealth reports liveness, including a database ping.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.pool.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "degraded", "database": err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// tableDescription is the API view of one registered table.
type tableDescription struct {
	Name       string              `json:"name"`
	Label      string              `json:"label"`
	PrimaryKey string              `json:"primary_key"`
	Headers    []string            `json:"headers"`
	DBColumns  []string            `json:"db_columns"`
	Transforms map[string][]string `json:"transforms,omitempty"`
}

// handleListTables describes every registered table.
func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	tables := schema.All()
	out := make([]tableDescription, 0, len(tables))
	for _, t := range tables {
		d := tableDescription{
			Name:       t.Name,
			Label:      t.Label,
			PrimaryKey: t.PrimaryKey().Name,
			Headers:    t.Headers(),
			DBColumns:  t.DBColumns(),
			Transforms: map[string][]string{},
		}
		for _, c := range t.Columns {
			for _, tr := range c.Chain {
				d.Transforms[c.Name] = append(d.Transforms[c.Name], tr.Kind.String())
			}
		}
		if len(d.Transforms) == 0 {
			d.Transforms = nil
		}
		out = append(out, d)
	}
	writeJSON(w, http.StatusOK, out)
}

// handleListFiles reports discovery metadata for the input directory.
func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := importer.Discover(s.cfg.Import.Dir)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, files)
}

// handleDownloadTemplate serves a CSV header template for one table.
func (s *Server) handleDownloadTemplate(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "table")
	t, ok := schema.Get(name)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown table %q", name))
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", t.Name))
	fmt.Fprintln(w, strings.Join(t.Headers(), ","))
}

// previewResponse is the dry-run view of one table's input file.
type previewResponse struct {
	Table     string              `json:"table"`
	File      string              `json:"file,omitempty"`
	Fatal     bool                `json:"fatal,omitempty"`
	Message   string              `json:"message,omitempty"`
	Missing   []string            `json:"missing_columns,omitempty"`
	Extra     []string            `json:"extra_columns,omitempty"`
	TotalRows int                 `json:"total_rows"`
	Rows      []map[string]any    `json:"rows"`
	RowErrors []importer.RowError `json:"row_errors,omitempty"`
}

// handlePreview parses, validates and transforms the first N data rows of
// a table's input file without writing anything. Secret columns come out
// hashed here too; plaintext never leaves the pipeline.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "table")
	t, ok := schema.Get(name)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown table %q", name))
		return
	}

	limit := 10
	if q := r.URL.Query().Get("rows"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "rows must be a positive integer")
			return
		}
		limit = n
	}

	files, err := importer.Discover(s.cfg.Import.Dir)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := previewResponse{Table: name, Rows: []map[string]any{}}
	for _, f := range files {
		if f.Table == name {
			if f.Missing {
				resp.Message = "input file missing"
				writeJSON(w, http.StatusOK, resp)
				return
			}
			resp.File = f.Path
		}
	}

	parsed, err := tabular.Read(resp.File)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp.TotalRows = len(parsed.Rows)

	v := importer.ValidateHeaders(name, parsed.Headers)
	resp.Missing = v.MissingColumns
	resp.Extra = v.ExtraColumns
	if v.Fatal {
		resp.Fatal = true
		resp.Message = v.Message
		writeJSON(w, http.StatusOK, resp)
		return
	}

	idx := tabular.MakeHeaderIndex(parsed.Headers)
	for i, row := range parsed.Rows {
		if i >= limit {
			break
		}
		values, err := importer.TransformRow(t, idx, row)
		if err != nil {
			resp.RowErrors = append(resp.RowErrors, importer.RowError{Row: i + 1, Message: err.Error()})
			continue
		}
		resp.Rows = append(resp.Rows, values)
	}

	writeJSON(w, http.StatusOK, resp)
}

// importRequest is the POST /api/import body.
type importRequest struct {
	Mode     string `json:"mode"`
	Truncate bool   `json:"truncate"`
}

// handleImport runs the full pipeline. One run at a time: a second request
// while a run is in flight gets 409.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if req.Mode == "" {
		req.Mode = s.cfg.Import.DefaultMode
	}
	mode, err := importer.ParseMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !s.importMu.TryLock() {
		writeError(w, http.StatusConflict, "an import run is already in progress")
		return
	}
	defer s.importMu.Unlock()

	// One connection, used serially for the whole run.
	conn, err := s.pool.Acquire(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "acquire database connection: "+err.Error())
		return
	}
	defer conn.Release()

	runner := &importer.Runner{DB: conn, Log: logging.FromContext(r.Context())}
	rep, err := runner.Run(r.Context(), importer.Options{
		Mode:          mode,
		Truncate:      req.Truncate,
		InputDir:      s.cfg.Import.Dir,
		RowErrorLimit: s.cfg.Import.RowErrorLimit,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.history.Add(rep)
	writeJSON(w, http.StatusOK, rep)
}

// handleListRuns returns the remembered runs, newest first.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.history.List())
}

// handleGetRun returns one remembered run.
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "runID")
	rep, ok := s.history.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("run %q not found", id))
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// handleDashboard renders the landing page.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	files, err := importer.Discover(s.cfg.Import.Dir)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, report.HTMLDashboard(files, s.history.Latest()))
}

// handleRunReportPage renders one run as an HTML page.
func (s *Server) handleRunReportPage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "runID")
	rep, ok := s.history.Get(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, report.HTMLReport(rep))
}
