package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/giotroni/DB-VP/internal/config"
	"github.com/giotroni/DB-VP/internal/importer"
	"github.com/giotroni/DB-VP/internal/schema"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{
		Import: config.ImportConfig{Dir: t.TempDir(), DefaultMode: "insert", RowErrorLimit: 50},
	}
	return NewServer(nil, cfg)
}

func doRequest(t *testing.T, s *Server, method, target string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestHandleListTables(t *testing.T) {
	s := testServer(t)
	rec := doRequest(t, s, http.MethodGet, "/api/tables", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var tables []struct {
		Name       string   `json:"name"`
		PrimaryKey string   `json:"primary_key"`
		Headers    []string `json:"headers"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &tables); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(tables) != len(schema.ImportOrder) {
		t.Fatalf("tables = %d, want %d", len(tables), len(schema.ImportOrder))
	}
	if tables[0].Name != schema.Clients || tables[0].PrimaryKey != "ID" {
		t.Errorf("first table = %+v, want clients keyed by ID first", tables[0])
	}
}

func TestHandleDownloadTemplate(t *testing.T) {
	s := testServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/template/invoices", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Content-Type = %q, want text/csv", ct)
	}
	wantHeader := "ID,Date,ClientID,Type,Number,ProjectID,BilledDays,BilledExpenses,BilledTotal,Notes,OrderReference,OrderDate,PaymentTerms,PaymentDueDate,PaymentDate,PaidAmount"
	if got := strings.TrimSpace(rec.Body.String()); got != wantHeader {
		t.Errorf("template = %q, want %q", got, wantHeader)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/template/payroll", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown table status = %d, want 404", rec.Code)
	}
}

func TestHandleListFiles(t *testing.T) {
	s := testServer(t)
	path := filepath.Join(s.cfg.Import.Dir, "clients.csv")
	if err := os.WriteFile(path, []byte("ID,Name\nCLI0001,A\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	rec := doRequest(t, s, http.MethodGet, "/api/files", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var files []importer.FileInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &files); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(files) != len(schema.ImportOrder) {
		t.Fatalf("files = %d, want %d", len(files), len(schema.ImportOrder))
	}
	if files[0].Table != schema.Clients || files[0].Missing {
		t.Errorf("clients entry = %+v, want discovered", files[0])
	}
}

func TestHandlePreview(t *testing.T) {
	s := testServer(t)
	content := "ID,Name,Email,SecretField,Role,TaxID\n" +
		"COL0001,Verdi,verdi@example.it,hunter2,,VRD123\n" +
		"COL0002,Rossi,rossi@example.it,swordfish,Partner,RSS456\n"
	if err := os.WriteFile(filepath.Join(s.cfg.Import.Dir, "collaborators.csv"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	rec := doRequest(t, s, http.MethodGet, "/api/preview/collaborators?rows=1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		TotalRows int              `json:"total_rows"`
		Rows      []map[string]any `json:"rows"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.TotalRows != 2 {
		t.Errorf("total_rows = %d, want 2", resp.TotalRows)
	}
	if len(resp.Rows) != 1 {
		t.Fatalf("preview rows = %d, want the requested 1", len(resp.Rows))
	}

	// Secrets are hashed even in previews; the default role applies.
	secret, _ := resp.Rows[0]["SecretField"].(string)
	if secret == "" || strings.Contains(secret, "hunter2") {
		t.Errorf("SecretField = %q, want a hash", secret)
	}
	if role := resp.Rows[0]["Role"]; role != "Collaborator" {
		t.Errorf("Role = %v, want the enum default", role)
	}
}

func TestHandlePreview_BadRowsParam(t *testing.T) {
	s := testServer(t)
	rec := doRequest(t, s, http.MethodGet, "/api/preview/clients?rows=zero", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleImport_InvalidMode(t *testing.T) {
	s := testServer(t)
	rec := doRequest(t, s, http.MethodPost, "/api/import", `{"mode":"replace"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleImport_ConcurrentRunRefused(t *testing.T) {
	s := testServer(t)
	s.importMu.Lock()
	defer s.importMu.Unlock()

	rec := doRequest(t, s, http.MethodPost, "/api/import", `{"mode":"insert"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409 while a run is in flight", rec.Code)
	}
}

func TestHandleRuns(t *testing.T) {
	s := testServer(t)
	s.history.Add(&importer.Report{ID: "run-1", Success: true})

	rec := doRequest(t, s, http.MethodGet, "/api/runs", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "run-1") {
		t.Error("run list missing the recorded run")
	}

	rec = doRequest(t, s, http.MethodGet, "/api/runs/run-1", "")
	if rec.Code != http.StatusOK {
		t.Errorf("get run status = %d, want 200", rec.Code)
	}
	rec = doRequest(t, s, http.MethodGet, "/api/runs/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown run status = %d, want 404", rec.Code)
	}
}

func TestHandleDashboardAndReportPage(t *testing.T) {
	s := testServer(t)
	s.history.Add(&importer.Report{ID: "run-7", Success: true})

	rec := doRequest(t, s, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Errorf("dashboard Content-Type = %q, want html", ct)
	}

	rec = doRequest(t, s, http.MethodGet, "/runs/run-7/report", "")
	if rec.Code != http.StatusOK {
		t.Errorf("report page status = %d, want 200", rec.Code)
	}
	rec = doRequest(t, s, http.MethodGet, "/runs/ghost/report", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing report page status = %d, want 404", rec.Code)
	}
}
