package importer

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/giotroni/DB-VP/internal/schema"
)

func testRunner(db DBTX) *Runner {
	return &Runner{
		DB:  db,
		Log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

const clientsHeader = "ID,Name,LegalName,Address,City,PostalCode,Province,TaxID"

func tableResult(t *testing.T, rep *Report, name string) TableResult {
	t.Helper()
	for _, res := range rep.Tables {
		if res.Table == name {
			return res
		}
	}
	t.Fatalf("table %s missing from report", name)
	return TableResult{}
}

func TestRun_SingleClientInsert(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "clients.csv",
		clientsHeader+"\nCLI0001,ALBINI,ALBINI SRL,Via Roma 1,Milano,20100,MI,12345678901\n")

	db := &fakeDB{}
	rep, err := testRunner(db).Run(context.Background(), Options{Mode: ModeInsert, InputDir: dir})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	clients := tableResult(t, rep, schema.Clients)
	want := Stats{Processed: 1, Inserted: 1}
	if clients.Stats != want {
		t.Errorf("clients stats = %+v, want %+v", clients.Stats, want)
	}
	if rep.Totals != want {
		t.Errorf("totals = %+v, want %+v", rep.Totals, want)
	}
	if !rep.Success {
		t.Error("run with zero errors should be a success")
	}
	if rep.ID == "" {
		t.Error("report has no run ID")
	}
}

func TestRun_DuplicateInsertAbsorbed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "clients.csv",
		clientsHeader+"\nCLI0001,ALBINI,ALBINI SRL,Via Roma 1,Milano,20100,MI,12345678901\n")

	db := &fakeDB{
		execFn: func(string, []any) (pgconn.CommandTag, error) {
			return pgconn.CommandTag{}, &pgconn.PgError{Code: "23505"}
		},
	}
	rep, err := testRunner(db).Run(context.Background(), Options{Mode: ModeInsert, InputDir: dir})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := Stats{Processed: 1}
	if rep.Totals != want {
		t.Errorf("totals = %+v, want duplicate absorbed: %+v", rep.Totals, want)
	}
	if !rep.Success {
		t.Error("duplicates are not errors; run should succeed")
	}
}

func TestRun_EveryTableAttempted(t *testing.T) {
	dir := t.TempDir()
	// Fatal header for clients: no primary key column.
	writeFile(t, dir, "clients.csv", "Name,City\nALBINI,Milano\n")
	// A valid later table still imports.
	writeFile(t, dir, "collaborators.csv",
		"ID,Name,Email,SecretField,Role,TaxID\nCOL0001,Verdi,verdi@example.it,pw,Partner,VRDGPP80A01F205X\n")

	db := &fakeDB{}
	rep, err := testRunner(db).Run(context.Background(), Options{InputDir: dir})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(rep.Tables) != len(schema.ImportOrder) {
		t.Fatalf("tables in report = %d, want %d", len(rep.Tables), len(schema.ImportOrder))
	}

	clients := tableResult(t, rep, schema.Clients)
	if !clients.Fatal {
		t.Error("clients should be fatal: primary key column absent")
	}
	if clients.Stats.Processed != 0 {
		t.Error("fatal table must not process rows")
	}

	collabs := tableResult(t, rep, schema.Collaborators)
	if collabs.Fatal {
		t.Fatalf("collaborators unexpectedly fatal: %s", collabs.Message)
	}
	if collabs.Stats.Inserted != 1 {
		t.Errorf("collaborators inserted = %d, want 1", collabs.Stats.Inserted)
	}

	missing := tableResult(t, rep, schema.Invoices)
	if missing.Fatal || missing.Message != "input file missing" {
		t.Errorf("absent invoices file = %+v, want a plain missing skip", missing)
	}
}

func TestRun_BlankRowsSkipped(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "clients.csv",
		clientsHeader+"\nCLI0001,ALBINI,,,,,,\n,,,,,,,\n  , ,,,, ,,\nCLI0002,BRERA,,,,,,\n")

	db := &fakeDB{}
	rep, err := testRunner(db).Run(context.Background(), Options{InputDir: dir})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := Stats{Processed: 2, Inserted: 2, Skipped: 2}
	if rep.Totals != want {
		t.Errorf("totals = %+v, want %+v", rep.Totals, want)
	}
}

func TestRun_EmptyPrimaryKeyIsRowError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "clients.csv",
		clientsHeader+"\n,NOKEY,,,,,,\nCLI0002,BRERA,,,,,,\n")

	db := &fakeDB{}
	rep, err := testRunner(db).Run(context.Background(), Options{InputDir: dir})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	clients := tableResult(t, rep, schema.Clients)
	want := Stats{Processed: 2, Inserted: 1, Errors: 1}
	if clients.Stats != want {
		t.Errorf("stats = %+v, want %+v", clients.Stats, want)
	}
	if len(clients.RowErrors) != 1 {
		t.Fatalf("row errors = %d, want 1", len(clients.RowErrors))
	}
	if clients.RowErrors[0].Row != 1 {
		t.Errorf("row error line = %d, want 1", clients.RowErrors[0].Row)
	}
	if !strings.Contains(clients.RowErrors[0].Message, "primary key") {
		t.Errorf("row error %q does not mention the primary key", clients.RowErrors[0].Message)
	}
	if rep.Success {
		t.Error("run with row errors must not report success")
	}
}

func TestRun_RowErrorLimit(t *testing.T) {
	dir := t.TempDir()
	var sb strings.Builder
	sb.WriteString(clientsHeader + "\n")
	for i := 0; i < 5; i++ {
		sb.WriteString(",BAD,,,,,,\n")
	}
	writeFile(t, dir, "clients.csv", sb.String())

	db := &fakeDB{}
	rep, err := testRunner(db).Run(context.Background(), Options{InputDir: dir, RowErrorLimit: 2})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	clients := tableResult(t, rep, schema.Clients)
	if clients.Stats.Errors != 5 {
		t.Errorf("errors = %d, want all 5 counted", clients.Stats.Errors)
	}
	if len(clients.RowErrors) != 2 {
		t.Errorf("kept row errors = %d, want cap of 2", len(clients.RowErrors))
	}
	if clients.RowErrorsOmitted != 3 {
		t.Errorf("omitted = %d, want 3", clients.RowErrorsOmitted)
	}
}

func TestRun_TruncateBeforeImport(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "clients.csv",
		clientsHeader+"\nCLI0001,ALBINI,,,,,,\n")

	db := &fakeDB{}
	_, err := testRunner(db).Run(context.Background(), Options{InputDir: dir, Truncate: true})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	var sqls []string
	for _, c := range db.execs {
		sqls = append(sqls, c.SQL)
	}
	joined := strings.Join(sqls, "\n")
	if !strings.Contains(joined, "DELETE FROM clients") {
		t.Error("clients was not truncated")
	}
	delIdx := strings.Index(joined, "DELETE FROM clients")
	insIdx := strings.Index(joined, "INSERT INTO clients")
	if insIdx < delIdx {
		t.Error("insert ran before the truncate")
	}
}

func TestRun_UpsertReclassifiesAsUpdated(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "clients.csv",
		clientsHeader+"\nCLI0001,ALBINI,,,,,,\nCLI0002,BRERA,,,,,,\n")

	// Every key already exists: the second run of the idempotence property.
	db := &fakeDB{
		execFn: func(string, []any) (pgconn.CommandTag, error) {
			return pgconn.NewCommandTag("UPDATE 1"), nil
		},
		queryRowFn: func(string, []any) pgx.Row { return fakeRow{count: 1} },
	}
	rep, err := testRunner(db).Run(context.Background(), Options{Mode: ModeUpsert, InputDir: dir})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := Stats{Processed: 2, Updated: 2}
	if rep.Totals != want {
		t.Errorf("totals = %+v, want every row reclassified as updated: %+v", rep.Totals, want)
	}
	if rep.Totals.Inserted != 0 {
		t.Error("second upsert pass must insert nothing")
	}
}

func TestRun_SemicolonDelimitedFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "clients.txt",
		strings.ReplaceAll(clientsHeader, ",", ";")+"\nCLI0001;ALBINI;ALBINI SRL;Via Roma 1;Milano;20100;MI;12345678901\n")

	db := &fakeDB{}
	rep, err := testRunner(db).Run(context.Background(), Options{InputDir: dir})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	clients := tableResult(t, rep, schema.Clients)
	if clients.Stats.Inserted != 1 {
		t.Errorf("inserted = %d, want 1 from the semicolon file", clients.Stats.Inserted)
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		input   string
		want    Mode
		wantErr bool
	}{
		{input: "", want: ModeInsert},
		{input: "insert", want: ModeInsert},
		{input: "UPDATE", want: ModeUpdate},
		{input: " upsert ", want: ModeUpsert},
		{input: "replace", wantErr: true},
	}

	for _, tt := range tests {
		t.Run("mode "+tt.input, func(t *testing.T) {
			got, err := ParseMode(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseMode(%q) succeeded, want error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMode(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseMode(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
