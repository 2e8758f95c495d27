package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/giotroni/DB-VP/internal/schema"
)

// Outcome classifies what a write strategy did with one row.
type Outcome int

const (
	// OutcomeInserted means a new row was written.
	OutcomeInserted Outcome = iota

	// OutcomeUpdated means an existing row was overwritten (or an update
	// statement ran; update mode does not check that a row matched).
	OutcomeUpdated

	// OutcomeDuplicate means insert mode hit an existing primary key.
	// Expected on re-runs; absorbed without touching the counters.
	OutcomeDuplicate
)

// Postgres error codes the writer cares about.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
	pgUndefinedTable      = "42P01"
)

// Writer persists transformed rows of one table using one write strategy.
// SQL text is built once per table; the row loop only binds values.
type Writer struct {
	db    DBTX
	table schema.Table
	mode  Mode

	insertSQL string
	updateSQL string
	existsSQL string
}

// NewWriter prepares the write statements for a table and mode.
func NewWriter(db DBTX, t schema.Table, mode Mode) *Writer {
	return &Writer{
		db:        db,
		table:     t,
		mode:      mode,
		insertSQL: buildInsertSQL(t),
		updateSQL: buildUpdateSQL(t),
		existsSQL: buildExistsSQL(t),
	}
}

// Write persists one transformed row. Values are keyed by canonical column
// name, as produced by TransformRow.
func (w *Writer) Write(ctx context.Context, values map[string]any) (Outcome, error) {
	switch w.mode {
	case ModeUpdate:
		return w.update(ctx, values)
	case ModeUpsert:
		return w.upsert(ctx, values)
	default:
		return w.insert(ctx, values)
	}
}

// insert writes a new row. A unique violation on the primary key is the
// expected duplicate signal, not an error.
func (w *Writer) insert(ctx context.Context, values map[string]any) (Outcome, error) {
	args := make([]any, len(w.table.Columns))
	for i, c := range w.table.Columns {
		args[i] = values[c.Name]
	}

	if _, err := w.db.Exec(ctx, w.insertSQL, args...); err != nil {
		if isPgError(err, pgUniqueViolation) {
			return OutcomeDuplicate, nil
		}
		return 0, fmt.Errorf("insert into %s: %w", w.table.Name, describePgError(err))
	}
	return OutcomeInserted, nil
}

// update overwrites the non-key columns of the row with the matching
// primary key. A key that matches nothing is not distinguished from a real
// update here; callers may log the zero-match but the row still counts as
// updated.
func (w *Writer) update(ctx context.Context, values map[string]any) (Outcome, error) {
	cols := w.table.Columns
	args := make([]any, 0, len(cols))
	for _, c := range cols[1:] {
		args = append(args, values[c.Name])
	}
	args = append(args, values[cols[0].Name])

	tag, err := w.db.Exec(ctx, w.updateSQL, args...)
	if err != nil {
		return 0, fmt.Errorf("update %s: %w", w.table.Name, describePgError(err))
	}
	if tag.RowsAffected() == 0 {
		return OutcomeUpdated, errNoMatch
	}
	return OutcomeUpdated, nil
}

// errNoMatch flags an update that matched zero rows. The row still counts
// as updated; the orchestrator only logs it.
var errNoMatch = errors.New("no row matched primary key")

// IsNoMatch reports whether err is the zero-match update signal.
func IsNoMatch(err error) bool {
	return errors.Is(err, errNoMatch)
}

// upsert existence-checks the primary key, then updates or inserts.
func (w *Writer) upsert(ctx context.Context, values map[string]any) (Outcome, error) {
	pk := values[w.table.PrimaryKey().Name]

	var count int
	if err := w.db.QueryRow(ctx, w.existsSQL, pk).Scan(&count); err != nil {
		return 0, fmt.Errorf("existence check on %s: %w", w.table.Name, describePgError(err))
	}

	if count > 0 {
		out, err := w.update(ctx, values)
		if IsNoMatch(err) {
			// The row vanished between the check and the update.
			// Still an update by classification.
			return out, nil
		}
		return out, err
	}
	return w.insert(ctx, values)
}

// buildInsertSQL renders: INSERT INTO t (c1, c2, ...) VALUES ($1, $2, ...)
func buildInsertSQL(t schema.Table) string {
	cols := t.DBColumns()
	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		t.Name, strings.Join(cols, ", "), strings.Join(placeholders, ", "))
}

// buildUpdateSQL renders: UPDATE t SET c2 = $1, ... WHERE c1 = $n
func buildUpdateSQL(t schema.Table) string {
	cols := t.DBColumns()
	sets := make([]string, len(cols)-1)
	for i, c := range cols[1:] {
		sets[i] = fmt.Sprintf("%s = $%d", c, i+1)
	}
	return fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d",
		t.Name, strings.Join(sets, ", "), cols[0], len(cols))
}

// buildExistsSQL renders: SELECT count(*) FROM t WHERE c1 = $1
func buildExistsSQL(t schema.Table) string {
	return fmt.Sprintf("SELECT count(*) FROM %s WHERE %s = $1", t.Name, t.DBColumns()[0])
}

// isPgError reports whether err is a Postgres error with the given code.
func isPgError(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

// describePgError maps the common constraint failures to messages that make
// sense in a row-error report; everything else passes through.
func describePgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgForeignKeyViolation:
		return fmt.Errorf("referenced record does not exist (%s): %w", pgErr.ConstraintName, err)
	case pgNotNullViolation:
		return fmt.Errorf("required column %s is empty: %w", pgErr.ColumnName, err)
	case pgUndefinedTable:
		return fmt.Errorf("target table does not exist: %w", err)
	default:
		return err
	}
}
