package importer

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// execCall records one Exec invocation against the fake database.
type execCall struct {
	SQL  string
	Args []any
}

// fakeDB is a scriptable DBTX for tests. execFn and queryRowFn, when set,
// decide the response per call; otherwise every statement succeeds.
type fakeDB struct {
	execs      []execCall
	execFn     func(sql string, args []any) (pgconn.CommandTag, error)
	queryRowFn func(sql string, args []any) pgx.Row
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, execCall{SQL: sql, Args: args})
	if f.execFn != nil {
		return f.execFn(sql, args)
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (f *fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("fakeDB: Query not scripted")
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	if f.queryRowFn != nil {
		return f.queryRowFn(sql, args)
	}
	return fakeRow{}
}

// fakeRow scans a single int (the upsert existence count).
type fakeRow struct {
	count int
	err   error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != 1 {
		return fmt.Errorf("fakeRow: expected 1 scan target, got %d", len(dest))
	}
	p, ok := dest[0].(*int)
	if !ok {
		return fmt.Errorf("fakeRow: expected *int scan target, got %T", dest[0])
	}
	*p = r.count
	return nil
}
