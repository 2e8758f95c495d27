package importer

import (
	"context"
	"fmt"
)

// Truncate wipes a single table with referential-integrity enforcement
// suspended for the session, so tables can be cleared in import order
// without tripping over foreign keys. Enforcement is restored regardless
// of the delete's outcome.
//
// DELETE is used instead of TRUNCATE ... CASCADE on purpose: CASCADE would
// wipe dependent tables whose files may be absent from the run.
//
// Not transactional with the subsequent import: a crash between the wipe
// and the reload leaves the table empty.
func Truncate(ctx context.Context, db DBTX, table string) error {
	if _, err := db.Exec(ctx, "SET session_replication_role = 'replica'"); err != nil {
		return fmt.Errorf("disable referential integrity: %w", err)
	}
	defer db.Exec(ctx, "SET session_replication_role = 'origin'")

	if _, err := db.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table)); err != nil {
		return fmt.Errorf("truncate %s: %w", table, err)
	}
	return nil
}
