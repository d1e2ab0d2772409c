package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// Migration raises the schema by one user_version step.
type Migration struct {
	Version     int
	Description string
	UpSQL       string
}

func (m Migration) op() string {
	return fmt.Sprintf("migrate v%d (%s)", m.Version, m.Description)
}

// migrations must stay ordered by Version with no gaps.
var migrations = []Migration{
	{
		Version:     1,
		Description: "add updated_at",
		UpSQL:       `ALTER TABLE entries ADD COLUMN updated_at INTEGER;`,
	},
}

// SchemaVersion is the user_version a fully migrated database reports.
func SchemaVersion() int {
	return migrations[len(migrations)-1].Version
}

func userVersion(ctx context.Context, db *sql.DB) (int, error) {
	var v sql.NullInt64
	if err := db.QueryRowContext(ctx, `PRAGMA user_version;`).Scan(&v); err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, opError("read user_version", err)
	}
	return int(v.Int64), nil
}

// migrate applies, in order, every migration newer than the database's
// user_version. Each step commits its DDL and the new counter together.
func migrate(ctx context.Context, db *sql.DB, steps []Migration) error {
	current, err := userVersion(ctx, db)
	if err != nil {
		return err
	}
	for _, m := range steps {
		if m.Version <= current {
			continue
		}
		if m.Version != current+1 {
			return opError(m.op(), fmt.Errorf("expected version %d next", current+1))
		}
		if err := applyMigration(ctx, db, m); err != nil {
			return opError(m.op(), err)
		}
		current = m.Version
	}
	return nil
}

func applyMigration(ctx context.Context, db *sql.DB, m Migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, m.UpSQL); err != nil {
		return err
	}
	// PRAGMA arguments cannot be bound.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`PRAGMA user_version = %d;`, m.Version)); err != nil {
		return err
	}
	return tx.Commit()
}
