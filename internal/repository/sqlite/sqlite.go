package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/msomdec/user-desk/internal/domain"
	"github.com/msomdec/user-desk/internal/repository/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Verify that *DB implements domain.Database at compile time.
var _ domain.Database = (*DB)(nil)

// DB wraps the SQLite connection used for workspace state.
type DB struct {
	SqlDB *sql.DB
}

// New opens a SQLite database at the given path and configures it for use.
// It enables WAL mode and foreign keys.
func New(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.ExecContext(context.Background(), "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	db.SetMaxOpenConns(1)

	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{SqlDB: db}, nil
}

// Migrate applies all pending schema migrations.
func (d *DB) Migrate(ctx context.Context) error {
	return migrations.Run(ctx, d.SqlDB)
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	return d.SqlDB.Close()
}

// Workspaces returns the workspace repository backed by this database.
func (d *DB) Workspaces() *WorkspaceRepository {
	return NewWorkspaceRepository(d)
}
