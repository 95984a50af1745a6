package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/msomdec/user-desk/internal/domain"
)

// WorkspaceRepository implements domain.WorkspaceStore using SQLite.
// The view-model is stored as a JSON document per workspace.
type WorkspaceRepository struct {
	db *sql.DB
}

// NewWorkspaceRepository creates a new SQLite-backed WorkspaceRepository.
func NewWorkspaceRepository(db *DB) *WorkspaceRepository {
	return &WorkspaceRepository{db: db.SqlDB}
}

func (r *WorkspaceRepository) Get(ctx context.Context, id string) (*domain.Workspace, error) {
	var state []byte
	var updatedAt int64
	err := r.db.QueryRowContext(ctx,
		`SELECT state, updated_at FROM workspaces WHERE id = ?`, id,
	).Scan(&state, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query workspace: %w", err)
	}

	ws := &domain.Workspace{}
	if err := json.Unmarshal(state, ws); err != nil {
		return nil, fmt.Errorf("decode workspace: %w", err)
	}
	ws.ID = id
	ws.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return ws, nil
}

func (r *WorkspaceRepository) Save(ctx context.Context, ws *domain.Workspace) error {
	if ws.ID == "" {
		return fmt.Errorf("%w: workspace id is required", domain.ErrInvalidInput)
	}

	now := time.Now().UTC()
	ws.UpdatedAt = now
	state, err := json.Marshal(ws)
	if err != nil {
		return fmt.Errorf("encode workspace: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO workspaces (id, state, created_at, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at`,
		ws.ID, string(state), now.UnixMilli(), now.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("upsert workspace: %w", err)
	}
	return nil
}

func (r *WorkspaceRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM workspaces WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete workspace: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// PurgeBefore deletes workspaces not saved since cutoff and reports how many
// were removed.
func (r *WorkspaceRepository) PurgeBefore(ctx context.Context, cutoff time.Time) (int, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM workspaces WHERE updated_at < ?`, cutoff.UTC().UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("purge workspaces: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}
