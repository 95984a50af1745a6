package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/msomdec/user-desk/internal/domain"
)

func TestWorkspaceRepository_SaveAndGet(t *testing.T) {
	repo := newTestDB(t).Workspaces()
	ctx := context.Background()

	ws := &domain.Workspace{
		ID: "ws-1",
		Users: []domain.User{
			{ID: 1, Name: "Leanne Graham", Email: "Sincere@april.biz", Company: &domain.Company{Name: "Romaguera-Crona"}},
		},
		NewUser: domain.Draft{FirstName: "Half", Email: "typed@example.com"},
		Editing: &domain.EditDraft{ID: 1, Draft: domain.Draft{FirstName: "Leanne"}},
		Error:   domain.ErrMsgAdd,
		Loaded:  true,
	}
	if err := repo.Save(ctx, ws); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if ws.UpdatedAt.IsZero() {
		t.Fatal("expected UpdatedAt to be set")
	}

	got, err := repo.Get(ctx, "ws-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Users) != 1 || got.Users[0].Department() != "Romaguera-Crona" {
		t.Fatalf("unexpected users: %+v", got.Users)
	}
	if got.NewUser.Email != "typed@example.com" {
		t.Fatalf("expected add draft to round-trip, got %+v", got.NewUser)
	}
	if got.Editing == nil || got.Editing.ID != 1 {
		t.Fatalf("expected edit draft for user 1, got %+v", got.Editing)
	}
	if got.Error != domain.ErrMsgAdd || !got.Loaded {
		t.Fatalf("unexpected error/loaded: %q %v", got.Error, got.Loaded)
	}
}

func TestWorkspaceRepository_SaveOverwrites(t *testing.T) {
	repo := newTestDB(t).Workspaces()
	ctx := context.Background()

	ws := &domain.Workspace{ID: "ws-2", Users: []domain.User{{ID: 1}, {ID: 2}}}
	if err := repo.Save(ctx, ws); err != nil {
		t.Fatalf("Save: %v", err)
	}

	ws.Users = ws.Users[:1]
	if err := repo.Save(ctx, ws); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	got, err := repo.Get(ctx, "ws-2")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Users) != 1 {
		t.Fatalf("expected 1 user after overwrite, got %d", len(got.Users))
	}
}

func TestWorkspaceRepository_GetNotFound(t *testing.T) {
	repo := newTestDB(t).Workspaces()

	_, err := repo.Get(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestWorkspaceRepository_SaveRequiresID(t *testing.T) {
	repo := newTestDB(t).Workspaces()

	err := repo.Save(context.Background(), &domain.Workspace{})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestWorkspaceRepository_Delete(t *testing.T) {
	repo := newTestDB(t).Workspaces()
	ctx := context.Background()

	if err := repo.Save(ctx, &domain.Workspace{ID: "gone"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := repo.Delete(ctx, "gone"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.Get(ctx, "gone"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.Delete(ctx, "gone"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestWorkspaceRepository_PurgeBefore(t *testing.T) {
	repo := newTestDB(t).Workspaces()
	ctx := context.Background()

	if err := repo.Save(ctx, &domain.Workspace{ID: "old"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	n, err := repo.PurgeBefore(ctx, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("PurgeBefore: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected nothing purged, got %d", n)
	}

	n, err = repo.PurgeBefore(ctx, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("PurgeBefore: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 purged, got %d", n)
	}
}
