package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/msomdec/user-desk/internal/domain"
)

// UserService drives a workspace's view-model. Every operation performs at
// most one remote round trip and then updates the local list optimistically.
// Remote failures are recorded as the workspace error string and returned
// wrapped in domain.ErrRemote alongside the saved workspace.
type UserService struct {
	api   domain.UserAPI
	store domain.WorkspaceStore
	locks *keyedMutex
	now   func() time.Time
}

// NewUserService creates a new UserService.
func NewUserService(api domain.UserAPI, store domain.WorkspaceStore) *UserService {
	return &UserService{
		api:   api,
		store: store,
		locks: newKeyedMutex(),
		now:   time.Now,
	}
}

// Open returns the workspace, creating it and fetching the user list on
// first use. A pending notice is returned once and then consumed.
func (s *UserService) Open(ctx context.Context, id string) (*domain.Workspace, error) {
	var pending string
	ws, err := s.mutate(ctx, id, func(ws *domain.Workspace) error {
		pending, ws.Notice = ws.Notice, ""
		if ws.Loaded {
			return nil
		}
		return s.fetch(ctx, ws)
	})
	if ws != nil {
		ws.Notice = pending
	}
	return ws, err
}

// Reset discards the workspace and opens a fresh one under the same ID.
func (s *UserService) Reset(ctx context.Context, id string) (*domain.Workspace, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: workspace id is required", domain.ErrInvalidInput)
	}

	unlock := s.locks.Lock(id)
	err := s.store.Delete(ctx, id)
	unlock()
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("delete workspace: %w", err)
	}
	return s.Open(ctx, id)
}

// Fetch clears the error and replaces the list with the remote one.
func (s *UserService) Fetch(ctx context.Context, id string) (*domain.Workspace, error) {
	return s.act(ctx, id, func(ws *domain.Workspace) error {
		return s.fetch(ctx, ws)
	})
}

func (s *UserService) fetch(ctx context.Context, ws *domain.Workspace) error {
	ws.Error = ""
	ws.Loaded = true

	users, err := s.api.List(ctx)
	if err != nil {
		ws.Error = domain.ErrMsgFetch
		slog.Error("fetch users", "workspace", ws.ID, "error", err)
		return remoteErr(err)
	}
	ws.Users = users
	return nil
}

// Add creates the user remotely and appends a locally built record. The
// remote's assigned ID is ignored; the local record gets a millisecond
// timestamp ID instead.
func (s *UserService) Add(ctx context.Context, id string, draft domain.Draft) (*domain.Workspace, error) {
	return s.act(ctx, id, func(ws *domain.Workspace) error {
		ws.NewUser = draft

		if _, err := s.api.Create(ctx, draft); err != nil {
			ws.Error = domain.ErrMsgAdd
			slog.Error("add user", "workspace", ws.ID, "error", err)
			return remoteErr(err)
		}

		ws.Users = append(ws.Users, domain.UserFromDraft(s.localID(ws), draft))
		ws.NewUser = domain.Draft{}
		ws.FormVersion++
		ws.Notice = domain.NoticeAdded
		return nil
	})
}

// StartEdit switches the form into edit mode for the given user. No network
// call is made.
func (s *UserService) StartEdit(ctx context.Context, id string, userID int64) (*domain.Workspace, error) {
	return s.act(ctx, id, func(ws *domain.Workspace) error {
		u, ok := ws.FindUser(userID)
		if !ok {
			return fmt.Errorf("user %d: %w", userID, domain.ErrNotFound)
		}
		d := domain.EditDraftFrom(u)
		ws.Editing = &d
		ws.FormVersion++
		return nil
	})
}

// Update writes the edit draft remotely and replaces the matching user with
// a locally built record. The form leaves edit mode on success only.
func (s *UserService) Update(ctx context.Context, id string, draft domain.EditDraft) (*domain.Workspace, error) {
	if draft.ID == 0 {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}

	return s.act(ctx, id, func(ws *domain.Workspace) error {
		if ws.Editing == nil || ws.Editing.ID != draft.ID {
			ws.FormVersion++
		}
		ws.Editing = &draft

		if _, err := s.api.Update(ctx, draft); err != nil {
			ws.Error = domain.ErrMsgUpdate
			slog.Error("update user", "workspace", ws.ID, "user_id", draft.ID, "error", err)
			return remoteErr(err)
		}

		updated := domain.UserFromDraft(draft.ID, draft.Draft)
		for i := range ws.Users {
			if ws.Users[i].ID == draft.ID {
				ws.Users[i] = updated
			}
		}
		ws.Editing = nil
		ws.FormVersion++
		ws.Notice = domain.NoticeUpdated
		return nil
	})
}

// CancelEdit leaves edit mode, discarding the edit draft.
func (s *UserService) CancelEdit(ctx context.Context, id string) (*domain.Workspace, error) {
	return s.act(ctx, id, func(ws *domain.Workspace) error {
		if ws.Editing != nil {
			ws.Editing = nil
			ws.FormVersion++
		}
		return nil
	})
}

// Delete removes the user remotely and filters it out of the list.
func (s *UserService) Delete(ctx context.Context, id string, userID int64) (*domain.Workspace, error) {
	return s.act(ctx, id, func(ws *domain.Workspace) error {
		if err := s.api.Delete(ctx, userID); err != nil {
			ws.Error = domain.ErrMsgDelete
			slog.Error("delete user", "workspace", ws.ID, "user_id", userID, "error", err)
			return remoteErr(err)
		}

		ws.Users = slices.DeleteFunc(ws.Users, func(u domain.User) bool {
			return u.ID == userID
		})
		ws.Notice = domain.NoticeDeleted
		return nil
	})
}

// SetDraft stores in-progress form input in whichever draft the form is
// bound to. Input typed against an older form version is dropped, since the
// form it came from has already been submitted, cancelled or switched.
func (s *UserService) SetDraft(ctx context.Context, id string, version int64, draft domain.Draft) (*domain.Workspace, error) {
	return s.mutate(ctx, id, func(ws *domain.Workspace) error {
		if version != ws.FormVersion {
			return nil
		}
		if ws.Editing != nil {
			ws.Editing.Draft = draft
			return nil
		}
		ws.NewUser = draft
		return nil
	})
}

// PurgeIdle drops workspaces untouched for longer than ttl.
func (s *UserService) PurgeIdle(ctx context.Context, ttl time.Duration) (int, error) {
	n, err := s.store.PurgeBefore(ctx, s.now().Add(-ttl))
	if err != nil {
		return 0, fmt.Errorf("purge workspaces: %w", err)
	}
	return n, nil
}

// RunJanitor purges idle workspaces every interval until ctx is done.
func (s *UserService) RunJanitor(ctx context.Context, ttl, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := s.PurgeIdle(ctx, ttl)
			if err != nil {
				slog.Error("purge idle workspaces", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("purged idle workspaces", "count", n)
			}
		}
	}
}

// act runs fn as a new user action; the previous notice is dropped.
func (s *UserService) act(ctx context.Context, id string, fn func(ws *domain.Workspace) error) (*domain.Workspace, error) {
	return s.mutate(ctx, id, func(ws *domain.Workspace) error {
		ws.Notice = ""
		return fn(ws)
	})
}

// mutate loads (or creates) the workspace under its lock, applies fn and
// saves the result. The workspace is saved and returned even when fn
// reports a remote failure.
func (s *UserService) mutate(ctx context.Context, id string, fn func(ws *domain.Workspace) error) (*domain.Workspace, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: workspace id is required", domain.ErrInvalidInput)
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	ws, err := s.store.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("load workspace: %w", err)
		}
		ws = &domain.Workspace{ID: id}
	}

	opErr := fn(ws)
	if opErr != nil && !errors.Is(opErr, domain.ErrRemote) {
		return nil, opErr
	}

	if err := s.store.Save(ctx, ws); err != nil {
		return nil, fmt.Errorf("save workspace: %w", err)
	}
	return ws, opErr
}

// localID mirrors the millisecond-timestamp IDs of locally added users,
// bumped past any ID already in the list.
func (s *UserService) localID(ws *domain.Workspace) int64 {
	id := s.now().UnixMilli()
	for {
		if _, taken := ws.FindUser(id); !taken {
			return id
		}
		id++
	}
}

func remoteErr(err error) error {
	if errors.Is(err, domain.ErrRemote) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrRemote, err)
}
