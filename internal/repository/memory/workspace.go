package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/msomdec/user-desk/internal/domain"
)

var _ domain.WorkspaceStore = (*WorkspaceStore)(nil)

// WorkspaceStore keeps workspaces in process memory. It is safe for
// concurrent use and hands out copies, never its own values.
type WorkspaceStore struct {
	mu         sync.RWMutex
	workspaces map[string]*domain.Workspace
}

// NewWorkspaceStore creates an empty store.
func NewWorkspaceStore() *WorkspaceStore {
	return &WorkspaceStore{workspaces: make(map[string]*domain.Workspace)}
}

func (s *WorkspaceStore) Get(_ context.Context, id string) (*domain.Workspace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ws, ok := s.workspaces[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return ws.Clone(), nil
}

func (s *WorkspaceStore) Save(_ context.Context, ws *domain.Workspace) error {
	if ws.ID == "" {
		return fmt.Errorf("%w: workspace id is required", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ws.UpdatedAt = time.Now().UTC()
	s.workspaces[ws.ID] = ws.Clone()
	return nil
}

func (s *WorkspaceStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.workspaces[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.workspaces, id)
	return nil
}

// PurgeBefore drops workspaces not saved since cutoff.
func (s *WorkspaceStore) PurgeBefore(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, ws := range s.workspaces {
		if ws.UpdatedAt.Before(cutoff) {
			delete(s.workspaces, id)
			n++
		}
	}
	return n, nil
}

// Len reports how many workspaces are held.
func (s *WorkspaceStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.workspaces)
}
