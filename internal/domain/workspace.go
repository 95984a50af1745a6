package domain

import (
	"context"
	"time"
)

// Messages shown in the error banner when a remote call fails.
const (
	ErrMsgFetch  = "Error fetching users."
	ErrMsgAdd    = "Error adding user."
	ErrMsgUpdate = "Error updating user."
	ErrMsgDelete = "Error deleting user."
)

// Messages shown in the notice toast after a successful remote call.
const (
	NoticeAdded   = "User added successfully!"
	NoticeUpdated = "User updated successfully!"
	NoticeDeleted = "User deleted successfully!"
)

// Workspace is the view-model of one browser: the user list, the add draft,
// the edit draft (nil outside edit mode) and the current error string.
//
// FormVersion changes whenever the form is reset or switches mode, so input
// typed against an older form can be told apart from current input.
type Workspace struct {
	ID          string     `json:"id"`
	Users       []User     `json:"users"`
	NewUser     Draft      `json:"newUser"`
	Editing     *EditDraft `json:"editing,omitempty"`
	FormVersion int64      `json:"formVersion"`
	Error       string     `json:"error,omitempty"`
	Notice      string     `json:"notice,omitempty"`
	Loaded      bool       `json:"loaded"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// IsEditing reports whether the form is in edit mode.
func (w *Workspace) IsEditing() bool {
	return w.Editing != nil
}

// FormDraft returns whichever draft the form is currently bound to.
func (w *Workspace) FormDraft() Draft {
	if w.Editing != nil {
		return w.Editing.Draft
	}
	return w.NewUser
}

// FindUser returns the user with the given ID.
func (w *Workspace) FindUser(id int64) (User, bool) {
	for _, u := range w.Users {
		if u.ID == id {
			return u, true
		}
	}
	return User{}, false
}

// WorkspaceStore persists workspaces between requests. Delete reports
// ErrNotFound for an unknown ID.
type WorkspaceStore interface {
	Get(ctx context.Context, id string) (*Workspace, error)
	Save(ctx context.Context, ws *Workspace) error
	Delete(ctx context.Context, id string) error
	PurgeBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// Clone returns a copy that shares no mutable state with w. User records
// are treated as immutable values and are copied shallowly.
func (w *Workspace) Clone() *Workspace {
	c := *w
	c.Users = append([]User(nil), w.Users...)
	if w.Editing != nil {
		e := *w.Editing
		c.Editing = &e
	}
	return &c
}
