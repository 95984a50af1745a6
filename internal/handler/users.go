package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/msomdec/user-desk/internal/domain"
	"github.com/msomdec/user-desk/internal/service"
	"github.com/msomdec/user-desk/internal/view"
	"github.com/starfederation/datastar-go/datastar"
)

// UserHandler serves the page and its Datastar endpoints. Every mutation
// answers with an SSE stream that re-renders the manager fragment and resets
// the form signals to match the workspace's mode.
type UserHandler struct {
	users *service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// HandleRefresh re-fetches the user list.
func (h *UserHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ws, err := h.users.Fetch(r.Context(), WorkspaceFromContext(r.Context()))
	h.patch(w, r, ws, err)
}

// HandleReset discards the workspace and renders a freshly fetched one.
func (h *UserHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	ws, err := h.users.Reset(r.Context(), WorkspaceFromContext(r.Context()))
	h.patch(w, r, ws, err)
}

// HandleAdd creates a user from the form signals.
func (h *UserHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var signals view.FormSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	ws, err := h.users.Add(r.Context(), WorkspaceFromContext(r.Context()), signals.Draft())
	h.patch(w, r, ws, err)
}

// HandleStartEdit switches the form into edit mode for the user in the path.
func (h *UserHandler) HandleStartEdit(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	ws, err := h.users.StartEdit(r.Context(), WorkspaceFromContext(r.Context()), userID)
	h.patch(w, r, ws, err)
}

// HandleUpdate writes the form signals to the user in the path.
func (h *UserHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	var signals view.FormSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	draft := domain.EditDraft{ID: userID, Draft: signals.Draft()}
	ws, err := h.users.Update(r.Context(), WorkspaceFromContext(r.Context()), draft)
	h.patch(w, r, ws, err)
}

// HandleCancel leaves edit mode.
func (h *UserHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	ws, err := h.users.CancelEdit(r.Context(), WorkspaceFromContext(r.Context()))
	h.patch(w, r, ws, err)
}

// HandleDelete deletes the user in the path.
func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	ws, err := h.users.Delete(r.Context(), WorkspaceFromContext(r.Context()), userID)
	h.patch(w, r, ws, err)
}

// HandleDraft stores in-progress form input so a reload keeps it. Input sent
// against a form that has since been reset is ignored by the service.
func (h *UserHandler) HandleDraft(w http.ResponseWriter, r *http.Request) {
	var signals view.FormSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if _, err := h.users.SetDraft(r.Context(), WorkspaceFromContext(r.Context()), signals.FormVersion, signals.Draft()); err != nil {
		handleWorkspaceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// patch streams the re-rendered fragment and form signals. Remote failures
// are already part of the workspace and render as its error banner.
func (h *UserHandler) patch(w http.ResponseWriter, r *http.Request, ws *domain.Workspace, err error) {
	if err != nil && !errors.Is(err, domain.ErrRemote) {
		handleWorkspaceError(w, err)
		return
	}

	sse := datastar.NewSSE(w, r)
	if err := sse.PatchElementTempl(view.Manager(ws), datastar.WithSelectorID(view.ManagerID)); err != nil {
		slog.Error("patch user manager", "error", err)
		return
	}
	if err := sse.MarshalAndPatchSignals(view.SignalsFor(ws)); err != nil {
		slog.Error("patch form signals", "error", err)
	}
}

func parseUserID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func handleWorkspaceError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	if errors.Is(err, domain.ErrInvalidInput) {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	slog.Error("workspace operation", "error", err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}
