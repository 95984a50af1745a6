package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/msomdec/user-desk/internal/domain"
	"github.com/msomdec/user-desk/internal/service"
)

// APIHandler exposes the workspace as JSON for non-browser clients. It runs
// the same operations as the page, so writes land in the same view-model.
type APIHandler struct {
	users *service.UserService
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(users *service.UserService) *APIHandler {
	return &APIHandler{users: users}
}

// HandleWorkspace returns the whole view-model.
// GET /api/workspace
// Response: {"users": [...], "newUser": {...}, "editing": {...}|null, "error": "...", "notice": "..."}
func (h *APIHandler) HandleWorkspace(w http.ResponseWriter, r *http.Request) {
	ws, err := h.users.Open(r.Context(), WorkspaceFromContext(r.Context()))
	if err != nil && ws == nil {
		writeWorkspaceError(w, nil, err)
		return
	}
	writeJSON(w, http.StatusOK, toWorkspaceDTO(ws))
}

// HandleList returns the user list. ?refresh=1 re-fetches it first.
// GET /api/users
// Response: {"users": [...]}
func (h *APIHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	id := WorkspaceFromContext(r.Context())

	var ws *domain.Workspace
	var err error
	if r.URL.Query().Get("refresh") != "" {
		ws, err = h.users.Fetch(r.Context(), id)
	} else {
		ws, err = h.users.Open(r.Context(), id)
	}
	if err != nil {
		writeWorkspaceError(w, ws, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"users": toUserDTOs(ws.Users),
	})
}

// HandleCreate adds a user.
// POST /api/users
// Request:  {"firstName":"...","lastName":"...","email":"...","department":"..."}
// Response: {"user": {...}}
func (h *APIHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req DraftDTO
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	ws, err := h.users.Add(r.Context(), WorkspaceFromContext(r.Context()), req.toDraft())
	if err != nil {
		writeWorkspaceError(w, ws, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"user": toUserDTO(ws.Users[len(ws.Users)-1]),
	})
}

// HandleUpdate replaces a user's name, email and department.
// PUT /api/users/{id}
// Request:  {"firstName":"...","lastName":"...","email":"...","department":"..."}
// Response: {"user": {...}}
func (h *APIHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user id.")
		return
	}

	var req DraftDTO
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	draft := domain.EditDraft{ID: userID, Draft: req.toDraft()}
	ws, err := h.users.Update(r.Context(), WorkspaceFromContext(r.Context()), draft)
	if err != nil {
		writeWorkspaceError(w, ws, err)
		return
	}

	user, ok := ws.FindUser(userID)
	if !ok {
		// The remote accepted the write but the list never held this user.
		user = domain.UserFromDraft(userID, draft.Draft)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user": toUserDTO(user),
	})
}

// HandleDelete removes a user.
// DELETE /api/users/{id}
// Response: 204 No Content
func (h *APIHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user id.")
		return
	}

	if ws, err := h.users.Delete(r.Context(), WorkspaceFromContext(r.Context()), userID); err != nil {
		writeWorkspaceError(w, ws, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleReset discards the workspace and returns the fresh one.
// DELETE /api/workspace
// Response: the same body as GET /api/workspace
func (h *APIHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	ws, err := h.users.Reset(r.Context(), WorkspaceFromContext(r.Context()))
	if err != nil && ws == nil {
		writeWorkspaceError(w, nil, err)
		return
	}
	writeJSON(w, http.StatusOK, toWorkspaceDTO(ws))
}

// writeWorkspaceError maps service errors to JSON error responses. Remote
// failures carry the same message the page banner shows.
func writeWorkspaceError(w http.ResponseWriter, ws *domain.Workspace, err error) {
	switch {
	case errors.Is(err, domain.ErrRemote) && ws != nil:
		writeError(w, http.StatusBadGateway, ws.Error)
	case errors.Is(err, domain.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "Too many requests.")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found.")
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("workspace api", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
	}
}
