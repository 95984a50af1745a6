package handler

import (
	"net/http"

	"github.com/msomdec/user-desk/internal/view"
)

// HandlePage renders the full user management page. The first visit of a
// workspace fetches the user list.
func (h *UserHandler) HandlePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	ws, err := h.users.Open(r.Context(), WorkspaceFromContext(r.Context()))
	if err != nil && ws == nil {
		handleWorkspaceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	view.Page(ws).Render(r.Context(), w)
}
