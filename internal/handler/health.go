package handler

import (
	"net/http"
)

// HandleHealthz reports liveness. It never touches the remote API.
func HandleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
