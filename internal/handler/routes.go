package handler

import (
	"net/http"

	"github.com/msomdec/user-desk/internal/service"
)

// RegisterRoutes sets up all HTTP routes on the given mux. A nil limiter
// disables rate limiting.
func RegisterRoutes(mux *http.ServeMux, users *service.UserService, sessions *service.SessionService, limiter *service.TokenBucket, cookieSecure bool) {
	ws := func(h http.HandlerFunc) http.Handler {
		return WithWorkspace(sessions, cookieSecure, h)
	}
	limited := func(h http.HandlerFunc) http.Handler {
		return ws(RateLimit(limiter, h).ServeHTTP)
	}
	apiLimited := func(h http.HandlerFunc) http.Handler {
		return ws(RateLimitAPI(limiter, h).ServeHTTP)
	}

	page := NewUserHandler(users)
	api := NewAPIHandler(users)

	mux.HandleFunc("GET /healthz", HandleHealthz)

	// Page and Datastar SSE endpoints.
	mux.Handle("GET /{$}", ws(page.HandlePage))
	mux.Handle("POST /users/refresh", limited(page.HandleRefresh))
	mux.Handle("POST /users/reset", limited(page.HandleReset))
	mux.Handle("POST /users", limited(page.HandleAdd))
	mux.Handle("POST /users/draft", ws(page.HandleDraft))
	mux.Handle("POST /users/cancel", ws(page.HandleCancel))
	mux.Handle("POST /users/{id}/edit", ws(page.HandleStartEdit))
	mux.Handle("PUT /users/{id}", limited(page.HandleUpdate))
	mux.Handle("DELETE /users/{id}", limited(page.HandleDelete))

	// JSON API over the same workspace.
	mux.Handle("GET /api/workspace", ws(api.HandleWorkspace))
	mux.Handle("DELETE /api/workspace", apiLimited(api.HandleReset))
	mux.Handle("GET /api/users", ws(api.HandleList))
	mux.Handle("POST /api/users", apiLimited(api.HandleCreate))
	mux.Handle("PUT /api/users/{id}", apiLimited(api.HandleUpdate))
	mux.Handle("DELETE /api/users/{id}", apiLimited(api.HandleDelete))
}
