package handler

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/msomdec/user-desk/internal/domain"
	"github.com/msomdec/user-desk/internal/service"
)

type contextKey string

const workspaceContextKey contextKey = "workspace"

// WorkspaceCookie names the cookie carrying the signed workspace token.
const WorkspaceCookie = "workspace"

// WorkspaceFromContext returns the workspace ID bound to the request, or ""
// when none is.
func WorkspaceFromContext(ctx context.Context) string {
	id, _ := ctx.Value(workspaceContextKey).(string)
	return id
}

// WithWorkspace binds every request to a workspace. A missing, expired or
// tampered cookie is replaced with a fresh workspace rather than rejected,
// and a valid cookie past half its lifetime is re-issued so an active
// browser keeps its workspace.
func WithWorkspace(sessions *service.SessionService, cookieSecure bool, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id, token string
		if cookie, err := r.Cookie(WorkspaceCookie); err == nil {
			id, token, _ = sessions.Renew(cookie.Value)
		}

		if id == "" {
			var err error
			id, token, err = sessions.NewWorkspace()
			if err != nil {
				slog.Error("issue workspace token", "error", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
		}

		if token != "" {
			http.SetCookie(w, &http.Cookie{
				Name:     WorkspaceCookie,
				Value:    token,
				Path:     "/",
				HttpOnly: true,
				Secure:   cookieSecure,
				SameSite: http.SameSiteLaxMode,
				MaxAge:   int(sessions.TTL().Seconds()),
			})
		}

		ctx := context.WithValue(r.Context(), workspaceContextKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RateLimit rejects requests with 429 once the client address has spent its
// tokens. A nil limiter lets everything through.
func RateLimit(limiter *service.TokenBucket, next http.Handler) http.Handler {
	return rateLimit(limiter, next, func(w http.ResponseWriter) {
		http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
	})
}

// RateLimitAPI is RateLimit for the JSON API: the rejection is a JSON error
// body.
func RateLimitAPI(limiter *service.TokenBucket, next http.Handler) http.Handler {
	return rateLimit(limiter, next, func(w http.ResponseWriter) {
		writeWorkspaceError(w, nil, domain.ErrRateLimited)
	})
}

func rateLimit(limiter *service.TokenBucket, next http.Handler, reject func(w http.ResponseWriter)) http.Handler {
	if limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientIP(r)
		if !limiter.Allow(key) {
			retry := max(int(limiter.RetryAfter(key).Round(time.Second).Seconds()), 1)
			w.Header().Set("Retry-After", strconv.Itoa(retry))
			reject(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// SecurityHeaders sets conservative response headers. The script source
// allows the Datastar bundle from its CDN.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "same-origin")
		h.Set("Content-Security-Policy",
			"default-src 'self'; script-src 'self' 'unsafe-eval' https://cdn.jsdelivr.net; style-src 'self' 'unsafe-inline'; connect-src 'self'")
		next.ServeHTTP(w, r)
	})
}

// RequestLogger logs one line per request.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

// statusRecorder captures the status code while still supporting flushing,
// which SSE responses depend on.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Flush() {
	if f, ok := s.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}
