package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/msomdec/user-desk/internal/domain"
	"github.com/msomdec/user-desk/internal/handler"
	"github.com/msomdec/user-desk/internal/remote"
	"github.com/msomdec/user-desk/internal/repository/memory"
	"github.com/msomdec/user-desk/internal/repository/sqlite"
	"github.com/msomdec/user-desk/internal/service"
	"golang.org/x/sync/errgroup"
)

func main() {
	logOpts := &slog.HandlerOptions{Level: slog.LevelInfo}
	logger := slog.New(slog.NewMultiHandler(
		slog.NewTextHandler(os.Stdout, logOpts),
		slog.NewJSONHandler(os.Stderr, logOpts),
	))
	slog.SetDefault(logger)

	// A .env file is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}

	port := envOrDefault("PORT", "8080")
	apiURL := envOrDefault("USERS_API_URL", remote.DefaultBaseURL)
	storeKind := envOrDefault("STORE", "memory")
	dbPath := envOrDefault("DATABASE_PATH", "user-desk.db")

	// Default to secure cookies; disable only for local development.
	cookieSecure := os.Getenv("COOKIE_SECURE") != "false"

	apiTimeout := durationOrExit("USERS_API_TIMEOUT", 10*time.Second)
	workspaceTTL := durationOrExit("WORKSPACE_TTL", 24*time.Hour)
	rateRPS := floatOrExit("RATE_LIMIT_RPS", 2)
	rateBurst := floatOrExit("RATE_LIMIT_BURST", 10)

	sessionSecret := os.Getenv("SESSION_SECRET")
	if sessionSecret == "" {
		sessionSecret = randomSecret()
		slog.Warn("SESSION_SECRET not set; workspaces will not survive a restart")
	}
	if len(sessionSecret) < 32 {
		slog.Error("SESSION_SECRET must be at least 32 characters for HMAC-SHA256 security")
		os.Exit(1)
	}

	var store domain.WorkspaceStore
	switch storeKind {
	case "memory":
		store = memory.NewWorkspaceStore()
	case "sqlite":
		db, err := sqlite.New(dbPath)
		if err != nil {
			slog.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := db.Migrate(context.Background()); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		slog.Info("database migrations applied", "path", dbPath)
		store = db.Workspaces()
	default:
		slog.Error("STORE must be memory or sqlite", "value", storeKind)
		os.Exit(1)
	}

	api := remote.New(remote.WithBaseURL(apiURL), remote.WithTimeout(apiTimeout))
	userService := service.NewUserService(api, store)
	sessionService := service.NewSessionService(sessionSecret, workspaceTTL)

	var limiter *service.TokenBucket
	if rateRPS > 0 {
		limiter = service.NewTokenBucket(rateRPS, rateBurst)
		defer limiter.Close()
	}

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, userService, sessionService, limiter, cookieSecure)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler.SecurityHeaders(handler.RequestLogger(mux)),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("server starting", "addr", srv.Addr, "users_api", apiURL, "store", storeKind)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return userService.RunJanitor(gctx, workspaceTTL, time.Hour)
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func envOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func durationOrExit(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		slog.Error("invalid duration", "key", key, "value", v)
		os.Exit(1)
	}
	return d
}

func floatOrExit(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		slog.Error("invalid number", "key", key, "value", v)
		os.Exit(1)
	}
	return f
}

func randomSecret() string {
	b := make([]byte, 32)
	rand.Read(b)
	return hex.EncodeToString(b)
}
