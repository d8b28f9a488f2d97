package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-society-hub/internal/config"
	"go-society-hub/internal/database"
	"go-society-hub/internal/handler"
	"go-society-hub/internal/middleware"
	"go-society-hub/internal/repository"
	"go-society-hub/internal/router"
	"go-society-hub/internal/security"
	"go-society-hub/internal/service"
	"go-society-hub/internal/token"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	server       *http.Server
	cleanupFuncs []func()
}

func New(cfg *config.Config) (*App, error) {
	var (
		store        service.CredentialStore
		health       *handler.HealthHandler
		cleanupFuncs []func()
	)

	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		slog.Warn("using in-memory credential store; users are lost on restart")
		store = repository.NewMemoryUserRepository()
		health = handler.NewHealthHandler(nil)
	default:
		slog.Info("connecting to PostgreSQL")
		db, err := database.New(context.Background(), cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		if err := db.EnsureSchema(context.Background()); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to ensure database schema: %w", err)
		}

		store = repository.NewUserRepository(db.Pool)
		health = handler.NewHealthHandler(db)
		cleanupFuncs = append(cleanupFuncs, db.Close)
		slog.Info("database ready")
	}

	jwtConfig := cfg.JWT()
	authService := service.NewAuthService(store, security.NewHasher(), token.NewIssuer(jwtConfig))
	authMiddleware := middleware.NewAuthMiddleware(token.NewVerifier(jwtConfig))

	appRouter := router.New(cfg, authMiddleware, router.Handlers{
		User:   handler.NewUserHandler(authService),
		Docs:   handler.NewDocsHandler(),
		Health: health,
	})

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{server: server, cleanupFuncs: cleanupFuncs}, nil
}

func (a *App) Run() error {
	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err := <-serveErr:
		a.cleanup()
		return fmt.Errorf("server failed: %w", err)
	case sig := <-stop:
		slog.Info("shutdown requested", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := a.server.Shutdown(ctx)
	a.cleanup()
	if err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

func (a *App) cleanup() {
	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}
}
