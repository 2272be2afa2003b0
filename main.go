package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberLogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/linht/docplug/document"
	"github.com/linht/docplug/plugins"
)

// Configuration constants
const (
	// Server timeouts
	ServerReadTimeout  = 120 * time.Second
	ServerWriteTimeout = 120 * time.Second

	// Documents are sent inline as JSON
	MaxBodySize = 16 * 1024 * 1024 // 16 MB

	// Session management (24-hour expiry)
	SessionDuration = 24 * time.Hour
	TokenBytes      = 32
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// loadPlugins loads every configured type through the loader. Failures are
// logged and skipped so one broken entry does not keep the others out.
// The returned map holds the error of every type that failed.
func loadPlugins(typeNames []string) map[string]error {
	failed := make(map[string]error)
	for _, name := range typeNames {
		if err := plugins.Load(name); err != nil {
			slog.Warn("Plugin not loaded", "type", name, "error", err)
			failed[name] = err
		}
	}
	return failed
}

func newServer(auth *authenticator, documents *document.Store) (*fiber.App, error) {
	app := fiber.New(fiber.Config{
		ReadTimeout:  ServerReadTimeout,
		WriteTimeout: ServerWriteTimeout,
		AppName:      "docplug",
		BodyLimit:    MaxBodySize,
	})

	// A panicking handler answers 500 instead of taking the server down
	app.Use(recover.New())

	// Add logger middleware
	app.Use(fiberLogger.New(fiberLogger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))

	// Login/logout endpoints (no auth required for login)
	app.Post("/login", auth.handleLogin)
	app.Post("/logout", auth.handleLogout)

	// Auth middleware for all other API routes
	app.Use("/api", auth.middleware)

	api, err := plugins.NewAPI(plugins.NewRegistry(), plugins.Instance())
	if err != nil {
		return nil, fmt.Errorf("create plugin api: %w", err)
	}
	if documents != nil {
		api.SetDocuments(documents)
	}
	api.RegisterRoutes(app)

	return app, nil
}

func runServer(cfg *Config) error {
	if cfg.Auth.PasswordHash == "" {
		return errors.New("auth.password_hash is required to serve")
	}

	failed := loadPlugins(cfg.Plugins)
	slog.Info("Plugins loaded", "configured", len(cfg.Plugins), "failed", len(failed),
		"names", plugins.NewRegistry().Names())

	var documents *document.Store
	if cfg.Documents.Root != "" {
		store, err := document.NewStore(cfg.Documents.Root, cfg.Documents.MaxSize)
		if err != nil {
			return err
		}
		documents = store
		slog.Info("Document store opened", "root", documents.Root())
	}

	app, err := newServer(newAuthenticator(cfg.Auth.PasswordHash), documents)
	if err != nil {
		return err
	}

	// Setup graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		slog.Info("Shutting down server...")
		if err := app.ShutdownWithContext(context.Background()); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
	}()

	addr := cfg.Address()
	slog.Info("Starting docplug", "address", addr)
	if err := app.Listen(addr); err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return nil
}
