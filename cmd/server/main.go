package main

import (
	"context"
	"crypto/rand"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hoanghai1803/synopsis/internal/api"
	"github.com/hoanghai1803/synopsis/internal/auth"
	"github.com/hoanghai1803/synopsis/internal/config"
	"github.com/hoanghai1803/synopsis/internal/feeds"
	"github.com/hoanghai1803/synopsis/internal/storage"
	"github.com/hoanghai1803/synopsis/internal/summary"
	"github.com/hoanghai1803/synopsis/internal/themes"
)

const shutdownTimeout = 15 * time.Second

func main() {
	configPath := flag.String("config", "config.toml", "path to config file")
	dataDir := flag.String("data-dir", "./data", "path to data directory")
	flag.Parse()

	// Load configuration (auto-creates default if missing).
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	setupLogger(cfg)

	// Ensure data directory exists.
	if err := os.MkdirAll(*dataDir, 0o755); err != nil {
		slog.Error("failed to create data directory", "error", err)
		os.Exit(1)
	}

	// Open database with WAL mode and pragmas.
	db, err := storage.OpenDatabase(filepath.Join(*dataDir, "synopsis.db"))
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run schema migrations.
	if err := storage.RunMigrations(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	store := storage.NewStore(db)

	ctx := context.Background()

	// Settings saved through the admin API take precedence over the file.
	if err := applyStoredSettings(ctx, store, cfg); err != nil {
		slog.Error("failed to apply stored settings", "error", err)
		os.Exit(1)
	}
	holder := config.NewHolder(*cfg)

	if cfg.Admin.Password != "" {
		if err := auth.SeedAdmin(ctx, store, cfg.Admin.Username, cfg.Admin.Password, cfg.Admin.Email); err != nil {
			slog.Error("failed to seed admin account", "error", err)
			os.Exit(1)
		}
	} else {
		slog.Warn("admin.password is empty, the configured admin account was not seeded")
	}

	secret := []byte(cfg.Auth.JWTSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			slog.Error("failed to generate token secret", "error", err)
			os.Exit(1)
		}
		slog.Warn("auth.jwt_secret is empty, using a random secret: admin tokens will not survive a restart")
	}
	gateway := auth.NewGateway(secret, time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute)

	themeDir := cfg.Themes.Dir
	if themeDir == "" {
		themeDir = filepath.Join(*dataDir, "themes")
	}
	themeStore, err := themes.Open(themeDir)
	if err != nil {
		slog.Error("failed to open theme store", "error", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	svc := summary.NewService(store, holder, nil, summary.NewMetrics(registry))
	if cfg.AI.APIKey == "" {
		slog.Warn("no AI provider API key configured, cached summaries are served but new ones fail until one is set")
	} else {
		slog.Info("AI provider configured", "provider", cfg.AI.Provider, "model", cfg.AI.Model)
	}

	router := api.NewRouter(api.Dependencies{
		Store:    store,
		Service:  svc,
		Settings: holder,
		Themes:   themeStore,
		Gateway:  gateway,
		Fetcher:  feeds.NewFetcher(),
		Registry: registry,
	})

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	case <-sigCtx.Done():
		slog.Info("shutting down")
		shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
		defer done()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("graceful shutdown failed", "error", err)
		}
	}
}

// setupLogger installs the default slog handler selected by [log].
func setupLogger(cfg *config.Config) {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel()}
	var handler slog.Handler
	if cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// applyStoredSettings overlays the runtime settings saved in the database on
// cfg and validates the result.
func applyStoredSettings(ctx context.Context, store *storage.Store, cfg *config.Config) error {
	raw, err := store.GetAllSettings(ctx)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return nil
	}

	rs, err := config.SettingsFromStored(raw)
	if err != nil {
		return err
	}
	rs.Apply(cfg)
	slog.Info("applied stored runtime settings", "count", len(raw))
	return config.Validate(cfg)
}
