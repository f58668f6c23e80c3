package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	githubclient "github.com/ericfisherdev/mywrap/internal/adapter/driven/provider/github"
	"github.com/ericfisherdev/mywrap/internal/adapter/driven/provider/spotify"
	"github.com/ericfisherdev/mywrap/internal/adapter/driven/provider/strava"
	"github.com/ericfisherdev/mywrap/internal/adapter/driven/provider/youtube"
	sqliteadapter "github.com/ericfisherdev/mywrap/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/mywrap/internal/adapter/driving/http"
	"github.com/ericfisherdev/mywrap/internal/application"
	"github.com/ericfisherdev/mywrap/internal/config"
	"github.com/ericfisherdev/mywrap/internal/domain/port/driven"
	"github.com/ericfisherdev/mywrap/internal/vault"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on missing or malformed key material).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"provider_timeout", cfg.ProviderTimeout,
		"fetch_concurrency", cfg.FetchConcurrency,
	)

	// 2. Construct the vault from the process-wide key.
	v, err := vault.New(cfg.EncryptionKey)
	if err != nil {
		return err
	}

	// 3. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", cfg.DBPath)

	// 5. Run migrations on writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("migrations complete")

	// 6. Wire driven adapters.
	credentialStore := sqliteadapter.NewCredentialRepo(db)
	wrapStore := sqliteadapter.NewWrapRepo(db)

	providers := []driven.ProviderClient{
		spotify.NewClient(),
		youtube.NewClient(),
		githubclient.NewClient(),
		strava.NewClient(),
	}

	// 7. Create aggregation engine and wrap service.
	aggregator := application.NewAggregator(
		credentialStore,
		v,
		providers,
		application.DefaultWeights,
		application.DefaultPriority,
		cfg.ProviderTimeout,
		cfg.FetchConcurrency,
		slog.Default(),
	)
	wrapSvc := application.NewWrapService(aggregator, wrapStore, slog.Default())

	// 8. Create HTTP handler and server.
	handler := httphandler.NewServeMux(
		httphandler.NewHandler(wrapSvc, slog.Default()),
		cfg.SessionSecret,
		slog.Default(),
	)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
		}
	}()

	slog.Info("mywrap started",
		"listen_addr", cfg.ListenAddr,
		"providers", len(providers),
	)

	// 9. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	// 10. Graceful shutdown with 10s timeout for HTTP server drain.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
