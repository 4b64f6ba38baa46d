// Package main is the entry point for the taskverse server.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskverse/internal/backend"
	"taskverse/internal/backend/googletasks"
	"taskverse/internal/backend/memory"
	"taskverse/internal/backend/supabase"
	"taskverse/internal/config"
	"taskverse/internal/exitcode"
	"taskverse/internal/web"
)

const shutdownTimeout = 10 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	var configPath, addr string
	flag.StringVar(&configPath, "config", "", "path to taskverse.toml")
	flag.StringVar(&addr, "addr", "", "listen address override")
	flag.Parse()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Error("config load failed", "error", err)
		return exitcode.ConfigError
	}
	if addr != "" {
		cfg.Addr = addr
	}

	client, err := buildClient(ctx, cfg, log)
	if err != nil {
		log.Error("backend setup failed", "error", err)
		return exitcode.BackendError
	}

	srv, err := web.NewServer(ctx, client, cfg, log)
	if err != nil {
		log.Error("server setup failed", "error", err)
		return exitcode.ServerError
	}

	httpSrv := &http.Server{Addr: cfg.Addr, Handler: srv.Router()}
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.Addr, "backend", cfg.Backend)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
		defer stop()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Warn("shutdown incomplete", "error", err)
		}
		srv.Shutdown()
		return exitcode.Success
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return exitcode.Success
		}
		log.Error("server failed", "error", err)
		return exitcode.ServerError
	}
}

// buildClient assembles the backend per configuration: the hosted adapter by
// default, in-memory for development, or the Google Tasks store composed
// with in-memory auth and a polling notifier.
func buildClient(ctx context.Context, cfg *config.Config, log *slog.Logger) (backend.Client, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return memory.New(), nil
	case config.BackendGoogleTasks:
		store, err := googletasks.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return backend.Compose{
			Auth:      memory.New(),
			TaskStore: store,
			Notifier:  googletasks.NewPoller(store, 0),
		}, nil
	default:
		return supabase.New(cfg.SupabaseURL, cfg.SupabaseAnonKey, log), nil
	}
}
