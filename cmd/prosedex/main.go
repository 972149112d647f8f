package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/storyunending/prosedex/internal/api"
	"github.com/storyunending/prosedex/internal/common"
	"github.com/storyunending/prosedex/internal/store"
	"github.com/storyunending/prosedex/internal/tracker"
)

func main() {
	logger := common.Logger()

	if err := godotenv.Load(); err != nil {
		logger.Debug("prosedex: .env file not loaded", "error", err)
	}

	addr := flag.String("addr", ":8082", "listen address")
	backend := flag.String("store", envOr("PROSEDEX_STORE", "memory"), "snapshot backend: memory, file or sqlite")
	storePath := flag.String("store-path", envOr("PROSEDEX_STORE_PATH", defaultStorePath()), "path for the file or sqlite backend")
	flag.Parse()

	cfg, err := tracker.LoadConfig()
	if err != nil {
		logger.Error("prosedex: config load failed", "error", err)
		os.Exit(1)
	}

	kv, cleanup, err := openStore(*backend, *storePath)
	if err != nil {
		logger.Error("prosedex: store init failed", "backend", *backend, "error", err)
		os.Exit(1)
	}
	defer cleanup()

	engine := tracker.New(cfg, tracker.WithStore(kv))
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 10*time.Second)
	if err := engine.Load(loadCtx); err != nil {
		logger.Warn("prosedex: snapshot load failed", "error", err)
	}
	cancelLoad()

	srv, err := api.NewServer(engine)
	if err != nil {
		logger.Error("prosedex: server init failed", "error", err)
		os.Exit(1)
	}
	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("prosedex: listening", "addr", *addr, "store", *backend)
		errCh <- httpServer.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case sig := <-stop:
		logger.Info("prosedex: shutting down", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("prosedex: server failed", "error", err)
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("prosedex: shutdown incomplete", "error", err)
	}
	if err := engine.Close(shutdownCtx); err != nil {
		logger.Warn("prosedex: final snapshot failed", "error", err)
	}
}

func openStore(backend, path string) (store.KeyValue, func(), error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", "memory":
		return store.NewMemory(), func() {}, nil
	case "file":
		kv, err := store.NewFile(path)
		if err != nil {
			return nil, nil, err
		}
		return kv, func() {}, nil
	case "sqlite":
		if filepath.Ext(path) == "" {
			path = filepath.Join(path, "snapshots.db")
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create store dir: %w", err)
		}
		kv, err := store.OpenSQLite(path)
		if err != nil {
			return nil, nil, err
		}
		return kv, func() { _ = kv.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", backend)
	}
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "prosedex-data")
	}
	return filepath.Join(home, ".prosedex")
}
