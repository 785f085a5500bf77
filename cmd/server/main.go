package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/me/codelab/internal/config"
	"github.com/me/codelab/internal/evaluate"
	"github.com/me/codelab/internal/exercise"
	"github.com/me/codelab/internal/logging"
	"github.com/me/codelab/internal/server"
	"github.com/me/codelab/internal/store"
)

func main() {
	cfg := config.DefaultServerConfig()

	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "Listen address")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	flag.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text, json)")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Database path (default ~/.codelab/codelab.db)")
	flag.StringVar(&cfg.ToolURL, "tool-url", cfg.ToolURL, "Public tool URL for launch redirects")
	flag.StringVar(&cfg.AuthURL, "auth-url", cfg.AuthURL, "Platform OIDC auth endpoint")
	flag.DurationVar(&cfg.SessionTTL, "session-ttl", cfg.SessionTTL, "Launch session lifetime")
	issuers := flag.String("issuers", "", "Comma-separated recognized platform issuers")
	catalogPath := flag.String("catalog", "", "Exercise catalog YAML (default: embedded catalog)")
	debug := flag.Bool("debug", false, "Shorthand for --log-level=debug")

	flag.Parse()

	if *debug {
		cfg.LogLevel = "debug"
	}
	if *issuers != "" {
		cfg.Issuers = strings.Split(*issuers, ",")
	}

	logger := logging.NewLogger(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)

	// Resolve database path.
	dbPath := cfg.DBPath
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "cannot determine home directory: %v\n", err)
			os.Exit(1)
		}
		dir := filepath.Join(home, ".codelab")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "cannot create %s: %v\n", dir, err)
			os.Exit(1)
		}
		dbPath = filepath.Join(dir, "codelab.db")
	}

	st, err := store.NewSQLiteStore(dbPath, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open store: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := st.Migrate(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "migrate store: %v\n", err)
		os.Exit(1)
	}

	var catalog *exercise.Catalog
	if *catalogPath != "" {
		catalog, err = exercise.LoadFile(*catalogPath)
	} else {
		catalog, err = exercise.Default()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "load catalog: %v\n", err)
		os.Exit(1)
	}

	evaluator := evaluate.NewJSEvaluator(cfg.EvalTimeout, logger)
	srv := server.New(cfg, st, catalog, evaluator, logger)

	// Periodically drop expired launch sessions.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n, err := st.DeleteExpiredLaunchSessions(ctx); err != nil {
					logger.Warn("session cleanup failed", "error", err)
				} else if n > 0 {
					logger.Info("expired sessions removed", "count", n)
				}
			}
		}
	}()

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("codelab server listening",
		"addr", cfg.Addr, "db", dbPath, "exercises", catalog.Len())
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}
