package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"pawtrack.dev/tracker-admin/internal/admin/authctx"
	"pawtrack.dev/tracker-admin/internal/admin/config"
	"pawtrack.dev/tracker-admin/internal/admin/httpserver"
	"pawtrack.dev/tracker-admin/internal/admin/metrics"
	"pawtrack.dev/tracker-admin/internal/admin/observability"
	"pawtrack.dev/tracker-admin/internal/admin/session"
	"pawtrack.dev/tracker-admin/internal/admin/tracker"
)

func main() {
	configPath := flag.String("config", os.Getenv("ADMIN_CONFIG"), "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := observability.NewLogger()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	store, err := session.NewManager(session.Config{
		CookieName:   cfg.Session.CookieName,
		HashKey:      []byte(cfg.Session.HashKey),
		BlockKey:     []byte(cfg.Session.BlockKey),
		Lifetime:     cfg.Session.Lifetime.Std(),
		CookieSecure: cfg.Session.CookieSecure,
	})
	if err != nil {
		logger.Fatal("init session manager", zap.Error(err))
	}

	backend, err := tracker.NewClient(cfg.Backend.BaseURL, &http.Client{
		Timeout: cfg.Backend.Timeout.Std(),
	}, logger.Named("tracker"))
	if err != nil {
		logger.Fatal("init backend client", zap.Error(err))
	}

	m := metrics.New(nil)
	flight := authctx.NewFlight()
	service := authctx.NewService(backend, logger.Named("auth"), m)

	srv := httpserver.New(httpserver.Config{
		Address:  cfg.Listen,
		BasePath: cfg.BasePath,
		Store:    store,
		Service:  service,
		Flight:   flight,
		API:      backend,
		Logger:   logger,
		Metrics:  m,
		// One knob governs the Secure attribute of both cookies.
		CSRFCookieSecure: cfg.Session.CookieSecure,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	logger.Info("admin server listening",
		zap.String("address", cfg.Listen),
		zap.String("base_path", cfg.BasePath),
		zap.String("backend", cfg.Backend.BaseURL))

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
		os.Exit(1)
	}
}
