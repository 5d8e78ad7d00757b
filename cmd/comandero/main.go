package main

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

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	cmhttp "github.com/comandero/comandero/internal/adapter/http"
	cmnats "github.com/comandero/comandero/internal/adapter/nats"
	"github.com/comandero/comandero/internal/adapter/natskv"
	cmotel "github.com/comandero/comandero/internal/adapter/otel"
	"github.com/comandero/comandero/internal/adapter/postgres"
	"github.com/comandero/comandero/internal/adapter/ristretto"
	"github.com/comandero/comandero/internal/adapter/tiered"
	"github.com/comandero/comandero/internal/adapter/ws"
	"github.com/comandero/comandero/internal/config"
	"github.com/comandero/comandero/internal/logger"
	"github.com/comandero/comandero/internal/middleware"
	"github.com/comandero/comandero/internal/port/cache"
	"github.com/comandero/comandero/internal/port/messagequeue"
	"github.com/comandero/comandero/internal/service"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "admin" {
		if err := runAdmin(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, logCloser := logger.New(cfg.Logging)
	slog.SetDefault(log)
	defer logCloser.Close()

	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"auth_enabled", cfg.Auth.Enabled,
		"relay_enabled", cfg.Realtime.RelayEnabled,
	)

	ctx := context.Background()

	// --- Telemetry ---
	otelShutdown, err := cmotel.Init(ctx, cfg.Otel, cfg.Logging.Service)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	metrics, err := cmotel.NewMetrics()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	// --- Infrastructure ---

	// PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	slog.Info("postgres connected")

	if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	slog.Info("migrations applied")

	// NATS JetStream
	queue, err := cmnats.Connect(ctx, cfg.NATS.URL)
	if err != nil {
		return fmt.Errorf("nats: %w", err)
	}
	defer func() { _ = queue.Close() }()

	// Menu cache: in-process L1 over a NATS KV L2 so invalidations reach
	// every node.
	l1, err := ristretto.New(cfg.Cache.L1MaxBytes)
	if err != nil {
		return fmt.Errorf("ristretto: %w", err)
	}
	defer l1.Close()

	var menuCache cache.Cache = l1
	kvCache, err := queue.KeyValue(ctx, "menu-cache", cfg.Cache.MenuTTL)
	if err != nil {
		slog.Warn("menu cache KV unavailable, running L1 only", "error", err)
	} else {
		menuCache = tiered.New(l1, natskv.New(kvCache), cfg.Cache.L1Expire)
	}

	// --- Services ---
	nodeID := uuid.NewString()
	hub := ws.NewHub(cfg.Realtime.SendBuffer)
	hub.SetMetrics(metrics)

	store := postgres.NewStore(pool)
	realtimeSvc := service.NewRealtimeService(hub, queue, nodeID, cfg.Realtime.RelayEnabled)
	realtimeSvc.SetMetrics(metrics)
	authSvc := service.NewAuthService(store, &cfg.Auth)
	tenantSvc := service.NewTenantService(store)
	orderSvc := service.NewOrderService(store, queue, realtimeSvc)
	orderSvc.SetMetrics(metrics)
	saleSvc := service.NewSaleService(store, queue, realtimeSvc)
	saleSvc.SetMetrics(metrics)
	menuSvc := service.NewMenuService(store, menuCache, cfg.Cache.MenuTTL)

	stopRelay, err := realtimeSvc.StartRelay(ctx)
	if err != nil {
		return fmt.Errorf("relay: %w", err)
	}
	defer stopRelay()

	// --- HTTP ---
	handlers := &cmhttp.Handlers{
		Auth:     authSvc,
		Tenants:  tenantSvc,
		Orders:   orderSvc,
		Sales:    saleSvc,
		Menu:     menuSvc,
		Realtime: realtimeSvc,
		Hub:      hub,
		Queue:    queue,
	}

	r := chi.NewRouter()

	rl := middleware.NewRateLimiter(cfg.Rate.RequestsPerSecond, cfg.Rate.Burst)
	stopCleanup := rl.StartCleanup(cfg.Rate.CleanupInterval, cfg.Rate.MaxIdleTime)
	defer stopCleanup()

	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.TenantID)
	r.Use(cmhttp.Logger)
	r.Use(cmhttp.SecurityHeaders)
	r.Use(cmhttp.CORS(cfg.Server.CORSOrigin))
	r.Use(cmotel.HTTPMiddleware(cfg.Logging.Service))
	r.Use(rl.Handler)
	r.Use(middleware.Auth(authSvc, cfg.Auth.Enabled))
	// After Auth: idempotency keys are tenant-scoped and must use the
	// tenant bound from the token claims, not the client header.
	if idemKV, err := queue.KeyValue(ctx, "idempotency", 24*time.Hour); err != nil {
		slog.Warn("idempotency KV unavailable, middleware disabled", "error", err)
	} else {
		r.Use(middleware.Idempotency(idemKV))
	}

	cmhttp.MountRoutes(r, handlers)

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// --- Run until signalled ---
	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		slog.Info("starting server", "addr", addr, "node_id", nodeID)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		if err := drainQueue(queue); err != nil {
			slog.Warn("queue drain failed", "error", err)
		}
		if err := otelShutdown(shutdownCtx); err != nil {
			slog.Warn("otel shutdown failed", "error", err)
		}
		return nil
	})

	return g.Wait()
}

// drainQueue lets in-flight subscriptions finish before the connection closes.
func drainQueue(queue messagequeue.Queue) error {
	if queue == nil {
		return nil
	}
	return queue.Drain()
}
