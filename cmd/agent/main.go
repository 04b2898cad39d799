package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"shield/internal/audit"
	"shield/internal/backend"
	"shield/internal/detector"
	"shield/internal/exposure/models"
	"shield/internal/exposure/service"
	"shield/internal/exposure/status"
	"shield/internal/platform/config"
	"shield/internal/platform/httpserver"
	"shield/internal/platform/logger"
	"shield/internal/platform/metrics"
	platformredis "shield/internal/platform/redis"
	"shield/internal/storage"
	httptransport "shield/internal/transport/http"
)

// main wires high-level dependencies, exposes the control surface, and keeps
// the agent lifecycle small. Business logic lives in internal services
// packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New()

	// Persistence: Redis when configured, otherwise in-process.
	var kv storage.KV = storage.NewInMemoryKV()
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis unavailable", "error", err.Error())
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		kv = storage.NewRedisKV(redisClient, "shield:")
		log.Info("using redis persistence")
	}

	var secure storage.SecureKV = storage.NewInMemorySecureKV()
	if cfg.SecureStoreKey != "" {
		fileKV, err := storage.NewSecureFileKV(cfg.SecureStorePath, cfg.SecureStoreKey)
		if err != nil {
			log.Error("secure store setup failed", "error", err.Error())
			os.Exit(1)
		}
		secure = fileKV
	}

	statusStore := status.New(kv, log)
	statusStore.Subscribe(func(st models.ExposureStatus) {
		m.SetCurrentStatus(string(st.Type))
	})

	auditStore := audit.NewInMemoryStore(1000)
	publisher := audit.NewPublisher(64)
	worker := audit.NewWorker(auditStore, publisher.Inbox(), log)
	go func() { _ = worker.Run(ctx) }()

	backendClient := backend.New(cfg.BackendURL, cfg.Region, backend.WithLogger(log))

	engine, err := service.New(backendClient, detector.NewNoop(), statusStore, secure,
		service.Config{
			HoursPerPeriod:     cfg.HoursPerPeriod,
			MaxLookbackPeriods: cfg.MaxLookbackPeriods,
			CycleDuration:      time.Duration(cfg.CycleDays) * 24 * time.Hour,
		},
		service.WithLogger(log),
		service.WithMetrics(m),
		service.WithAudit(publisher),
	)
	if err != nil {
		log.Error("engine setup failed", "error", err.Error())
		os.Exit(1)
	}

	if err := engine.Start(ctx); err != nil {
		log.Error("engine start failed", "error", err.Error())
		os.Exit(1)
	}

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Handle("/metrics", promhttp.Handler())
	httptransport.New(engine, statusStore, log).Register(router)

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err.Error())
			cancel()
		}
	}()

	// Scheduler: reconcile immediately, then on the configured interval.
	go func() {
		if err := engine.Reconcile(ctx); err != nil {
			log.Warn("initial reconciliation failed", "error", err.Error())
		}
		ticker := time.NewTicker(cfg.ReconcileInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := engine.Reconcile(ctx); err != nil {
					log.Warn("scheduled reconciliation failed", "error", err.Error())
				}
			}
		}
	}()

	log.Info("shield agent started", "addr", cfg.Addr, "region", cfg.Region)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err.Error())
	}
}
