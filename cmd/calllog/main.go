package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/denkfield/msl-calllog-go/internal/config"
	"github.com/denkfield/msl-calllog-go/internal/domain"
	"github.com/denkfield/msl-calllog-go/internal/handler"
	"github.com/denkfield/msl-calllog-go/internal/infra/cache"
	"github.com/denkfield/msl-calllog-go/internal/infra/observability"
	"github.com/denkfield/msl-calllog-go/internal/infra/resilience"
	"github.com/denkfield/msl-calllog-go/internal/infra/supabase"
	"github.com/denkfield/msl-calllog-go/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Duration("jwt_access_ttl", cfg.JWTAccessTTL),
	)

	if cfg.SupabaseURL == "" {
		logger.Fatal("SUPABASE_URL is required")
	}

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "msl-calllog")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	configCache := cache.New[*domain.Config](cfg.CacheTTL)

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("document-store")

	// --- Document store ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	store := supabase.NewClient(
		httpClient,
		cfg.SupabaseURL,
		cfg.SupabaseAnonKey,
		cfg.SupabaseServiceKey,
		cb,
		resilienceCfg,
		logger,
	)

	// --- Services ---
	configSvc := service.NewConfigService(store, configCache, metrics, logger)
	messageSvc := service.NewMessageService(store, logger)
	callSvc := service.NewCallService(store, metrics, logger)
	planSvc := service.NewPlanService(store, metrics, logger)
	reportSvc := service.NewReportService(store, store, configSvc, logger)
	authSvc := service.NewAuthService(store, configSvc, []byte(cfg.JWTSecret), cfg.JWTAccessTTL, logger)

	// Create the shared document on first boot; races with other
	// replicas are harmless.
	{
		ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTPTimeout)
		if err := configSvc.Initialize(ctx); err != nil {
			logger.Warn("startup: config initialization failed, will retry on first read", zap.Error(err))
		}
		cancel()
	}

	// --- Router ---
	router := handler.NewRouter(handler.Services{
		Auth:     authSvc,
		Config:   configSvc,
		Messages: messageSvc,
		Calls:    callSvc,
		Plans:    planSvc,
		Reports:  reportSvc,
	}, store, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
