// Package main provides the entry point for the ComplyForge server.
// It serves the compliance analytics dashboard over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/lvonguyen/complyforge/internal/analytics"
	"github.com/lvonguyen/complyforge/internal/api"
	"github.com/lvonguyen/complyforge/internal/api/gateway"
	"github.com/lvonguyen/complyforge/internal/config"
	"github.com/lvonguyen/complyforge/internal/observability"
	"github.com/lvonguyen/complyforge/internal/store"
)

// Version information (injected at build time via ldflags)
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("ComplyForge %s (commit: %s, built: %s)\n", Version, GitCommit, BuildTime)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		cfg = config.DefaultConfig()
	}

	telemetry, err := observability.New(observability.Config{
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: Version,
		Environment:    cfg.Telemetry.Environment,
		LogLevel:       cfg.Telemetry.LogLevel,
		LogFormat:      cfg.Telemetry.LogFormat,
		TracingEnabled: cfg.Telemetry.TracingEnabled,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		SamplingRate:   cfg.Telemetry.SamplingRate,
		MetricsEnabled: cfg.Telemetry.MetricsEnabled,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "telemetry init failed: %v\n", err)
		os.Exit(1)
	}
	logger := telemetry.Logger()
	logger.Info("Starting ComplyForge", zap.String("version", Version), zap.String("config", *configPath))

	// Redis backs the response cache and rate limiter; both degrade to
	// no-ops without it.
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: os.Getenv(cfg.Redis.PasswordEnv),
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
	}

	var src store.Source
	if cfg.Store.SeedPath != "" {
		seeded, err := store.LoadSeed(cfg.Store.SeedPath)
		if err != nil {
			logger.Fatal("seed load failed", zap.Error(err))
		}
		src = seeded
		logger.Info("seed loaded", zap.String("path", cfg.Store.SeedPath))
	} else {
		logger.Warn("no seed configured, serving empty catalog")
		src = store.NewMemorySource()
	}

	fetcher := store.NewFetcher(src, cfg.Store.BatchSize, logger).WithMetrics(telemetry.Metrics())
	engine := analytics.New(cfg.Analytics, logger)
	cache := store.NewResponseCache(rdb, cfg.Redis.CacheTTL, logger)
	handler := api.NewHandler(fetcher, engine, cfg.Analytics, cache, telemetry.Metrics(), logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	if m := telemetry.Metrics(); m != nil {
		r.Use(requestMetrics(m))
	}

	if cfg.RateLimit.Enabled && rdb != nil {
		limiter := gateway.NewRateLimiter(rdb, gateway.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.RequestsPerWindow,
			Window:            cfg.RateLimit.Window,
			IncludeHeaders:    true,
		}, logger)
		r.Use(limiter.Middleware(nil))
	}

	r.Get("/health", handleHealth)
	r.Get("/ready", handleReady)
	if cfg.Telemetry.MetricsEnabled {
		r.Handle("/metrics", telemetry.MetricsHandler())
	}

	r.Mount("/api/v1", handler.Routes())

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server error", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("Received signal, shutting down", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", zap.Error(err))
	}
	telemetry.Shutdown(shutdownCtx)

	logger.Info("Server stopped")
}

// requestMetrics records per-request counters and latency.
func requestMetrics(m *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			m.RequestsTotal.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(ww.Status())).Inc()
			m.RequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
		})
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","version":"` + Version + `"}`))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
