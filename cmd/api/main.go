// Package main is the entry point for the API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/lumora/playshare/internal/analytics"
	"github.com/lumora/playshare/internal/api"
	"github.com/lumora/playshare/internal/audit"
	"github.com/lumora/playshare/internal/auth"
	"github.com/lumora/playshare/internal/billing"
	"github.com/lumora/playshare/internal/catalog"
	"github.com/lumora/playshare/internal/config"
	"github.com/lumora/playshare/internal/db"
	"github.com/lumora/playshare/internal/health"
	"github.com/lumora/playshare/internal/middleware"
	"github.com/lumora/playshare/internal/tracing"
	"github.com/lumora/playshare/internal/watch"
	"github.com/lumora/playshare/internal/withdrawal"
)

const serviceName = "playshare-api"

func main() {
	help := flag.Bool("help", false, "display help message")
	configPath := flag.String("config", "", "path to YAML config file (optional)")
	flag.Parse()

	if *help {
		fmt.Println("Playshare API Server")
		fmt.Println()
		fmt.Println("Usage: api [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	cfg, errs := config.Load(*configPath)
	if len(errs) > 0 {
		for _, err := range errs {
			fmt.Fprintln(os.Stderr, "config error:", err)
		}
		os.Exit(1)
	}

	logger := middleware.NewLogger(cfg.Env)
	slog.SetDefault(logger)
	logger.Info("configuration loaded", "summary", cfg.LogSummary())

	ctx := context.Background()

	// Tracing
	tp, err := tracing.NewProvider(tracing.Config{
		ServiceName:  serviceName,
		Enabled:      cfg.TracingEnabled,
		Environment:  cfg.Env,
		ExporterType: cfg.TracingExporter,
		OTLPEndpoint: cfg.TracingEndpoint,
		SamplingRate: cfg.TracingSampleRate,
		InsecureMode: cfg.Env != "production",
	})
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shut down tracing", "error", err)
		}
	}()

	// Repositories: Postgres when DATABASE_URL is set, otherwise in-memory.
	var (
		billingRepo  billing.Repository
		catalogRepo  catalog.Repository
		watchRepo    watch.Repository
		auditRepo    audit.Repository
		healthConfig api.HealthHandlersConfig
	)
	if cfg.DatabaseURL != "" {
		pool, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		billingRepo = billing.NewPostgresRepository(pool, logger)
		catalogRepo = catalog.NewPostgresRepository(pool)
		watchRepo = watch.NewPostgresRepository(pool)
		auditRepo = audit.NewPostgresRepository(pool)
		healthConfig.DBChecker = health.NewDBChecker(pool)
		logger.Info("using postgres repositories")
	} else {
		billingRepo = billing.NewInMemoryRepository()
		catalogRepo = catalog.NewInMemoryRepository()
		watchRepo = watch.NewInMemoryRepository()
		auditRepo = audit.NewInMemoryRepository()
		logger.Warn("DATABASE_URL not set, using in-memory repositories")
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	httpMetrics := middleware.NewMetrics()
	if err := httpMetrics.Register(registry); err != nil {
		logger.Error("failed to register http metrics", "error", err)
		os.Exit(1)
	}
	engineMetrics := analytics.NewMetrics()
	if err := engineMetrics.Register(registry); err != nil {
		logger.Error("failed to register analytics metrics", "error", err)
		os.Exit(1)
	}

	// Rate limiting: Redis-backed when REDIS_URL is set.
	var rateLimitStore middleware.RateLimitStore
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		redisClient := redis.NewClient(opts)
		defer redisClient.Close()
		rateLimitStore = middleware.NewRedisRateLimitStore(redisClient).WithMetrics(httpMetrics)
		healthConfig.RedisChecker = health.NewRedisChecker(redisClient)
		logger.Info("using redis rate limit store")
	} else {
		store := middleware.NewInMemoryRateLimitStore()
		go func() {
			ticker := time.NewTicker(time.Minute)
			defer ticker.Stop()
			for range ticker.C {
				store.Cleanup()
			}
		}()
		rateLimitStore = store
	}

	// Core services
	engine := analytics.NewEngine(billingRepo, catalogRepo, watchRepo, logger).
		WithMetrics(engineMetrics)
	withdrawalService := withdrawal.NewService(engine, auditRepo, logger)
	jwtService := auth.NewJWTService(cfg.JWTSecret)

	// Handlers
	analyticsHandlers := api.NewAnalyticsHandlers(engine, logger)
	withdrawalHandlers := api.NewWithdrawalHandlers(withdrawalService, logger)
	trackHandlers := api.NewTrackHandlers(watchRepo, logger)
	healthHandlers := api.NewHealthHandlers(healthConfig)

	// Per-route middleware
	authed := middleware.Authenticate(jwtService)
	adminOnly := middleware.RequireRole(auth.RoleAdmin)
	providerOnly := middleware.RequireRole(auth.RoleContentCreator)
	globalLimit := func(endpoint string) func(http.Handler) http.Handler {
		return middleware.RateLimiter(rateLimitStore, middleware.DefaultGlobalLimit(), middleware.IPKeyFunc(), httpMetrics, endpoint)
	}
	withdrawalLimit := middleware.RateLimiter(rateLimitStore, middleware.DefaultWithdrawalLimit(), middleware.UserKeyFunc(), httpMetrics, "/provider/withdrawals")

	mux := http.NewServeMux()
	mux.Handle("/revenue", globalLimit("/revenue")(authed(adminOnly(
		requireMethod(http.MethodGet, analyticsHandlers.Revenue)))))
	mux.Handle("/admin/analytics", globalLimit("/admin/analytics")(authed(adminOnly(
		requireMethod(http.MethodGet, analyticsHandlers.AdminAnalytics)))))
	mux.Handle("/provider/analytics", globalLimit("/provider/analytics")(authed(providerOnly(
		requireMethod(http.MethodGet, analyticsHandlers.ProviderAnalytics)))))
	mux.Handle("/provider/withdrawals", authed(providerOnly(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			globalLimit("/provider/withdrawals")(http.HandlerFunc(withdrawalHandlers.Summary)).ServeHTTP(w, r)
		case http.MethodPost:
			withdrawalLimit(http.HandlerFunc(withdrawalHandlers.Request)).ServeHTTP(w, r)
		default:
			methodNotAllowed(w, r)
		}
	}))))
	mux.Handle("/watch/track", globalLimit("/watch/track")(authed(
		requireMethod(http.MethodPost, trackHandlers.Track))))
	mux.HandleFunc("/health", healthHandlers.Health)
	mux.HandleFunc("/ready", healthHandlers.Ready)
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	// Global middleware: RequestID -> Tracing -> Logging -> HTTPMetrics
	handler := middleware.RequestID(
		middleware.Tracing(serviceName)(
			middleware.Logging(logger)(
				middleware.HTTPMetrics(httpMetrics)(mux))))

	server := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server", "port", cfg.Port, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// requireMethod rejects any method other than the given one with a 405.
func requireMethod(method string, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			methodNotAllowed(w, r)
			return
		}
		next(w, r)
	})
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	ctx := middleware.SetErrorCode(r.Context(), api.ErrCodeBadRequest)
	api.WriteError(w, ctx, http.StatusMethodNotAllowed, api.ErrCodeBadRequest, "Method not allowed")
}
