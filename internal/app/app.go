// Package app provides application-level coordination and dependency
// injection. It wires the adapters, services and infrastructure together,
// manages their lifecycles and owns the HTTP router.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/climascope/climascope/internal/adapters/primary/rest"
	"github.com/climascope/climascope/internal/adapters/secondary/advisor"
	"github.com/climascope/climascope/internal/adapters/secondary/climate"
	"github.com/climascope/climascope/internal/adapters/secondary/geoip"
	"github.com/climascope/climascope/internal/adapters/secondary/nominatim"
	"github.com/climascope/climascope/internal/config"
	"github.com/climascope/climascope/internal/core/ports"
	"github.com/climascope/climascope/internal/core/services"
	"github.com/climascope/climascope/internal/infrastructure/cache"
	"github.com/climascope/climascope/internal/infrastructure/circuitbreaker"
	"github.com/climascope/climascope/internal/infrastructure/ratelimit"
	"github.com/climascope/climascope/internal/middleware"
	"github.com/climascope/climascope/internal/observability"
	"github.com/climascope/climascope/internal/version"
)

// Server represents the HTTP server instance.
type Server struct {
	server *http.Server
	logger *zap.Logger
}

// App manages the application lifecycle and dependencies.
type App struct {
	cfg       *config.Config
	server    *Server
	logger    *zap.Logger
	telemetry *observability.Telemetry
	cbManager *circuitbreaker.Manager
}

// New creates a new application instance.
func New() (*App, error) {
	logger, err := zap.NewProduction()

	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg := config.Load()

	return &App{
		cfg:    cfg,
		logger: logger,
	}, nil
}

// Start initializes and starts all application components.
func (a *App) Start(ctx context.Context) error {
	if err := a.initTelemetry(ctx); err != nil {
		a.logger.Warn("failed to initialize telemetry, continuing without it", zap.Error(err))
	}

	cacheService, rateLimitService := a.initRedisServices(ctx)

	a.cbManager = circuitbreaker.NewManager(a.logger)

	httpClient := &http.Client{
		Timeout: a.cfg.External.HTTPTimeout,
	}

	aggregateClient := a.initAggregateClient(httpClient)
	locator := a.initLocator(httpClient)
	advisorClient := a.initAdvisor(httpClient)
	geocoder := nominatim.NewClient(
		a.cfg.External.NominatimBaseURL, httpClient, cacheService, a.telemetry, a.logger)

	sessions := services.NewSessionRegistry(
		aggregateClient, a.logger, a.cfg.Session.TTL, a.cfg.External.RequestTimeout)

	dashboardService := services.NewDashboardService(
		sessions, geocoder, locator, advisorClient, a.logger)
	dashboardHandler := rest.NewDashboardHandler(dashboardService, a.logger)

	rateLimitMiddleware := middleware.NewRateLimitMiddleware(
		rateLimitService,
		a.cfg.RateLimit.RPS,
		a.cfg.RateLimit.Window,
		a.logger,
	)

	router := a.setupRouter(dashboardHandler, rateLimitMiddleware, a.telemetry)

	a.server = &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf(":%s", a.cfg.Server.Port),
			Handler:      router,
			ReadTimeout:  a.cfg.Server.ReadTimeout,
			WriteTimeout: a.cfg.Server.WriteTimeout,
			IdleTimeout:  a.cfg.Server.IdleTimeout,
		},
		logger: a.logger,
	}

	go func() {
		a.logger.Info("starting HTTP server", zap.String("port", a.cfg.Server.Port))

		if err := a.server.server.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				a.logger.Fatal("failed to start server", zap.Error(err))
			}
		}
	}()

	return nil
}

// Stop gracefully shuts down all application components.
func (a *App) Stop() {
	a.logger.Info("shutting down application...")

	if a.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := a.server.server.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("failed to shutdown server gracefully", zap.Error(err))
		}
	}

	if a.telemetry != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := a.telemetry.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("failed to shutdown telemetry", zap.Error(err))
		}
	}

	if err := a.logger.Sync(); err != nil {
		// Sync can fail on some platforms, ignore the error
		_ = err
	}
}

// WaitForShutdown blocks until the server receives a shutdown signal.
func (a *App) WaitForShutdown() {
	quit := make(chan os.Signal, 1)

	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	a.logger.Info("shutdown signal received")
}

// initTelemetry initializes OpenTelemetry providers.
func (a *App) initTelemetry(ctx context.Context) error {
	telemetryConfig := observability.Config{
		ServiceName:    a.cfg.Observability.ServiceName,
		ServiceVersion: a.cfg.Observability.ServiceVersion,
		Environment:    a.cfg.Observability.Environment,
		OTLPEndpoint:   a.cfg.Observability.OTLPEndpoint,
		SampleRate:     a.cfg.Observability.SampleRate,
	}

	var err error
	a.telemetry, err = observability.InitTelemetry(ctx, telemetryConfig, a.logger)

	return err
}

// initRedisServices initializes Redis-based or memory-based cache and rate
// limiting. A missing Redis never blocks startup; both services fall back to
// their in-memory implementations.
func (a *App) initRedisServices(ctx context.Context) (ports.CacheService, ports.RateLimitService) {
	if !a.cfg.Redis.Enabled {
		a.logger.Info("Redis disabled, using memory-based services")

		memCache := cache.NewMemoryCache(5*time.Minute, 10*time.Minute, a.logger)
		memRateLimit := middleware.NewMemoryRateLimiter(a.logger)

		return memCache, memRateLimit
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:         a.cfg.Redis.Addr,
		Password:     a.cfg.Redis.Password,
		DB:           a.cfg.Redis.DB,
		PoolSize:     a.cfg.Redis.PoolSize,
		MinIdleConns: a.cfg.Redis.MinIdleConns,
		MaxRetries:   a.cfg.Redis.MaxRetries,
		DialTimeout:  a.cfg.Redis.DialTimeout,
		ReadTimeout:  a.cfg.Redis.ReadTimeout,
		WriteTimeout: a.cfg.Redis.WriteTimeout,
	})

	if err := redisClient.Ping(ctx).Err(); err != nil {
		a.logger.Warn("Redis connection failed, falling back to memory-based services", zap.Error(err))

		memCache := cache.NewMemoryCache(5*time.Minute, 10*time.Minute, a.logger)
		memRateLimit := middleware.NewMemoryRateLimiter(a.logger)

		return memCache, memRateLimit
	}

	a.logger.Info("Redis connected successfully")

	redisCfg := cache.Config{
		Addr:         a.cfg.Redis.Addr,
		Password:     a.cfg.Redis.Password,
		DB:           a.cfg.Redis.DB,
		PoolSize:     a.cfg.Redis.PoolSize,
		MinIdleConns: a.cfg.Redis.MinIdleConns,
		MaxRetries:   a.cfg.Redis.MaxRetries,
		DialTimeout:  a.cfg.Redis.DialTimeout,
		ReadTimeout:  a.cfg.Redis.ReadTimeout,
		WriteTimeout: a.cfg.Redis.WriteTimeout,
	}

	cacheService, _ := cache.NewRedisCache(redisCfg, a.logger)
	rateLimitService := ratelimit.NewRedisRateLimiter(redisClient, a.logger)

	return cacheService, rateLimitService
}

// initAggregateClient creates the weather aggregation client with circuit
// breaker protection.
func (a *App) initAggregateClient(httpClient *http.Client) ports.AggregateClient {
	client := climate.NewClient(a.cfg.External.ClimateBaseURL, httpClient, a.logger)

	return &breakerAggregateClient{
		client: client,
		cb: a.cbManager.GetBreaker("climate-api", circuitbreaker.Config{
			MaxRequests: 3,
			Interval:    10 * time.Second,
			Timeout:     30 * time.Second,
		}),
		telemetry: a.telemetry,
	}
}

// initLocator creates the GeoIP locator with circuit breaker protection.
func (a *App) initLocator(httpClient *http.Client) ports.Locator {
	client := geoip.NewClient(a.cfg.External.GeoIPBaseURL, httpClient, a.logger)

	return &breakerLocator{
		client: client,
		cb: a.cbManager.GetBreaker("geoip-api", circuitbreaker.Config{
			MaxRequests: 3,
			Interval:    10 * time.Second,
			Timeout:     30 * time.Second,
		}),
		telemetry: a.telemetry,
	}
}

// initAdvisor creates the recommendation client with circuit breaker
// protection.
func (a *App) initAdvisor(httpClient *http.Client) ports.Advisor {
	client := advisor.NewClient(a.cfg.External.AdvisorBaseURL, httpClient, a.logger)

	return &breakerAdvisor{
		client: client,
		cb: a.cbManager.GetBreaker("advisor-api", circuitbreaker.Config{
			MaxRequests: 3,
			Interval:    10 * time.Second,
			Timeout:     60 * time.Second,
		}),
		telemetry: a.telemetry,
	}
}

// setupRouter creates and configures the HTTP router with all middleware.
func (a *App) setupRouter(
	dashboardHandler *rest.DashboardHandler,
	rateLimitMiddleware *middleware.RateLimitMiddleware,
	telemetry *observability.Telemetry,
) http.Handler {
	router := mux.NewRouter()

	// Health check endpoints
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods("GET")

	router.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods("GET")

	router.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods("GET")

	// Version endpoint
	router.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(version.Get()); err != nil {
			a.logger.Error("failed to encode version info", zap.Error(err))
		}
	}).Methods("GET")

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Circuit breaker statistics
	router.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(a.cbManager.GetStats()); err != nil {
			a.logger.Error("failed to encode breaker stats", zap.Error(err))
		}
	}).Methods("GET")

	// Apply observability middleware if telemetry is available
	if telemetry != nil {
		obsMiddleware := middleware.NewObservabilityMiddleware(telemetry, a.logger)
		router.Use(obsMiddleware.TracingMiddleware)
		router.Use(obsMiddleware.MetricsMiddleware)
		router.Use(obsMiddleware.LoggingMiddleware)
	}

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()

	if rateLimitMiddleware != nil {
		api.Use(rateLimitMiddleware.Handler)
	}

	// Dashboard endpoints
	api.HandleFunc("/weather/search", dashboardHandler.Search).Methods("GET")
	api.HandleFunc("/weather/locate", dashboardHandler.Locate).Methods("GET")
	api.HandleFunc("/weather/point", dashboardHandler.Point).Methods("GET")
	api.HandleFunc("/weather/state", dashboardHandler.State).Methods("GET")
	api.HandleFunc("/weather/retry", dashboardHandler.Retry).Methods("POST")
	api.HandleFunc("/recommendations", dashboardHandler.Recommend).Methods("POST")

	return router
}
