package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/farewise/fare-compare/internal/compare"
	"github.com/farewise/fare-compare/internal/location"
	"github.com/farewise/fare-compare/internal/providers"
	"github.com/farewise/fare-compare/internal/providers/uberauth"
	"github.com/farewise/fare-compare/internal/routing"
	"github.com/farewise/fare-compare/pkg/cache"
	"github.com/farewise/fare-compare/pkg/common"
	"github.com/farewise/fare-compare/pkg/config"
	"github.com/farewise/fare-compare/pkg/database"
	"github.com/farewise/fare-compare/pkg/errors"
	"github.com/farewise/fare-compare/pkg/logger"
	"github.com/farewise/fare-compare/pkg/middleware"
	redisclient "github.com/farewise/fare-compare/pkg/redis"
	"github.com/farewise/fare-compare/pkg/resilience"
)

const (
	serviceName = "fare-compare"
	version     = "1.0.0"
)

func main() {
	cfg, err := config.Load(serviceName)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	if err := logger.Init(cfg.Server.Environment); err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	logger.Info("Starting fare comparison service",
		zap.String("service", serviceName),
		zap.String("version", version),
		zap.String("environment", cfg.Server.Environment),
	)

	if err := errors.InitSentry(os.Getenv("SENTRY_DSN"), serviceName, version, cfg.Server.Environment); err != nil {
		logger.Warn("Failed to initialize Sentry, continuing without error tracking", zap.Error(err))
	} else {
		defer errors.Flush()
	}

	// PostgreSQL is optional: without it comparisons still work, only the
	// search history endpoints are disabled.
	var repo compare.RepositoryInterface
	var db *pgxpool.Pool
	if cfg.Database.Enabled {
		db, err = database.NewPostgresPool(context.Background(), &cfg.Database)
		if err != nil {
			logger.Warn("Database unavailable, search history disabled", zap.Error(err))
		} else {
			defer db.Close()
			if err := database.RunMigrations(&cfg.Database, "migrations"); err != nil {
				logger.Warn("Failed to run migrations", zap.Error(err))
			}
			repo = compare.NewRepository(db)
			logger.Info("Connected to database")
		}
	}

	// Redis is optional too: geocode results just stop being cached.
	var redisClient *redisclient.Client
	if cfg.Redis.Enabled {
		redisClient, err = redisclient.NewClient(&cfg.Redis)
		if err != nil {
			logger.Warn("Redis unavailable, geocode caching disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			logger.Info("Connected to redis")
		}
	}
	cacheManager := cache.NewManager(redisClient)

	requestTimeout := time.Duration(cfg.Server.RequestTimeout) * time.Second
	upstreamTimeout := requestTimeout / 2

	mapsBreaker := resilience.NewCircuitBreaker("google-maps", resilience.Settings{TimeoutSeconds: 30})
	uberBreaker := resilience.NewCircuitBreaker("uber", resilience.Settings{TimeoutSeconds: 30})
	olaBreaker := resilience.NewCircuitBreaker("ola", resilience.Settings{TimeoutSeconds: 30})
	rapidoBreaker := resilience.NewCircuitBreaker("rapido", resilience.Settings{TimeoutSeconds: 30})

	locations := location.NewService(&cfg.GoogleMaps, upstreamTimeout, cacheManager, mapsBreaker)
	routes := routing.NewService(&cfg.GoogleMaps, upstreamTimeout, mapsBreaker)
	tokens := uberauth.NewManager(&cfg.Uber, upstreamTimeout)

	clients := []providers.Client{
		providers.NewUberClient(&cfg.Uber, tokens, upstreamTimeout, uberBreaker),
		providers.NewOlaClient(&cfg.Ola, upstreamTimeout, olaBreaker),
		providers.NewRapidoClient(&cfg.Rapido, upstreamTimeout, rapidoBreaker),
	}

	service := compare.NewService(locations, routes, clients, repo)
	handler := compare.NewHandler(service, tokens)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.Sentry())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestTimeout(requestTimeout))
	router.Use(middleware.RequestLogger(serviceName))
	router.Use(middleware.CORS())
	router.Use(middleware.Metrics(serviceName))

	router.GET("/healthz", common.HealthCheck(serviceName, version))

	healthChecks := make(map[string]func() error)
	if db != nil {
		healthChecks["database"] = func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return db.Ping(ctx)
		}
	}
	if redisClient != nil {
		healthChecks["redis"] = func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return redisClient.Ping(ctx).Err()
		}
	}
	router.GET("/health/ready", common.ReadinessProbe(serviceName, version, healthChecks))

	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": serviceName,
			"version": version,
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	handler.RegisterRoutes(api, cfg.JWT.Secret)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("Server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server stopped")
}
