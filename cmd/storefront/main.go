package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/velora/storefront/pkg/api"
	"github.com/velora/storefront/pkg/auth"
	"github.com/velora/storefront/pkg/config"
	"github.com/velora/storefront/pkg/middleware"
	"github.com/velora/storefront/pkg/observability"
	"github.com/velora/storefront/pkg/storage"
	"github.com/velora/storefront/pkg/storage/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := observability.NewLogger(cfg.LogLevel, os.Stdout)
	metrics := observability.NewMetrics(nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Stores: PostgreSQL when configured, otherwise in-memory for development
	var (
		users    auth.UserStore
		products storage.ProductStore
		closeDB  func() error
	)
	if cfg.Storage.PostgresURL != "" {
		dbCfg := postgres.DefaultConfig(cfg.Storage.PostgresURL)
		dbCfg.MaxConns = cfg.Storage.PostgresMaxConns
		db, err := postgres.Open(dbCfg)
		if err != nil {
			logger.WithError(err).Error("failed to connect to postgres")
			os.Exit(1)
		}
		users = postgres.NewUserStore(db)
		products = postgres.NewProductStore(db)
		closeDB = db.Close
		logger.Info("using postgres storage")
	} else {
		users = storage.NewMemoryUserStore()
		products = storage.NewMemoryProductStore()
		logger.Warn("using in-memory storage, data will not survive restarts")
	}

	limits := middleware.Limits{
		General: middleware.ClassLimit{MaxRequests: cfg.RateLimit.GeneralMax, Window: cfg.RateLimit.GeneralWindow},
		Auth:    middleware.ClassLimit{MaxRequests: cfg.RateLimit.AuthMax, Window: cfg.RateLimit.AuthWindow},
		API:     middleware.ClassLimit{MaxRequests: cfg.RateLimit.APIMax, Window: cfg.RateLimit.APIWindow},
	}

	// Rate limiter: Redis when configured so counters are shared across
	// instances, otherwise in-process fixed windows
	var (
		limiter    middleware.Limiter
		closeRedis func() error
	)
	if cfg.Storage.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.Storage.RedisURL)
		if err != nil {
			logger.WithError(err).Error("invalid redis URL")
			os.Exit(1)
		}
		client := redis.NewClient(redisOpts)
		if err := client.Ping(ctx).Err(); err != nil {
			logger.WithError(err).Error("failed to connect to redis")
			os.Exit(1)
		}
		limiter = middleware.NewRedisLimiter(client, limits, "")
		closeRedis = client.Close
		logger.Info("using redis rate limiting")
	} else {
		inProcess := middleware.NewFixedWindowLimiter(limits)
		inProcess.StartCleanup(ctx, 5*time.Minute)
		limiter = inProcess
		logger.Info("using in-process rate limiting")
	}

	tokens, err := auth.NewTokenService(auth.TokenConfig{
		AccessSecret:  cfg.Auth.AccessSecret,
		AccessTTL:     cfg.Auth.AccessTTL,
		RefreshSecret: cfg.Auth.RefreshSecret,
		RefreshTTL:    cfg.Auth.RefreshTTL,
	})
	if err != nil {
		logger.WithError(err).Error("failed to configure token service")
		os.Exit(1)
	}

	hasher := auth.NewPasswordHasher(cfg.Auth.HashCost)
	authService := auth.NewService(users, hasher, tokens, logger)
	authenticator := middleware.NewAuthenticator(tokens, users, cfg.Auth.LookupTimeout, logger, metrics)
	rateLimit := middleware.NewRateLimitMiddleware(limiter, logger, metrics, cfg.Storage.RateLimitFailOpen)

	server := api.NewServer(api.Options{
		AuthService:   authService,
		Authenticator: authenticator,
		RateLimit:     rateLimit,
		Products:      products,
		Logger:        logger,
		Metrics:       metrics,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      server,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := observability.NewShutdownManager(logger, httpServer, cfg.Server.ShutdownTimeout)
	shutdown.RegisterShutdownFunc(func(context.Context) error {
		cancel()
		if closeRedis != nil {
			return closeRedis()
		}
		return nil
	})
	if closeDB != nil {
		shutdown.RegisterShutdownFunc(func(context.Context) error { return closeDB() })
	}

	go func() {
		logger.WithFields(map[string]interface{}{
			"addr":        httpServer.Addr,
			"environment": cfg.Environment,
		}).Info("starting storefront server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("HTTP server failed")
			os.Exit(1)
		}
	}()

	if err := shutdown.WaitForShutdown(); err != nil {
		logger.WithError(err).Error("shutdown finished with errors")
		os.Exit(1)
	}
}
