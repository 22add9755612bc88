package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	httpAdapter "github.com/kronos-hms/os-tracker-backend/internal/adapters/primary/http"
	mw "github.com/kronos-hms/os-tracker-backend/internal/adapters/primary/http/middleware"
	"github.com/kronos-hms/os-tracker-backend/internal/adapters/secondary/postgres"
	"github.com/kronos-hms/os-tracker-backend/internal/adapters/secondary/rediscache"
	"github.com/kronos-hms/os-tracker-backend/internal/adapters/secondary/sqlite"
	"github.com/kronos-hms/os-tracker-backend/internal/auth"
	"github.com/kronos-hms/os-tracker-backend/internal/config"
	"github.com/kronos-hms/os-tracker-backend/internal/core/ports"
	"github.com/kronos-hms/os-tracker-backend/internal/core/services"
	"github.com/kronos-hms/os-tracker-backend/internal/infrastructure/logging"
)

const migrationsURL = "file://migrations"

// Credentials for the development seed account. Sites that enable seeding are
// expected to change the password on first login.
const (
	seedUserEmail    = "recepcao@hospital.local"
	seedUserPassword = "mudar123"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(logging.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Output:      os.Stdout,
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Environment,
	})

	logger.Info("starting service",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
		"storage_driver", cfg.Storage.Driver,
	)

	ctx := context.Background()

	// Storage (secondary adapters). The repositories behind the ports decide
	// nothing about lifecycle semantics; both drivers behave identically.
	var (
		orderRepo   ports.OrderRepository
		userRepo    ports.UserRepository
		healthStore httpAdapter.HealthChecker
	)

	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		if err := postgres.RunMigrations(migrationsURL, cfg.Storage.DatabaseURL); err != nil {
			logger.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}

		poolConfig, err := pgxpool.ParseConfig(cfg.Storage.DatabaseURL)
		if err != nil {
			logger.Error("failed to parse database URL", "error", err)
			os.Exit(1)
		}
		poolConfig.MaxConns = int32(cfg.Storage.MaxOpenConns)
		poolConfig.MinConns = int32(cfg.Storage.MinIdleConns)
		poolConfig.MaxConnLifetime = cfg.Storage.ConnMaxLifetime
		poolConfig.MaxConnIdleTime = cfg.Storage.ConnMaxIdleTime

		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := pool.Ping(ctx); err != nil {
			logger.Error("database ping failed", "error", err)
			os.Exit(1)
		}
		logger.Info("postgres connection established")

		orderRepo = postgres.NewOrderRepository(pool)
		userRepo = postgres.NewUserRepository(pool)
		healthStore = pool

	case config.DriverSQLite:
		store, err := sqlite.Open(ctx, cfg.Storage.SQLitePath)
		if err != nil {
			logger.Error("failed to open sqlite database", "error", err)
			os.Exit(1)
		}
		defer store.Close()
		logger.Info("sqlite database ready", "path", cfg.Storage.SQLitePath)

		if cfg.Storage.SeedDefaultUser {
			id, err := store.SeedDefaultUser(ctx, seedUserEmail, seedUserPassword)
			if err != nil {
				logger.Error("failed to seed default user", "error", err)
				os.Exit(1)
			}
			logger.Info("default user available", "user_id", id)
		}

		orderRepo = sqlite.NewOrderRepository(store.DB())
		userRepo = sqlite.NewUserRepository(store.DB())
		healthStore = store

	default:
		logger.Error("unknown storage driver", "driver", cfg.Storage.Driver)
		os.Exit(1)
	}

	// Optional report cache.
	var reportCache ports.ReportCache
	if cfg.ReportCache.Enabled {
		cache := rediscache.New(rediscache.Config{
			Addr:     cfg.ReportCache.RedisAddr,
			Password: cfg.ReportCache.RedisPassword,
			DB:       cfg.ReportCache.RedisDB,
		}, logger)
		defer cache.Close()
		reportCache = cache
	}

	tokenManager := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTokenTTL)

	var generalRateLimiter, authRateLimiter *mw.RateLimiter
	if cfg.RateLimit.Enabled {
		generalRateLimiter = mw.NewRateLimiter(mw.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			BurstSize:         cfg.RateLimit.BurstSize,
			CleanupInterval:   time.Minute,
			TTL:               3 * time.Minute,
		})

		authRateLimiter = mw.NewRateLimiter(mw.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.AuthRPS,
			BurstSize:         cfg.RateLimit.AuthBurst,
			CleanupInterval:   time.Minute,
			TTL:               5 * time.Minute,
		})
	}

	errorHandler := httpAdapter.NewErrorHandler(logger)

	// Services (core).
	authService := services.NewAuthService(userRepo)
	orderService := services.NewOrderService(orderRepo, cfg.Orders.FallbackRequesterID)
	reportService := services.NewReportService(orderRepo, reportCache, cfg.ReportCache.TTL)

	// Handlers (primary adapters).
	authHandler := httpAdapter.NewAuthHandler(authService, tokenManager, errorHandler, logger)
	orderHandler := httpAdapter.NewOrderHandler(orderService, errorHandler, logger)
	reportHandler := httpAdapter.NewReportHandler(reportService, errorHandler, logger)
	healthHandler := httpAdapter.NewHealthHandler(healthStore, cfg.App.Version)

	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.RequestLogger(logger))
	r.Use(mw.RecoveryLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if generalRateLimiter != nil {
		r.Use(generalRateLimiter.Middleware)
	}

	r.Get("/health", healthHandler.HandleHealth)
	r.Get("/health/live", healthHandler.HandleLiveness)
	r.Get("/health/ready", healthHandler.HandleReadiness)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if authRateLimiter != nil {
				r.Use(authRateLimiter.Middleware)
			}
			r.Route("/usuarios", authHandler.RegisterRoutes)
		})

		r.Group(func(r chi.Router) {
			r.Use(mw.JWTMiddleware(tokenManager))
			r.Route("/os", orderHandler.RegisterRoutes)
			r.Route("/relatorios", reportHandler.RegisterRoutes)
		})
	})

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutdown signal received", "signal", sig.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server shutdown complete")
}
