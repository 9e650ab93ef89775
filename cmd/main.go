package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/gurbetbiz/account-service/config"
	database "github.com/gurbetbiz/account-service/internal/core"
	"github.com/gurbetbiz/account-service/internal/core/domain"
	"github.com/gurbetbiz/account-service/internal/core/repository/memory"
	"github.com/gurbetbiz/account-service/internal/core/repository/psql"
	logicv1 "github.com/gurbetbiz/account-service/internal/logic/v1"
	webv1 "github.com/gurbetbiz/account-service/internal/web/v1"
	"github.com/gurbetbiz/account-service/middleware"
)

type repositories struct {
	accounts   domain.AccountRepository
	passengers domain.PassengerRepository
	addresses  domain.AddressRepository
	close      func()
}

// openRepositories connects to PostgreSQL, applying migrations first when
// enabled. Without DB_HOST (development only) it falls back to memory.
func openRepositories(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*repositories, error) {
	if cfg.Database.Host == "" {
		logger.Warn("DB_HOST not set, using in-memory store (data is lost on restart)")
		store := memory.NewStore()
		return &repositories{
			accounts:   store.Accounts(),
			passengers: store.Passengers(),
			addresses:  store.Addresses(),
			close:      func() {},
		}, nil
	}

	if cfg.Database.Migrate {
		if err := database.Migrate(cfg.Database.BuildDSN(), logger); err != nil {
			return nil, err
		}
	}

	pool, err := database.Connect(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}
	logger.Info("Database connection pool established",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.Name),
	)

	return &repositories{
		accounts:   psql.NewAccountRepository(pool),
		passengers: psql.NewPassengerRepository(pool),
		addresses:  psql.NewAddressRepository(pool),
		close:      pool.Close,
	}, nil
}

func newIdentityResolver(cfg *config.Config) middleware.IdentityResolver {
	if cfg.Auth.Mode == config.AuthModeRemote {
		return middleware.NewAuthClient(cfg.Auth.ServiceURL)
	}
	return middleware.NewJWTResolver(cfg.Auth.JWTSecret)
}

// newRedisClient returns nil when rate limiting is not configured. An
// unreachable Redis is logged and kept: the limiter fails open.
func newRedisClient(ctx context.Context, cfg *config.Config, logger *zap.Logger) *redis.Client {
	if cfg.RateLimit.RedisAddr == "" {
		logger.Info("Rate limiting disabled (REDIS_ADDR not set)")
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RateLimit.RedisAddr,
		Password: cfg.RateLimit.RedisPassword,
		DB:       cfg.RateLimit.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warn("Redis unreachable, rate limiter will fail open", zap.Error(err))
	} else {
		logger.Info("Rate limiting enabled",
			zap.String("redis_addr", cfg.RateLimit.RedisAddr),
			zap.Int("max", cfg.RateLimit.Max),
			zap.Duration("window", cfg.RateLimit.Window),
		)
	}
	return rdb
}

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		panic("Configuration validation failed: " + err.Error())
	}

	logger, err := middleware.NewLogger(cfg.Logging)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	logger.Info("Service starting",
		zap.String("service", cfg.Service.Name),
		zap.String("version", cfg.Service.Version),
		zap.String("env", cfg.Service.Env),
		zap.String("port", cfg.Service.Port),
	)

	if _, err := middleware.InitTracing(cfg); err != nil {
		if errors.Is(err, middleware.ErrTracingDisabled) {
			logger.Info("Tracing disabled (TRACING_ENABLED=false)")
		} else {
			logger.Warn("Failed to initialize tracing", zap.Error(err))
		}
	} else {
		logger.Info("Tracing initialized",
			zap.String("endpoint", cfg.Tracing.Endpoint),
			zap.Float64("sample_rate", cfg.Tracing.SampleRate),
		)
	}

	if err := middleware.InitProfiling(cfg); err != nil {
		if errors.Is(err, middleware.ErrProfilingDisabled) {
			logger.Info("Profiling disabled (PROFILING_ENABLED=false)")
		} else {
			logger.Warn("Failed to initialize profiling", zap.Error(err))
		}
	} else {
		logger.Info("Profiling initialized", zap.String("endpoint", cfg.Profiling.Endpoint))
		defer middleware.StopProfiling()
	}

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	repos, err := openRepositories(startupCtx, cfg, logger)
	if err != nil {
		cancelStartup()
		logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	rdb := newRedisClient(startupCtx, cfg, logger)
	cancelStartup()

	validator := logicv1.NewRecordValidator()
	guard := logicv1.NewOwnershipGuard(repos.accounts, logger)
	handler := webv1.NewHandler(
		logicv1.NewAccountService(repos.accounts, guard, validator),
		logicv1.NewPassengerService(repos.passengers, guard, validator),
		logicv1.NewAddressService(repos.addresses, guard, validator),
	)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	var isShuttingDown atomic.Bool

	// Tracing first so the logger picks up the span's trace id.
	r.Use(middleware.TracingMiddleware())
	r.Use(middleware.LoggingMiddleware(logger))
	if cfg.Metrics.Enabled {
		r.Use(middleware.PrometheusMiddleware())
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", middleware.TraceIDHeader, middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 503 once shutdown has started, so traffic drains before the server stops.
	r.GET("/ready", func(c *gin.Context) {
		if isShuttingDown.Load() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "shutting_down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	webv1.RegisterRoutes(r, handler,
		middleware.AuthMiddleware(newIdentityResolver(cfg), logger),
		middleware.RateLimit(rdb, cfg.RateLimit.Max, cfg.RateLimit.Window, middleware.KeyByIdentity()),
	)
	logger.Info("Auth configured", zap.String("mode", cfg.Auth.Mode))

	srv := &http.Server{
		Addr:              ":" + cfg.Service.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting account service", zap.String("port", cfg.Service.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	<-ctx.Done()
	logger.Info("Shutdown signal received")

	isShuttingDown.Store(true)
	if drainDelay := cfg.GetReadinessDrainDelayDuration(); drainDelay > 0 {
		logger.Info("Readiness drain delay started", zap.Duration("delay", drainDelay))
		time.Sleep(drainDelay)
	}

	shutdownTimeout := cfg.GetShutdownTimeoutDuration()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logger.Info("Shutting down server...", zap.Duration("timeout", shutdownTimeout))

	// HTTP server, then storage and Redis, then the tracer.
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		logger.Info("HTTP server shutdown complete")
	}

	repos.close()
	logger.Info("Storage closed")

	if rdb != nil {
		if err := rdb.Close(); err != nil {
			logger.Error("Redis client close error", zap.Error(err))
		}
	}

	if err := middleware.Shutdown(shutdownCtx); err != nil {
		logger.Error("Tracer shutdown error", zap.Error(err))
	} else {
		logger.Info("Tracer shutdown complete")
	}

	logger.Info("Graceful shutdown complete")
}
