// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/templates/resource-directory/internal/admin"
	"github.com/carterperez-dev/templates/resource-directory/internal/auth"
	"github.com/carterperez-dev/templates/resource-directory/internal/catalog"
	"github.com/carterperez-dev/templates/resource-directory/internal/config"
	"github.com/carterperez-dev/templates/resource-directory/internal/core"
	"github.com/carterperez-dev/templates/resource-directory/internal/health"
	"github.com/carterperez-dev/templates/resource-directory/internal/middleware"
	"github.com/carterperez-dev/templates/resource-directory/internal/palette"
	"github.com/carterperez-dev/templates/resource-directory/internal/review"
	"github.com/carterperez-dev/templates/resource-directory/internal/server"
	"github.com/carterperez-dev/templates/resource-directory/internal/session"
	"github.com/carterperez-dev/templates/resource-directory/internal/user"
)

const (
	drainDelay = 5 * time.Second

	reviewWritesPerHour = 120
	reviewWriteBurst    = 20
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	generateKeys := flag.Bool("generate-keys", false, "write a new ES256 key pair and exit")
	flag.Parse()

	if err := run(*configPath, *generateKeys); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string, generateKeys bool) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if generateKeys {
		return auth.GenerateKeyPair(cfg.JWT.PrivateKeyPath, cfg.JWT.PublicKeyPath)
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "ES256",
		"key_id", jwtManager.GetKeyID(),
	)

	userRepo := user.NewRepository(db.DB)
	userSvc := user.NewService(userRepo)
	userHandler := user.NewHandler(userSvc)

	authSvc := auth.NewService(jwtManager, userSvc, auth.NewRedisBlacklist(redis.Client))
	authHandler := auth.NewHandler(authSvc)

	sessionCfg := session.Config{
		IdleTTL:         cfg.Sessions.IdleTTL,
		CleanupInterval: cfg.Sessions.CleanupInterval,
		MaxPerOwner:     cfg.Sessions.MaxPerOwner,
	}

	catalogRepo := catalog.NewRepository(db.DB)
	catalogHandler := catalog.NewHandler(catalogRepo)

	var catalogSource catalog.Source = catalogRepo
	if cfg.Catalog.Source == config.CatalogSourceFile {
		catalogSource = catalog.NewFileSource(cfg.Catalog.FilePath)
	}
	logger.Info("resource directory source",
		"source", cfg.Catalog.Source,
	)

	paletteSessions := session.NewStore[*palette.Session](sessionCfg)
	paletteSessions.Start(ctx)
	paletteSvc := palette.NewService(catalogSource, userSvc, paletteSessions)
	paletteHandler := palette.NewHandler(paletteSvc)

	reviewRepo := review.NewRepository(db.DB)
	breaker := review.NewBreakerWriter(reviewRepo, review.BreakerConfig{
		MaxRequests:         cfg.Reviews.Breaker.MaxRequests,
		Interval:            cfg.Reviews.Breaker.Interval,
		Timeout:             cfg.Reviews.Breaker.Timeout,
		ConsecutiveFailures: cfg.Reviews.Breaker.ConsecutiveFailures,
	})

	var votes review.HelpfulWriter = breaker
	if cfg.Reviews.VoteDedup.Enabled {
		votes = review.NewVoteGuard(
			review.NewRedisKeys(redis.Client),
			breaker,
			cfg.Reviews.VoteDedup.TTL,
		)
	}

	reviewSessions := session.NewStore[*review.ViewSession](sessionCfg)
	reviewSessions.Start(ctx)
	reviewSvc := review.NewService(reviewRepo, votes, reviewSessions, review.Limits{
		Default: cfg.Reviews.DefaultLimit,
		Max:     cfg.Reviews.MaxLimit,
	})
	reviewHandler := review.NewHandler(reviewSvc)

	sessionCounters := map[string]func() int{
		"palette": paletteSvc.OpenSessions,
		"review":  reviewSvc.OpenSessions,
	}
	for kind, count := range sessionCounters {
		if err := core.RegisterSessionGauge(kind, count); err != nil {
			return err
		}
	}

	healthHandler := health.NewHandler(db, redis)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:      db.Stats,
		RedisStats:   redis.PoolStats,
		DBPing:       db.Ping,
		RedisPing:    redis.Ping,
		Sessions:     sessionCounters,
		BreakerState: breaker.State,
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	limiter := middleware.NewLimiter(redis.Client)

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(middleware.RateLimit(limiter, middleware.RateLimitConfig{
		Limit: middleware.PerMinute(
			cfg.RateLimit.Requests,
			cfg.RateLimit.Burst,
		),
	}))
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	router.Get("/.well-known/jwks.json", jwtManager.GetJWKSHandler())
	router.Handle("/metrics", core.MetricsHandler())

	planLimiter := middleware.PlanRateLimit(limiter, middleware.DefaultPlanLimits)
	authenticator := func(next http.Handler) http.Handler {
		return middleware.Authenticator(authSvc)(planLimiter(next))
	}
	adminOnly := middleware.RequireAdmin

	reviewWrites := middleware.RateLimit(limiter, middleware.RateLimitConfig{
		Limit:   middleware.PerHour(reviewWritesPerHour, reviewWriteBurst),
		KeyFunc: middleware.KeyByUserAndEndpoint,
		Skip: func(r *http.Request) bool {
			return r.Method == http.MethodGet
		},
	})
	reviewAuth := func(next http.Handler) http.Handler {
		return authenticator(reviewWrites(next))
	}

	router.Route("/v1", func(r chi.Router) {
		authHandler.RegisterRoutes(r, authenticator)

		userHandler.RegisterRoutes(r, authenticator)
		paletteHandler.RegisterRoutes(r, authenticator)
		reviewHandler.RegisterRoutes(r, reviewAuth)

		userHandler.RegisterAdminRoutes(r, authenticator, adminOnly)
		catalogHandler.RegisterAdminRoutes(r, authenticator, adminOnly)
		reviewHandler.RegisterAdminRoutes(r, authenticator, adminOnly)
		adminHandler.RegisterRoutes(r, authenticator, adminOnly)
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
