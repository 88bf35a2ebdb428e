package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/PrithiviPM2580/ltg-intern-management-system/internal/auth"
	"github.com/PrithiviPM2580/ltg-intern-management-system/internal/config"
	"github.com/PrithiviPM2580/ltg-intern-management-system/internal/event"
	handler "github.com/PrithiviPM2580/ltg-intern-management-system/internal/handler/http"
	"github.com/PrithiviPM2580/ltg-intern-management-system/internal/repository/postgres"
	"github.com/PrithiviPM2580/ltg-intern-management-system/internal/service"
	"github.com/PrithiviPM2580/ltg-intern-management-system/internal/worker"
	"github.com/PrithiviPM2580/ltg-intern-management-system/migrations"
	"github.com/PrithiviPM2580/ltg-intern-management-system/pkg/database"
	"github.com/PrithiviPM2580/ltg-intern-management-system/pkg/health"
	pkgkafka "github.com/PrithiviPM2580/ltg-intern-management-system/pkg/kafka"
	"github.com/PrithiviPM2580/ltg-intern-management-system/pkg/middleware"
	"github.com/PrithiviPM2580/ltg-intern-management-system/pkg/ratelimit"
	"github.com/PrithiviPM2580/ltg-intern-management-system/pkg/tracing"
)

const serviceName = "intern"

// App wires together all dependencies and runs the intern service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	db             *database.Connector
	redis          *redis.Client
	producer       *pkgkafka.Producer
	scheduler      *worker.Scheduler
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
	closers        []io.Closer
}

// NewApp creates a new application instance, initializing all dependencies.
// On failure every component opened so far is released.
func NewApp(cfg *config.Config, logger *slog.Logger) (_ *App, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			a.release()
		}
	}()

	// Initialize OpenTelemetry tracing.
	a.tracerShutdown, err = tracing.InitTracer(ctx, cfg.Tracing())
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// PostgreSQL.
	a.db = database.NewConnector(cfg.Postgres(), logger)
	if err = a.db.Connect(ctx); err != nil {
		return nil, err
	}
	db, err := a.db.DB()
	if err != nil {
		return nil, err
	}
	if pool, ok := a.db.PgxPool(); ok {
		if err = database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool, serviceName); err != nil {
			return nil, fmt.Errorf("register pool metrics: %w", err)
		}
	}

	if cfg.MigrationsOnStartup {
		if err = database.RunMigrations(ctx, db, migrations.FS, logger); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	if cfg.SlowQueryThreshold > 0 {
		database.SetSlowQueryLogging(cfg.SlowQueryThreshold, logger)
	}

	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("postgres", a.db.Ping)

	// Rate limiters: shared through Redis when enabled, per-process otherwise.
	policies := cfg.RateLimitPolicies()
	var authLimiter, adminLimiter ratelimit.Limiter
	if cfg.RedisEnabled {
		a.redis, err = database.NewRedisClient(ctx, cfg.Redis())
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		logger.Info("connected to redis", slog.String("addr", cfg.Redis().Addr()))
		healthHandler.RegisterNonCritical("redis", func(ctx context.Context) error {
			return a.redis.Ping(ctx).Err()
		})

		prefix := cfg.AppName + ":ratelimit"
		authLimiter = ratelimit.NewRedisLimiter(a.redis, prefix, policies[config.BucketAuth])
		adminLimiter = ratelimit.NewRedisLimiter(a.redis, prefix, policies[config.BucketAdmin])
	} else {
		authMem := ratelimit.NewMemoryLimiter(policies[config.BucketAuth])
		adminMem := ratelimit.NewMemoryLimiter(policies[config.BucketAdmin])
		a.closers = append(a.closers, closerFunc(authMem.Close), closerFunc(adminMem.Close))
		authLimiter, adminLimiter = authMem, adminMem
		logger.Warn("redis disabled, using in-memory rate limiting")
	}

	// Domain events.
	var publisher event.Publisher = event.NopPublisher{}
	if cfg.KafkaEnabled {
		a.producer = pkgkafka.NewProducer(cfg.Kafka(), logger)
		publisher = a.producer
		healthHandler.RegisterNonCritical("kafka", a.producer.Ping)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}
	events := event.NewProducer(publisher, logger)

	// Build the dependency graph.
	jwtManager := auth.NewJWTManager(cfg.JWT())
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	internRepo := postgres.NewInternRepository(db)
	tokenRepo := postgres.NewRefreshTokenRepository(db)

	authService := service.NewAuthService(internRepo, tokenRepo, jwtManager, hasher, events, service.AuthConfig{
		AdminEmails:   cfg.AdminEmails,
		SingleSession: cfg.SingleSession,
	}, logger)
	internService := service.NewInternService(internRepo, hasher, events, logger)

	// Background jobs.
	a.scheduler = worker.NewScheduler(logger)
	if err = a.scheduler.Add("refresh-token-purge", cfg.TokenPurgeSchedule, worker.NewPurgeJob(tokenRepo, logger)); err != nil {
		return nil, err
	}

	// HTTP router.
	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.CORSAllowedOrigins
	cors.Environment = cfg.Environment

	router := handler.NewRouter(handler.Services{
		Auth:    authService,
		Interns: internService,
		Verify:  handler.NewTokenVerifier(jwtManager),
		Health:  healthHandler,
	}, handler.RouterConfig{
		Info: handler.AppInfo{
			Name:        cfg.AppName,
			Version:     cfg.AppVersion,
			Environment: cfg.Environment,
		},
		ServiceName:       serviceName,
		CORS:              cors,
		SecureCookies:     cfg.SecureCookies(),
		TrustProxy:        cfg.TrustProxy,
		PprofEnabled:      cfg.PprofEnabled,
		PprofAllowedCIDRs: cfg.PprofAllowedCIDRs,
		AuthLimiter:       authLimiter,
		AdminLimiter:      adminLimiter,
	}, logger)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	return a, nil
}

// Run starts the HTTP server and the scheduler and blocks until the context
// is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	a.scheduler.Start()

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
			slog.String("environment", a.cfg.Environment),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case runErr = <-errCh:
	}

	return errors.Join(runErr, a.Shutdown())
}

// Shutdown gracefully stops all components in the correct order:
// 1. HTTP server (drain in-flight requests)
// 2. Scheduler (wait for a running purge)
// 3. Tracer (flush pending spans from drained requests)
// 4. Kafka producer, Redis and in-memory limiters
// 5. PostgreSQL pool
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	var errs []error

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := a.scheduler.Stop(ctx); err != nil {
		a.logger.Error("scheduler shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := a.release(); err != nil {
		errs = append(errs, err)
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

// release closes everything except the HTTP server and scheduler. It tolerates
// partially constructed apps.
func (a *App) release() error {
	var errs []error

	if a.tracerShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := a.tracerShutdown(ctx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	for _, c := range a.closers {
		_ = c.Close()
	}

	if a.db != nil {
		a.db.Close()
	}
	return errors.Join(errs...)
}

type closerFunc func()

func (f closerFunc) Close() error {
	f()
	return nil
}
