package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/bert0h-dev/menvitta-backend/internal/core/port"
	"github.com/bert0h-dev/menvitta-backend/internal/infra/config"
	"github.com/bert0h-dev/menvitta-backend/internal/infra/database"
	"github.com/bert0h-dev/menvitta-backend/internal/infra/i18n"
	kafkainfra "github.com/bert0h-dev/menvitta-backend/internal/infra/kafka"
	"github.com/bert0h-dev/menvitta-backend/internal/infra/logger"
	redisinfra "github.com/bert0h-dev/menvitta-backend/internal/infra/redis"
	"github.com/bert0h-dev/menvitta-backend/internal/infra/security"
	"github.com/bert0h-dev/menvitta-backend/internal/infra/telemetry"
	postgresrepo "github.com/bert0h-dev/menvitta-backend/internal/repository/postgres"
	redisrepo "github.com/bert0h-dev/menvitta-backend/internal/repository/redis"
	"github.com/bert0h-dev/menvitta-backend/internal/transport/http/middleware"
	"github.com/bert0h-dev/menvitta-backend/internal/transport/http/routes"
	"github.com/bert0h-dev/menvitta-backend/internal/usecase"
)

// Application owns the wired service graph and its lifecycle.
type Application struct {
	cfg      *config.AppConfig
	engine   *gin.Engine
	logger   *zap.Logger
	pool     *pgxpool.Pool
	redis    *redisinfra.Client
	producer *kafkainfra.Producer
	recorder *usecase.AuditRecorder
}

// New builds the application: configuration is already loaded, everything
// downstream (logger, stores, services, router) is wired here.
func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	metricsProvider, err := telemetry.Attach(cfg)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init redis: %w", err)
	}

	keyProvider, err := security.NewKeyProvider(cfg.App.Env, cfg.JWT.KeyDirectory)
	if err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init key provider: %w", err)
	}
	jwtManager := security.NewJWTManager(keyProvider, cfg.App.Name, cfg.JWT.AccessTokenTTL, cfg.JWT.RefreshTokenTTL)

	hasher, err := security.NewArgon2Hasher(security.Argon2Config{
		Memory:      cfg.Argon2.Memory,
		Iterations:  cfg.Argon2.Iterations,
		Parallelism: cfg.Argon2.Parallelism,
		SaltLength:  cfg.Argon2.SaltLength,
		KeyLength:   cfg.Argon2.KeyLength,
	})
	if err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init password hasher: %w", err)
	}

	// Missing translations crash loudly everywhere except production.
	translator, err := i18n.NewTranslator(cfg.I18n.DefaultLanguage, cfg.App.Env != "production")
	if err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init translator: %w", err)
	}

	repos := postgresrepo.NewRepositories(pool)
	blacklist := redisrepo.NewTokenBlacklist(redisClient.Client(), cfg.Redis.BlacklistPrefix)

	var producer *kafkainfra.Producer
	var events port.EventPublisher
	if cfg.Kafka.Enabled && len(cfg.Kafka.Brokers) > 0 {
		producer, err = kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("init kafka producer failed, using stub publisher", zap.Error(err))
			events = kafkainfra.NewStubPublisher(log)
		} else {
			events = kafkainfra.NewEventPublisher(producer, cfg.App, log)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka disabled, using stub publisher")
		events = kafkainfra.NewStubPublisher(log)
	}

	passwordValidator := security.NewDefaultPasswordValidator()

	authService := usecase.NewAuthService(repos.Users, repos.Tokens, blacklist, repos.Permissions, hasher, jwtManager, events, log)
	userService := usecase.NewUserService(repos.Users, hasher, passwordValidator, events, log)
	roleService := usecase.NewRoleService(repos.Roles, repos.Permissions, repos.Users, events, log)
	permissionService := usecase.NewPermissionService(repos.Permissions, translator, cfg.Permissions.AllowedOwners)
	auditService := usecase.NewAuditService(repos.AccessLogs)

	recorder := usecase.NewAuditRecorder(repos.AccessLogs, log, cfg.Audit.QueueSize).
		WithMetrics(metricsProvider.AuditRecorded(), metricsProvider.AuditDropped(), metricsProvider.AuditWriteFailures())

	var httpMetrics *middleware.HTTPMetrics
	if cfg.Telemetry.MetricsEnabled {
		httpMetrics, err = middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{})
		if err != nil {
			pool.Close()
			_ = redisClient.Close()
			return nil, fmt.Errorf("init http metrics: %w", err)
		}
	}

	engine := routes.Register(routes.Dependencies{
		Config:     cfg,
		Logger:     log,
		Translator: translator,
		UserRepo:   repos.Users,
		Recorder:   recorder,
		Metrics:    httpMetrics,
		Database:   pool,
		Cache:      redisClient,
		Services: routes.ServiceSet{
			Auth:        authService,
			Users:       userService,
			Roles:       roleService,
			Permissions: permissionService,
			Audit:       auditService,
		},
	})

	return &Application{
		cfg:      cfg,
		engine:   engine,
		logger:   log,
		pool:     pool,
		redis:    redisClient,
		producer: producer,
		recorder: recorder,
	}, nil
}

// Run serves HTTP until the context is cancelled, then shuts down in
// order: listener, audit recorder, producer, stores.
func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer a.pool.Close()
	defer func() {
		_ = a.redis.Close()
	}()
	defer func() {
		if a.producer != nil {
			if err := a.producer.Close(); err != nil {
				a.logger.Warn("close kafka producer", zap.Error(err))
			}
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		a.drainAudit()
		return nil
	case err := <-serverErrCh:
		a.drainAudit()
		return err
	}
}

// drainAudit flushes queued audit entries within the configured window.
func (a *Application) drainAudit() {
	timeout := a.cfg.Audit.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := a.recorder.Close(ctx); err != nil {
		a.logger.Warn("audit queue not fully drained", zap.Error(err))
	}
}
