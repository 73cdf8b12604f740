package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aritranodejs/jwt-token-revoke/internal/core/port"
	"github.com/aritranodejs/jwt-token-revoke/internal/infra/config"
	"github.com/aritranodejs/jwt-token-revoke/internal/infra/logger"
	redisinfra "github.com/aritranodejs/jwt-token-revoke/internal/infra/redis"
	"github.com/aritranodejs/jwt-token-revoke/internal/infra/telemetry"
	memoryrepo "github.com/aritranodejs/jwt-token-revoke/internal/repository/memory"
	redisrepo "github.com/aritranodejs/jwt-token-revoke/internal/repository/redis"
	"github.com/aritranodejs/jwt-token-revoke/internal/transport/http/routes"
	"github.com/aritranodejs/jwt-token-revoke/internal/usecase"
)

type Application struct {
	cfg        *config.AppConfig
	engine     *gin.Engine
	logger     *zap.Logger
	redis      *redisinfra.Client
	revocation *usecase.RevocationService
}

func New(_ context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	var (
		store       port.BlacklistStore
		redisClient *redisinfra.Client
		cache       routes.CacheChecker
	)

	switch cfg.Blacklist.Storage {
	case config.StorageRedis:
		redisClient, err = redisinfra.NewClient(cfg.Redis, log)
		if err != nil {
			return nil, fmt.Errorf("init redis: %w", err)
		}
		store = redisrepo.NewBlacklistStore(redisClient.Client(), cfg.Blacklist.KeyPrefix)
		cache = redisClient
	default:
		store = memoryrepo.NewBlacklist(memoryrepo.BlacklistOptions{
			MaxEntries: cfg.Blacklist.MaxEntries,
		})
	}

	metrics, err := telemetry.NewMetrics(telemetry.MetricsOptions{})
	if err != nil {
		if redisClient != nil {
			_ = redisClient.Close()
		}
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	revocation := usecase.NewRevocationService(store, log, usecase.RevocationOptions{
		CleanupInterval: cfg.Blacklist.CleanupInterval,
		AutoCleanup:     cfg.Blacklist.AutoCleanup,
	}).WithMetrics(metrics)

	log.Info("revocation engine initialized",
		zap.String("storage", cfg.Blacklist.Storage),
		zap.Duration("cleanup_interval", cfg.Blacklist.CleanupInterval),
		zap.Bool("auto_cleanup", cfg.Blacklist.AutoCleanup),
	)

	engine := routes.Register(routes.Dependencies{
		Config:     cfg,
		Logger:     log,
		Revocation: revocation,
		Cache:      cache,
	})

	return &Application{
		cfg:        cfg,
		engine:     engine,
		logger:     log,
		redis:      redisClient,
		revocation: revocation,
	}, nil
}

func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer a.revocation.StopCleanup()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
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

	a.logger.Info("starting revocation API",
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
		return nil
	case err := <-serverErrCh:
		return err
	}
}
