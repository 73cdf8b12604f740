package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/aritranodejs/jwt-token-revoke/internal/infra/config"
	"github.com/aritranodejs/jwt-token-revoke/internal/transport/http/handlers"
	"github.com/aritranodejs/jwt-token-revoke/internal/transport/http/middleware"
	"github.com/aritranodejs/jwt-token-revoke/internal/usecase"
)

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config     *config.AppConfig
	Logger     *zap.Logger
	Revocation *usecase.RevocationService
	Cache      CacheChecker
	// TokenExtractor overrides how the blacklist guard pulls tokens from
	// requests; nil selects the bearer Authorization header default.
	TokenExtractor middleware.TokenExtractor
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware. The whole
// API group sits behind the blacklist guard, so a revoked credential cannot
// drive the revocation API itself.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	if len(deps.Config.App.CORSAllowedOrigins) > 0 {
		r.Use(middleware.CORS(deps.Config.App.CORSAllowedOrigins))
	}

	healthOptions := make([]handlers.HealthOption, 0, 1)
	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}
	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	api.Use(middleware.RejectBlacklisted(deps.Revocation, deps.TokenExtractor))

	revocationHandler := handlers.NewRevocationHandler(deps.Revocation)
	revocationHandler.RegisterRoutes(api)

	return r
}
