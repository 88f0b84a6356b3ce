package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/quoteapp/quoted/internal/adapters/http/handlers"
	"github.com/quoteapp/quoted/internal/adapters/http/middleware"
	"github.com/quoteapp/quoted/internal/platform/config"
	"github.com/quoteapp/quoted/internal/platform/telemetry"
)

// DefaultRequestTimeout is the default timeout for API requests.
const DefaultRequestTimeout = 30 * time.Second

// RouterConfig contains configuration for setting up the router.
type RouterConfig struct {
	// Logger is the structured logger for request logging.
	Logger *slog.Logger

	// AppConfig contains application configuration.
	AppConfig *config.AppConfig

	// HealthHandler handles health check endpoints.
	HealthHandler *handlers.HealthHandler

	// QuoteHandler handles quote browsing endpoints.
	QuoteHandler *handlers.QuoteHandler

	// FavoritesHandler handles favorite endpoints.
	FavoritesHandler *handlers.FavoritesHandler

	// CollectionsHandler handles collection endpoints.
	CollectionsHandler *handlers.CollectionsHandler

	// AuthHandler handles sign-up, login and password recovery.
	AuthHandler *handlers.AuthHandler

	// Timeout is the default request timeout.
	Timeout time.Duration
}

// SetupRouter configures all routes and middleware on the Gin engine.
// Middleware is applied in the following order (first to last):
//  1. Recovery - catch panics first
//  2. Request ID - generate/extract request ID
//  3. Correlation ID - handle distributed tracing correlation
//  4. OpenTelemetry - tracing and metrics
//  5. Logging - request logging (skips health endpoints)
//  6. Bearer token - carry the caller's token to the backend gateway
//  7. Timeout - request deadline (applied to the API group)
//
// Route groups:
//   - /-/ (internal): Health endpoints, no auth required
//   - /api/v1/ (public API): auth endpoints open; user-scoped routes
//     require a bearer token, which the backend enforces
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	engine.Use(
		middleware.Recovery(cfg.Logger),
		middleware.RequestID(),
		middleware.CorrelationID(),
		telemetry.Middleware(cfg.AppConfig.Name),
		middleware.Logging(cfg.Logger),
	)

	// Health endpoints skip auth and timeouts so probes stay cheap.
	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterHealthRoutesOnEngine(engine)
	}

	apiV1 := engine.Group("/api/v1")
	apiV1.Use(middleware.BearerToken())

	if cfg.Timeout > 0 {
		apiV1.Use(middleware.SimpleTimeout(cfg.Timeout))
	}

	setupAPIRoutes(apiV1, cfg)
}

// setupAPIRoutes registers the quote application routes.
func setupAPIRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.AuthHandler != nil {
		cfg.AuthHandler.RegisterAuthRoutes(rg)
	}

	if cfg.QuoteHandler != nil {
		cfg.QuoteHandler.RegisterQuoteRoutes(rg)
	}

	// User-scoped routes carry the caller's token; the backend's row level
	// security decides what the token may touch.
	scoped := rg.Group("")
	scoped.Use(middleware.RequireBearer())

	if cfg.FavoritesHandler != nil {
		cfg.FavoritesHandler.RegisterFavoriteRoutes(scoped)
	}

	if cfg.CollectionsHandler != nil {
		cfg.CollectionsHandler.RegisterCollectionRoutes(scoped)
	}
}

// SetupMinimalRouter sets up a minimal router with just health endpoints.
// Useful for testing or lightweight deployments.
func SetupMinimalRouter(engine *gin.Engine, logger *slog.Logger, healthHandler *handlers.HealthHandler) {
	engine.Use(
		middleware.Recovery(logger),
		middleware.RequestID(),
	)

	if healthHandler != nil {
		healthHandler.RegisterHealthRoutesOnEngine(engine)
	}
}

// NewDefaultRouterConfig creates a RouterConfig with sensible defaults.
func NewDefaultRouterConfig(
	logger *slog.Logger,
	appCfg *config.AppConfig,
	healthHandler *handlers.HealthHandler,
) RouterConfig {
	return RouterConfig{
		Logger:        logger,
		AppConfig:     appCfg,
		HealthHandler: healthHandler,
		Timeout:       DefaultRequestTimeout,
	}
}
