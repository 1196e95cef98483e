package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/mobilekit/auth-service/docs"
	"github.com/mobilekit/auth-service/internal/api/handler"
	"github.com/mobilekit/auth-service/internal/api/middleware"
	"github.com/mobilekit/auth-service/internal/core/service"
	"github.com/mobilekit/auth-service/internal/infrastructure/config"
	mongodb "github.com/mobilekit/auth-service/internal/infrastructure/db/mongo"
	redisdb "github.com/mobilekit/auth-service/internal/infrastructure/db/redis"
	"github.com/mobilekit/auth-service/internal/infrastructure/http/handlers"
	"github.com/mobilekit/auth-service/internal/infrastructure/identity"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg *config.Config, events handler.AuthEventSink, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("auth"))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	tokenStore := redisdb.NewTokenStore(rdb, cfg.Token.TTL)
	verifiers := identity.NewRegistry(
		identity.NewGoogleVerifier(cfg.Google.UserInfoURL, cfg.ProviderTimeout),
		identity.NewAppleVerifier(cfg.Apple.Audience, cfg.Apple.JWKSURL, cfg.ProviderTimeout),
	)
	authService := service.NewAuthService(userRepo, tokenStore, verifiers, log)
	authHandler := handler.NewAuthHandler(authService, events)
	authMiddleware := middleware.Auth(tokenStore, userRepo)

	// --- Public auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/social", authHandler.SocialLogin)

	// --- Protected routes ---
	e.POST("/auth/logout", authHandler.Logout, authMiddleware)
	e.GET("/user", authHandler.Me, authMiddleware)

	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
