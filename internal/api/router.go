package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/hydrochain/hydrochain-api/internal/api/handler"
	"github.com/hydrochain/hydrochain-api/internal/api/middleware"
	"github.com/hydrochain/hydrochain-api/internal/core/domain"
	"github.com/hydrochain/hydrochain-api/internal/core/ports"
	"github.com/hydrochain/hydrochain-api/internal/core/service"
	mongodb "github.com/hydrochain/hydrochain-api/internal/infrastructure/db/mongo"
	redisdb "github.com/hydrochain/hydrochain-api/internal/infrastructure/db/redis"
)

// Deps carries the externally constructed collaborators the router wires
// together. Keeping them explicit (rather than module-level singletons) lets
// tests substitute fakes.
type Deps struct {
	Mongo      *mongo.Database
	Redis      *redis.Client
	JWTSecret  string
	Settlement ports.SettlementProvider // nil when the chain is unconfigured
	Fallback   ports.SettlementProvider
	Audit      ports.AuditRecorder
	SettleWait time.Duration
	Logger     zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{"authorization", "x-client-info", "apikey", "content-type"},
		AllowMethods: []string{http.MethodPost, http.MethodGet, http.MethodOptions},
	}))
	e.Use(echoprometheus.NewMiddleware("hydrochain"))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(deps.Mongo)
	creditRepo := mongodb.NewCreditRepository(deps.Mongo)
	txRepo := mongodb.NewTransactionRepository(deps.Mongo)
	roleResolver := redisdb.NewRoleCache(deps.Redis, userRepo)

	authService := service.NewAuthService(userRepo, deps.JWTSecret, 24*time.Hour)
	creditService := service.NewCreditService(
		creditRepo, txRepo, userRepo, roleResolver,
		deps.Settlement, deps.Fallback, deps.Audit,
		deps.SettleWait, deps.Logger,
	)

	authHandler := handler.NewAuthHandler(authService)
	creditHandler := handler.NewCreditHandler(creditService)
	authMiddleware := middleware.Auth(deps.JWTSecret, roleResolver)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Credit routes ---
	v1 := e.Group("/v1", authMiddleware)
	v1.POST("/credits", creditHandler.Issue)
	v1.GET("/credits", creditHandler.List)
	v1.GET("/credits/:id", creditHandler.Get)
	v1.GET("/credits/:id/transactions", creditHandler.ListTransactions)
	v1.POST("/credits/:id/transfer", creditHandler.Transfer)
	v1.POST("/credits/:id/verify", creditHandler.Verify, middleware.RBAC(domain.RoleVerifier))
	v1.POST("/credits/:id/retire", creditHandler.Retire)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
