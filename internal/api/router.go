package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/neuradash/account-system/internal/api/handler"
	"github.com/neuradash/account-system/internal/api/middleware"
	"github.com/neuradash/account-system/internal/core/domain"
	"github.com/neuradash/account-system/internal/core/ports"
)

// RouterDeps carries everything the HTTP surface needs. Mongo may be nil
// when the activity archive is disabled.
type RouterDeps struct {
	Service    ports.AccountService
	Gateway    ports.Gateway
	Store      ports.Store
	Mongo      *mongo.Database
	JWTSecret  string
	SessionTTL time.Duration
	Log        zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps RouterDeps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("account"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Service, deps.Gateway, deps.JWTSecret, deps.SessionTTL)
	accountHandler := handler.NewAccountHandler(deps.Service, deps.Gateway)
	planHandler := handler.NewPlanHandler()
	authMiddleware := middleware.Auth(deps.JWTSecret)

	// --- Public routes ---
	e.POST("/v1/auth/signup", authHandler.Signup)
	e.POST("/v1/auth/login", authHandler.Login)
	e.GET("/v1/plans", planHandler.List)
	e.GET("/v1/plans/compare", planHandler.Compare)

	// --- Account routes (authenticated) ---
	account := e.Group("/v1/account", authMiddleware)
	account.GET("", accountHandler.Get)
	account.PUT("", accountHandler.Update)
	account.DELETE("", accountHandler.Delete)
	account.POST("/plan", accountHandler.UpdatePlan)
	account.PUT("/settings", accountHandler.UpdateSettings)
	account.GET("/activity", accountHandler.Activity)
	account.POST("/activity", accountHandler.TrackActivity)
	account.GET("/export", accountHandler.Export,
		middleware.FeatureGate(deps.Service, domain.FeatureAPIAccess))

	// --- Operational endpoints ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Store, deps.Mongo)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
