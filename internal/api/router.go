package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/notedrop/notes-api/docs"
	"github.com/notedrop/notes-api/internal/api/handler"
	"github.com/notedrop/notes-api/internal/api/middleware"
	"github.com/notedrop/notes-api/internal/core/domain"
	"github.com/notedrop/notes-api/internal/core/ports"
)

// RouterConfig bundles everything the router needs. Redis may be nil when the
// retrieve cache is disabled.
type RouterConfig struct {
	Notes     ports.NoteService
	Auth      ports.AuthService
	DB        *mongo.Database
	Redis     *redis.Client
	JWTSecret string
	Logger    zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(cfg.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())

	// --- Handlers ---
	shareHandler := handler.NewShareHandler(cfg.Notes)
	noteHandler := handler.NewNoteHandler(cfg.Notes)
	authHandler := handler.NewAuthHandler(cfg.Auth)

	// --- Public share flow ---
	e.POST("/share", shareHandler.Share)
	e.GET("/retrieve", shareHandler.Retrieve)

	// --- Auth / users ---
	e.POST("/auth/signin", authHandler.SignIn)
	e.POST("/users", authHandler.Register)

	// --- Note management (authenticated collaborators only) ---
	notes := e.Group("/v1/notes", middleware.Auth(cfg.JWTSecret), middleware.RBAC(domain.RoleAdmin))
	notes.POST("", noteHandler.Create)
	notes.GET("", noteHandler.List)
	notes.PATCH("/:id", noteHandler.Update)
	notes.DELETE("/:id", noteHandler.Delete)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(cfg.DB, cfg.Redis)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	// --- Observability & docs ---
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
