package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/cardioassist/cardio-api/docs"
	"github.com/cardioassist/cardio-api/internal/api/handler"
	"github.com/cardioassist/cardio-api/internal/api/middleware"
	"github.com/cardioassist/cardio-api/internal/core/domain"
	"github.com/cardioassist/cardio-api/internal/core/ports"
)

// Services groups everything the HTTP layer calls into.
type Services struct {
	Auth          ports.AuthService
	Users         ports.UserService
	Conversations ports.ConversationService
	Chat          ports.ChatService
	Intake        ports.IntakeService
	Health        []handler.DependencyCheck
	// Metrics receives the HTTP request metrics. Nil means the default registry.
	Metrics *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(svc Services, log zerolog.Logger) *echo.Echo {
	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if svc.Metrics != nil {
		registerer, gatherer = svc.Metrics, svc.Metrics
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "cardio",
		Registerer: registerer,
	}))
	e.Use(middleware.RequestLogger(log))
	e.Use(echomiddleware.BodyLimit("25M"))

	// --- Infra (no auth required) ---
	health := handler.NewHealthHandler(svc.Health...)
	e.GET("/health", health.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", health.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	authn := middleware.Auth(svc.Auth)
	v1 := e.Group("/v1")

	// --- Session ---
	session := handler.NewSessionHandler(svc.Auth)
	v1.POST("/session", session.Create)
	v1.GET("/session", session.Get, authn)
	v1.DELETE("/session", session.Delete, authn)

	// --- User directory ---
	users := handler.NewUserHandler(svc.Users)
	ug := v1.Group("/users", authn, middleware.RequireAction(domain.ActionListUsers))
	ug.GET("", users.List)
	ug.POST("", users.Create)
	ug.GET("/:id", users.Get)
	ug.PUT("/:id", users.Update)
	ug.PUT("/:id/status", users.SetStatus)
	ug.DELETE("/:id", users.Delete)

	// --- Own data ---
	readOwn := middleware.RequireAction(domain.ActionReadOwnData)
	writeOwn := middleware.RequireAction(domain.ActionWriteOwnData)

	convs := handler.NewConversationHandler(svc.Conversations)
	cg := v1.Group("/conversations", authn)
	cg.GET("", convs.List, readOwn)
	cg.POST("", convs.Create, writeOwn)
	cg.GET("/:id", convs.Get, readOwn)
	cg.PUT("/:id", convs.Rename, writeOwn)
	cg.DELETE("/:id", convs.Delete, writeOwn)
	cg.POST("/:id/messages", convs.AppendMessage, writeOwn)

	chat := handler.NewChatHandler(svc.Chat)
	v1.POST("/chat", chat.Complete, authn, writeOwn)

	intake := handler.NewIntakeHandler(svc.Intake)
	ig := v1.Group("/intake", authn)
	ig.GET("", intake.List, readOwn)
	ig.POST("", intake.Create, writeOwn)

	return e
}
