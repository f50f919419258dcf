package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/todoboard/task-tracker/docs"
	"github.com/todoboard/task-tracker/internal/api/handler"
	"github.com/todoboard/task-tracker/internal/api/middleware"
	"github.com/todoboard/task-tracker/internal/api/web"
	"github.com/todoboard/task-tracker/internal/core/ports"
)

const sessionCookieName = "task_session"

// Dependencies is everything the router wires into handlers.
type Dependencies struct {
	Auth     ports.AuthService
	Tasks    ports.TaskService
	Sessions ports.SessionManager

	// CookieSecure marks the session cookie Secure (HTTPS only).
	CookieSecure bool
	// Pingers are checked by /health/ready.
	Pingers []handler.Pinger

	Logger zerolog.Logger
	// Registerer and Gatherer back the HTTP metrics and /metrics. They
	// default to the Prometheus default registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
	// Renderer defaults to the embedded templates.
	Renderer echo.Renderer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	if deps.Registerer == nil {
		deps.Registerer = prometheus.DefaultRegisterer
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}
	if deps.Renderer == nil {
		deps.Renderer = web.MustRenderer()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = deps.Renderer
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "tasktracker",
		Registerer: deps.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Operational endpoints (no session) ---
	healthHandler := handler.NewHealthHandler(deps.Pingers...)
	e.GET("/health", healthHandler.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: deps.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Pages ---
	cookie := middleware.SessionCookie{
		Name:   sessionCookieName,
		Secure: deps.CookieSecure,
		TTL:    deps.Sessions.TTL(),
	}
	sessions := handler.NewSessions(deps.Sessions, cookie)
	authHandler := handler.NewAuthHandler(deps.Auth, sessions, deps.Logger)
	taskHandler := handler.NewTaskHandler(deps.Tasks, sessions)

	pages := e.Group("", middleware.Session(deps.Sessions, cookie, deps.Logger))
	guard := middleware.RequireLogin("/login")

	pages.GET("/login", authHandler.LoginPage)
	pages.POST("/login", authHandler.Login)
	pages.GET("/register", authHandler.RegisterPage)
	pages.POST("/register", authHandler.Register)
	pages.GET("/logout", authHandler.Logout, guard)

	pages.GET("/", taskHandler.Index, guard)
	pages.POST("/", taskHandler.Index, guard)
	pages.GET("/create", taskHandler.CreatePage, guard)
	pages.POST("/create", taskHandler.Create, guard)
	pages.GET("/edit/:id", taskHandler.EditPage, guard)
	pages.POST("/edit/:id", taskHandler.Edit, guard)
	pages.GET("/delete/:id", taskHandler.DeletePage, guard)
	pages.POST("/delete/:id", taskHandler.Delete, guard)
	pages.GET("/complete/:id", taskHandler.Complete, guard)

	pages.GET("/:code", handler.ShowError)

	return e
}
