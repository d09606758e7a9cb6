package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/mrt-platform/maintenance-tracker/internal/api/handler"
	"github.com/mrt-platform/maintenance-tracker/internal/api/middleware"
	"github.com/mrt-platform/maintenance-tracker/internal/core/domain"
	"github.com/mrt-platform/maintenance-tracker/internal/core/ports"

	_ "github.com/mrt-platform/maintenance-tracker/docs"
)

// Dependencies are the services and probes the router wires into handlers.
type Dependencies struct {
	Auth    ports.AuthService
	Users   ports.UserService
	Issues  ports.IssueService
	Reports ports.ReportService
	Guard   middleware.Guard

	// Health lists the storage backends the readiness probe pings.
	Health map[string]handler.Pinger
	Logger zerolog.Logger

	// Registry receives the HTTP request metrics. Nil uses the default
	// Prometheus registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Logger))

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if deps.Registry != nil {
		registerer, gatherer = deps.Registry, deps.Registry
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "maintenance",
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Observability ---
	health := handler.NewHealthHandler(deps.Health)
	e.GET("/health", health.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", health.Readiness) // readiness – are the stores reachable?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	session := middleware.Session(deps.Guard)
	require := func(capability domain.Capability) echo.MiddlewareFunc {
		return middleware.RequireCapability(deps.Guard, capability)
	}

	api := e.Group("/api")

	// --- Auth ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/register", authHandler.Register)
	api.GET("/auth/me", authHandler.Me, session)

	// --- Profile ---
	profileHandler := handler.NewProfileHandler(deps.Users, deps.Auth)
	api.GET("/profile", profileHandler.Get, session)
	api.PUT("/profile", profileHandler.Update, session)
	api.PUT("/profile/password", profileHandler.ChangePassword, session)

	// --- Issues ---
	issueHandler := handler.NewIssueHandler(deps.Issues)
	api.GET("/issues", issueHandler.List, require(domain.CanViewAllIssues))
	api.GET("/issues/:id", issueHandler.Get, require(domain.CanViewAllIssues))
	api.POST("/issues", issueHandler.Create, require(domain.CanCreateIssues))
	api.PUT("/issues/:id", issueHandler.Update, require(domain.CanEditIssues))
	api.PUT("/issues/:id/assign", issueHandler.Assign, require(domain.CanAssignIssues))
	api.DELETE("/issues/:id", issueHandler.Delete, require(domain.CanDeleteIssues))

	// --- Reports ---
	reportHandler := handler.NewReportHandler(deps.Reports)
	api.GET("/reports", reportHandler.List, require(domain.CanViewReports))
	api.GET("/reports/monthly", reportHandler.Monthly, require(domain.CanViewReports))
	api.GET("/reports/export", reportHandler.Export, require(domain.CanExportReports))
	api.GET("/reports/:id", reportHandler.Get, require(domain.CanViewReports))
	api.POST("/reports", reportHandler.Create, require(domain.CanEditIssues))
	api.PUT("/reports/:id", reportHandler.Update, require(domain.CanEditIssues))
	api.DELETE("/reports/:id", reportHandler.Delete, require(domain.CanEditIssues))

	// --- Users ---
	userHandler := handler.NewUserHandler(deps.Users)
	api.GET("/users", userHandler.List, require(domain.CanAssignIssues))
	api.POST("/users", userHandler.Create, require(domain.CanCreateUsers))
	api.PUT("/users/:id", userHandler.Update, require(domain.CanEditUsers))
	api.DELETE("/users/:id", userHandler.Delete, require(domain.CanDeleteUsers))

	return e
}

// requestLogger emits one zerolog event per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil {
				evt = log.Warn().Err(v.Error)
			}
			if v.Status >= 500 {
				evt = log.Error().Err(v.Error)
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
