package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/xiaoying/sales-assistant/internal/api/docs"
	"github.com/xiaoying/sales-assistant/internal/api/handler"
	"github.com/xiaoying/sales-assistant/internal/api/metrics"
	"github.com/xiaoying/sales-assistant/internal/api/middleware"
	"github.com/xiaoying/sales-assistant/internal/core/ports"
	infrahttp "github.com/xiaoying/sales-assistant/internal/infrastructure/http"
	"github.com/xiaoying/sales-assistant/internal/infrastructure/http/handlers"
)

const bodyLimit = "1M"

// Dependencies are the services the router exposes. They are built in main.
type Dependencies struct {
	Customers ports.CustomerService
	Auth      ports.AuthService
	Chat      ports.ChatService
	// Checks feed the readiness probe, keyed by dependency name.
	Checks map[string]handlers.Check
	Logger zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Logger))
	e.Use(echomiddleware.CORS())
	e.Use(echomiddleware.BodyLimit(bodyLimit))
	e.Use(metrics.Middleware())

	// --- Probes, metrics and docs (no auth required) ---
	infrahttp.RegisterProbes(e, deps.Checks)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	authHandler := handler.NewAuthHandler(deps.Auth)
	customerHandler := handler.NewCustomerHandler(deps.Customers)
	chatHandler := handler.NewChatHandler(deps.Chat)

	api := e.Group("/api")
	api.POST("/auth/login", authHandler.Login)

	// --- Protected routes ---
	protected := api.Group("", middleware.Auth(deps.Auth))
	protected.POST("/auth/logout", authHandler.Logout)

	protected.GET("/customers", customerHandler.List)
	protected.GET("/customers/search", customerHandler.Search)
	protected.GET("/customers/:id", customerHandler.Get)
	protected.POST("/customers", customerHandler.Create)
	protected.PUT("/customers/:id", customerHandler.Update)
	protected.DELETE("/customers/:id", customerHandler.Delete)

	protected.POST("/chatbot", chatHandler.Reply)

	return e
}

// requestLogger writes one structured access log line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= 500 {
				ev = log.Error()
			} else if v.Status >= 400 {
				ev = log.Warn()
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
