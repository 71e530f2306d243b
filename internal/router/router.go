package router

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"prioritytracker/internal/auth"
	"prioritytracker/internal/config"
	apperrors "prioritytracker/internal/errors"
	"prioritytracker/internal/handler"
	"prioritytracker/internal/metrics"
)

// Handlers groups every HTTP handler the API serves.
type Handlers struct {
	Auth        *handler.AuthHandler
	Users       *handler.UserHandler
	Initiatives *handler.InitiativeHandler
	Priorities  *handler.PriorityHandler
	Analytics   *handler.AnalyticsHandler
	Weeks       *handler.WeekHandler
	Seed        *handler.SeedHandler
}

// Register wires routes and middleware. guard authenticates every /api route
// except login, refresh and logout.
func Register(e *echo.Echo, cfg *config.Config, log zerolog.Logger, guard echo.MiddlewareFunc, h Handlers) {
	e.HideBanner = true
	e.Validator = &CustomValidator{validator: newValidator()}
	e.HTTPErrorHandler = ErrorHandler(log)

	e.Use(middleware.RequestID())
	e.Use(requestLogger(log))
	e.Use(middleware.Recover())
	e.Use(metrics.Middleware())

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", metrics.Handler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/login", h.Auth.Login, loginRateLimit(cfg.LoginRateLimit))
	api.POST("/auth/refresh", h.Auth.Refresh)
	api.POST("/auth/logout", h.Auth.Logout)

	// Secured routes
	secured := api.Group("", guard)
	admin := auth.RequireAdmin()

	secured.GET("/auth/me", h.Auth.Me)
	secured.GET("/weeks/current", h.Weeks.CurrentWeek)

	secured.GET("/initiatives", h.Initiatives.ListInitiatives)
	secured.POST("/initiatives", h.Initiatives.CreateInitiative, admin)
	secured.PUT("/initiatives/reorder", h.Initiatives.ReorderInitiatives, admin)
	secured.GET("/initiatives/:id", h.Initiatives.GetInitiative)
	secured.PUT("/initiatives/:id", h.Initiatives.UpdateInitiative, admin)
	secured.DELETE("/initiatives/:id", h.Initiatives.DeleteInitiative, admin)
	secured.POST("/initiatives/:id/move", h.Initiatives.MoveInitiative, admin)

	secured.GET("/priorities", h.Priorities.ListPriorities)
	secured.POST("/priorities", h.Priorities.CreatePriority)
	secured.GET("/priorities/:id", h.Priorities.GetPriority)
	secured.PUT("/priorities/:id", h.Priorities.UpdatePriority)
	secured.DELETE("/priorities/:id", h.Priorities.DeletePriority)

	// per-record rules live in the services; a user may read and edit their own profile
	secured.GET("/users", h.Users.ListUsers)
	secured.POST("/users", h.Users.CreateUser, admin)
	secured.GET("/users/:id", h.Users.GetUser)
	secured.PUT("/users/:id", h.Users.UpdateUser)
	secured.DELETE("/users/:id", h.Users.DeleteUser, admin)
	secured.POST("/users/:id/reset-password", h.Users.ResetPassword)

	secured.GET("/analytics/users", h.Analytics.UserStats, admin)
	secured.GET("/analytics/initiatives", h.Analytics.InitiativeStats, admin)
	secured.GET("/analytics/history", h.Analytics.History)
	secured.GET("/analytics/summary", h.Analytics.Summary)

	if h.Seed != nil {
		secured.POST("/admin/seed", h.Seed.SeedDefaults, admin)
	}
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// newValidator reports json field names in validation errors.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// ErrorHandler renders every error as {"error", "code"}. Domain errors keep
// their own code; anything unexpected is logged and answered with a generic 500.
func ErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var (
			status int
			body   apperrors.ErrorResponse
			he     *echo.HTTPError
		)
		if errors.As(err, &he) {
			status = he.Code
			body = apperrors.ErrorResponse{Error: frameworkMessage(he), Code: frameworkCode(status)}
		} else {
			mapped := apperrors.MapErrorToHTTP(err)
			status = mapped.StatusCode
			body = mapped.ToErrorResponse()
		}

		if status >= http.StatusInternalServerError {
			log.Error().Err(err).
				Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
				Str("path", c.Path()).
				Msg("request failed")
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			log.Error().Err(err).Msg("write error response")
		}
	}
}

func frameworkMessage(he *echo.HTTPError) string {
	if he.Code >= http.StatusInternalServerError {
		return "internal server error"
	}
	if msg, ok := he.Message.(string); ok && msg != "" {
		return msg
	}
	return http.StatusText(he.Code)
}

func frameworkCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "VALIDATION_ERROR"
	case http.StatusUnauthorized:
		return "UNAUTHENTICATED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case http.StatusRequestEntityTooLarge:
		return "PAYLOAD_TOO_LARGE"
	case http.StatusTooManyRequests:
		return "RATE_LIMITED"
	default:
		if status >= http.StatusInternalServerError {
			return "INTERNAL_ERROR"
		}
		return "ERROR"
	}
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			event := log.Info()
			if v.Error != nil {
				event = log.Warn().Err(v.Error)
			}
			event.
				Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Str("remote_ip", v.RemoteIP).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}

// loginRateLimit caps login attempts per client IP per minute.
func loginRateLimit(perMinute int) echo.MiddlewareFunc {
	limiter := httprate.Limit(perMinute, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSONCharsetUTF8)
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"too many login attempts","code":"RATE_LIMITED"}`))
		}),
	)
	return echo.WrapMiddleware(limiter)
}
