package middleware

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/magiclink/server/internal/logger"
)

// RequestIDKey is the echo context key holding the generated request id.
const RequestIDKey = "request_id"

// Logging logs every HTTP request with a generated request id, the response
// status and the handling duration.
type Logging struct {
	logger *logger.Logger
}

// NewLogging creates a new Logging middleware.
func NewLogging(logger *logger.Logger) *Logging {
	return &Logging{logger: logger}
}

// Handle wraps the next handler with request logging.
func (l *Logging) Handle(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		requestID := uuid.NewString()
		c.Set(RequestIDKey, requestID)

		req := c.Request()
		l.logger.Info("HTTP request started",
			"request_id", requestID,
			"method", req.Method,
			"path", req.URL.Path)

		err := next(c)
		if err != nil {
			// Commit the error response so the logged status is final.
			c.Error(err)
		}

		l.logger.Info("HTTP request completed",
			"request_id", requestID,
			"method", req.Method,
			"path", req.URL.Path,
			"status", c.Response().Status,
			"duration_ms", time.Since(start).Milliseconds())

		if err != nil {
			l.logger.Error("HTTP request failed",
				"request_id", requestID,
				"method", req.Method,
				"path", req.URL.Path,
				"error", err.Error())
		}

		return err
	}
}
