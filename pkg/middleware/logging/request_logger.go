// Package loggingmw attaches a per-request logger and writes one access line
// per request once the response status is known.
package loggingmw

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/ambition_store/pkg/logging"
	middleware "github.com/Skotchmaster/ambition_store/pkg/middleware/auth"
)

// requestID prefers the id the client sent and falls back to the one the
// RequestID middleware generated onto the response.
func requestID(c echo.Context) string {
	if rid := c.Request().Header.Get(echo.HeaderXRequestID); rid != "" {
		return rid
	}
	return c.Response().Header().Get(echo.HeaderXRequestID)
}

func route(c echo.Context) string {
	if p := c.Path(); p != "" {
		return p
	}
	return "unmatched"
}

// RequestLogger stores a logger tagged with the request id and route in the
// request context, so handlers log through logging.FromContext. Errors are
// rendered here so the access line carries the final status.
func RequestLogger(base *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			l := base.With("method", req.Method, "route", route(c))
			if rid := requestID(c); rid != "" {
				l = l.With("request_id", rid)
				c.Response().Header().Set(echo.HeaderXRequestID, rid)
			}
			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			attrs := []any{
				"uri", req.RequestURI,
				"remote_ip", c.RealIP(),
				"status", c.Response().Status,
				"latency_ms", time.Since(start).Milliseconds(),
				"bytes", c.Response().Size,
			}
			// Resolve runs after this middleware and replaces the request.
			if id, ok := middleware.FromContext(c.Request().Context()); ok {
				attrs = append(attrs, "user_id", id.UserID)
			}
			if err != nil {
				attrs = append(attrs, "error", err.Error())
			}

			switch status := c.Response().Status; {
			case status >= 500:
				l.Error("http_request", attrs...)
			case status >= 400:
				l.Warn("http_request", attrs...)
			default:
				l.Info("http_request", attrs...)
			}
			return nil
		}
	}
}
