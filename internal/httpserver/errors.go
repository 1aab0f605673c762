package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/ambition_store/internal/errs"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrMissingField), errors.Is(err, errs.ErrMalformedValue):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, errs.ErrNotImplemented):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// fail logs err under event and turns it into the HTTP error for its kind.
// Server-side failures never leak their cause to the client.
func fail(l *slog.Logger, event string, err error) error {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		l.Error(event, "status", status, "reason", http.StatusText(status), "error", err)
		return echo.NewHTTPError(status, http.StatusText(status))
	}
	l.Warn(event, "status", status, "reason", err.Error(), "error", err)
	return echo.NewHTTPError(status, err.Error())
}
