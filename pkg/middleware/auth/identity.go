package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/ambition_store/pkg/logging"
)

const AccessCookie = "accessToken"

// Identity is the authenticated caller attached to a request.
type Identity struct {
	UserID    uint
	Email     string
	SessionID string
	ExpiresAt time.Time
}

type TokenParser interface {
	ParseToken(ctx context.Context, token string) (Identity, error)
}

type ctxKey struct{}

func IntoContext(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}

// TokenFromRequest prefers the access cookie and falls back to a bearer header.
func TokenFromRequest(c echo.Context) string {
	if ck, err := c.Cookie(AccessCookie); err == nil && ck.Value != "" {
		return ck.Value
	}
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// Resolve attaches the caller's Identity when the request carries a valid
// token. Requests without one, or with a bad one, continue anonymously.
func Resolve(p TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := TokenFromRequest(c)
			if token == "" {
				return next(c)
			}
			ctx := c.Request().Context()
			id, err := p.ParseToken(ctx, token)
			if err != nil {
				logging.FromContext(ctx).Debug("token_rejected", "error", err)
				return next(c)
			}
			c.Set("user_id", id.UserID)
			c.SetRequest(c.Request().WithContext(IntoContext(ctx, id)))
			return next(c)
		}
	}
}

func RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := FromContext(c.Request().Context()); !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
		}
		return next(c)
	}
}
