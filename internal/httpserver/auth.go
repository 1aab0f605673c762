package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/ambition_store/internal/service"
	"github.com/Skotchmaster/ambition_store/internal/session"
	"github.com/Skotchmaster/ambition_store/internal/transport"
	"github.com/Skotchmaster/ambition_store/pkg/logging"
	middleware "github.com/Skotchmaster/ambition_store/pkg/middleware/auth"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Signup(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.signup")

	req, err := transport.ParseSignup(c.Request())
	if err != nil {
		return fail(l, "signup_error", err)
	}

	user, err := h.Svc.Register(ctx, req)
	if err != nil {
		return fail(l, "signup_error", err)
	}

	l.Info("signup_success", "user_id", user.ID)
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "signup succeeded",
		"data":    echo.Map{"user": transport.NewUserResponse(*user)},
	})
}

// LoginPage answers the GET that follows a logout redirect.
func (h *AuthHTTP) LoginPage(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"message": "send email and password with POST /login",
	})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	req, err := transport.ParseLogin(c.Request())
	if err != nil {
		return fail(l, "login_error", err)
	}

	res, err := h.Svc.Login(ctx, req)
	if err != nil {
		return fail(l, "login_failed", err)
	}

	c.SetCookie(session.CreateCookie(middleware.AccessCookie, res.AccessToken, "/", res.AccessExp))
	l.Info("login_successful", "user_id", res.User.ID)

	return c.JSON(http.StatusOK, echo.Map{
		"message": "login succeeded",
		"data": echo.Map{
			"user":         transport.NewUserResponse(*res.User),
			"access_token": res.AccessToken,
		},
	})
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	id, ok := middleware.FromContext(ctx)
	if !ok {
		l.Warn("logout_failed", "status", 401, "reason", "not logged in")
		return echo.NewHTTPError(http.StatusUnauthorized, "not logged in")
	}

	if err := h.Svc.Logout(ctx, id); err != nil {
		return fail(l, "logout_failed", err)
	}

	c.SetCookie(session.DeleteCookie(middleware.AccessCookie, "/"))
	l.Info("successful_logout", "user_id", id.UserID)
	return c.Redirect(http.StatusMovedPermanently, "/login")
}
