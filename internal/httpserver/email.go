package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/ambition_store/internal/service"
	"github.com/Skotchmaster/ambition_store/internal/transport"
	"github.com/Skotchmaster/ambition_store/pkg/logging"
)

type EmailHTTP struct {
	Svc *service.EmailService
}

func (h *EmailHTTP) RequestCode(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "email.request_code")

	req, err := transport.ParseEmailValidation(c.Request())
	if err != nil {
		return fail(l, "email_validation_error", err)
	}

	ev, err := h.Svc.Issue(ctx, req.Email)
	if err != nil {
		return fail(l, "email_validation_error", err)
	}

	l.Info("email_validation_success")
	return c.JSON(http.StatusOK, transport.Data("email_validation", transport.NewEmailValidationResponse(*ev)))
}
