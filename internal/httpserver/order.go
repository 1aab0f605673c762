package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/ambition_store/internal/service"
	"github.com/Skotchmaster/ambition_store/internal/transport"
	"github.com/Skotchmaster/ambition_store/pkg/logging"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) GetOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_orders")

	q, err := transport.ParseOrderQuery(c.QueryParams())
	if err != nil {
		return fail(l, "get_orders_error", err)
	}

	orders, err := h.Svc.QueryOrders(ctx, q)
	if err != nil {
		return fail(l, "get_orders_error", err)
	}
	return c.JSON(http.StatusOK, transport.Data("orders", transport.NewOrdersResponse(orders)))
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_order")

	req, err := transport.ParseCreateOrder(c.Request())
	if err != nil {
		return fail(l, "order_create_error", err)
	}

	o, err := h.Svc.CreateOrder(ctx, req)
	if err != nil {
		return fail(l, "order_create_error", err)
	}

	l.Info("create_order_success", "order_id", o.ID)
	return c.JSON(http.StatusCreated, transport.Data("order", transport.NewOrderResponse(*o)))
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_order")

	id, err := transport.ParseID(c.Param("id"))
	if err != nil {
		return fail(l, "get_order_failed", err)
	}

	o, err := h.Svc.GetOrder(ctx, id)
	if err != nil {
		return fail(l, "get_order_failed", err)
	}
	return c.JSON(http.StatusOK, transport.Data("order", transport.NewOrderResponse(*o)))
}

func (h *OrderHTTP) PatchOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.patch_order")

	id, err := transport.ParseID(c.Param("id"))
	if err != nil {
		return fail(l, "order_patch_error", err)
	}
	req, err := transport.ParsePatchOrder(c.Request())
	if err != nil {
		return fail(l, "order_patch_error", err)
	}

	o, err := h.Svc.UpdateStatus(ctx, id, req)
	if err != nil {
		return fail(l, "order_patch_error", err)
	}

	l.Info("patch_order_success", "order_id", o.ID, "status", o.Status.Name)
	return c.JSON(http.StatusOK, transport.Data("order", transport.NewOrderResponse(*o)))
}
