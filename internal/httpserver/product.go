package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/ambition_store/internal/errs"
	"github.com/Skotchmaster/ambition_store/internal/service"
	"github.com/Skotchmaster/ambition_store/internal/transport"
	"github.com/Skotchmaster/ambition_store/internal/util"
	"github.com/Skotchmaster/ambition_store/pkg/logging"
)

type ProductHTTP struct {
	Svc *service.CatalogService
}

func (h *ProductHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	q, err := transport.ParseProductQuery(c.QueryParams())
	if err != nil {
		return fail(l, "get_products_error", err)
	}

	total, items, err := h.Svc.QueryProducts(ctx, q)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			l.Warn("get_products_error", "status", 400, "reason", "category not found", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "Category not found")
		}
		return fail(l, "get_products_error", err)
	}

	offset, limit := util.Calculate(q.Page, q.Size)
	l.Info("get_products_success", "total", total)
	return c.JSON(http.StatusOK, echo.Map{
		"data": echo.Map{"products": transport.NewProductsResponse(items)},
		"meta": util.Meta(q.Page, offset, limit, total),
	})
}

func (h *ProductHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search_products")

	q, err := transport.ParseSearchQuery(c.QueryParams())
	if err != nil {
		return fail(l, "search_products_error", err)
	}

	total, items, err := h.Svc.SearchProducts(ctx, q)
	if err != nil {
		return fail(l, "search_products_error", err)
	}

	offset, limit := util.Calculate(q.Page, q.Size)
	return c.JSON(http.StatusOK, echo.Map{
		"data": echo.Map{
			"products": transport.NewProductsResponse(items),
			"total":    total,
		},
		"meta": util.Meta(q.Page, offset, limit, total),
	})
}

func (h *ProductHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	id, err := transport.ParseID(c.Param("id"))
	if err != nil {
		return fail(l, "get_product_failed", err)
	}

	p, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		return fail(l, "get_product_failed", err)
	}
	return c.JSON(http.StatusOK, transport.Data("product", transport.NewProductResponse(*p)))
}

func (h *ProductHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create_product")

	req, err := transport.ParseCreateProduct(c.Request())
	if err != nil {
		return fail(l, "product_create_error", err)
	}

	p, err := h.Svc.CreateProduct(ctx, req)
	if err != nil {
		return fail(l, "product_create_error", err)
	}

	l.Info("create_product_success", "product_id", p.ID)
	return c.JSON(http.StatusCreated, transport.Data("product", transport.NewProductResponse(*p)))
}

func (h *ProductHTTP) PatchProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.patch_product")

	id, err := transport.ParseID(c.Param("id"))
	if err != nil {
		return fail(l, "product_patch_error", err)
	}
	req, err := transport.ParsePatchProduct(c.Request())
	if err != nil {
		return fail(l, "product_patch_error", err)
	}

	p, err := h.Svc.PatchProduct(ctx, id, req)
	if err != nil {
		return fail(l, "product_patch_error", err)
	}

	l.Info("patch_product_success", "product_id", p.ID)
	return c.JSON(http.StatusOK, transport.Data("product", transport.NewProductResponse(*p)))
}
