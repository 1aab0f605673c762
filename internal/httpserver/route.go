package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/Skotchmaster/ambition_store/internal/metrics"
	middleware "github.com/Skotchmaster/ambition_store/pkg/middleware/auth"
)

const APIPrefix = "/api/v1"

type Deps struct {
	AuthHandler     *AuthHTTP
	EmailHandler    *EmailHTTP
	ProductHandler  *ProductHTTP
	CategoryHandler *CategoryHTTP
	OrderHandler    *OrderHTTP

	Tokens middleware.TokenParser
	Ready  func(ctx context.Context) error

	// ValidationRate caps code requests per client per minute; zero disables the cap.
	ValidationRate int
}

type route struct {
	Method  string
	Path    string
	Handler echo.HandlerFunc
	Auth    bool
	Limited bool
}

func routes(d *Deps) []route {
	return []route{
		{Method: http.MethodPost, Path: "/email/validation", Handler: d.EmailHandler.RequestCode, Limited: true},
		{Method: http.MethodPost, Path: "/signup", Handler: d.AuthHandler.Signup},
		{Method: http.MethodGet, Path: "/login", Handler: d.AuthHandler.LoginPage},
		{Method: http.MethodPost, Path: "/login", Handler: d.AuthHandler.Login},
		{Method: http.MethodGet, Path: "/logout", Handler: d.AuthHandler.Logout, Auth: true},

		{Method: http.MethodGet, Path: "/order", Handler: d.OrderHandler.GetOrders, Auth: true},
		{Method: http.MethodPost, Path: "/order", Handler: d.OrderHandler.CreateOrder},
		{Method: http.MethodGet, Path: "/order/:id", Handler: d.OrderHandler.GetOrder},
		{Method: http.MethodPatch, Path: "/order/:id", Handler: d.OrderHandler.PatchOrder, Auth: true},

		{Method: http.MethodGet, Path: "/product", Handler: d.ProductHandler.GetProducts},
		{Method: http.MethodGet, Path: "/product/search", Handler: d.ProductHandler.SearchProducts},
		{Method: http.MethodGet, Path: "/product/:id", Handler: d.ProductHandler.GetProduct},
		{Method: http.MethodPost, Path: "/product", Handler: d.ProductHandler.CreateProduct, Auth: true},
		{Method: http.MethodPatch, Path: "/product/:id", Handler: d.ProductHandler.PatchProduct, Auth: true},

		{Method: http.MethodGet, Path: "/category", Handler: d.CategoryHandler.GetCategories},
		{Method: http.MethodPost, Path: "/category", Handler: d.CategoryHandler.CreateCategory, Auth: true},
	}
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "not ready")
			}
		}
		return c.NoContent(http.StatusOK)
	})
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	var base []echo.MiddlewareFunc
	if d.Tokens != nil {
		base = append(base, middleware.Resolve(d.Tokens))
	}
	limiter := validationLimiter(d.ValidationRate)

	for _, prefix := range []string{"", APIPrefix} {
		for _, r := range routes(d) {
			mws := append([]echo.MiddlewareFunc{}, base...)
			if r.Auth {
				mws = append(mws, middleware.RequireAuth)
			}
			if r.Limited && limiter != nil {
				mws = append(mws, limiter)
			}
			e.Add(r.Method, prefix+r.Path, r.Handler, mws...)
		}
	}
}

func validationLimiter(perMinute int) echo.MiddlewareFunc {
	if perMinute <= 0 {
		return nil
	}
	store := echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(perMinute) / 60),
		Burst:     perMinute,
		ExpiresIn: 3 * time.Minute,
	})
	return echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Store: store,
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many code requests")
		},
	})
}
