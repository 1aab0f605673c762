package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the store's collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "store",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "store",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "store",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "path"},
	)

	emailCodesIssued = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "store",
			Subsystem: "auth",
			Name:      "email_codes_issued_total",
			Help:      "Email verification codes issued.",
		},
	)

	signups = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "store",
			Subsystem: "auth",
			Name:      "signups_total",
			Help:      "Users registered.",
		},
	)

	ordersCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "store",
			Subsystem: "orders",
			Name:      "created_total",
			Help:      "Orders placed.",
		},
	)

	orderRevenue = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "store",
			Subsystem: "orders",
			Name:      "revenue_total",
			Help:      "Sum of order totals at creation, in minor currency units.",
		},
	)

	purged = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "store",
			Subsystem: "jobs",
			Name:      "purged_rows_total",
			Help:      "Rows removed by the purge job.",
		},
		[]string{"table"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		emailCodesIssued,
		signups,
		ordersCreated,
		orderRevenue,
		purged,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency keyed by the route pattern.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			httpInFlight.Inc()
			defer httpInFlight.Dec()

			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			} else if err != nil {
				status = http.StatusInternalServerError
			}
			path := c.Path()
			if path == "" {
				path = "unmatched"
			}

			httpRequests.WithLabelValues(c.Request().Method, path, strconv.Itoa(status)).Inc()
			httpDuration.WithLabelValues(c.Request().Method, path).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

func RecordEmailCode() { emailCodesIssued.Inc() }

func RecordSignup() { signups.Inc() }

func RecordOrder(total int64) {
	ordersCreated.Inc()
	if total > 0 {
		orderRevenue.Add(float64(total))
	}
}

func RecordPurge(table string, n int64) {
	purged.WithLabelValues(table).Add(float64(n))
}
