package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	// Login counters
	LoginCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "marketplace_login_total",
			Help: "Total number of login attempts",
		},
	)

	// Registration counters
	RegisterCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "marketplace_register_total",
			Help: "Total number of user registrations",
		},
	)

	// Error counters
	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"type"}, // "login_failure", "invalid_token", "wrong_role", "profile_not_found", ...
	)

	// Domain operation counters, one vec per aggregate
	ProductOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_product_operations_total",
			Help: "Total number of product operations",
		},
		[]string{"operation"},
	)

	QuotationOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_quotation_operations_total",
			Help: "Total number of quotation operations",
		},
		[]string{"operation"},
	)

	OrderOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_order_operations_total",
			Help: "Total number of purchase order operations",
		},
		[]string{"operation"},
	)

	PaymentOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_payment_operations_total",
			Help: "Total number of payment operations",
		},
		[]string{"operation"},
	)

	ShipmentOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_shipment_operations_total",
			Help: "Total number of shipment operations",
		},
		[]string{"operation"},
	)

	// Rejected status transitions by entity
	InvalidTransitionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_invalid_transitions_total",
			Help: "Total number of rejected status transitions",
		},
		[]string{"entity"},
	)

	// HTTP request counter by endpoint and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)
)

// Histogram metrics
var (
	// Request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marketplace_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	// Database operation duration
	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marketplace_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // "query", "insert", "update", "delete", "transaction"
	)
)

// InitMetrics registers all metrics with the default registry
func InitMetrics() {
	prometheus.MustRegister(
		LoginCounter,
		RegisterCounter,
		AuthErrorCounter,
		ProductOperationCounter,
		QuotationOperationCounter,
		OrderOperationCounter,
		PaymentOperationCounter,
		ShipmentOperationCounter,
		InvalidTransitionCounter,
		HTTPRequestCounter,
		RequestDuration,
		DBOperationDuration,
	)
}

// RecordAuthError increments the auth error counter for the given type
func RecordAuthError(errorType string) {
	AuthErrorCounter.WithLabelValues(errorType).Inc()
}

// TrackDBOperation returns a function that records the duration of a DB
// operation when invoked. Use with defer:
//
//	defer prometheus.TrackDBOperation("query")(time.Now())
func TrackDBOperation(operation string) func(time.Time) {
	return func(start time.Time) {
		DBOperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}

// MetricsMiddleware creates an Echo middleware that records HTTP request metrics
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			status := c.Response().Status
			method := c.Request().Method
			endpoint := c.Path()
			statusStr := strconv.Itoa(status)

			HTTPRequestCounter.WithLabelValues(endpoint, method, statusStr).Inc()
			RequestDuration.WithLabelValues(endpoint, method, statusStr).Observe(time.Since(start).Seconds())

			return err
		}
	}
}

// GetPrometheusHandler returns an HTTP handler for exposing Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}
