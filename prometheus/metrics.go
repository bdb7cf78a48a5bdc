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
			Name: "insights_login_total",
			Help: "Total number of login attempts",
		},
	)

	// Registration counters
	RegisterCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "insights_register_total",
			Help: "Total number of user registrations",
		},
	)

	// Client operation counter
	ClientOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insights_client_operations_total",
			Help: "Total number of client operations",
		},
		[]string{"operation"}, // operation can be "list", "create", "detail", "update", "delete", "add_user"
	)

	// KPI report operation counter
	ReportOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insights_report_operations_total",
			Help: "Total number of KPI report operations",
		},
		[]string{"operation"}, // operation can be "list", "create", "analytics", "generate"
	)

	// User management operation counter
	UserOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insights_user_operations_total",
			Help: "Total number of user management operations",
		},
		[]string{"operation"},
	)

	// HTTP request counter by endpoint and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insights_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)

	// Error counters
	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insights_auth_errors_total",
			Help: "Total number of authentication and authorization errors",
		},
		[]string{"type"}, // type can be "missing_token", "invalid_token", "staff_required" etc.
	)

	// Validation error counter
	ValidationErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insights_validation_errors_total",
			Help: "Total number of validation failures by resource",
		},
		[]string{"resource"},
	)
)

// Histogram metrics
var (
	// Request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "insights_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	// Database operation duration
	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "insights_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // operation can be "query", "insert", "update", "delete"
	)
)

// Gauge metrics
var (
	// Active tokens
	ActiveTokensGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "insights_active_tokens",
			Help: "Number of currently active authentication tokens",
		},
	)

	// System info
	InfoGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "insights_info",
			Help: "Information about the insights service",
		},
		[]string{"version"},
	)

	// Total clients
	ClientsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "insights_clients",
			Help: "Number of clients currently registered",
		},
	)

	// Reports per client
	ReportsPerClientGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "insights_reports_per_client",
			Help: "Number of KPI reports per client",
		},
		[]string{"client_slug"},
	)
)

func init() {
	// Register counters
	prometheus.MustRegister(LoginCounter)
	prometheus.MustRegister(RegisterCounter)
	prometheus.MustRegister(ClientOperationCounter)
	prometheus.MustRegister(ReportOperationCounter)
	prometheus.MustRegister(UserOperationCounter)
	prometheus.MustRegister(HTTPRequestCounter)
	prometheus.MustRegister(AuthErrorCounter)
	prometheus.MustRegister(ValidationErrorCounter)

	// Register histograms
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(DBOperationDuration)

	// Register gauges
	prometheus.MustRegister(ActiveTokensGauge)
	prometheus.MustRegister(InfoGauge)
	prometheus.MustRegister(ClientsGauge)
	prometheus.MustRegister(ReportsPerClientGauge)

	// Set initial service info
	InfoGauge.With(prometheus.Labels{"version": "1.0.0"}).Set(1)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// TrackDBOperation measures database operation durations
func TrackDBOperation(operation string) func(time.Time) {
	startTime := time.Now()
	return func(endTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DBOperationDuration.With(prometheus.Labels{
			"operation": operation,
		}).Observe(duration)
	}
}

// MetricsMiddleware creates a middleware function that captures metrics for each request
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			// Execute the request handler
			err := next(c)

			// Record request duration
			duration := time.Since(start).Seconds()
			status := strconv.Itoa(c.Response().Status)
			endpoint := c.Path()
			method := c.Request().Method

			// Record metrics
			RequestDuration.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Observe(duration)

			HTTPRequestCounter.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Inc()

			return err
		}
	}
}

// IncreaseActiveTokens increments the active tokens gauge
func IncreaseActiveTokens() {
	ActiveTokensGauge.Inc()
}

// DecreaseActiveTokens decrements the active tokens gauge
func DecreaseActiveTokens() {
	ActiveTokensGauge.Dec()
}

// RecordAuthError records an authentication or authorization error by type
func RecordAuthError(errorType string) {
	AuthErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// RecordValidationError records a validation failure for a resource
func RecordValidationError(resource string) {
	ValidationErrorCounter.With(prometheus.Labels{"resource": resource}).Inc()
}

// RecordClientOperation records a client operation
func RecordClientOperation(operation string) {
	ClientOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// RecordReportOperation records a KPI report operation
func RecordReportOperation(operation string) {
	ReportOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// RecordUserOperation records a user management operation
func RecordUserOperation(operation string) {
	UserOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// UpdateClientCount updates the clients gauge
func UpdateClientCount(count int64) {
	ClientsGauge.Set(float64(count))
}

// UpdateReportsPerClient updates the reports per client gauge
func UpdateReportsPerClient(clientSlug string, count int64) {
	ReportsPerClientGauge.With(prometheus.Labels{"client_slug": clientSlug}).Set(float64(count))
}
