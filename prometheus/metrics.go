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
	LoginCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mission_login_total",
			Help: "Total number of login attempts",
		},
	)

	RegisterCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mission_register_total",
			Help: "Total number of user registrations",
		},
	)

	DemoLoginCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mission_demo_login_total",
			Help: "Total number of demo login attempts by role",
		},
		[]string{"role"},
	)

	DonationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mission_donations_total",
			Help: "Total number of donations recorded by status",
		},
		[]string{"status"},
	)

	PostOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mission_post_operations_total",
			Help: "Total number of post operations",
		},
		[]string{"operation"}, // "create", "update", "delete", "hide", "flag", ...
	)

	ReactionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mission_reactions_total",
			Help: "Total number of post reactions toggled",
		},
		[]string{"kind", "direction"}, // direction is "add" or "remove"
	)

	UploadCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mission_uploads_total",
			Help: "Total number of media uploads by outcome",
		},
		[]string{"outcome"},
	)

	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mission_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"type"},
	)

	TenantErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mission_tenant_errors_total",
			Help: "Total number of tenant-scoping errors",
		},
		[]string{"tenant_id", "error_type"},
	)
)

// Histogram metrics
var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mission_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mission_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

// Gauge metrics
var (
	FeedStoreRowsGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mission_feed_store_rows",
			Help: "Rows held per table in the in-memory feed store",
		},
		[]string{"table"},
	)

	InfoGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mission_service_info",
			Help: "Service information",
		},
		[]string{"version"},
	)
)

func init() {
	prometheus.MustRegister(LoginCounter)
	prometheus.MustRegister(RegisterCounter)
	prometheus.MustRegister(DemoLoginCounter)
	prometheus.MustRegister(DonationCounter)
	prometheus.MustRegister(PostOperationCounter)
	prometheus.MustRegister(ReactionCounter)
	prometheus.MustRegister(UploadCounter)
	prometheus.MustRegister(AuthErrorCounter)
	prometheus.MustRegister(TenantErrorCounter)

	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(DBOperationDuration)

	prometheus.MustRegister(FeedStoreRowsGauge)
	prometheus.MustRegister(InfoGauge)

	InfoGauge.With(prometheus.Labels{"version": "1.0.0"}).Set(1)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// TrackDBOperation measures database operation durations; use with defer:
//
//	defer prometheus.TrackDBOperation("query")(time.Now())
func TrackDBOperation(operation string) func(time.Time) {
	startTime := time.Now()
	return func(time.Time) {
		DBOperationDuration.With(prometheus.Labels{
			"operation": operation,
		}).Observe(time.Since(startTime).Seconds())
	}
}

// MetricsMiddleware captures request duration metrics for each request
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			RequestDuration.With(prometheus.Labels{
				"endpoint": c.Path(),
				"method":   c.Request().Method,
				"status":   strconv.Itoa(c.Response().Status),
			}).Observe(time.Since(start).Seconds())

			return err
		}
	}
}

// RecordAuthError records an authentication error by type
func RecordAuthError(errorType string) {
	AuthErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// RecordTenantError records a tenant-scoping error
func RecordTenantError(tenantID uint, errorType string) {
	TenantErrorCounter.With(prometheus.Labels{
		"tenant_id":  strconv.FormatUint(uint64(tenantID), 10),
		"error_type": errorType,
	}).Inc()
}

// RecordPostOperation records a post operation by name
func RecordPostOperation(operation string) {
	PostOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// RecordFeedStoreSize sets the row gauge for one feed-store table
func RecordFeedStoreSize(table string, rows int) {
	FeedStoreRowsGauge.With(prometheus.Labels{"table": table}).Set(float64(rows))
}
