package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "souk_inventory"

var (
	// HTTP request metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// Purchase order metrics
	PurchaseOrdersCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "purchase_orders_created_total",
			Help:      "Purchase orders created, by trigger and whether capacity reduced the quantity",
		},
		[]string{"trigger", "capacity_issue"},
	)

	PurchaseOrdersReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "purchase_orders_received_total",
			Help:      "Purchase orders received, by whether receipt was capacity limited",
		},
		[]string{"capacity_limited"},
	)

	UnitsReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "units_received_total",
			Help:      "Stock units credited by purchase order receipts",
		},
	)

	// Stock metrics
	StockAdjustments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_adjustments_total",
			Help:      "Stock adjustments applied, by direction",
		},
		[]string{"direction"},
	)

	OperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_errors_total",
			Help:      "Engine operations that failed, by operation",
		},
		[]string{"operation"},
	)
)

// RecordOrderCreated counts a newly created purchase order.
func RecordOrderCreated(trigger string, capacityIssue bool) {
	PurchaseOrdersCreated.WithLabelValues(trigger, strconv.FormatBool(capacityIssue)).Inc()
}

// RecordOrderReceived counts a receipt and the units it added to stock.
func RecordOrderReceived(added int, capacityLimited bool) {
	PurchaseOrdersReceived.WithLabelValues(strconv.FormatBool(capacityLimited)).Inc()
	UnitsReceived.Add(float64(added))
}

// RecordAdjustment counts a stock adjustment.
func RecordAdjustment(delta int) {
	direction := "increase"
	if delta < 0 {
		direction = "decrease"
	}
	StockAdjustments.WithLabelValues(direction).Inc()
}

// RecordError counts a failed engine operation.
func RecordError(operation string) {
	OperationErrors.WithLabelValues(operation).Inc()
}

// Middleware records request count and latency, labelled by chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		path := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		status := strconv.Itoa(rec.status)
		HTTPRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
	})
}

// Handler exposes the default Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
