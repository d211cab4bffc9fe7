package observability

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "taskboard",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "taskboard",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	transactions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "taskboard",
			Subsystem: "store",
			Name:      "transactions_total",
			Help:      "Mutation transactions by operation, outcome and the phase they ended in.",
		},
		[]string{"op", "outcome", "phase"},
	)
	transactionRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "taskboard",
			Subsystem: "store",
			Name:      "transaction_retries_total",
			Help:      "Mutation transactions retried after a conflict abort.",
		},
		[]string{"op"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, transactions, transactionRetries)
	})
}

// MetricsHandler serves the default registry.
func MetricsHandler() http.Handler {
	RegisterMetrics()
	return promhttp.Handler()
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}

// RecordTransaction counts a finished transaction. outcome is "commit" or
// "abort"; phase is where an abort happened.
func RecordTransaction(op, outcome, phase string) {
	RegisterMetrics()
	transactions.WithLabelValues(op, outcome, phase).Inc()
}

func RecordTransactionRetry(op string) {
	RegisterMetrics()
	transactionRetries.WithLabelValues(op).Inc()
}
