package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	activeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)

	backendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backend_requests_total",
			Help: "Total number of requests sent to the leads backend",
		},
		[]string{"endpoint", "status"},
	)

	backendLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "backend_request_duration_seconds",
			Help:    "Latency of requests sent to the leads backend",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	directoryLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "directory_loads_total",
			Help: "Total number of full collection loads",
		},
		[]string{"resource", "outcome"},
	)

	directorySize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "directory_records",
			Help: "Records held after the last successful load",
		},
		[]string{"resource"},
	)

	mutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mutations_total",
			Help: "Total number of back-office mutations",
		},
		[]string{"kind", "outcome"},
	)

	integrationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "integration_errors_total",
			Help: "Total number of integration errors",
		},
		[]string{"service"},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		activeConnections.Inc()
		defer activeConnections.Dec()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)
		path := routePattern(r)

		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// routePattern keeps ids out of the path label.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

func RecordIntegrationError(service string) {
	integrationErrors.WithLabelValues(service).Inc()
}

// Recorder feeds the back-office counters. The zero value is ready to use.
type Recorder struct{}

func (Recorder) ObserveLoad(resource string, count int, err error) {
	if err != nil {
		directoryLoads.WithLabelValues(resource, "error").Inc()
		return
	}
	directoryLoads.WithLabelValues(resource, "ok").Inc()
	directorySize.WithLabelValues(resource).Set(float64(count))
}

func (Recorder) ObserveMutation(kind string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	mutationsTotal.WithLabelValues(kind, outcome).Inc()
}

func (Recorder) ObserveRequest(endpoint string, status int, elapsed time.Duration) {
	label := strconv.Itoa(status)
	if status == 0 {
		label = "transport_error"
		RecordIntegrationError("backend")
	}
	backendRequests.WithLabelValues(endpoint, label).Inc()
	backendLatency.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}
