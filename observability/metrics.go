package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// Evaluation metrics
	EvaluationRequestsTotal *prometheus.CounterVec
	EvaluationDuration      *prometheus.HistogramVec
	EvaluationErrorsTotal   *prometheus.CounterVec
	SignalsTotal            *prometheus.CounterVec
	SignalConfidence        *prometheus.HistogramVec

	// External API metrics
	ExternalAPIRequestsTotal *prometheus.CounterVec
	ExternalAPIErrorsTotal   *prometheus.CounterVec
	ExternalAPIDuration      *prometheus.HistogramVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryTotal    *prometheus.CounterVec
	DBErrorsTotal   *prometheus.CounterVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Circuit breaker metrics
	CircuitBreakerState *prometheus.GaugeVec
	CircuitBreakerTrips *prometheus.CounterVec

	// Market data cache metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec
}

// defaultBuckets are the default histogram buckets for duration metrics (in seconds)
var defaultBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}

// confidenceBuckets are histogram buckets for confidence metrics (0 to 100)
var confidenceBuckets = []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100}

// globalMetrics is the global metrics instance
var globalMetrics *Metrics

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)

	m := &Metrics{
		EvaluationRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "vnsignal",
				Subsystem: "evaluation",
				Name:      "requests_total",
				Help:      "Total number of symbol evaluation requests",
			},
			[]string{"symbol"},
		),
		EvaluationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "vnsignal",
				Subsystem: "evaluation",
				Name:      "duration_seconds",
				Help:      "Duration of symbol evaluations in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"symbol", "status"},
		),
		EvaluationErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "vnsignal",
				Subsystem: "evaluation",
				Name:      "errors_total",
				Help:      "Total number of evaluation errors",
			},
			[]string{"symbol", "error_type"},
		),
		SignalsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "vnsignal",
				Subsystem: "signal",
				Name:      "emitted_total",
				Help:      "Total number of emitted signals by horizon and verdict",
			},
			[]string{"horizon", "signal"},
		),
		SignalConfidence: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "vnsignal",
				Subsystem: "signal",
				Name:      "confidence",
				Help:      "Distribution of signal confidence levels",
				Buckets:   confidenceBuckets,
			},
			[]string{"horizon"},
		),

		ExternalAPIRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "vnsignal",
				Subsystem: "external_api",
				Name:      "requests_total",
				Help:      "Total number of external API requests",
			},
			[]string{"service", "operation"},
		),
		ExternalAPIErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "vnsignal",
				Subsystem: "external_api",
				Name:      "errors_total",
				Help:      "Total number of external API errors",
			},
			[]string{"service", "operation", "error_type"},
		),
		ExternalAPIDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "vnsignal",
				Subsystem: "external_api",
				Name:      "duration_seconds",
				Help:      "Duration of external API calls in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"service", "operation"},
		),

		DBQueryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "vnsignal",
				Subsystem: "database",
				Name:      "query_duration_seconds",
				Help:      "Duration of database queries in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"operation", "table"},
		),
		DBQueryTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "vnsignal",
				Subsystem: "database",
				Name:      "queries_total",
				Help:      "Total number of database queries",
			},
			[]string{"operation", "table"},
		),
		DBErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "vnsignal",
				Subsystem: "database",
				Name:      "errors_total",
				Help:      "Total number of database errors",
			},
			[]string{"operation", "table"},
		),

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "vnsignal",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "vnsignal",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "vnsignal",
				Subsystem: "http",
				Name:      "response_size_bytes",
				Help:      "Size of HTTP responses in bytes",
				Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
			},
			[]string{"method", "path"},
		),

		CircuitBreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "vnsignal",
				Subsystem: "circuit_breaker",
				Name:      "state",
				Help:      "Current state of circuit breakers (0=closed, 1=half-open, 2=open)",
			},
			[]string{"service"},
		),
		CircuitBreakerTrips: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "vnsignal",
				Subsystem: "circuit_breaker",
				Name:      "trips_total",
				Help:      "Total number of circuit breaker trips",
			},
			[]string{"service"},
		),

		CacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "vnsignal",
				Subsystem: "cache",
				Name:      "hits_total",
				Help:      "Total number of market data cache hits",
			},
			[]string{"data_type"},
		),
		CacheMissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "vnsignal",
				Subsystem: "cache",
				Name:      "misses_total",
				Help:      "Total number of market data cache misses",
			},
			[]string{"data_type"},
		),
	}

	return m
}

// InitMetrics initializes the global metrics instance
func InitMetrics() *Metrics {
	globalMetrics = NewMetrics(nil)
	return globalMetrics
}

// GetMetrics returns the global metrics instance
func GetMetrics() *Metrics {
	if globalMetrics == nil {
		return InitMetrics()
	}
	return globalMetrics
}

// RecordEvaluationRequest records a symbol evaluation request
func (m *Metrics) RecordEvaluationRequest(symbol string) {
	m.EvaluationRequestsTotal.WithLabelValues(symbol).Inc()
}

// RecordEvaluationDuration records the duration of a symbol evaluation
func (m *Metrics) RecordEvaluationDuration(symbol, status string, duration time.Duration) {
	m.EvaluationDuration.WithLabelValues(symbol, status).Observe(duration.Seconds())
}

// RecordEvaluationError records an evaluation error
func (m *Metrics) RecordEvaluationError(symbol, errorType string) {
	m.EvaluationErrorsTotal.WithLabelValues(symbol, errorType).Inc()
}

// RecordSignal records an emitted signal
func (m *Metrics) RecordSignal(horizon, signal string) {
	m.SignalsTotal.WithLabelValues(horizon, signal).Inc()
}

// RecordConfidence records the confidence of an emitted signal
func (m *Metrics) RecordConfidence(horizon string, confidence float64) {
	m.SignalConfidence.WithLabelValues(horizon).Observe(confidence)
}

// RecordExternalAPIRequest records an external API request
func (m *Metrics) RecordExternalAPIRequest(service, operation string) {
	m.ExternalAPIRequestsTotal.WithLabelValues(service, operation).Inc()
}

// RecordExternalAPIError records an external API error
func (m *Metrics) RecordExternalAPIError(service, operation, errorType string) {
	m.ExternalAPIErrorsTotal.WithLabelValues(service, operation, errorType).Inc()
}

// RecordExternalAPIDuration records the duration of an external API call
func (m *Metrics) RecordExternalAPIDuration(service, operation string, duration time.Duration) {
	m.ExternalAPIDuration.WithLabelValues(service, operation).Observe(duration.Seconds())
}

// RecordDBQuery records a database query
func (m *Metrics) RecordDBQuery(operation, table string, duration time.Duration) {
	m.DBQueryTotal.WithLabelValues(operation, table).Inc()
	m.DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

// RecordDBError records a database error
func (m *Metrics) RecordDBError(operation, table string) {
	m.DBErrorsTotal.WithLabelValues(operation, table).Inc()
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, statusCode string, duration time.Duration, responseSize int) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
}

// SetCircuitBreakerState sets the current state of a circuit breaker
func (m *Metrics) SetCircuitBreakerState(service string, state int) {
	m.CircuitBreakerState.WithLabelValues(service).Set(float64(state))
}

// RecordCircuitBreakerTrip records a circuit breaker trip
func (m *Metrics) RecordCircuitBreakerTrip(service string) {
	m.CircuitBreakerTrips.WithLabelValues(service).Inc()
}

// RecordCacheHit records a market data cache hit
func (m *Metrics) RecordCacheHit(dataType string) {
	m.CacheHitsTotal.WithLabelValues(dataType).Inc()
}

// RecordCacheMiss records a market data cache miss
func (m *Metrics) RecordCacheMiss(dataType string) {
	m.CacheMissesTotal.WithLabelValues(dataType).Inc()
}

// Timer is a helper for timing operations
type Timer struct {
	start   time.Time
	metrics *Metrics
}

// NewTimer creates a new timer
func (m *Metrics) NewTimer() *Timer {
	return &Timer{
		start:   time.Now(),
		metrics: m,
	}
}

// ObserveEvaluation records the evaluation duration and status
func (t *Timer) ObserveEvaluation(symbol, status string) {
	t.metrics.RecordEvaluationDuration(symbol, status, time.Since(t.start))
}

// ObserveExternalAPI records the external API duration
func (t *Timer) ObserveExternalAPI(service, operation string) {
	t.metrics.RecordExternalAPIDuration(service, operation, time.Since(t.start))
}

// ObserveDB records the database query duration
func (t *Timer) ObserveDB(operation, table string) {
	t.metrics.RecordDBQuery(operation, table, time.Since(t.start))
}

// Duration returns the elapsed time
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
