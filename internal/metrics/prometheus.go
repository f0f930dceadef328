// Package metrics provides Prometheus metrics for the sales ledger service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns the service's metrics and the registry they live in.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	// Sales
	salesRecorded prometheus.Counter
	salesRejected *prometheus.CounterVec
	rowsAppended  prometheus.Counter
	salesAmount   prometheus.Gauge

	// Store
	storeCalls        *prometheus.CounterVec
	storeCallDuration *prometheus.HistogramVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewManager creates a metrics manager. Without WithPrometheusRegistry it
// uses a fresh registry so tests and multiple managers never collide.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "pos",
		subsystem:        "ledger",
		histogramBuckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.salesRecorded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sales_recorded_total",
		Help:      "Total number of sales appended to the ledger",
	})
	m.salesRejected = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sales_rejected_total",
		Help:      "Total number of sales that failed, by stage",
	}, []string{"reason"})
	m.rowsAppended = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rows_appended_total",
		Help:      "Total number of ledger rows (units sold) appended",
	})
	// Net of discount rows, so it can go down.
	m.salesAmount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sales_amount",
		Help:      "Net sum of recorded sale totals in the smallest currency unit",
	})

	m.storeCalls = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_calls_total",
		Help:      "Spreadsheet store calls by operation and outcome",
	}, []string{"op", "outcome"})
	m.storeCallDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_call_duration_milliseconds",
		Help:      "Spreadsheet store call latency in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"op"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
}

// SaleRecorded counts a successful sale.
func (m *Manager) SaleRecorded(rows int, total int64) {
	m.salesRecorded.Inc()
	m.rowsAppended.Add(float64(rows))
	m.salesAmount.Add(float64(total))
}

// SaleRejected counts a failed sale by the stage it failed at.
func (m *Manager) SaleRejected(reason string) {
	m.salesRejected.WithLabelValues(reason).Inc()
}

// ObserveStoreCall records one store call.
func (m *Manager) ObserveStoreCall(op string, err error, d time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.storeCalls.WithLabelValues(op, outcome).Inc()
	m.storeCallDuration.WithLabelValues(op).Observe(float64(d.Milliseconds()))
}

// RecordHTTPRequest records one served request.
func (m *Manager) RecordHTTPRequest(endpoint, method string, status int, d time.Duration) {
	code := strconv.Itoa(status)
	m.httpRequests.WithLabelValues(endpoint, method, code).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, code).Observe(float64(d.Milliseconds()))
}

// Handler exposes the registry in the Prometheus text format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}
