// Package metrics exposes the service's Prometheus collectors on a private
// registry so tests and multiple instances never collide on the global one.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Placement outcomes.
const (
	OutcomeCreated           = "created"
	OutcomeReplayed          = "replayed"
	OutcomeValidationFailed  = "validation_failed"
	OutcomeInsufficientStock = "insufficient_stock"
	OutcomeStockChanged      = "stock_changed"
	OutcomeFailed            = "failed"
)

type ServerMetrics struct {
	Requests        *prometheus.CounterVec
	LatencyMS       *prometheus.HistogramVec
	OrderPlacements *prometheus.CounterVec
	OutboxPublished *prometheus.CounterVec

	registry *prometheus.Registry
}

func NewServerMetrics(namespace string) *ServerMetrics {
	if namespace == "" {
		namespace = "ecoshop"
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"handler", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"handler"})
	placements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_placements_total",
		Help:      "Order placement attempts by outcome.",
	}, []string{"outcome"})
	outbox := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "outbox_events_total",
		Help:      "Outbox events handled by the relay worker, by result.",
	}, []string{"result"})

	reg := prometheus.NewRegistry()
	reg.MustRegister(requests, latency, placements, outbox,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &ServerMetrics{
		Requests:        requests,
		LatencyMS:       latency,
		OrderPlacements: placements,
		OutboxPublished: outbox,
		registry:        reg,
	}
}

// ObserveRequest records one finished HTTP request.
func (m *ServerMetrics) ObserveRequest(handler, status string, durationMS float64) {
	m.Requests.WithLabelValues(handler, status).Inc()
	m.LatencyMS.WithLabelValues(handler).Observe(durationMS)
}

// RecordPlacement implements the application's placement recorder.
func (m *ServerMetrics) RecordPlacement(outcome string) {
	m.OrderPlacements.WithLabelValues(outcome).Inc()
}

// RecordOutbox counts a relayed ("published") or failed ("failed") event.
func (m *ServerMetrics) RecordOutbox(result string) {
	m.OutboxPublished.WithLabelValues(result).Inc()
}

func (m *ServerMetrics) Registry() *prometheus.Registry { return m.registry }

func (m *ServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
