package metrics

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Ping outcomes recorded by TrackingMetrics.ObservePing
const (
	ResultAccepted     = "accepted"
	ResultUnauthorized = "unauthorized"
	ResultInvalid      = "invalid"
	ResultError        = "error"
)

// TrackingMetrics holds the ingestion collectors
type TrackingMetrics struct {
	registry *prometheus.Registry
	pings    *prometheus.CounterVec
	signals  *prometheus.CounterVec
	score    prometheus.Histogram
}

// NewTrackingMetrics registers the ingestion collectors, plus the Go runtime
// and process collectors, on a fresh registry
func NewTrackingMetrics() *TrackingMetrics {
	m := &TrackingMetrics{
		registry: prometheus.NewRegistry(),
		pings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ridertrack",
			Name:      "pings_total",
			Help:      "Location pings received, by outcome.",
		}, []string{"result"}),
		signals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ridertrack",
			Name:      "fraud_signals_total",
			Help:      "Fraud signals raised on accepted pings, by signal.",
		}, []string{"signal"}),
		score: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ridertrack",
			Name:      "fraud_score",
			Help:      "Fraud score of accepted pings.",
			Buckets:   []float64{0, 10, 25, 40, 50, 60, 75, 90, 100},
		}),
	}

	m.registry.MustRegister(
		m.pings,
		m.signals,
		m.score,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObservePing counts one ping with the given result
func (m *TrackingMetrics) ObservePing(result string) {
	m.pings.WithLabelValues(result).Inc()
}

// ObserveScore records the score and signals of an accepted ping
func (m *TrackingMetrics) ObserveScore(score int, signals []string) {
	m.score.Observe(float64(score))
	for _, s := range signals {
		m.signals.WithLabelValues(s).Inc()
	}
}

// PingCount returns the current count for one ping result
func (m *TrackingMetrics) PingCount(result string) float64 {
	families, err := m.registry.Gather()
	if err != nil {
		return 0
	}
	for _, mf := range families {
		if mf.GetName() != "ridertrack_pings_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "result" && label.GetValue() == result {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

// Registry exposes the underlying registry, mostly for tests
func (m *TrackingMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format
func (m *TrackingMetrics) Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
