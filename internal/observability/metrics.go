package observability

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

const namespace = "posadmin"

// Metrics holds the console's Prometheus collectors. Each instance owns its
// registry so tests and parallel apps do not share series.
type Metrics struct {
	registry        *prometheus.Registry
	requestTotal    *prometheus.CounterVec
	requestLatency  *prometheus.HistogramVec
	errorTotal      *prometheus.CounterVec
	remoteCallTotal *prometheus.CounterVec
	remoteLatency   *prometheus.HistogramVec
}

// MetricsSnapshot is a point-in-time copy of the counters.
type MetricsSnapshot struct {
	Requests      map[string]int64 `json:"requests"`
	Errors        map[string]int64 `json:"errors"`
	RemoteCalls   map[string]int64 `json:"remote_calls"`
	RemoteAvgMsec map[string]int64 `json:"remote_avg_ms"`
}

var latencyBuckets = []float64{
	0.005, 0.01, 0.025,
	0.05, 0.1, 0.25,
	0.5, 1, 2.5, 5, 10,
}

// NewMetrics registers the collectors on a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	return &Metrics{
		registry: registry,
		requestTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Console HTTP requests by route, method and status.",
		}, []string{"path", "method", "status"}),
		requestLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Console HTTP request latency.",
			Buckets:   latencyBuckets,
		}, []string{"path", "method"}),
		errorTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_errors_total",
			Help:      "Console HTTP errors by route, method and error code.",
		}, []string{"path", "method", "code"}),
		remoteCallTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_calls_total",
			Help:      "Calls to the POS API by method and outcome.",
		}, []string{"method", "outcome"}),
		remoteLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "remote_call_duration_seconds",
			Help:      "Latency of calls to the POS API.",
			Buckets:   latencyBuckets,
		}, []string{"method", "outcome"}),
	}
}

// Registry exposes the collectors for scraping.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordRequest counts a console request and observes its latency.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestTotal.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.requestLatency.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errorTotal.WithLabelValues(path, method, code).Inc()
}

// RecordRemoteCall tracks a call to the POS API by method and outcome kind.
func (m *Metrics) RecordRemoteCall(method, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.remoteCallTotal.WithLabelValues(method, outcome).Inc()
	m.remoteLatency.WithLabelValues(method, outcome).Observe(duration.Seconds())
}

// Snapshot flattens the gathered series into label-joined keys.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{
		Requests:      map[string]int64{},
		Errors:        map[string]int64{},
		RemoteCalls:   map[string]int64{},
		RemoteAvgMsec: map[string]int64{},
	}
	if m == nil {
		return snap
	}
	families, err := m.registry.Gather()
	if err != nil {
		return snap
	}
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			switch strings.TrimPrefix(family.GetName(), namespace+"_") {
			case "http_requests_total":
				snap.Requests[seriesKey(metric, "path", "method", "status")] = int64(metric.GetCounter().GetValue())
			case "http_errors_total":
				snap.Errors[seriesKey(metric, "path", "method", "code")] = int64(metric.GetCounter().GetValue())
			case "remote_calls_total":
				snap.RemoteCalls[seriesKey(metric, "method", "outcome")] = int64(metric.GetCounter().GetValue())
			case "remote_call_duration_seconds":
				h := metric.GetHistogram()
				if n := h.GetSampleCount(); n > 0 {
					avg := h.GetSampleSum() / float64(n) * 1000
					snap.RemoteAvgMsec[seriesKey(metric, "method", "outcome")] = int64(math.Round(avg))
				}
			}
		}
	}
	return snap
}

// seriesKey joins label values in the given order; gathered labels come
// back sorted by name.
func seriesKey(metric *dto.Metric, names ...string) string {
	values := make([]string, len(names))
	for i, name := range names {
		for _, pair := range metric.GetLabel() {
			if pair.GetName() == name {
				values[i] = pair.GetValue()
				break
			}
		}
	}
	return strings.Join(values, "|")
}
