package transport

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records Prometheus metrics for upstream calls.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight prometheus.Gauge
	pacingTotal      *prometheus.CounterVec
}

// NewMetrics registers the call metrics on registry.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	return &Metrics{
		requestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "signproxy_upstream_requests_total",
				Help: "Total number of upstream calls by method and outcome",
			},
			[]string{"method", "outcome"},
		),
		requestDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "signproxy_upstream_request_duration_seconds",
				Help:    "Duration of upstream calls in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "outcome"},
		),
		requestsInFlight: promauto.With(registry).NewGauge(
			prometheus.GaugeOpts{
				Name: "signproxy_upstream_requests_in_flight",
				Help: "Number of upstream calls currently in flight",
			},
		),
		pacingTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "signproxy_pacing_waits_total",
				Help: "Outbound pacing waits by result (allowed or denied)",
			},
			[]string{"result"},
		),
	}
}

func (m *Metrics) observe(method, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, outcome).Inc()
	m.requestDuration.WithLabelValues(method, outcome).Observe(d.Seconds())
}

func (m *Metrics) start() {
	if m == nil {
		return
	}
	m.requestsInFlight.Inc()
}

func (m *Metrics) end() {
	if m == nil {
		return
	}
	m.requestsInFlight.Dec()
}

func (m *Metrics) pacing(allowed bool) {
	if m == nil {
		return
	}
	result := "denied"
	if allowed {
		result = "allowed"
	}
	m.pacingTotal.WithLabelValues(result).Inc()
}

// outcomeForStatus labels a response by status class, e.g. "2xx".
func outcomeForStatus(status int) string {
	return strconv.Itoa(status/100) + "xx"
}
