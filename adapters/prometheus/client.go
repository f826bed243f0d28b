package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tommy-mor/rama-go/core/metrics"
	"github.com/tommy-mor/rama-go/core/rama"
)

// clientMetrics implements rama.ClientMetrics using Prometheus.
type clientMetrics struct {
	requestDuration   *prometheus.HistogramVec
	requestsTotal     *prometheus.CounterVec
	redirectsTotal    *prometheus.CounterVec
	topologyEndpoints *prometheus.GaugeVec
	transportErrors   *prometheus.CounterVec
}

// NewClientMetrics creates a new Prometheus implementation of rama.ClientMetrics.
func NewClientMetrics(reg prometheus.Registerer) rama.ClientMetrics {
	m := &clientMetrics{
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rama_client_request_duration_seconds",
			Help:    "Routed operation latency in seconds, redirects included",
			Buckets: defaultBuckets,
		}, []string{"operation"}),

		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rama_client_requests_total",
			Help: "Total number of routed operations",
		}, []string{"operation", "success"}),

		redirectsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rama_client_redirects_total",
			Help: "Total number of 308 redirects followed",
		}, []string{"module"}),

		topologyEndpoints: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "rama_client_topology_endpoints",
			Help: "Supervisors last advertised for a module",
		}, []string{"module"}),

		transportErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rama_client_transport_errors_total",
			Help: "Total number of transport-level failures",
		}, []string{"error_type"}),
	}

	reg.MustRegister(
		m.requestDuration,
		m.requestsTotal,
		m.redirectsTotal,
		m.topologyEndpoints,
		m.transportErrors,
	)

	return m
}

func (m *clientMetrics) RequestDuration(op string) metrics.Timer {
	return newTimer(m.requestDuration.WithLabelValues(op))
}

func (m *clientMetrics) RequestCompleted(op string, success bool) {
	m.requestsTotal.WithLabelValues(op, boolToStr(success)).Inc()
}

func (m *clientMetrics) RedirectFollowed(module string) {
	m.redirectsTotal.WithLabelValues(module).Inc()
}

func (m *clientMetrics) TopologyRefreshed(module string, endpoints int) {
	m.topologyEndpoints.WithLabelValues(module).Set(float64(endpoints))
}

func (m *clientMetrics) TransportError(errorType string) {
	m.transportErrors.WithLabelValues(errorType).Inc()
}

var _ rama.ClientMetrics = (*clientMetrics)(nil)
