package client

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the facade's collectors. A nil *Metrics records nothing.
type Metrics struct {
	requests  *prometheus.CounterVec
	refreshes *prometheus.CounterVec
	latency   *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on reg when reg is
// not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "societyhub_client_requests_total",
				Help: "Outbound API requests by method and status class.",
			},
			[]string{"method", "status"},
		),
		refreshes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "societyhub_client_token_refresh_total",
				Help: "Access token refresh attempts by result.",
			},
			[]string{"result"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "societyhub_client_request_duration_seconds",
				Help:    "Latency of outbound API requests in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
	}

	if reg != nil {
		reg.MustRegister(m.Collectors()...)
	}
	return m
}

func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.requests, m.refreshes, m.latency}
}

// statusClass maps 200 to "2xx" and so on; 0 means no response.
func statusClass(code int) string {
	if code == 0 {
		return "error"
	}
	return strconv.Itoa(code/100) + "xx"
}

func (m *Metrics) observeRequest(method string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, statusClass(code)).Inc()
	m.latency.WithLabelValues(method).Observe(d.Seconds())
}

func (m *Metrics) observeRefresh(ok bool) {
	if m == nil {
		return
	}
	result := "success"
	if !ok {
		result = "failure"
	}
	m.refreshes.WithLabelValues(result).Inc()
}
