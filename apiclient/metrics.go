package apiclient

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Request outcomes
const (
	OutcomeOK       = "ok"
	OutcomeAPIError = "api_error"
	OutcomeNetwork  = "network_error"
	OutcomeRetried  = "retried"
)

// Refresh results
const (
	RefreshSucceeded = "succeeded"
	RefreshFailed    = "failed"
	RefreshNoToken   = "no_refresh_token"
)

// Metrics counts pipeline activity
type Metrics struct {
	requests  *prometheus.CounterVec
	refreshes *prometheus.CounterVec
	redirects prometheus.Counter
}

// NewMetrics registers the pipeline collectors on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "event_portal",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Backend calls by method and outcome.",
		}, []string{"method", "outcome"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "event_portal",
			Subsystem: "api",
			Name:      "token_refreshes_total",
			Help:      "Access token refresh attempts by result.",
		}, []string{"result"}),
		redirects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "event_portal",
			Subsystem: "api",
			Name:      "login_redirects_total",
			Help:      "Sessions ended with a redirect to the login page.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.refreshes, m.redirects)
	}
	return m
}

// Metric accessors are nil safe so a client without metrics pays nothing

func (m *Metrics) request(method, outcome string) {
	if m != nil {
		m.requests.WithLabelValues(method, outcome).Inc()
	}
}

func (m *Metrics) refresh(result string) {
	if m != nil {
		m.refreshes.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) redirect() {
	if m != nil {
		m.redirects.Inc()
	}
}

// Requests exposes the request counter, for tests and dashboards
func (m *Metrics) Requests() *prometheus.CounterVec { return m.requests }

func (m *Metrics) Refreshes() *prometheus.CounterVec { return m.refreshes }

func (m *Metrics) Redirects() prometheus.Counter { return m.redirects }
