// Package metrics holds the Prometheus counters of the security layer.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pokereview"

// Authentication outcomes.
const (
	AuthAuthenticated     = "authenticated"
	AuthAnonymous         = "anonymous"
	AuthPrincipalNotFound = "principal_not_found"
	AuthStoreError        = "store_error"
	// token rejections are recorded as "token_" + token.Reason(err)
	AuthTokenPrefix = "token_"
)

// Authorization decisions.
const (
	DecisionAllow           = "allow"
	DecisionUnauthenticated = "unauthenticated"
	DecisionForbidden       = "forbidden"
)

// Login outcomes.
const (
	LoginSuccess            = "success"
	LoginInvalidCredentials = "invalid_credentials"
	LoginError              = "error"
)

// Metrics is a set of counters registered on a private registry.
// A nil *Metrics discards all observations.
type Metrics struct {
	registry *prometheus.Registry

	// Authentications counts bearer token resolution outcomes.
	// Labels:
	//   - outcome: see Auth* constants
	Authentications *prometheus.CounterVec

	// Decisions counts route policy decisions.
	// Labels:
	//   - decision: "allow", "unauthenticated", "forbidden"
	Decisions *prometheus.CounterVec

	// Logins counts login attempts.
	// Labels:
	//   - outcome: "success", "invalid_credentials", "error"
	Logins *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Authentications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "authentications_total",
				Help:      "Total number of requests by bearer token resolution outcome",
			},
			[]string{"outcome"},
		),
		Decisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "authorization_decisions_total",
				Help:      "Total number of route policy decisions",
			},
			[]string{"decision"},
		),
		Logins: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "login_attempts_total",
				Help:      "Total number of login attempts",
			},
			[]string{"outcome"},
		),
	}
}

func (m *Metrics) ObserveAuthentication(outcome string) {
	if m == nil {
		return
	}
	m.Authentications.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveDecision(decision string) {
	if m == nil {
		return
	}
	m.Decisions.WithLabelValues(decision).Inc()
}

func (m *Metrics) ObserveLogin(outcome string) {
	if m == nil {
		return
	}
	m.Logins.WithLabelValues(outcome).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
