package authapi

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts auth outcomes worth alerting on.
type Metrics struct {
	Logins         prometheus.Counter
	Refreshes      prometheus.Counter
	RefreshReuses  prometheus.Counter
	Registrations  prometheus.Counter
	FailedAttempts prometheus.Counter
}

// NewMetrics builds and registers the auth counters. Pass nil to skip
// registration (tests).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Logins: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vidcore_auth_logins_total",
			Help: "Successful logins.",
		}),
		Refreshes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vidcore_auth_refresh_rotations_total",
			Help: "Successful refresh-token rotations.",
		}),
		RefreshReuses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vidcore_auth_refresh_reuse_total",
			Help: "Refresh attempts rejected because the token was already used or cleared.",
		}),
		Registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vidcore_auth_registrations_total",
			Help: "Accounts created.",
		}),
		FailedAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vidcore_auth_failed_attempts_total",
			Help: "Failed login and change-password credential checks.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Logins, m.Refreshes, m.RefreshReuses, m.Registrations, m.FailedAttempts)
	}
	return m
}

// The Inc helpers are nil-safe so handlers can run without metrics in tests.

func (m *Metrics) IncLogins() {
	if m != nil {
		m.Logins.Inc()
	}
}

func (m *Metrics) IncRefreshes() {
	if m != nil {
		m.Refreshes.Inc()
	}
}

func (m *Metrics) IncRefreshReuses() {
	if m != nil {
		m.RefreshReuses.Inc()
	}
}

func (m *Metrics) IncRegistrations() {
	if m != nil {
		m.Registrations.Inc()
	}
}

func (m *Metrics) IncFailedAttempts() {
	if m != nil {
		m.FailedAttempts.Inc()
	}
}
