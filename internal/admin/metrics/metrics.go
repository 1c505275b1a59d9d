package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks dashboard authentication activity.
type Metrics struct {
	SignIns        *prometheus.CounterVec
	GatewayActions *prometheus.CounterVec
}

// New registers the collectors with the provided registerer. A nil registerer
// falls back to the process-wide default.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		SignIns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tracker_admin_signins_total",
			Help: "Sign-in attempts against the tracker backend by outcome",
		}, []string{"outcome"}),
		GatewayActions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tracker_admin_gateway_actions_total",
			Help: "Session gateway actions applied by kind",
		}, []string{"action"}),
	}
}

// ObserveSignIn records a sign-in attempt outcome (ok, rejected, or error).
func (m *Metrics) ObserveSignIn(outcome string) {
	if m == nil {
		return
	}
	m.SignIns.WithLabelValues(outcome).Inc()
}

// ObserveGatewayAction records an applied gateway action (login or logout).
func (m *Metrics) ObserveGatewayAction(action string) {
	if m == nil {
		return
	}
	m.GatewayActions.WithLabelValues(action).Inc()
}
