package authapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts authentication outcomes by operation.
type Metrics struct {
	outcomes *prometheus.CounterVec
}

// NewMetrics registers the auth metric family on reg. A nil reg uses
// the default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &Metrics{
		outcomes: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "atrium",
			Subsystem: "auth",
			Name:      "outcomes_total",
			Help:      "Authentication operation outcomes.",
		}, []string{"op", "outcome"}),
	}
}

func (m *Metrics) observe(op, outcome string) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(op, outcome).Inc()
}
