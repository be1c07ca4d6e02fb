package signup

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for the signup counter. Closed set; one per terminal state.
const (
	outcomeSuccess       = "success"
	outcomeRejected      = "rejected_input"
	outcomeConflict      = "conflict"
	outcomeMisconfigured = "misconfigured"
	outcomeInternal      = "internal_error"
)

// Metrics holds Prometheus metrics for the registration pipeline.
type Metrics struct {
	Outcomes *prometheus.CounterVec
}

// NewMetrics creates and registers signup metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Outcomes: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "enroll_signup_total",
			Help: "Total signup requests by terminal outcome.",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) count(outcome string) {
	if m == nil || m.Outcomes == nil {
		return
	}
	m.Outcomes.WithLabelValues(outcome).Inc()
}
