package pricing

import "github.com/prometheus/client_golang/prometheus"

// Step outcomes recorded by the cascade counter.
const (
	outcomeHit     = "hit"
	outcomeEmpty   = "empty"
	outcomeSkipped = "skipped"
	outcomeError   = "error"
)

// Metrics counts cascade step outcomes. A nil *Metrics records nothing.
type Metrics struct {
	steps       *prometheus.CounterVec
	resolutions *prometheus.CounterVec
}

// NewMetrics registers the pricing collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coolie",
			Subsystem: "pricing",
			Name:      "cascade_steps_total",
			Help:      "Pricing cascade steps by strategy and outcome.",
		}, []string{"step", "outcome"}),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coolie",
			Subsystem: "pricing",
			Name:      "resolutions_total",
			Help:      "Completed tier resolutions by resulting source.",
		}, []string{"source"}),
	}
	reg.MustRegister(m.steps, m.resolutions)
	return m
}

func (m *Metrics) step(name, outcome string) {
	if m == nil {
		return
	}
	m.steps.WithLabelValues(name, outcome).Inc()
}

func (m *Metrics) resolved(source string) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(source).Inc()
}
