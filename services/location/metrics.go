package location

import "github.com/prometheus/client_golang/prometheus"

// RegisterMetrics exposes the number of live sessions held by r.
func RegisterMetrics(reg prometheus.Registerer, r *Registry) {
	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "coolie",
		Subsystem: "location",
		Name:      "active_sessions",
		Help:      "Sessions currently held in memory.",
	}, func() float64 { return float64(r.Len()) }))
}
