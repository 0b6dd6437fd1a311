package authz

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	decisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "authz",
		Subsystem: "route",
		Name:      "decisions_total",
		Help:      "Route-level authorization decisions broken down by mode and result.",
	}, []string{"mode", "result"})

	debugLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "authz",
		Subsystem: "debug",
		Name:      "latency_seconds",
		Help:      "Latency distribution for Authz debug evaluations.",
		Buckets: []float64{
			0.0005, 0.001, 0.002, 0.005,
			0.01, 0.02, 0.05, 0.1,
			0.2, 0.5, 1, 2,
		},
	}, []string{"mode", "result"})
)

func resultLabel(allowed bool) string {
	if allowed {
		return "allowed"
	}
	return "denied"
}

func recordDecision(mode Mode, allowed bool) {
	decisions.WithLabelValues(string(mode), resultLabel(allowed)).Inc()
}

func recordDebugMetrics(mode Mode, allowed bool, latency time.Duration) {
	debugLatency.WithLabelValues(string(mode), resultLabel(allowed)).Observe(latency.Seconds())
}
