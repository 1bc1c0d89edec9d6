package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	finalizationRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "checkout",
			Subsystem: "finalization",
			Name:      "runs_total",
			Help:      "Finalization runs by terminal outcome.",
		},
		[]string{"outcome"},
	)

	finalizationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "checkout",
			Subsystem: "finalization",
			Name:      "duration_seconds",
			Help:      "Wall time from payment success to terminal transition.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 15},
		},
	)

	deadlineForced = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "checkout",
			Subsystem: "finalization",
			Name:      "deadline_forced_total",
			Help:      "Finalizations forced to succeed by the deadline timer.",
		},
	)

	persistenceWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "checkout",
			Subsystem: "persistence",
			Name:      "writes_total",
			Help:      "Persistence writes by target and outcome.",
		},
		[]string{"target", "outcome"},
	)

	cartClearFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "checkout",
			Subsystem: "cart",
			Name:      "clear_failures_total",
			Help:      "Cart clear attempts that failed after a confirmed order.",
		},
	)
)

func observePersistence(target string, succeeded bool) {
	outcome := "failed"
	if succeeded {
		outcome = "succeeded"
	}
	persistenceWrites.WithLabelValues(target, outcome).Inc()
}
