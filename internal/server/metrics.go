package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for job execution, exposed on /metrics.
var (
	// jobsCompletedTotal counts finished jobs by terminal outcome.
	// Labels: outcome (completed, failed, cancelled)
	jobsCompletedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "localsearch",
		Subsystem: "jobs",
		Name:      "completed_total",
		Help:      "Total jobs reaching a terminal state, by outcome",
	}, []string{"outcome"})

	// jobIterationsPerSecond tracks the iteration throughput observed at
	// job completion, labeled by algorithm.
	jobIterationsPerSecond = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "localsearch",
		Subsystem: "jobs",
		Name:      "iterations_per_second",
		Help:      "Iterations per second for completed jobs",
		Buckets:   prometheus.ExponentialBuckets(10, 2, 12), // 10 to ~20k iter/s
	}, []string{"algorithm"})
)

// recordJobOutcome records a terminal job outcome and, for a successful
// completion, the observed iteration throughput.
func recordJobOutcome(outcome, algorithm string, ips float64) {
	jobsCompletedTotal.WithLabelValues(outcome).Inc()
	if outcome == string(StateCompleted) {
		jobIterationsPerSecond.WithLabelValues(algorithm).Observe(ips)
	}
}
