package treasury

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	SimulationRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "treasury_simulation_runs_total",
		Help: "Simulation runs by scenario and outcome.",
	}, []string{"scenario", "outcome"})

	SimulationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "treasury_simulation_duration_seconds",
		Help:    "Time spent simulating one request.",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
	})

	SimulatedPaths = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "treasury_simulated_paths_total",
		Help: "Total number of simulated price paths.",
	})
)

var registerOnce sync.Once

// RegisterMetrics registers the simulation metrics with the default
// prometheus registry. Later calls are no-ops.
func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(SimulationRuns)
		prometheus.MustRegister(SimulationDuration)
		prometheus.MustRegister(SimulatedPaths)
	})
}
