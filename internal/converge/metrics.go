package converge

import "github.com/prometheus/client_golang/prometheus"

var (
	// Pass metrics
	passesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kubeplane",
			Subsystem: "converge",
			Name:      "passes_total",
			Help:      "Total number of convergence passes by result",
		},
		[]string{"result"},
	)

	passDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "kubeplane",
			Subsystem: "converge",
			Name:      "pass_duration_seconds",
			Help:      "Duration of a convergence pass in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~10s
		},
	)

	nodeReady = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "kubeplane",
			Subsystem: "converge",
			Name:      "node_ready",
			Help:      "1 when the last pass left the node ready, 0 otherwise",
		},
	)
)

func init() {
	prometheus.MustRegister(passesTotal, passDuration, nodeReady)
}
