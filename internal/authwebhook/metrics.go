package authwebhook

import "github.com/prometheus/client_golang/prometheus"

var tokensIssued = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: "kubeplane",
		Subsystem: "authwebhook",
		Name:      "tokens_issued_total",
		Help:      "Total number of newly minted identity tokens",
	},
)

func init() {
	prometheus.MustRegister(tokensIssued)
}
