package api

import "github.com/prometheus/client_golang/prometheus"

type metrics struct {
	mints     *prometheus.CounterVec
	estimates *prometheus.CounterVec
	queries   *prometheus.CounterVec
	uploads   *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		mints: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nft_studio",
			Name:      "mints_total",
			Help:      "Mint submissions by outcome.",
		}, []string{"outcome"}),
		estimates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nft_studio",
			Name:      "gas_estimates_total",
			Help:      "Gas estimation cycles by terminal status.",
		}, []string{"status"}),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nft_studio",
			Name:      "refreshes_total",
			Help:      "Capability and gallery refreshes by outcome.",
		}, []string{"outcome"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nft_studio",
			Name:      "uploads_total",
			Help:      "Image uploads by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.mints, m.estimates, m.queries, m.uploads)
	return m
}

// outcome labels an operation result for the counters.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case isStale(err):
		return "stale"
	case isValidation(err):
		return "invalid"
	default:
		return "error"
	}
}
