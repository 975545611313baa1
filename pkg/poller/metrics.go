package poller

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// QuotaUsed tracks the current used amount per quota bucket
	QuotaUsed = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cursorwatch_quota_used",
			Help: "Current used amount for a quota bucket",
		},
		[]string{"bucket"},
	)

	// QuotaLimit tracks the configured limit per quota bucket
	QuotaLimit = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cursorwatch_quota_limit",
			Help: "Current limit for a quota bucket",
		},
		[]string{"bucket"},
	)

	// QuotaRemaining tracks the upstream-reported remaining amount
	QuotaRemaining = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cursorwatch_quota_remaining",
			Help: "Upstream-reported remaining amount for a quota bucket",
		},
		[]string{"bucket"},
	)

	// QuotaPercentage tracks the derived percentage per quota bucket
	QuotaPercentage = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cursorwatch_quota_percentage",
			Help: "Derived usage percentage for a quota bucket",
		},
		[]string{"bucket"},
	)

	// FetchTotal counts fetch attempts by outcome
	FetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cursorwatch_fetch_total",
			Help: "Total fetch attempts by result source and error kind",
		},
		[]string{"source", "error_kind"},
	)
)

func init() {
	prometheus.MustRegister(QuotaUsed)
	prometheus.MustRegister(QuotaLimit)
	prometheus.MustRegister(QuotaRemaining)
	prometheus.MustRegister(QuotaPercentage)
	prometheus.MustRegister(FetchTotal)
}
