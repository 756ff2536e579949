package auth

import (
	"math/big"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const resultOK = "OK"

var (
	// Counter for verify attempts, by result code
	verifyOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_verify_total",
			Help: "Total number of sign-in verifications, by result.",
		},
		[]string{"result"}, // OK or an error code
	)

	// Counter for identities created on first sign-in, by realm
	identitiesCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_identities_created_total",
			Help: "Total number of identities created on first sign-in.",
		},
		[]string{"realm"},
	)

	oracleReadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "auth_oracle_read_duration_seconds",
			Help:    "Latency of latest-round reads used for freshness checks.",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Round ids exceed float64 precision; the gauge is approximate
	latestRound = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "auth_oracle_latest_round",
			Help: "Latest oracle round observed during verification.",
		},
	)
)

func observeRound(roundID string) {
	if f, ok := new(big.Float).SetString(roundID); ok {
		v, _ := f.Float64()
		latestRound.Set(v)
	}
}
