package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	APILatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "finliquidity",
			Subsystem: "api",
			Name:      "latency_seconds",
			Help:      "Latency of liquidity API endpoints",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	APIErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "finliquidity",
			Subsystem: "api",
			Name:      "errors_total",
			Help:      "Errors by liquidity API endpoint and code",
		},
		[]string{"endpoint", "code"},
	)
)

// Register adds the API collectors to reg once per process.
func Register(reg prometheus.Registerer) {
	once.Do(func() {
		reg.MustRegister(APILatency, APIErrors)
	})
}
