package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	fetchTotal     *prometheus.CounterVec
	fetchDuration  *prometheus.HistogramVec
	cacheTotal     *prometheus.CounterVec
	errorsTotal    *prometheus.CounterVec
	liquidityZ     prometheus.Gauge
	liquidityIndex prometheus.Gauge
	frameRows      prometheus.Gauge
}

// New creates a Prometheus metrics recorder registered on reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		fetchTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finliquidity_fetch_total",
				Help: "Series and price fetches by source, series and outcome",
			},
			[]string{"source", "series", "outcome"},
		),
		fetchDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finliquidity_fetch_duration_seconds",
				Help:    "Duration of upstream fetches in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source"},
		),
		cacheTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finliquidity_cache_requests_total",
				Help: "Cache lookups by kind and result",
			},
			[]string{"kind", "result"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finliquidity_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		liquidityZ: f.NewGauge(prometheus.GaugeOpts{
			Name: "finliquidity_liquidity_z",
			Help: "Latest composite liquidity z-score",
		}),
		liquidityIndex: f.NewGauge(prometheus.GaugeOpts{
			Name: "finliquidity_liquidity_index",
			Help: "Latest liquidity index percentile (0-100)",
		}),
		frameRows: f.NewGauge(prometheus.GaugeOpts{
			Name: "finliquidity_frame_rows",
			Help: "Rows retained in the last computed frame",
		}),
	}
}

// RecordFetch records one upstream fetch.
func (r *Recorder) RecordFetch(source, seriesID string, seconds float64, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.fetchTotal.WithLabelValues(source, seriesID, outcome).Inc()
	r.fetchDuration.WithLabelValues(source).Observe(seconds)
}

// RecordCache records a cache hit or miss.
func (r *Recorder) RecordCache(kind string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheTotal.WithLabelValues(kind, result).Inc()
}

// RecordIndex stores the latest row of a freshly built frame.
func (r *Recorder) RecordIndex(liquidityZ, liquidityIndex float64, rows int) {
	r.liquidityZ.Set(liquidityZ)
	r.liquidityIndex.Set(liquidityIndex)
	r.frameRows.Set(float64(rows))
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// Nop discards everything. Useful in tests.
type Nop struct{}

func (Nop) RecordFetch(string, string, float64, error) {}
func (Nop) RecordCache(string, bool)                   {}
func (Nop) RecordIndex(float64, float64, int)          {}
func (Nop) RecordError(string)                         {}
