package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Gas metrics
	GasConsumed = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rollup_gas_consumed",
			Help:    "Gas units charged per ChargeGas call, by dimension",
			Buckets: prometheus.ExponentialBuckets(1000, 2, 16),
		},
		[]string{"dimension"},
	)

	GasOutOfGasTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rollup_gas_out_of_gas_total",
			Help: "Total number of transactions that exhausted their gas limit",
		},
	)

	BaseFee = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "rollup_base_fee",
			Help: "Current base fee per gas dimension",
		},
		[]string{"dimension"},
	)

	// Cache metrics
	CacheHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rollup_cache_hits_total",
			Help: "Total cache hits by layer and namespace",
		},
		[]string{"layer", "namespace"},
	)

	CacheMissesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rollup_cache_misses_total",
			Help: "Total cache misses by layer and namespace",
		},
		[]string{"layer", "namespace"},
	)

	// JMT metrics
	JMTBatchSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rollup_jmt_batch_size",
			Help:    "Number of keys touched per JMT update batch",
			Buckets: prometheus.ExponentialBuckets(1, 2, 16),
		},
		[]string{"namespace"},
	)

	JMTUpdateDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rollup_jmt_update_duration_seconds",
			Help:    "Time taken to apply a JMT update batch",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"namespace"},
	)

	// Witness metrics
	WitnessHintsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rollup_witness_hints_total",
			Help: "Total witness hints recorded, by kind",
		},
		[]string{"kind"},
	)

	// Storage manager metrics
	ForkDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rollup_fork_depth",
			Help: "Number of uncommitted change sets held in the fork window",
		},
	)

	CommitDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rollup_commit_duration_seconds",
			Help:    "Time taken to commit a change set across namespaces",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"namespace"},
	)

	FinalizeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rollup_finalize_duration_seconds",
			Help:    "Time taken to finalize change sets beyond the finality depth",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(GasConsumed)
	prometheus.MustRegister(GasOutOfGasTotal)
	prometheus.MustRegister(BaseFee)
	prometheus.MustRegister(CacheHitsTotal)
	prometheus.MustRegister(CacheMissesTotal)
	prometheus.MustRegister(JMTBatchSize)
	prometheus.MustRegister(JMTUpdateDuration)
	prometheus.MustRegister(WitnessHintsTotal)
	prometheus.MustRegister(ForkDepth)
	prometheus.MustRegister(CommitDuration)
	prometheus.MustRegister(FinalizeDuration)
}

// Handler returns the Prometheus HTTP handler for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations and recording their duration
// to a histogram once the operation completes.
type Timer struct {
	start time.Time
}

// NewTimer starts a timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the elapsed duration to histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// ObserveDurationVec records the elapsed duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
