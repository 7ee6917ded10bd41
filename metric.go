package arname

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	MetricNameSpace = "arname"
)

var (
	txCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: MetricNameSpace,
			Name:      "tx_total",
			Help:      "delivered transactions by action and status",
		},
		[]string{"action", "status"},
	)
	txLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: MetricNameSpace,
			Name:      "tx_latency_seconds",
			Help:      "time spent delivering a transaction",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"action"},
	)
	registrations = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: MetricNameSpace,
			Name:      "registrations",
			Help:      "registered names by state",
		},
		[]string{"state"},
	)
	cacheEntries = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: MetricNameSpace,
			Name:      "query_cache",
			Help:      "query cache entries, hits and misses",
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(
		txCounter,
		txLatency,
		registrations,
		cacheEntries,
	)
}

func metricTx(action, status string, start time.Time) {
	txCounter.WithLabelValues(action, status).Inc()
	txLatency.WithLabelValues(action).Observe(time.Since(start).Seconds())
}

func metricRegistrations(active, expired int) {
	registrations.WithLabelValues("active").Set(float64(active))
	registrations.WithLabelValues("expired").Set(float64(expired))
}

func metricCache(entries int, hits, misses int64) {
	cacheEntries.WithLabelValues("entries").Set(float64(entries))
	cacheEntries.WithLabelValues("hits").Set(float64(hits))
	cacheEntries.WithLabelValues("misses").Set(float64(misses))
}
