package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "lumenpick"

// Engine Prometheus metrics.
var (
	RunsCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_created_total",
			Help:      "Total number of run create attempts",
		},
		[]string{"status"}, // "ok" / "upstream_error" / "storage_error"
	)

	RunCreateDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_create_duration_seconds",
			Help:      "Run create duration in seconds, catalog fetch included",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	CatalogFetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_fetch_total",
			Help:      "Catalog snapshot fetches",
		},
		[]string{"source", "status"},
	)

	CatalogItems = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_items",
			Help:      "Items in the last fetched catalog snapshot",
		},
		[]string{"source"},
	)

	RankCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rank_cache_total",
			Help:      "Rank cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	CatalogBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_breaker_state",
			Help:      "Catalog upstream circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)

var engineMetricsRegistered bool

// RegisterEngineMetrics registers Prometheus engine metrics. Must be called once from main.
func RegisterEngineMetrics() {
	if engineMetricsRegistered {
		return
	}
	prometheus.MustRegister(RunsCreatedTotal)
	prometheus.MustRegister(RunCreateDuration)
	prometheus.MustRegister(CatalogFetchTotal)
	prometheus.MustRegister(CatalogItems)
	prometheus.MustRegister(RankCacheTotal)
	prometheus.MustRegister(CatalogBreakerState)
	engineMetricsRegistered = true
}
