package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	DiscoveryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "agentscan_discovery_seconds",
		Help:    "Time spent discovering candidate rules documents.",
		Buckets: prometheus.DefBuckets,
	})

	ParseDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "agentscan_parse_seconds",
		Help:    "Time spent parsing a single rules document.",
		Buckets: prometheus.DefBuckets,
	}, []string{"scope"})

	SnapshotDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "agentscan_snapshot_build_seconds",
		Help:    "Time spent building a complete rules snapshot.",
		Buckets: prometheus.DefBuckets,
	})

	SnapshotFiles = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "agentscan_snapshot_files",
		Help: "Number of rules documents in the most recent snapshot.",
	})

	SnapshotRules = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "agentscan_snapshot_rules",
		Help: "Number of rules in the most recent snapshot.",
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agentscan_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	RebuildsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agentscan_rebuilds_total",
		Help: "Total number of snapshot rebuilds triggered by the watcher.",
	})

	RebuildsThrottledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agentscan_rebuilds_throttled_total",
		Help: "Total number of watcher rebuilds suppressed by the rate limiter.",
	})

	CacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agentscan_cache_hits_total",
		Help: "Total number of snapshot cache hits.",
	})

	CacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agentscan_cache_misses_total",
		Help: "Total number of snapshot cache misses.",
	})
)
