package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "depscan_parsing_seconds",
		Help:    "Time spent parsing a source file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"language"})

	DetectionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "depscan_detection_seconds",
		Help:    "Time spent on a full cycle-detection run.",
		Buckets: prometheus.DefBuckets,
	})

	GraphNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "depscan_graph_nodes_total",
		Help: "Current number of modules in the dependency graph.",
	})

	GraphEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "depscan_graph_edges_total",
		Help: "Current number of import edges in the dependency graph.",
	})

	CyclesDetected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "depscan_cycles_detected",
		Help: "Number of distinct circular dependencies in the last run.",
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "depscan_watcher_events_total",
		Help: "Total number of file system change batches processed.",
	})

	RescansThrottledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "depscan_rescans_throttled_total",
		Help: "Total number of rescans delayed by the rate limiter.",
	})

	SnapshotsSavedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "depscan_snapshots_saved_total",
		Help: "Total number of history snapshots persisted.",
	})
)
