// Package metrics 定义服务的 Prometheus 指标
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_gallery_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "image_gallery_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "image_gallery_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// HTTPRejectedTotal 被限流或过载保护拒绝的请求，reason 为 rate_limit 或 busy
	HTTPRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_gallery_http_rejected_total",
			Help: "Total number of HTTP requests rejected before reaching a handler",
		},
		[]string{"scope", "reason"},
	)
)

// Ingestion metrics
var (
	// IngestionsTotal 按结果统计上传，stage 为失败阶段，成功时为 done
	IngestionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_gallery_ingestions_total",
			Help: "Total number of upload attempts by final stage",
		},
		[]string{"stage"},
	)

	IngestionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "image_gallery_ingestion_stage_duration_seconds",
			Help:    "Duration of each ingestion stage in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"stage"},
	)

	IngestedBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "image_gallery_ingested_bytes_total",
			Help: "Total bytes of successfully ingested images",
		},
	)
)

// Search metrics
var (
	// SearchesTotal result: hit, cache_hit, repaired, unavailable, error
	SearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_gallery_searches_total",
			Help: "Total number of searches by result",
		},
		[]string{"result"},
	)

	IndexRepairsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_gallery_index_repairs_total",
			Help: "Total number of index repair attempts",
		},
		[]string{"status"},
	)

	SearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "image_gallery_search_duration_seconds",
			Help:    "Search duration in seconds including repair",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// Maintenance metrics
var (
	ResetsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "image_gallery_resets_total",
			Help: "Total number of reset operations",
		},
	)

	// BlobDeletionsTotal status: deleted, failed
	BlobDeletionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_gallery_blob_deletions_total",
			Help: "Total number of blob deletions during reset or prune",
		},
		[]string{"status"},
	)

	// ReindexedTotal status: indexed, failed, pruned
	ReindexedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_gallery_reindexed_total",
			Help: "Total number of journal entries processed by reindex",
		},
		[]string{"status"},
	)
)
