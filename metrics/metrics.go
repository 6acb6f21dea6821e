// Package metrics provides Prometheus metrics for the HTTP server and the
// ingestion pipeline.
//
// HTTP:
//   - http_request_total: Counter with method, path, and status labels
//   - http_request_duration_seconds: Histogram with method and path labels
//   - http_request_in_flight: Gauge for concurrent requests
//
// Ingestion:
//   - bdpm_source_files_total: Counter of sync outcomes per file
//   - bdpm_snapshot_builds_total: Counter of snapshot builds by result
//   - bdpm_snapshot_build_duration_seconds: Histogram of build latency
//   - bdpm_snapshot_rows: Gauge of rows per published table
//   - bdpm_snapshot_published_timestamp_seconds: Gauge of the last publish
//
// All metrics are registered with the Prometheus default registry during
// package initialization.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	RateLimiterBucketsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limiter_buckets_total",
			Help: "Total number of rate limiter buckets (IPs seen in last ~5 minutes)",
		},
	)

	SourceFilesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bdpm_source_files_total",
			Help: "Source file sync outcomes (skipped, unchanged, updated, failed)",
		},
		[]string{"file", "result"},
	)

	SnapshotBuildsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bdpm_snapshot_builds_total",
			Help: "Snapshot builds by result",
		},
		[]string{"result"},
	)

	SnapshotBuildDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bdpm_snapshot_build_duration_seconds",
			Help:    "Time spent parsing and indexing the source files",
			Buckets: []float64{.1, .25, .5, 1, 2, 5, 10, 30},
		},
	)

	SnapshotRows = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bdpm_snapshot_rows",
			Help: "Rows per table in the published snapshot",
		},
		[]string{"table"},
	)

	SnapshotPublishedTimestamp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bdpm_snapshot_published_timestamp_seconds",
			Help: "Unix time of the last snapshot publish",
		},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(RateLimiterBucketsTotal)
	prometheus.MustRegister(SourceFilesTotal)
	prometheus.MustRegister(SnapshotBuildsTotal)
	prometheus.MustRegister(SnapshotBuildDuration)
	prometheus.MustRegister(SnapshotRows)
	prometheus.MustRegister(SnapshotPublishedTimestamp)
}
