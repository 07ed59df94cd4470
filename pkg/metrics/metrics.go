package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	SlowQueryCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "db_slow_query_count",
			Help: "Total number of database queries over the slow threshold",
		},
	)

	MilestoneSyncCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "milestone_sync_count",
			Help: "Total number of milestone create/update reconciliations",
		},
		[]string{"operation", "status"}, // operation: create, update
	)

	AnnotationSaveCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "annotation_save_count",
			Help: "Total number of annotation save operations",
		},
		[]string{"status"},
	)

	LiteratureUploadCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "literature_upload_count",
			Help: "Total number of literature uploads",
		},
		[]string{"source", "status"}, // source: arXiv, file
	)
)

func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func IncrementSlowQuery(duration time.Duration) {
	SlowQueryCount.Inc()
}

func IncrementMilestoneSync(operation, status string) {
	MilestoneSyncCount.WithLabelValues(operation, status).Inc()
}

func IncrementAnnotationSave(status string) {
	AnnotationSaveCount.WithLabelValues(status).Inc()
}

func IncrementLiteratureUpload(source, status string) {
	LiteratureUploadCount.WithLabelValues(source, status).Inc()
}
