// Package telemetry provides Prometheus metrics and correlation-id aware logging helpers.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// Counters
	IngestsArchived  prometheus.Counter
	IngestsDuplicate prometheus.Counter
	IngestsRejected  prometheus.Counter
	IngestsFailed    prometheus.Counter
	StageFailures    prometheus.Counter
	UploadFailures   prometheus.Counter
	SyncRuns         prometheus.Counter
	SyncScanned      prometheus.Counter
	SyncArchived     prometheus.Counter
	SyncItemFailures prometheus.Counter

	// Histograms (seconds)
	StageDuration  prometheus.Observer
	UploadDuration prometheus.Observer
)

// Init registers metrics (idempotent).
func Init() {
	once.Do(func() {
		IngestsArchived = promauto.NewCounter(prometheus.CounterOpts{Name: "archiver_ingests_archived_total", Help: "Number of live posts archived"})
		IngestsDuplicate = promauto.NewCounter(prometheus.CounterOpts{Name: "archiver_ingests_duplicate_total", Help: "Number of live posts already recorded (duplicate delivery)"})
		IngestsRejected = promauto.NewCounter(prometheus.CounterOpts{Name: "archiver_ingests_rejected_total", Help: "Number of live posts rejected for missing/non-video attachment"})
		IngestsFailed = promauto.NewCounter(prometheus.CounterOpts{Name: "archiver_ingests_failed_total", Help: "Number of live posts that failed staging, archival, or the ledger write"})
		StageFailures = promauto.NewCounter(prometheus.CounterOpts{Name: "archiver_stage_failures_total", Help: "Number of failed staging downloads"})
		UploadFailures = promauto.NewCounter(prometheus.CounterOpts{Name: "archiver_upload_failures_total", Help: "Number of failed object-storage uploads"})
		SyncRuns = promauto.NewCounter(prometheus.CounterOpts{Name: "archiver_sync_runs_total", Help: "Number of sync runs started"})
		SyncScanned = promauto.NewCounter(prometheus.CounterOpts{Name: "archiver_sync_scanned_total", Help: "Number of historical messages scanned"})
		SyncArchived = promauto.NewCounter(prometheus.CounterOpts{Name: "archiver_sync_archived_total", Help: "Number of historical videos archived"})
		SyncItemFailures = promauto.NewCounter(prometheus.CounterOpts{Name: "archiver_sync_item_failures_total", Help: "Number of historical items that failed and were skipped"})
		StageDuration = promauto.NewHistogram(prometheus.HistogramOpts{Name: "archiver_stage_duration_seconds", Help: "Staging download duration seconds", Buckets: prometheus.DefBuckets})
		UploadDuration = promauto.NewHistogram(prometheus.HistogramOpts{Name: "archiver_upload_duration_seconds", Help: "Object-storage upload duration seconds", Buckets: prometheus.DefBuckets})
	})
}

// Guarded increment helpers so core code stays safe when Init was not called
// (unit tests exercise the pipeline without a metrics registry).

func IncIngestArchived()  { inc(IngestsArchived) }
func IncIngestDuplicate() { inc(IngestsDuplicate) }
func IncIngestRejected()  { inc(IngestsRejected) }
func IncIngestFailed()    { inc(IngestsFailed) }
func IncStageFailed()     { inc(StageFailures) }
func IncUploadFailed()    { inc(UploadFailures) }
func IncSyncRuns()        { inc(SyncRuns) }
func IncSyncScanned()     { inc(SyncScanned) }
func IncSyncArchived()    { inc(SyncArchived) }
func IncSyncItemFailed()  { inc(SyncItemFailures) }

func inc(c prometheus.Counter) {
	if c != nil {
		c.Inc()
	}
}

// ObserveStageDuration records one staging download duration.
func ObserveStageDuration(d time.Duration) {
	if StageDuration != nil {
		StageDuration.Observe(d.Seconds())
	}
}

// ObserveUploadDuration records one upload duration.
func ObserveUploadDuration(d time.Duration) {
	if UploadDuration != nil {
		UploadDuration.Observe(d.Seconds())
	}
}

// Correlation ID helpers ----------------------------------------------------

type corrKeyType struct{}

var corrKey corrKeyType

// WithCorrelation returns a new context embedding the correlation id.
func WithCorrelation(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, corrKey, id)
}

// GetCorrelation returns the correlation id or empty string.
func GetCorrelation(ctx context.Context) string {
	if s, ok := ctx.Value(corrKey).(string); ok {
		return s
	}
	return ""
}
