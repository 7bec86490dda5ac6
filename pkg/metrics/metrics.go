package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Sync dispatcher metrics
	SyncRecordsQueued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "turtlcore_sync_records_queued_total",
			Help: "Total number of outgoing sync records queued by action and type",
		},
		[]string{"action", "type"},
	)

	SyncRecordsApplied = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "turtlcore_sync_records_applied_total",
			Help: "Total number of incoming sync records applied by action and type",
		},
		[]string{"action", "type"},
	)

	DispatchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "turtlcore_dispatch_duration_seconds",
			Help:    "Time taken to dispatch a sync record, by action and type",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"action", "type"},
	)

	DispatchErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "turtlcore_dispatch_errors_total",
			Help: "Total number of dispatch failures by error kind",
		},
		[]string{"kind"},
	)

	// Crypto worker pool metrics
	CryptoPoolQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "turtlcore_crypto_pool_queue_depth",
			Help: "Number of crypto operations currently queued and not yet picked up by a worker",
		},
	)

	CryptoOpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "turtlcore_crypto_op_duration_seconds",
			Help:    "Time taken by a single crypto-pool operation",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	// Local store metrics
	StoreOpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "turtlcore_store_op_duration_seconds",
			Help:    "Time taken by a local store operation",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op", "table"},
	)

	// File store metrics
	FileBytesWritten = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "turtlcore_file_bytes_written_total",
			Help: "Total bytes of encrypted file data written to disk",
		},
	)

	FileBytesRead = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "turtlcore_file_bytes_read_total",
			Help: "Total bytes of encrypted file data read from disk",
		},
	)
)

func init() {
	prometheus.MustRegister(SyncRecordsQueued)
	prometheus.MustRegister(SyncRecordsApplied)
	prometheus.MustRegister(DispatchDuration)
	prometheus.MustRegister(DispatchErrorsTotal)
	prometheus.MustRegister(CryptoPoolQueueDepth)
	prometheus.MustRegister(CryptoOpDuration)
	prometheus.MustRegister(StoreOpDuration)
	prometheus.MustRegister(FileBytesWritten)
	prometheus.MustRegister(FileBytesRead)
}

// Handler returns the Prometheus HTTP handler, for an embedder that wants to
// expose /metrics alongside the engine.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	duration := time.Since(t.start).Seconds()
	histogram.Observe(duration)
}

// ObserveDurationVec records the duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	duration := time.Since(t.start).Seconds()
	histogram.WithLabelValues(labels...).Observe(duration)
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
