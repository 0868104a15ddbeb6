package metrics

import (
	"sync"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Singleton instance
	instance *PrometheusMetrics
	once     sync.Once
)

// PrometheusMetrics handles all metrics collection for the file store simulator
type PrometheusMetrics struct {
	// Operation metrics
	UploadsTotal      prometheus.Counter
	DownloadsTotal    prometheus.Counter
	DeletionsTotal    prometheus.Counter
	OperationFailures *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec

	// Cluster metrics
	NodesTotal prometheus.Gauge
	NodesLive  prometheus.Gauge

	// Catalog metrics
	FilesTracked  prometheus.Gauge
	FilesByHealth *prometheus.GaugeVec

	// Host metrics
	SystemCPUPercent prometheus.Gauge
	SystemMemoryUsed prometheus.Gauge
	DataDirUsedBytes prometheus.Gauge

	// Status API metrics
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge
}

// NewPrometheusMetrics creates a new PrometheusMetrics instance
func NewPrometheusMetrics() *PrometheusMetrics {
	once.Do(func() {
		instance = &PrometheusMetrics{
			// Operation metrics
			UploadsTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "dfs_uploads_total",
				Help: "The total number of successful file uploads",
			}),
			DownloadsTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "dfs_downloads_total",
				Help: "The total number of successful file downloads",
			}),
			DeletionsTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "dfs_deletions_total",
				Help: "The total number of successful file deletions",
			}),
			OperationFailures: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "dfs_operation_failures_total",
					Help: "The total number of failed operations by failure kind",
				},
				[]string{"operation", "kind"},
			),
			OperationDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "dfs_operation_duration_seconds",
					Help:    "The operation latencies in seconds",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"operation"},
			),

			// Cluster metrics
			NodesTotal: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "dfs_nodes_total",
				Help: "The total number of configured storage nodes",
			}),
			NodesLive: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "dfs_nodes_live",
				Help: "The number of storage nodes currently live",
			}),

			// Catalog metrics
			FilesTracked: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "dfs_files_tracked",
				Help: "The number of files with metadata records",
			}),
			FilesByHealth: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "dfs_files_by_health",
					Help: "The number of tracked files per replica health status",
				},
				[]string{"status"},
			),

			// Host metrics
			SystemCPUPercent: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "dfs_system_cpu_percent",
				Help: "The host CPU utilisation percentage",
			}),
			SystemMemoryUsed: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "dfs_system_memory_used_bytes",
				Help: "The host memory in use in bytes",
			}),
			DataDirUsedBytes: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "dfs_data_dir_used_bytes",
				Help: "The bytes used on the filesystem holding the data directory",
			}),

			// Status API metrics
			RequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "dfs_http_requests_total",
					Help: "The total number of processed status API requests",
				},
				[]string{"method", "endpoint", "status"},
			),
			RequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "dfs_http_request_duration_seconds",
					Help:    "The status API request latencies in seconds",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"method", "endpoint"},
			),
			RequestsInFlight: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "dfs_http_requests_in_flight",
				Help: "The number of status API requests currently being processed",
			}),
		}
	})

	return instance
}

// GetMetrics returns the singleton PrometheusMetrics instance
func GetMetrics() *PrometheusMetrics {
	if instance == nil {
		return NewPrometheusMetrics()
	}
	return instance
}

// RegisterMetricsHandler registers the Prometheus scrape handler with the router
func RegisterMetricsHandler(r *mux.Router) {
	r.Handle("/metrics", promhttp.Handler())
}

// RecordUpload counts a successful upload
func (pm *PrometheusMetrics) RecordUpload() {
	pm.UploadsTotal.Inc()
}

// RecordDownload counts a successful download
func (pm *PrometheusMetrics) RecordDownload() {
	pm.DownloadsTotal.Inc()
}

// RecordDeletion counts a successful deletion
func (pm *PrometheusMetrics) RecordDeletion() {
	pm.DeletionsTotal.Inc()
}

// RecordOperationFailure counts a failed operation with its failure kind
func (pm *PrometheusMetrics) RecordOperationFailure(operation, kind string) {
	pm.OperationFailures.WithLabelValues(operation, kind).Inc()
}

// ObserveOperationDuration records how long an operation took
func (pm *PrometheusMetrics) ObserveOperationDuration(operation string, seconds float64) {
	pm.OperationDuration.WithLabelValues(operation).Observe(seconds)
}

// SetNodesTotal updates the configured node count
func (pm *PrometheusMetrics) SetNodesTotal(count int) {
	pm.NodesTotal.Set(float64(count))
}

// SetNodesLive updates the live node count
func (pm *PrometheusMetrics) SetNodesLive(count int) {
	pm.NodesLive.Set(float64(count))
}

// SetFilesTracked updates the number of files with metadata records
func (pm *PrometheusMetrics) SetFilesTracked(count int) {
	pm.FilesTracked.Set(float64(count))
}

// SetFilesByHealth updates the file count for one health status
func (pm *PrometheusMetrics) SetFilesByHealth(status string, count int) {
	pm.FilesByHealth.WithLabelValues(status).Set(float64(count))
}

// SetSystemCPUPercent updates the host CPU utilisation gauge
func (pm *PrometheusMetrics) SetSystemCPUPercent(percent float64) {
	pm.SystemCPUPercent.Set(percent)
}

// SetSystemMemoryUsed updates the host memory usage gauge
func (pm *PrometheusMetrics) SetSystemMemoryUsed(bytes uint64) {
	pm.SystemMemoryUsed.Set(float64(bytes))
}

// SetDataDirUsedBytes updates the data directory disk usage gauge
func (pm *PrometheusMetrics) SetDataDirUsedBytes(bytes uint64) {
	pm.DataDirUsedBytes.Set(float64(bytes))
}

// RecordRequest records a status API request with its method, endpoint, and status
func (pm *PrometheusMetrics) RecordRequest(method, endpoint, status string) {
	pm.RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
}

// ObserveRequestDuration records the duration of a status API request
func (pm *PrometheusMetrics) ObserveRequestDuration(method, endpoint string, duration float64) {
	pm.RequestDuration.WithLabelValues(method, endpoint).Observe(duration)
}

// IncRequestsInFlight increments the number of requests in flight
func (pm *PrometheusMetrics) IncRequestsInFlight() {
	pm.RequestsInFlight.Inc()
}

// DecRequestsInFlight decrements the number of requests in flight
func (pm *PrometheusMetrics) DecRequestsInFlight() {
	pm.RequestsInFlight.Dec()
}
