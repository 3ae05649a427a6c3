// Package metrics provides Prometheus metrics for the assessor service.
package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager owns every Prometheus collector the service exports.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          atomic.Bool
	refreshInterval  atomic.Int64
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Assessment metrics
	assessmentsSubmitted prometheus.Counter
	assessmentsRejected  *prometheus.CounterVec
	assessmentsByBand    *prometheus.CounterVec
	totalScore           prometheus.Histogram
	buildLatency         prometheus.Histogram
	historySize          prometheus.Gauge
	activeSessions       prometheus.Gauge
	sessionsOpened       prometheus.Counter
	marksToggled         prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Repository metrics
	repositoryAppendLatency prometheus.Histogram
	repositoryQueryLatency  prometheus.Histogram

	// Notification queue metrics
	queueSize              prometheus.Gauge
	queueCapacity          prometheus.Gauge
	queueUtilization       prometheus.Gauge
	queueEnqueueRate       prometheus.Counter
	queueDequeueRate       prometheus.Counter
	queueEnqueueErrors     prometheus.Counter
	queueProcessingLatency prometheus.Histogram

	// Notification worker metrics
	workerCount             prometheus.Gauge
	workerMessagesPerSecond prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrorRate         prometheus.Counter
	notificationsDelivered  *prometheus.CounterVec

	// Error metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "assessor",
		subsystem:        "service",
		histogramBuckets: prometheus.DefBuckets,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}
	m.enabled.Store(true)
	m.refreshInterval.Store(int64(defaultRefreshInterval))

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

// RefreshInterval reports how often periodic gauges should be refreshed.
func (m *Manager) RefreshInterval() time.Duration {
	return time.Duration(m.refreshInterval.Load())
}

// Enabled reports whether collection is on.
func (m *Manager) Enabled() bool {
	return m.enabled.Load()
}

// SetEnabled turns the package-level recorders on or off.
func SetEnabled(enabled bool) {
	WithMetricsEnabled(enabled)(globalManager)
}

// SetRefreshInterval changes how often periodic gauges are refreshed.
// Non-positive values are ignored.
func SetRefreshInterval(interval time.Duration) {
	WithRefreshInterval(interval)(globalManager)
}

// Enabled reports whether the package-level recorders are on.
func Enabled() bool {
	return globalManager.Enabled()
}

// RefreshInterval reports the refresh interval of the global manager.
func RefreshInterval() time.Duration {
	return globalManager.RefreshInterval()
}

// active returns the global manager while recording is enabled.
func active() (*Manager, bool) {
	if globalManager == nil || !globalManager.enabled.Load() {
		return nil, false
	}
	return globalManager, true
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.customLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.customLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.customLabels, Buckets: buckets,
	})
}

func (m *Manager) initializeMetrics() {
	m.assessmentsSubmitted = m.counter("assessments_submitted_total", "Total number of assessment records built and stored")
	m.assessmentsRejected = m.counterVec("assessments_rejected_total", "Submissions rejected, by reason", "reason")
	m.assessmentsByBand = m.counterVec("assessments_by_band_total", "Stored assessments, by performance band", "band")
	m.totalScore = m.histogram("assessment_total_score", "Distribution of assessment total scores",
		prometheus.LinearBuckets(10, 10, 10))
	m.buildLatency = m.histogram("build_latency_milliseconds", "Time spent validating, scoring and storing a submission", m.histogramBuckets)
	m.historySize = m.gauge("history_size", "Number of assessments in the history store")
	m.activeSessions = m.gauge("active_sessions", "Number of open editing sessions")
	m.sessionsOpened = m.counter("sessions_opened_total", "Total number of editing sessions opened")
	m.marksToggled = m.counter("marks_toggled_total", "Total number of sub-competency toggles")

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method",
		"endpoint", "method", "status_code")
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name("http_request_duration_milliseconds"),
		Help: "HTTP request duration in milliseconds", ConstLabels: m.customLabels, Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.repositoryAppendLatency = m.histogram("repository_append_latency_milliseconds", "History store append latency", m.histogramBuckets)
	m.repositoryQueryLatency = m.histogram("repository_query_latency_milliseconds", "History store read latency", m.histogramBuckets)

	m.queueSize = m.gauge("notify_queue_size", "Current number of queued notifications")
	m.queueCapacity = m.gauge("notify_queue_capacity", "Maximum notification queue capacity")
	m.queueUtilization = m.gauge("notify_queue_utilization_ratio", "Notification queue fill ratio (0.0 to 1.0)")
	m.queueEnqueueRate = m.counter("notify_queue_enqueue_total", "Notifications enqueued")
	m.queueDequeueRate = m.counter("notify_queue_dequeue_total", "Notifications dequeued")
	m.queueEnqueueErrors = m.counter("notify_queue_enqueue_errors_total", "Notifications dropped at enqueue")
	m.queueProcessingLatency = m.histogram("notify_queue_latency_milliseconds", "Enqueue latency in milliseconds", m.histogramBuckets)

	m.workerCount = m.gauge("notify_worker_count", "Number of notification workers")
	m.workerMessagesPerSecond = m.gauge("notify_worker_messages_per_second", "Notifications delivered per second")
	m.workerProcessingLatency = m.histogram("notify_worker_latency_milliseconds", "Delivery latency in milliseconds", m.histogramBuckets)
	m.workerErrorRate = m.counter("notify_worker_errors_total", "Failed notification deliveries")
	m.notificationsDelivered = m.counterVec("notifications_delivered_total", "Delivered notifications, by kind", "kind")

	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Errors by component and type", "component", "error_type")
	m.errorRateByType = m.counterVec("errors_by_type_total", "Errors by type and severity", "error_type", "severity")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "Errors by HTTP endpoint", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_bytes", "Heap bytes allocated")
	m.systemGoroutineCount = m.gauge("system_goroutines", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_milliseconds", "Average GC pause in milliseconds",
		[]float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50})
}

// Assessment metrics.

// RecordAssessmentSubmitted counts a stored record and observes its score.
func RecordAssessmentSubmitted(band string, total int) {
	m, ok := active()
	if !ok {
		return
	}
	m.assessmentsSubmitted.Inc()
	m.assessmentsByBand.WithLabelValues(band).Inc()
	m.totalScore.Observe(float64(total))
}

// RecordAssessmentRejected counts a rejected submission.
func RecordAssessmentRejected(reason string) {
	m, ok := active()
	if !ok {
		return
	}
	m.assessmentsRejected.WithLabelValues(reason).Inc()
}

// RecordBuildLatency records submission latency in milliseconds.
func RecordBuildLatency(latencyMs float64) {
	m, ok := active()
	if !ok {
		return
	}
	m.buildLatency.Observe(latencyMs)
}

// UpdateHistorySize sets the number of stored assessments.
func UpdateHistorySize(count int) {
	m, ok := active()
	if !ok {
		return
	}
	m.historySize.Set(float64(count))
}

// UpdateActiveSessions sets the number of open sessions.
func UpdateActiveSessions(count int) {
	m, ok := active()
	if !ok {
		return
	}
	m.activeSessions.Set(float64(count))
}

// RecordSessionOpened counts a new session.
func RecordSessionOpened() {
	m, ok := active()
	if !ok {
		return
	}
	m.sessionsOpened.Inc()
}

// RecordMarkToggled counts a toggle.
func RecordMarkToggled() {
	m, ok := active()
	if !ok {
		return
	}
	m.marksToggled.Inc()
}

// HTTP metrics.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	m, ok := active()
	if !ok {
		return
	}
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	m, ok := active()
	if !ok {
		return
	}
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Repository metrics.

// RecordRepositoryAppendLatency records history append latency.
func RecordRepositoryAppendLatency(latencyMs float64) {
	m, ok := active()
	if !ok {
		return
	}
	m.repositoryAppendLatency.Observe(latencyMs)
}

// RecordRepositoryQueryLatency records history read latency.
func RecordRepositoryQueryLatency(latencyMs float64) {
	m, ok := active()
	if !ok {
		return
	}
	m.repositoryQueryLatency.Observe(latencyMs)
}

// Queue metrics.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	m, ok := active()
	if !ok {
		return
	}
	m.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	m, ok := active()
	if !ok {
		return
	}
	m.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	m, ok := active()
	if !ok {
		return
	}
	m.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	m, ok := active()
	if !ok {
		return
	}
	m.queueEnqueueRate.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	m, ok := active()
	if !ok {
		return
	}
	m.queueDequeueRate.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	m, ok := active()
	if !ok {
		return
	}
	m.queueEnqueueErrors.Inc()
}

// RecordQueueProcessingLatency records enqueue latency.
func RecordQueueProcessingLatency(latencyMs float64) {
	m, ok := active()
	if !ok {
		return
	}
	m.queueProcessingLatency.Observe(latencyMs)
}

// Worker metrics.

// UpdateWorkerCount sets the number of running workers.
func UpdateWorkerCount(count int) {
	m, ok := active()
	if !ok {
		return
	}
	m.workerCount.Set(float64(count))
}

// UpdateWorkerMessagesPerSecond sets the average deliveries per second.
func UpdateWorkerMessagesPerSecond(rate float64) {
	m, ok := active()
	if !ok {
		return
	}
	m.workerMessagesPerSecond.Set(rate)
}

// RecordWorkerProcessingLatency records delivery latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	m, ok := active()
	if !ok {
		return
	}
	m.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	m, ok := active()
	if !ok {
		return
	}
	m.workerErrorRate.Inc()
}

// RecordNotificationDelivered counts a delivered notification.
func RecordNotificationDelivered(kind string) {
	m, ok := active()
	if !ok {
		return
	}
	m.notificationsDelivered.WithLabelValues(kind).Inc()
}

// Error metrics.

// System metrics.

// UpdateSystemMemoryUsage sets the allocated heap size.
func UpdateSystemMemoryUsage(bytes uint64) {
	m, ok := active()
	if !ok {
		return
	}
	m.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	m, ok := active()
	if !ok {
		return
	}
	m.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime observes the average GC pause.
func RecordSystemGCPauseTime(pauseMs float64) {
	m, ok := active()
	if !ok {
		return
	}
	m.systemGCPauseTime.Observe(pauseMs)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	m, ok := active()
	if !ok {
		return
	}
	m.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	m, ok := active()
	if !ok {
		return
	}
	m.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	m, ok := active()
	if !ok {
		return
	}
	m.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
