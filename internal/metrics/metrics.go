// Package metrics exposes Prometheus instrumentation for the sync core.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "fleetsync"

// Outcomes of a single remote record in a sync batch.
const (
	OutcomeInserted    = "inserted"
	OutcomeOverwritten = "overwritten"
	OutcomeSkipped     = "skipped"
	OutcomeMerged      = "merged"
	OutcomeRejected    = "rejected"
)

// Metrics holds all Prometheus collectors of the process.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	syncRecords       *prometheus.CounterVec
	syncConflicts     *prometheus.CounterVec
	syncTombstones    prometheus.Counter
	syncBatchDuration prometheus.Histogram

	operationsApplied *prometheus.CounterVec

	queueTransitions *prometheus.CounterVec
	queueDepth       *prometheus.GaugeVec

	workerCycles      prometheus.Counter
	workerOpDuration  *prometheus.HistogramVec
	workerCleanedUp   prometheus.Counter
	workerPanicsTotal prometheus.Counter

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New creates all collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		syncRecords: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "records_total",
			Help:      "Remote records processed by the sync engine by outcome",
		}, []string{"entity_type", "outcome"}),
		syncConflicts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "conflicts_total",
			Help:      "Concurrent updates resolved by the sync engine",
		}, []string{"entity_type", "strategy"}),
		syncTombstones: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "tombstones_total",
			Help:      "Deletions propagated from remote devices",
		}),
		syncBatchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "batch_duration_seconds",
			Help:      "Histogram of sync batch durations",
			Buckets:   prometheus.DefBuckets,
		}),
		operationsApplied: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "operations_applied_total",
			Help:      "Local mutations applied to metadata records",
		}, []string{"operation_type"}),
		queueTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "transitions_total",
			Help:      "Queued operation status transitions by target status",
		}, []string{"status"}),
		queueDepth: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "operations",
			Help:      "Queued operations per device and status",
		}, []string{"device_id", "status"}),
		workerCycles: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "cycles_total",
			Help:      "Completed worker processing cycles",
		}),
		workerOpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "operation_duration_seconds",
			Help:      "Histogram of operation handler durations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation_type", "result"}),
		workerCleanedUp: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "cleaned_up_total",
			Help:      "Completed operations removed after the retention window",
		}),
		workerPanicsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "handler_panics_total",
			Help:      "Operation handler panics recovered by the worker",
		}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Histogram of HTTP request durations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
}

// RecordSyncRecord counts one remote record by outcome.
func (m *Metrics) RecordSyncRecord(entityType, outcome string) {
	if m == nil {
		return
	}
	m.syncRecords.WithLabelValues(entityType, outcome).Inc()
}

// RecordConflict counts one resolved conflict.
func (m *Metrics) RecordConflict(entityType, strategy string) {
	if m == nil {
		return
	}
	m.syncConflicts.WithLabelValues(entityType, strategy).Inc()
}

// RecordTombstones counts propagated deletions.
func (m *Metrics) RecordTombstones(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.syncTombstones.Add(float64(n))
}

// ObserveSyncBatch records the duration of one sync batch.
func (m *Metrics) ObserveSyncBatch(d time.Duration) {
	if m == nil {
		return
	}
	m.syncBatchDuration.Observe(d.Seconds())
}

// RecordOperationApplied counts one applied local mutation.
func (m *Metrics) RecordOperationApplied(opType string) {
	if m == nil {
		return
	}
	m.operationsApplied.WithLabelValues(opType).Inc()
}

// RecordTransition counts a queued operation entering status.
func (m *Metrics) RecordTransition(status string) {
	if m == nil {
		return
	}
	m.queueTransitions.WithLabelValues(status).Inc()
}

// SetQueueDepth sets the number of operations of a device in status.
func (m *Metrics) SetQueueDepth(deviceID, status string, n int) {
	if m == nil {
		return
	}
	m.queueDepth.WithLabelValues(deviceID, status).Set(float64(n))
}

// RecordWorkerCycle counts a finished worker cycle.
func (m *Metrics) RecordWorkerCycle() {
	if m == nil {
		return
	}
	m.workerCycles.Inc()
}

// ObserveOperation records the duration and result of one handler call.
func (m *Metrics) ObserveOperation(opType, result string, d time.Duration) {
	if m == nil {
		return
	}
	m.workerOpDuration.WithLabelValues(opType, result).Observe(d.Seconds())
}

// RecordCleanup counts operations removed by retention cleanup.
func (m *Metrics) RecordCleanup(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.workerCleanedUp.Add(float64(n))
}

// RecordHandlerPanic counts a recovered handler panic.
func (m *Metrics) RecordHandlerPanic() {
	if m == nil {
		return
	}
	m.workerPanicsTotal.Inc()
}

// RecordHTTPRequest records metrics for an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
