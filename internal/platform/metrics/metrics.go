package metrics

import (
	"fmt"
	"time"
)

// BufferMetrics holds every metric emitted by a running relabuf.Buffer and
// its collaborator sources.
type BufferMetrics struct {
	// Buffer / release driver
	BatchesReleasedTotal  CounterVec
	ItemsReleasedTotal    CounterVec
	BatchSize             HistogramVec
	BatchElapsed          HistogramVec
	PendingItems          GaugeVec
	RelayDepth            GaugeVec
	RelayCapacity         GaugeVec
	ConfirmedTotal        CounterVec
	ReturnedTotal         CounterVec
	BackoffDelaySeconds   GaugeVec
	TerminalErrorsTotal   CounterVec

	// Source collaborators (Kafka, Redis, Postgres outbox, synthetic)
	SourcePullDuration    HistogramVec
	SourcePullErrorsTotal CounterVec
	SourceCommitTotal     CounterVec
	OutboxClaimConflicts  CounterVec
	OutboxRowsClaimed     CounterVec

	// System health
	ServiceUptime     GaugeVec
	HealthCheckStatus GaugeVec
	ErrorsTotal       CounterVec
}

// Default histogram buckets.
var (
	// DefaultBatchElapsedBuckets spans the poll cadence up to several times
	// the typical release_after ceiling.
	DefaultBatchElapsedBuckets = []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60}

	// DefaultBatchSizeBuckets brackets typical soft_cap/hard_cap ranges.
	DefaultBatchSizeBuckets = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000}

	// DefaultPullDurationBuckets covers network round-trips to Kafka/Redis/Postgres.
	DefaultPullDurationBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5}
)

// NewBufferMetrics registers every relabuf metric against collector and
// returns the populated BufferMetrics handle.
func NewBufferMetrics(collector Collector) *BufferMetrics {
	m := &BufferMetrics{}

	m.BatchesReleasedTotal = collector.RegisterCounter("batches_released_total", "Batches released by the buffer", "reason")
	m.ItemsReleasedTotal = collector.RegisterCounter("items_released_total", "Items released by the buffer", "reason")
	m.BatchSize = collector.RegisterHistogram("batch_size", "Item count per released batch", DefaultBatchSizeBuckets, "reason")
	m.BatchElapsed = collector.RegisterHistogram("batch_elapsed_seconds", "Time since the previous successful release when a batch was released", DefaultBatchElapsedBuckets, "reason")
	m.PendingItems = collector.RegisterGauge("pending_items", "Items currently buffered awaiting release", "source")
	m.RelayDepth = collector.RegisterGauge("relay_depth", "Items queued in the inbound relay channel", "source")
	m.RelayCapacity = collector.RegisterGauge("relay_capacity", "Configured hard_cap of the inbound relay channel", "source")
	m.ConfirmedTotal = collector.RegisterCounter("confirmed_total", "Released batches confirmed by the caller", "source")
	m.ReturnedTotal = collector.RegisterCounter("returned_total", "Released items returned to the buffer after a failed confirm", "source")
	m.BackoffDelaySeconds = collector.RegisterGauge("backoff_delay_seconds", "Current backoff delay armed after a returned batch", "source")
	m.TerminalErrorsTotal = collector.RegisterCounter("terminal_errors_total", "Buffers that entered the terminal error state", "source")

	m.SourcePullDuration = collector.RegisterHistogram("source_pull_duration_seconds", "Pull() latency of a collaborator source", DefaultPullDurationBuckets, "source")
	m.SourcePullErrorsTotal = collector.RegisterCounter("source_pull_errors_total", "Pull() calls that returned an error", "source", "error_type")
	m.SourceCommitTotal = collector.RegisterCounter("source_commit_total", "Offset/row commits issued on Confirm", "source", "result")
	m.OutboxClaimConflicts = collector.RegisterCounter("outbox_claim_conflicts_total", "Outbox rows lost to a concurrent claimant", "table")
	m.OutboxRowsClaimed = collector.RegisterCounter("outbox_rows_claimed_total", "Outbox rows successfully claimed", "table")

	m.ServiceUptime = collector.RegisterGauge("service_uptime_seconds", "Service uptime", "service")
	m.HealthCheckStatus = collector.RegisterGauge("health_check_status", "Health check status (1=up, 0=down)", "component")
	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Total errors", "component", "error_type", "severity")

	return m
}

// RecordRelease updates every release-path metric for one released batch.
func RecordRelease(m *BufferMetrics, reason string, itemCount int, elapsed time.Duration) {
	m.BatchesReleasedTotal.WithLabelValues(reason).Inc()
	m.ItemsReleasedTotal.WithLabelValues(reason).Add(float64(itemCount))
	m.BatchSize.WithLabelValues(reason).Observe(float64(itemCount))
	m.BatchElapsed.WithLabelValues(reason).Observe(elapsed.Seconds())
}

// RecordConfirm updates the confirm-path counters for a released batch.
func RecordConfirm(m *BufferMetrics, source string) {
	m.ConfirmedTotal.WithLabelValues(source).Inc()
}

// RecordReturn updates the return-path counters after a failed downstream write.
func RecordReturn(m *BufferMetrics, source string, itemCount int, nextBackoff time.Duration) {
	m.ReturnedTotal.WithLabelValues(source).Add(float64(itemCount))
	if nextBackoff >= 0 {
		m.BackoffDelaySeconds.WithLabelValues(source).Set(nextBackoff.Seconds())
	} else {
		m.BackoffDelaySeconds.WithLabelValues(source).Set(0)
	}
}

// RecordSourcePull updates pull-path latency and error metrics for a collaborator source.
func RecordSourcePull(m *BufferMetrics, source string, duration time.Duration, err error) {
	m.SourcePullDuration.WithLabelValues(source).Observe(duration.Seconds())
	if err != nil {
		m.SourcePullErrorsTotal.WithLabelValues(source, fmt.Sprintf("%T", err)).Inc()
	}
}

// RecordError increments the generic errors_total counter.
func RecordError(m *BufferMetrics, component, errorType, severity string) {
	m.ErrorsTotal.WithLabelValues(component, errorType, severity).Inc()
}
