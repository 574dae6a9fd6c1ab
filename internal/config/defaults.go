// Package config provides configuration loading, defaults, and validation for
// the relabuf demo harness.
package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerPort = 8080

	DefaultBufferSoftCap      = 100
	DefaultBufferHardCap      = 1000
	DefaultBufferReleaseAfter = 5 * time.Second
	DefaultBackoffInitial     = 500 * time.Millisecond
	DefaultBackoffMax         = 30 * time.Second
	DefaultBackoffMultiplier  = 2.0
	DefaultBackoffMaxElapsed  = 5 * time.Minute

	DefaultSourceKind = "synthetic"

	DefaultKafkaBroker  = "localhost:9092"
	DefaultKafkaGroupID = "relabuf-group"
	DefaultKafkaTopic   = "relabuf-events"

	DefaultRedisAddr  = "localhost:6379"
	DefaultRedisQueue = "relabuf:queue"

	DefaultOutboxTable = "relabuf_outbox"

	DefaultSyntheticEmitInterval = 20 * time.Millisecond

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMetricsNamespace = "relabuf"
)

// ─────────────────────────────────────────────────────────────────────────────
// ApplyDefaults fills zero-value fields in cfg with well-known defaults.
// It must be called after unmarshalling raw config data and before Validate()
// so that optional-but-defaulted fields are never seen as missing.
// ─────────────────────────────────────────────────────────────────────────────

// ApplyDefaults fills the zero-value fields of cfg that have a platform
// default; fields without one (e.g. Server.ReadTimeout) stay as they are.
// Fields that have already been set by the caller (non-zero values) are left
// unchanged so that explicit configuration always wins.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}

	// ── Buffer ────────────────────────────────────────────────────────────────
	if cfg.Buffer.SoftCap == 0 {
		cfg.Buffer.SoftCap = DefaultBufferSoftCap
	}
	if cfg.Buffer.HardCap == 0 {
		cfg.Buffer.HardCap = DefaultBufferHardCap
	}
	if cfg.Buffer.ReleaseAfter == 0 {
		cfg.Buffer.ReleaseAfter = DefaultBufferReleaseAfter
	}
	if cfg.Buffer.BackoffInitial == 0 {
		cfg.Buffer.BackoffInitial = DefaultBackoffInitial
	}
	if cfg.Buffer.BackoffMax == 0 {
		cfg.Buffer.BackoffMax = DefaultBackoffMax
	}
	if cfg.Buffer.BackoffMultiplier == 0 {
		cfg.Buffer.BackoffMultiplier = DefaultBackoffMultiplier
	}
	if cfg.Buffer.BackoffMaxElapsed == 0 {
		cfg.Buffer.BackoffMaxElapsed = DefaultBackoffMaxElapsed
	}

	// ── Source ────────────────────────────────────────────────────────────────
	if cfg.Source.Kind == "" {
		cfg.Source.Kind = DefaultSourceKind
	}
	if len(cfg.Source.Kafka.Brokers) == 0 {
		cfg.Source.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Source.Kafka.GroupID == "" {
		cfg.Source.Kafka.GroupID = DefaultKafkaGroupID
	}
	if cfg.Source.Kafka.Topic == "" {
		cfg.Source.Kafka.Topic = DefaultKafkaTopic
	}
	if cfg.Source.Kafka.AutoOffsetReset == "" {
		cfg.Source.Kafka.AutoOffsetReset = "earliest"
	}
	if cfg.Source.Redis.Addr == "" {
		cfg.Source.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Source.Redis.Queue == "" {
		cfg.Source.Redis.Queue = DefaultRedisQueue
	}
	if cfg.Source.Outbox.Table == "" {
		cfg.Source.Outbox.Table = DefaultOutboxTable
	}
	if cfg.Source.Synthetic.EmitInterval == 0 {
		cfg.Source.Synthetic.EmitInterval = DefaultSyntheticEmitInterval
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
}
