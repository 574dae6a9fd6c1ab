// Package config defines all configuration structures for the relabuf
// release-buffer demo harness.  No I/O or parsing logic lives here — only
// plain data types and validation.
package config

import (
	"fmt"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds the metrics HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// BufferConfig mirrors pkg/relabuf.Config in a form viper/mapstructure can
// populate from YAML or environment variables.
type BufferConfig struct {
	SoftCap              int           `mapstructure:"soft_cap"`
	HardCap              int           `mapstructure:"hard_cap"`
	ReleaseAfter         time.Duration `mapstructure:"release_after"`
	BackoffInitial       time.Duration `mapstructure:"backoff_initial"`
	BackoffMax           time.Duration `mapstructure:"backoff_max"`
	BackoffMultiplier    float64       `mapstructure:"backoff_multiplier"`
	BackoffMaxElapsed    time.Duration `mapstructure:"backoff_max_elapsed"`
}

// SourceConfig selects and configures the single PullSource collaborator the
// demo harness drives the buffer with.
type SourceConfig struct {
	// Kind selects the collaborator: "kafka" | "redis" | "outbox" | "synthetic".
	Kind string `mapstructure:"kind"`

	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Outbox    OutboxConfig    `mapstructure:"outbox"`
	Synthetic SyntheticConfig `mapstructure:"synthetic"`
}

// KafkaConfig holds Apache Kafka consumer parameters for the Kafka pull
// source.
type KafkaConfig struct {
	Brokers         []string `mapstructure:"brokers"`
	Topic           string   `mapstructure:"topic"`
	GroupID         string   `mapstructure:"group_id"`
	AutoOffsetReset string   `mapstructure:"auto_offset_reset"` // "earliest" | "latest"
	MinBytes        int      `mapstructure:"min_bytes"`
	MaxBytes        int      `mapstructure:"max_bytes"`
}

// RedisConfig holds Redis connection parameters for the BLPOP-based pull source.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	Queue        string        `mapstructure:"queue"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// OutboxConfig holds PostgreSQL connection parameters for the transactional
// outbox pull source.
type OutboxConfig struct {
	DSN             string        `mapstructure:"dsn"`
	Table           string        `mapstructure:"table"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationPath   string        `mapstructure:"migration_path"`
}

// SyntheticConfig configures the zero-dependency demo source.
type SyntheticConfig struct {
	EmitInterval time.Duration `mapstructure:"emit_interval"`
	ErrorEvery   int           `mapstructure:"error_every"`
	Limit        int           `mapstructure:"limit"` // 0 = unbounded
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level            string   `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format           string   `mapstructure:"format"` // "json" | "console"
	OutputPaths      []string `mapstructure:"output_paths"`
	ErrorOutputPaths []string `mapstructure:"error_output_paths"`
}

// MetricsConfig holds Prometheus collector parameters.
type MetricsConfig struct {
	Namespace            string `mapstructure:"namespace"`
	Subsystem            string `mapstructure:"subsystem"`
	EnableProcessMetrics bool   `mapstructure:"enable_process_metrics"`
	EnableGoMetrics      bool   `mapstructure:"enable_go_metrics"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure for the relabuf demo harness.
// Every collaborator reads its settings from the relevant sub-struct.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Buffer  BufferConfig  `mapstructure:"buffer"`
	Source  SourceConfig  `mapstructure:"source"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered; callers should treat any error as
// fatal and refuse to start the application.
func (c *Config) Validate() error {
	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}

	// Buffer
	if c.Buffer.SoftCap < 1 {
		return fmt.Errorf("config: buffer.soft_cap must be >= 1, got %d", c.Buffer.SoftCap)
	}
	if c.Buffer.HardCap < c.Buffer.SoftCap {
		return fmt.Errorf("config: buffer.hard_cap (%d) must be >= buffer.soft_cap (%d)", c.Buffer.HardCap, c.Buffer.SoftCap)
	}
	if c.Buffer.ReleaseAfter <= 0 {
		return fmt.Errorf("config: buffer.release_after must be > 0, got %s", c.Buffer.ReleaseAfter)
	}

	// Source
	switch c.Source.Kind {
	case "kafka":
		if len(c.Source.Kafka.Brokers) == 0 {
			return fmt.Errorf("config: source.kafka.brokers must contain at least one broker address")
		}
		if c.Source.Kafka.Topic == "" {
			return fmt.Errorf("config: source.kafka.topic is required")
		}
	case "redis":
		if c.Source.Redis.Addr == "" {
			return fmt.Errorf("config: source.redis.addr is required")
		}
		if c.Source.Redis.Queue == "" {
			return fmt.Errorf("config: source.redis.queue is required")
		}
	case "outbox":
		if c.Source.Outbox.DSN == "" {
			return fmt.Errorf("config: source.outbox.dsn is required")
		}
		if c.Source.Outbox.Table == "" {
			return fmt.Errorf("config: source.outbox.table is required")
		}
	case "synthetic":
		// No required fields; zero values are meaningful defaults.
	default:
		return fmt.Errorf("config: source.kind %q is invalid; expected kafka|redis|outbox|synthetic", c.Source.Kind)
	}

	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	// Metrics
	if c.Metrics.Namespace == "" {
		return fmt.Errorf("config: metrics.namespace is required")
	}

	return nil
}
