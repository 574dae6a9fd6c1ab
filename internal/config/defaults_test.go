package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestApplyDefaults_EmptyConfig(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, DefaultServerPort, cfg.Server.Port)

	assert.Equal(t, DefaultBufferSoftCap, cfg.Buffer.SoftCap)
	assert.Equal(t, DefaultBufferHardCap, cfg.Buffer.HardCap)
	assert.Equal(t, DefaultBufferReleaseAfter, cfg.Buffer.ReleaseAfter)
	assert.Equal(t, DefaultBackoffInitial, cfg.Buffer.BackoffInitial)
	assert.Equal(t, DefaultBackoffMax, cfg.Buffer.BackoffMax)
	assert.Equal(t, DefaultBackoffMultiplier, cfg.Buffer.BackoffMultiplier)
	assert.Equal(t, DefaultBackoffMaxElapsed, cfg.Buffer.BackoffMaxElapsed)

	assert.Equal(t, DefaultSourceKind, cfg.Source.Kind)
	assert.Equal(t, []string{DefaultKafkaBroker}, cfg.Source.Kafka.Brokers)
	assert.Equal(t, DefaultKafkaGroupID, cfg.Source.Kafka.GroupID)
	assert.Equal(t, DefaultKafkaTopic, cfg.Source.Kafka.Topic)
	assert.Equal(t, "earliest", cfg.Source.Kafka.AutoOffsetReset)
	assert.Equal(t, DefaultRedisAddr, cfg.Source.Redis.Addr)
	assert.Equal(t, DefaultRedisQueue, cfg.Source.Redis.Queue)
	assert.Equal(t, DefaultOutboxTable, cfg.Source.Outbox.Table)
	assert.Equal(t, DefaultSyntheticEmitInterval, cfg.Source.Synthetic.EmitInterval)

	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, DefaultLogFormat, cfg.Log.Format)

	assert.Equal(t, DefaultMetricsNamespace, cfg.Metrics.Namespace)
}

func TestApplyDefaults_PreserveExistingValues(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Port = 9999
	cfg.Buffer.SoftCap = 42

	ApplyDefaults(cfg)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, 42, cfg.Buffer.SoftCap)
	assert.Equal(t, DefaultBufferHardCap, cfg.Buffer.HardCap, "unset fields still get defaulted")
}

func TestApplyDefaults_PreserveSliceValues(t *testing.T) {
	cfg := &Config{}
	brokers := []string{"kafka-1:9092", "kafka-2:9092"}
	cfg.Source.Kafka.Brokers = brokers

	ApplyDefaults(cfg)

	assert.Equal(t, brokers, cfg.Source.Kafka.Brokers)
}

func TestApplyDefaults_PreserveDurationValues(t *testing.T) {
	cfg := &Config{}
	cfg.Buffer.ReleaseAfter = 42 * time.Second

	ApplyDefaults(cfg)

	assert.NotEqual(t, DefaultBufferReleaseAfter, cfg.Buffer.ReleaseAfter)
}

func TestApplyDefaults_NilConfigIsNoop(t *testing.T) {
	assert.NotPanics(t, func() { ApplyDefaults(nil) })
}
