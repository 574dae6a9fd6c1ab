package cli

import (
	"github.com/let4be/relabuf/internal/config"
	"github.com/let4be/relabuf/internal/source/kafka"
	"github.com/let4be/relabuf/internal/source/redisqueue"
	"github.com/let4be/relabuf/internal/source/synthetic"
	"github.com/let4be/relabuf/pkg/relabuf"
)

// bufferConfigFrom maps config.BufferConfig onto pkg/relabuf.Config.
func bufferConfigFrom(c config.BufferConfig) relabuf.Config {
	var backoff *relabuf.ExponentialBackoff
	if c.BackoffInitial > 0 {
		backoff = &relabuf.ExponentialBackoff{
			InitialInterval: c.BackoffInitial,
			MaxInterval:     c.BackoffMax,
			Multiplier:      c.BackoffMultiplier,
			MaxElapsedTime:  c.BackoffMaxElapsed,
		}
	}
	return relabuf.Config{
		SoftCap:      c.SoftCap,
		HardCap:      c.HardCap,
		ReleaseAfter: c.ReleaseAfter,
		Backoff:      backoff,
	}
}

func kafkaConfigFrom(c config.KafkaConfig) kafka.Config {
	return kafka.Config{
		Brokers:         c.Brokers,
		Topic:           c.Topic,
		GroupID:         c.GroupID,
		AutoOffsetReset: c.AutoOffsetReset,
		MinBytes:        c.MinBytes,
		MaxBytes:        c.MaxBytes,
	}
}

func redisConfigFrom(c config.RedisConfig) redisqueue.Config {
	return redisqueue.Config{
		Addr:         c.Addr,
		Password:     c.Password,
		DB:           c.DB,
		Queue:        c.Queue,
		PoolSize:     c.PoolSize,
		DialTimeout:  c.DialTimeout,
		ReadTimeout:  c.ReadTimeout,
		WriteTimeout: c.WriteTimeout,
	}
}

func syntheticConfigFrom(c config.SyntheticConfig) synthetic.Config {
	return synthetic.Config{
		EmitInterval: c.EmitInterval,
		ErrorEvery:   c.ErrorEvery,
		Limit:        c.Limit,
	}
}
