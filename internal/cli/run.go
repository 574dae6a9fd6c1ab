package cli

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/let4be/relabuf/internal/config"
	"github.com/let4be/relabuf/internal/platform/logging"
	"github.com/let4be/relabuf/internal/platform/metrics"
	"github.com/let4be/relabuf/internal/source/kafka"
	"github.com/let4be/relabuf/internal/source/outbox"
	"github.com/let4be/relabuf/internal/source/redisqueue"
	"github.com/let4be/relabuf/internal/source/synthetic"
	"github.com/let4be/relabuf/pkg/relabuf"
)

// NewRunCmd builds the `relabufd run` subcommand, which drains a
// relabuf.Buffer over the collaborator source named by cfg.Source.Kind
// until the source closes or the process is signalled (§C.6).
func NewRunCmd(opts *RootOptions) *cobra.Command {
	var sourceOverride string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the release buffer against a configured source",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			if sourceOverride != "" {
				cfg.Source.Kind = sourceOverride
			}

			logger, err := buildLogger(cfg)
			if err != nil {
				return fmt.Errorf("logging: %w", err)
			}

			collector, err := metrics.NewCollector(metrics.CollectorConfig{
				Namespace:            cfg.Metrics.Namespace,
				Subsystem:            cfg.Metrics.Subsystem,
				EnableProcessMetrics: cfg.Metrics.EnableProcessMetrics,
				EnableGoMetrics:      cfg.Metrics.EnableGoMetrics,
			}, logger)
			if err != nil {
				return fmt.Errorf("metrics: %w", err)
			}
			bufMetrics := metrics.NewBufferMetrics(collector)

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			if opts.Timeout > 0 {
				var cancelTimeout context.CancelFunc
				ctx, cancelTimeout = context.WithTimeout(ctx, opts.Timeout)
				defer cancelTimeout()
			}

			if cfg.Server.Port > 0 {
				srv := newMetricsServer(cfg.Server, collector, logger)
				go serveMetrics(srv, logger)
				defer shutdownMetrics(srv, cfg.Server, logger)
			}

			return runSourceKind(ctx, cfg, logger, bufMetrics)
		},
	}

	cmd.Flags().StringVar(&sourceOverride, "source", "", "overrides source.kind from config (kafka|redis|outbox|synthetic)")

	return cmd
}

// newMetricsServer builds the standalone HTTP server exposing /metrics,
// grounded on the teacher's net/http.Server lifecycle wrapper (see
// DESIGN.md's note on the dropped gin/chi transport).
func newMetricsServer(cfg config.ServerConfig, collector metrics.Collector, logger logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}

func serveMetrics(srv *http.Server, logger logging.Logger) {
	logger.Info("metrics server listening", logging.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("metrics server stopped unexpectedly", logging.Err(err))
	}
}

func shutdownMetrics(srv *http.Server, cfg config.ServerConfig, logger logging.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("metrics server shutdown error", logging.Err(err))
	}
}

// runSourceKind dispatches to the generic drive loop for the collaborator
// named by cfg.Source.Kind. Each branch supplies its own item type T, its
// own PullSource[T], and its own confirm/return bridge, per §C.2/§C.3/§C.4.
func runSourceKind(ctx context.Context, cfg *config.Config, logger logging.Logger, m *metrics.BufferMetrics) error {
	bufCfg := bufferConfigFrom(cfg.Buffer)

	switch cfg.Source.Kind {
	case "kafka":
		src, err := kafka.NewSource(kafkaConfigFrom(cfg.Source.Kafka), logger.Named("source.kafka"))
		if err != nil {
			return fmt.Errorf("kafka source: %w", err)
		}
		defer src.Close()
		return drive(ctx, "kafka", bufCfg, logger, m, relabuf.PullSourceFunc[kafka.Record](src.Pull),
			src.Confirm, src.Return)

	case "redis":
		src, err := redisqueue.NewSource(redisConfigFrom(cfg.Source.Redis), logger.Named("source.redis"))
		if err != nil {
			return fmt.Errorf("redis source: %w", err)
		}
		defer src.Close()
		return drive(ctx, "redis", bufCfg, logger, m, relabuf.PullSourceFunc[[]byte](src.Pull),
			func(_ context.Context, items [][]byte) error { src.Confirm(items); return nil },
			src.Return)

	case "outbox":
		pool, err := outbox.NewPool(ctx, cfg.Source.Outbox.DSN, cfg.Source.Outbox.MaxConns, cfg.Source.Outbox.MinConns, cfg.Source.Outbox.ConnMaxLifetime, logger.Named("source.outbox"))
		if err != nil {
			return fmt.Errorf("outbox pool: %w", err)
		}
		defer pool.Close()
		if cfg.Source.Outbox.MigrationPath != "" {
			if err := outbox.RunMigrations(cfg.Source.Outbox.DSN, cfg.Source.Outbox.MigrationPath); err != nil {
				return fmt.Errorf("outbox migrations: %w", err)
			}
		}
		src := outbox.NewSource(pool, cfg.Source.Outbox.Table, logger.Named("source.outbox"))
		return drive(ctx, "outbox", bufCfg, logger, m, relabuf.PullSourceFunc[outbox.Record](src.Pull),
			src.Confirm, src.Return)

	case "synthetic":
		src := synthetic.NewSource(syntheticConfigFrom(cfg.Source.Synthetic), logger.Named("source.synthetic"))
		return drive(ctx, "synthetic", bufCfg, logger, m, relabuf.PullSourceFunc[uint64](src.Pull),
			func(_ context.Context, _ []uint64) error { return nil },
			func(_ []uint64) {})

	default:
		return fmt.Errorf("run: unknown source.kind %q", cfg.Source.Kind)
	}
}

// drive runs the Release Driver loop for one Buffer[T]: NextBatch, confirm
// on success, ReturnOnErr (plus the collaborator's own Return) on failure,
// until the source reports terminal closure or ctx is cancelled.
func drive[T any](
	ctx context.Context,
	sourceName string,
	bufCfg relabuf.Config,
	logger logging.Logger,
	m *metrics.BufferMetrics,
	source relabuf.PullSource[T],
	confirm func(context.Context, []T) error,
	ret func([]T),
) error {
	buf, err := relabuf.New(ctx, bufCfg, source)
	if err != nil {
		return fmt.Errorf("buffer: %w", err)
	}
	defer buf.Close()

	for {
		batch, err := buf.NextBatch(ctx)
		if err != nil {
			logger.Info("buffer drained, stopping", logging.String("source", sourceName), logging.Err(err))
			metrics.RecordError(m, sourceName, fmt.Sprintf("%T", err), "info")
			return nil
		}

		metrics.RecordRelease(m, batch.Reason.String(), len(batch.Items), batch.Elapsed)

		if err := confirm(ctx, batch.Items); err != nil {
			logger.Warn("confirm failed, returning batch", logging.String("source", sourceName), logging.Int("items", len(batch.Items)), logging.Err(err))
			batch.ReturnOnErr()
			ret(batch.Items)
			metrics.RecordReturn(m, sourceName, len(batch.Items), 0)
			continue
		}

		batch.Confirm()
		metrics.RecordConfirm(m, sourceName)
	}
}
