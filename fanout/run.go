package fanout

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/c360/ringcast/config"
	"github.com/c360/ringcast/errors"
	"github.com/c360/ringcast/health"
	"github.com/c360/ringcast/metric"
	"github.com/c360/ringcast/pkg/broadcast"
)

// Run status values recorded in the run_status gauge.
const (
	RunStatusStopped = 0
	RunStatusRunning = 1
	RunStatusFailed  = 2
)

// Options configures a Run.
type Options struct {
	Config *config.Config

	// Registry and Monitor are optional.
	Registry *metric.MetricsRegistry
	Monitor  *health.Monitor
	Logger   *slog.Logger

	// RunID labels logs. A random UUID is used when empty.
	RunID string

	// OpenSink opens consumer outputs. Defaults to OpenFileSink.
	OpenSink SinkOpener
}

// Report summarises a finished run.
type Report struct {
	RunID    string
	Produced int64
	Misses   int64
	Consumed []int64
	Ring     broadcast.StatsSummary
	Health   health.Status
	Elapsed  time.Duration
}

// Run builds the ring, registers every consumer before the producer starts,
// and runs them all until the configured duration passes, the value limit is
// reached, or one of them fails.
func Run(ctx context.Context, opts Options) (*Report, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig, "fanout", "Run", "validate options")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("run_id", runID)

	monitor := opts.Monitor
	if monitor == nil {
		monitor = health.NewMonitor()
	}
	var core *metric.Metrics
	if opts.Registry != nil {
		core = opts.Registry.CoreMetrics()
	}
	openSink := opts.OpenSink
	if openSink == nil {
		openSink = OpenFileSink
	}

	ringOpts := []broadcast.Option[byte]{
		broadcast.WithMode[byte](cfg.RingMode()),
		broadcast.WithOverflowPolicy[byte](cfg.RingOverflowPolicy()),
		broadcast.WithLogger[byte](logger),
		broadcast.WithDropCallback[byte](func(v byte) {
			logger.Debug("Value dropped", "value", v)
		}),
	}
	if opts.Registry != nil {
		ringOpts = append(ringOpts, broadcast.WithMetrics[byte](opts.Registry, "ringcast"))
	}
	ring, err := broadcast.New[byte](cfg.Capacity, ringOpts...)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return nil, errors.WrapFatal(err, "fanout", "Run", "create output directory")
	}

	sinks := make([]io.WriteCloser, 0, cfg.Readers)
	closeSinks := func() error {
		var first error
		for _, s := range sinks {
			if err := s.Close(); err != nil && first == nil {
				first = err
			}
		}
		return first
	}

	consumers := make([]*Consumer, 0, cfg.Readers)
	for i := 0; i < cfg.Readers; i++ {
		sink, err := openSink(ctx, cfg.OutputPath(i))
		if err != nil {
			_ = closeSinks()
			return nil, err
		}
		sinks = append(sinks, sink)

		c, err := NewConsumer(i, ring, sink, ConsumerConfig{
			Metrics: core,
			Monitor: monitor,
			Logger:  logger,
		})
		if err != nil {
			_ = closeSinks()
			return nil, err
		}
		consumers = append(consumers, c)
	}

	producer, err := NewProducer(ring, ProducerConfig{
		Strategy: cfg.Strategy,
		Limit:    cfg.Limit,
		Rate:     cfg.Rate,
		Metrics:  core,
		Monitor:  monitor,
		Logger:   logger,
	})
	if err != nil {
		_ = closeSinks()
		return nil, err
	}

	runCtx := ctx
	if cfg.Duration > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, cfg.Duration)
		defer cancel()
	}

	logger.Info("Run started",
		"capacity", cfg.Capacity,
		"readers", cfg.Readers,
		"mode", cfg.Mode,
		"strategy", cfg.Strategy,
		"duration", cfg.Duration,
		"limit", cfg.Limit)
	if core != nil {
		core.RecordRunStatus(RunStatusRunning)
	}

	start := time.Now()
	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		// Wakes consumers waiting on a value that will never come
		defer ring.Close()
		return producer.Run(gctx)
	})
	for _, c := range consumers {
		c := c
		g.Go(func() error {
			return c.Run(gctx)
		})
	}
	runErr := g.Wait()

	if err := closeSinks(); err != nil && runErr == nil {
		runErr = err
	}

	report := &Report{
		RunID:    runID,
		Produced: producer.Produced(),
		Misses:   producer.Misses(),
		Consumed: make([]int64, len(consumers)),
		Ring:     ring.Stats().Summary(),
		Health:   monitor.AggregateHealth("ringcast"),
		Elapsed:  time.Since(start),
	}
	for i, c := range consumers {
		report.Consumed[i] = c.Consumed()
	}

	if runErr != nil {
		if core != nil {
			core.RecordRunStatus(RunStatusFailed)
		}
		logger.Error("Run failed", "error", runErr, "produced", report.Produced)
		return report, runErr
	}

	if core != nil {
		core.RecordRunStatus(RunStatusStopped)
	}
	logger.Info("Run finished",
		"produced", report.Produced,
		"misses", report.Misses,
		"consumed", report.Consumed,
		"health", report.Health.Status,
		"elapsed", report.Elapsed)
	return report, nil
}
