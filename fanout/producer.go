package fanout

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/c360/ringcast/config"
	"github.com/c360/ringcast/errors"
	"github.com/c360/ringcast/health"
	"github.com/c360/ringcast/metric"
	"github.com/c360/ringcast/pkg/broadcast"
	"github.com/c360/ringcast/pkg/retry"
)

const producerName = "producer"

// ProducerConfig configures a Producer.
type ProducerConfig struct {
	// Strategy is config.StrategyBlock or config.StrategyPoll.
	Strategy string
	// Poll is the backoff used by the poll strategy. Defaults to retry.Spin().
	Poll *retry.Config
	// Limit stops the producer after this many values. Zero means no limit.
	Limit int
	// Rate caps values written per second. Zero is unthrottled.
	Rate    float64
	Metrics *metric.Metrics
	Monitor *health.Monitor
	Logger  *slog.Logger
}

// Producer writes the value sequence into a ring until cancelled.
type Producer struct {
	ring     *broadcast.Ring[byte]
	strategy string
	poll     retry.Config
	limit    int
	limiter  *rate.Limiter
	seq      *Sequence
	metrics  *metric.Metrics
	monitor  *health.Monitor
	logger   *slog.Logger

	produced atomic.Int64
	misses   atomic.Int64
}

// NewProducer creates a producer for ring.
func NewProducer(ring *broadcast.Ring[byte], cfg ProducerConfig) (*Producer, error) {
	if ring == nil {
		return nil, errors.WrapInvalid(errors.ErrNilRing, "Producer", "NewProducer", "validate ring")
	}

	switch cfg.Strategy {
	case "":
		cfg.Strategy = config.StrategyBlock
	case config.StrategyBlock, config.StrategyPoll:
	default:
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "Producer", "NewProducer",
			fmt.Sprintf("unknown strategy %q", cfg.Strategy))
	}

	poll := retry.Spin()
	if cfg.Poll != nil {
		poll = *cfg.Poll
	}

	if cfg.Rate < 0 {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "Producer", "NewProducer",
			fmt.Sprintf("negative rate %v", cfg.Rate))
	}
	var limiter *rate.Limiter
	if cfg.Rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Rate), 1)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Producer{
		ring:     ring,
		strategy: cfg.Strategy,
		poll:     poll,
		limit:    cfg.Limit,
		limiter:  limiter,
		seq:      NewSequence(),
		metrics:  cfg.Metrics,
		monitor:  cfg.Monitor,
		logger:   logger.With("component", producerName, "strategy", cfg.Strategy),
	}, nil
}

// Run produces until ctx ends, the limit is reached or the ring closes.
// Reaching the limit closes the ring so consumers drain and stop.
// Cancellation is a normal stop and returns nil.
func (p *Producer) Run(ctx context.Context) error {
	start := time.Now()
	p.logger.Info("Producer started", "capacity", p.ring.Capacity(), "limit", p.limit)
	p.updateHealth(true, "producing")

	var runErr error
	for p.limit == 0 || int(p.produced.Load()) < p.limit {
		// Wait fails early when the deadline falls before the next token
		if p.limiter != nil && p.limiter.Wait(ctx) != nil {
			break
		}
		written, err := p.put(ctx, p.seq.Next())
		if err != nil {
			runErr = err
			break
		}
		if !written {
			break
		}
	}

	if p.limit > 0 && int(p.produced.Load()) >= p.limit {
		_ = p.ring.Close()
	}

	p.logger.Info("Producer stopped",
		"produced", p.produced.Load(),
		"misses", p.misses.Load(),
		"elapsed", time.Since(start))

	if runErr != nil {
		p.updateHealth(false, runErr.Error())
		if p.metrics != nil {
			p.metrics.RecordError(producerName, errors.Classify(runErr).String())
		}
		return runErr
	}
	p.updateHealth(true, "stopped")
	return nil
}

// put writes one value. It reports false without error when the run is over.
func (p *Producer) put(ctx context.Context, v byte) (bool, error) {
	switch p.strategy {
	case config.StrategyPoll:
		closed := false
		misses, err := retry.Poll(ctx, p.poll, func() bool {
			if p.ring.TryPut(v) {
				return true
			}
			// TryPut also reports false once the ring is closed
			closed = p.ring.Closed()
			return closed
		})
		p.recordMisses(misses)
		if err != nil || closed {
			return false, nil
		}

	default:
		if err := p.ring.Put(ctx, v); err != nil {
			if ctx.Err() != nil || errors.Is(err, errors.ErrClosed) {
				return false, nil
			}
			return false, errors.WrapTransient(err, "Producer", "put", "write value")
		}
	}

	n := p.produced.Add(1)
	if p.metrics != nil {
		p.metrics.RecordValueProduced()
	}
	p.logger.Debug("Value written", "value", v, "seq", n-1)
	return true, nil
}

func (p *Producer) recordMisses(n int) {
	if n == 0 {
		return
	}
	p.misses.Add(int64(n))
	if p.metrics != nil {
		p.metrics.RecordProducerMisses(n)
	}
	p.logger.Debug("Slot busy, retried", "misses", n)
}

func (p *Producer) updateHealth(healthy bool, message string) {
	if p.monitor == nil {
		return
	}
	status := health.NewHealthy(producerName, message)
	if !healthy {
		status = health.NewUnhealthy(producerName, message)
	}
	p.monitor.Update(producerName, status.WithMetrics(&health.Metrics{
		ValuesHandled: p.produced.Load(),
		LastActivity:  time.Now(),
	}))
}

// Produced returns how many values were written.
func (p *Producer) Produced() int64 {
	return p.produced.Load()
}

// Misses returns how many put attempts found the slot busy.
func (p *Producer) Misses() int64 {
	return p.misses.Load()
}
