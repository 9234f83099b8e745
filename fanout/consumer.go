package fanout

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/c360/ringcast/errors"
	"github.com/c360/ringcast/health"
	"github.com/c360/ringcast/metric"
	"github.com/c360/ringcast/pkg/broadcast"
)

// healthEvery is how many values a consumer handles between health updates.
const healthEvery = 64

// source abstracts the two ways a consumer can drain a ring.
type source interface {
	next(ctx context.Context) (broadcast.Result[byte], error)
	lag() int
	close() error
}

type readerSource struct {
	rd *broadcast.Reader[byte]
}

func (s readerSource) next(ctx context.Context) (broadcast.Result[byte], error) {
	return s.rd.Next(ctx), nil
}

func (s readerSource) lag() int     { return s.rd.Lag() }
func (s readerSource) close() error { return s.rd.Close() }

type queueSource struct {
	ring *broadcast.Ring[byte]
}

func (s queueSource) next(ctx context.Context) (broadcast.Result[byte], error) {
	return s.ring.Take(ctx)
}

func (s queueSource) lag() int     { return s.ring.Size() }
func (s queueSource) close() error { return nil }

// ConsumerConfig configures a Consumer.
type ConsumerConfig struct {
	Metrics *metric.Metrics
	Monitor *health.Monitor
	Logger  *slog.Logger
}

// Consumer drains a ring into a writer, one byte per value.
type Consumer struct {
	id       int
	name     string
	src      source
	out      io.Writer
	capacity int
	metrics  *metric.Metrics
	monitor  *health.Monitor
	logger   *slog.Logger

	consumed atomic.Int64
}

// NewConsumer creates consumer id for ring. On a broadcast ring it registers a
// Reader immediately, so the consumer is owed every value written from now on.
func NewConsumer(id int, ring *broadcast.Ring[byte], out io.Writer, cfg ConsumerConfig) (*Consumer, error) {
	if ring == nil {
		return nil, errors.WrapInvalid(errors.ErrNilRing, "Consumer", "NewConsumer", "validate ring")
	}
	if out == nil {
		return nil, errors.WrapInvalid(errors.ErrSinkUnavailable, "Consumer", "NewConsumer", "validate writer")
	}

	var src source = queueSource{ring: ring}
	if ring.Mode() == broadcast.ModeBroadcast {
		rd, err := ring.Register()
		if err != nil {
			return nil, errors.Wrap(err, "Consumer", "NewConsumer", "register reader")
		}
		src = readerSource{rd: rd}
	}

	name := ConsumerName(id)
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Consumer{
		id:       id,
		name:     name,
		src:      src,
		out:      out,
		capacity: ring.Capacity(),
		metrics:  cfg.Metrics,
		monitor:  cfg.Monitor,
		logger:   logger.With("component", name),
	}, nil
}

// ConsumerName returns the component name used for consumer id.
func ConsumerName(id int) string {
	return fmt.Sprintf("consumer-%d", id)
}

// Run reads values until ctx ends or the ring is closed and drained, writing
// each one to the consumer's writer. The reader is unregistered on return.
func (c *Consumer) Run(ctx context.Context) error {
	start := time.Now()
	c.logger.Info("Consumer started")
	if c.metrics != nil {
		c.metrics.ConsumerStarted()
		defer c.metrics.ConsumerStopped()
	}

	runErr := c.loop(ctx)
	lag := c.src.lag()
	if err := c.src.close(); err != nil && runErr == nil {
		runErr = errors.Wrap(err, "Consumer", "Run", "unregister reader")
	}

	if runErr != nil {
		c.failHealth(runErr)
		if c.metrics != nil {
			c.metrics.RecordError(c.name, errors.Classify(runErr).String())
		}
	} else {
		c.reportHealth(lag)
	}

	c.logger.Info("Consumer stopped",
		"consumed", c.consumed.Load(),
		"lag", lag,
		"elapsed", time.Since(start))
	return runErr
}

func (c *Consumer) loop(ctx context.Context) error {
	buf := make([]byte, 1)
	for {
		res, err := c.src.next(ctx)
		if err != nil {
			return err
		}

		switch res.Status {
		case broadcast.StatusValue:
		case broadcast.StatusCancelled, broadcast.StatusClosed:
			return nil
		default:
			return errors.WrapFatal(fmt.Errorf("unexpected read status %s at %d", res.Status, res.Seq),
				"Consumer", "Run", "read value")
		}

		buf[0] = res.Value
		if _, err := c.out.Write(buf); err != nil {
			return errors.WrapFatal(fmt.Errorf("%w: %w", errors.ErrSinkUnavailable, err),
				"Consumer", "Run", "write value")
		}

		n := c.consumed.Add(1)
		if c.metrics != nil {
			c.metrics.RecordBytesWritten(c.name, 1)
		}
		c.logger.Debug("Value read", "value", res.Value, "seq", res.Seq)

		if n%healthEvery == 0 {
			c.reportHealth(c.src.lag())
		}
	}
}

func (c *Consumer) reportHealth(lag int) {
	if c.metrics != nil {
		c.metrics.RecordConsumerLag(c.name, lag)
	}
	if c.monitor == nil {
		return
	}
	status := health.FromLag(c.name, lag, c.capacity)
	status.Metrics.ValuesHandled = c.consumed.Load()
	status.Metrics.LastActivity = time.Now()
	c.monitor.Update(c.name, status)
}

func (c *Consumer) failHealth(err error) {
	if c.monitor == nil {
		return
	}
	c.monitor.Update(c.name, health.NewUnhealthy(c.name, err.Error()).WithMetrics(&health.Metrics{
		ValuesHandled: c.consumed.Load(),
		LastActivity:  time.Now(),
	}))
}

// ID returns the consumer index.
func (c *Consumer) ID() int {
	return c.id
}

// Name returns the consumer component name.
func (c *Consumer) Name() string {
	return c.name
}

// Consumed returns how many values were written out.
func (c *Consumer) Consumed() int64 {
	return c.consumed.Load()
}
