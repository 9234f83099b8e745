package broadcast

import (
	"log/slog"

	"github.com/c360/ringcast/metric"
)

// Mode selects which consumption protocol a ring serves. It is fixed at
// construction because the two protocols share cursors.
type Mode int

const (
	// ModeBroadcast delivers every value to every registered Reader.
	ModeBroadcast Mode = iota
	// ModeQueue hands each value to a single consumer through Pop.
	ModeQueue
)

// String returns the mode name used in config files and logs.
func (m Mode) String() string {
	switch m {
	case ModeBroadcast:
		return "broadcast"
	case ModeQueue:
		return "queue"
	default:
		return "unknown"
	}
}

// ParseMode converts a config string into a Mode.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "", "broadcast":
		return ModeBroadcast, true
	case "queue":
		return ModeQueue, true
	default:
		return ModeBroadcast, false
	}
}

// OverflowPolicy defines what a queue-mode ring does with a put when it is full.
// Broadcast rings never overwrite unconsumed values and ignore the policy.
type OverflowPolicy int

const (
	// DropOldest overwrites the oldest queued value.
	DropOldest OverflowPolicy = iota
	// DropNewest discards the value being put.
	DropNewest
)

// String returns the policy name used in config files.
func (p OverflowPolicy) String() string {
	switch p {
	case DropOldest:
		return "drop_oldest"
	case DropNewest:
		return "drop_newest"
	default:
		return "unknown"
	}
}

// ParseOverflowPolicy converts a config string into an OverflowPolicy.
func ParseOverflowPolicy(s string) (OverflowPolicy, bool) {
	switch s {
	case "", "drop_oldest":
		return DropOldest, true
	case "drop_newest":
		return DropNewest, true
	default:
		return DropOldest, false
	}
}

// DropCallback is called with every value a queue-mode ring discards.
// It runs after the ring lock is released.
type DropCallback[T any] func(item T)

// Option configures ring behavior using the functional options pattern.
type Option[T any] func(*ringOptions[T])

type ringOptions[T any] struct {
	mode           Mode
	overflowPolicy OverflowPolicy
	dropCallback   DropCallback[T]

	// metricsReg is optional; stats are always collected
	metricsReg    metric.MetricsRegistrar
	metricsPrefix string

	logger *slog.Logger
}

// WithMode selects broadcast or queue semantics. Defaults to ModeBroadcast.
func WithMode[T any](mode Mode) Option[T] {
	return func(opts *ringOptions[T]) {
		opts.mode = mode
	}
}

// WithOverflowPolicy sets the queue-mode overflow behavior.
// Defaults to DropOldest if not specified.
func WithOverflowPolicy[T any](policy OverflowPolicy) Option[T] {
	return func(opts *ringOptions[T]) {
		opts.overflowPolicy = policy
	}
}

// WithDropCallback sets a callback function that is called when values are dropped.
func WithDropCallback[T any](callback DropCallback[T]) Option[T] {
	return func(opts *ringOptions[T]) {
		opts.dropCallback = callback
	}
}

// WithMetrics enables Prometheus metrics export for ring statistics.
// A nil registry or empty prefix leaves metrics disabled.
func WithMetrics[T any](registry metric.MetricsRegistrar, prefix string) Option[T] {
	return func(opts *ringOptions[T]) {
		if registry != nil && prefix != "" {
			opts.metricsReg = registry
			opts.metricsPrefix = prefix
		}
	}
}

// WithLogger sets the logger used for lifecycle events.
func WithLogger[T any](logger *slog.Logger) Option[T] {
	return func(opts *ringOptions[T]) {
		if logger != nil {
			opts.logger = logger
		}
	}
}

func applyOptions[T any](options ...Option[T]) *ringOptions[T] {
	opts := &ringOptions[T]{
		mode:           ModeBroadcast,
		overflowPolicy: DropOldest,
		logger:         slog.Default(),
	}

	for _, opt := range options {
		if opt != nil {
			opt(opts)
		}
	}

	return opts
}
