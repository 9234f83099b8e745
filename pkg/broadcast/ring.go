package broadcast

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/c360/ringcast/errors"
)

const neverWritten = -1

type slot[T any] struct {
	value       T
	seq         uint64 // absolute write sequence of value
	readersDone int    // neverWritten until the first write
	expected    int    // active readers when value was written
	unread      bool
}

// consumed reports whether the producer may overwrite the slot.
func (s *slot[T]) consumed() bool {
	return s.readersDone == neverWritten || !s.unread
}

// credit counts one reader as done with the slot. It never counts past expected.
func (s *slot[T]) credit() bool {
	if s.readersDone == neverWritten || s.readersDone >= s.expected {
		return false
	}
	s.readersDone++
	if s.readersDone == s.expected {
		s.unread = false
	}
	return true
}

// Ring is a fixed-capacity ring shared by one producer and any number of readers.
// In ModeBroadcast every registered Reader observes every value written while it
// was registered, and a slot is reused only after all of them have read it.
type Ring[T any] struct {
	mu       sync.Mutex
	slots    []slot[T]
	capacity int
	writeSeq uint64 // next sequence the producer writes
	readSeq  uint64 // oldest sequence not yet recyclable
	closed   bool

	// notify is closed and replaced on every state change; waiters block on it
	notify chan struct{}

	// written only with mu held, so write-time snapshots agree with cursors
	readers atomic.Int64

	stats   *Statistics
	metrics *ringMetrics
	opts    *ringOptions[T]
	logger  *slog.Logger
}

// New creates a ring with room for capacity values.
// Returns an invalid-class error if capacity is not positive, and a transient
// error if metrics registration fails when requested.
func New[T any](capacity int, options ...Option[T]) (*Ring[T], error) {
	if capacity <= 0 {
		return nil, errors.WrapInvalid(errors.ErrInvalidCapacity, "Ring", "New",
			"validate capacity")
	}

	opts := applyOptions(options...)

	var metrics *ringMetrics
	if opts.metricsReg != nil {
		var err error
		metrics, err = newRingMetrics(opts.metricsReg, opts.metricsPrefix)
		if err != nil {
			return nil, errors.WrapTransient(err, "Ring", "New", "metrics registration")
		}
	}

	r := &Ring[T]{
		slots:    make([]slot[T], capacity),
		capacity: capacity,
		notify:   make(chan struct{}),
		stats:    NewStatistics(),
		metrics:  metrics,
		opts:     opts,
		logger:   opts.logger.With("component", "ring", "mode", opts.mode.String()),
	}
	for i := range r.slots {
		r.slots[i].readersDone = neverWritten
	}

	return r, nil
}

// TryPut writes v without waiting. It returns false when the ring lock is busy,
// when the next slot still holds a value some reader has not consumed, or when
// the ring is closed. Callers retry on false.
func (r *Ring[T]) TryPut(v T) bool {
	if !r.mu.TryLock() {
		r.rejected()
		return false
	}
	if r.closed {
		r.mu.Unlock()
		return false
	}
	ok, dropped := r.writeLocked(v)
	r.mu.Unlock()

	if !ok {
		r.rejected()
	}
	r.dropped(dropped)
	return ok
}

// Put writes v, waiting until the next slot is consumed. It returns ctx.Err()
// if the context ends first and ErrClosed once the ring is closed.
func (r *Ring[T]) Put(ctx context.Context, v T) error {
	for {
		r.mu.Lock()
		if r.closed {
			r.mu.Unlock()
			return errors.WrapInvalid(errors.ErrClosed, "Ring", "Put", "ring closed")
		}
		ok, dropped := r.writeLocked(v)
		if ok {
			r.mu.Unlock()
			r.dropped(dropped)
			return nil
		}
		wait := r.notify
		r.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-wait:
		}
	}
}

// writeLocked performs one put attempt. The second result holds values the
// overflow policy discarded; callbacks for them run after unlocking.
func (r *Ring[T]) writeLocked(v T) (bool, []T) {
	if r.opts.mode == ModeQueue {
		return r.enqueueLocked(v)
	}

	s := &r.slots[r.writeSeq%uint64(r.capacity)]
	if !s.consumed() {
		return false, nil
	}

	s.value = v
	s.seq = r.writeSeq
	s.expected = int(r.readers.Load())
	s.readersDone = 0
	s.unread = s.expected > 0
	r.writeSeq++

	r.advanceLocked()
	r.recordPut()
	r.signalLocked()
	return true, nil
}

// advanceLocked moves readSeq past every fully consumed slot.
func (r *Ring[T]) advanceLocked() {
	for r.readSeq < r.writeSeq {
		if !r.slots[r.readSeq%uint64(r.capacity)].consumed() {
			break
		}
		r.readSeq++
	}
}

// signalLocked wakes every goroutine waiting for a state change.
func (r *Ring[T]) signalLocked() {
	close(r.notify)
	r.notify = make(chan struct{})
}

// Register adds a reader positioned at the next value to be written.
// Values already in the ring are neither delivered to it nor waiting on it.
func (r *Ring[T]) Register() (*Reader[T], error) {
	if r.opts.mode != ModeBroadcast {
		return nil, errors.WrapInvalid(errors.ErrWrongMode, "Ring", "Register",
			"register reader on queue ring")
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, errors.WrapInvalid(errors.ErrClosed, "Ring", "Register", "ring closed")
	}
	active := r.readers.Add(1)
	rd := &Reader[T]{
		ring:  r,
		start: r.writeSeq,
		next:  r.writeSeq,
	}
	r.mu.Unlock()

	r.stats.Registered()
	if r.metrics != nil {
		r.metrics.activeReaders.Set(float64(active))
	}
	r.logger.Debug("Reader registered", "start", rd.start, "active_readers", active)

	return rd, nil
}

// Close stops the ring. Later puts fail with ErrClosed, readers drain what was
// already written and then see StatusClosed. Close is idempotent.
func (r *Ring[T]) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	written := r.writeSeq
	r.signalLocked()
	r.mu.Unlock()

	r.logger.Debug("Ring closed", "written", written)
	return nil
}

// Closed reports whether Close has been called.
func (r *Ring[T]) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// Capacity returns the fixed number of slots.
func (r *Ring[T]) Capacity() int {
	return r.capacity
}

// Size returns the number of written values that are not yet recyclable.
func (r *Ring[T]) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sizeLocked()
}

func (r *Ring[T]) sizeLocked() int {
	return int(r.writeSeq - r.readSeq)
}

// Empty reports whether no written value is waiting to be consumed.
func (r *Ring[T]) Empty() bool {
	return r.Size() == 0
}

// Full reports whether every slot holds a value that is not yet recyclable.
func (r *Ring[T]) Full() bool {
	return r.Size() == r.capacity
}

// ActiveReaders returns the number of registered readers.
func (r *Ring[T]) ActiveReaders() int {
	return int(r.readers.Load())
}

// WriteSeq returns the sequence number the next put will receive.
func (r *Ring[T]) WriteSeq() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writeSeq
}

// Mode returns the consumption protocol chosen at construction.
func (r *Ring[T]) Mode() Mode {
	return r.opts.mode
}

// Stats returns the ring statistics.
func (r *Ring[T]) Stats() *Statistics {
	return r.stats
}

func (r *Ring[T]) recordPut() {
	size := r.sizeLocked()
	r.stats.Put()
	r.stats.UpdateSize(int64(size))
	if r.metrics != nil {
		r.metrics.puts.Inc()
		r.metrics.updateSize(size, r.capacity)
	}
}

func (r *Ring[T]) recordSizeLocked() {
	size := r.sizeLocked()
	r.stats.UpdateSize(int64(size))
	if r.metrics != nil {
		r.metrics.updateSize(size, r.capacity)
	}
}

func (r *Ring[T]) rejected() {
	r.stats.RejectedPut()
	if r.metrics != nil {
		r.metrics.rejectedPuts.Inc()
	}
}

func (r *Ring[T]) dropped(items []T) {
	for _, item := range items {
		r.stats.Drop()
		if r.metrics != nil {
			r.metrics.drops.Inc()
		}
		if r.opts.dropCallback != nil {
			r.opts.dropCallback(item)
		}
	}
}
