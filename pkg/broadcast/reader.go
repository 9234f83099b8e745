package broadcast

import (
	"context"
)

// Reader is one registered consumer of a broadcast ring. A Reader is used by
// a single goroutine; Close may be called from any goroutine.
type Reader[T any] struct {
	ring  *Ring[T]
	start uint64

	// guarded by ring.mu
	next   uint64
	closed bool
}

// Get reads the value written at absolute index, waiting for the producer if
// it has not been written yet. Reads happen in order: an index below Seq has
// already been passed and returns StatusLagged, an index above Seq returns
// StatusEmpty. Once the ring is closed and drained Get returns StatusClosed.
func (rd *Reader[T]) Get(ctx context.Context, index uint64) Result[T] {
	return rd.read(ctx, index, true)
}

// Next reads the value at Seq and advances.
func (rd *Reader[T]) Next(ctx context.Context) Result[T] {
	return rd.read(ctx, rd.Seq(), true)
}

// TryNext reads the value at Seq if it is already written, without waiting.
func (rd *Reader[T]) TryNext() Result[T] {
	return rd.read(context.Background(), rd.Seq(), false)
}

func (rd *Reader[T]) read(ctx context.Context, index uint64, wait bool) Result[T] {
	r := rd.ring
	for {
		r.mu.Lock()
		if rd.closed {
			r.mu.Unlock()
			return Result[T]{Seq: index, Status: StatusClosed}
		}
		if index < rd.next {
			r.mu.Unlock()
			return Result[T]{Seq: index, Status: StatusLagged}
		}
		if index > rd.next {
			r.mu.Unlock()
			return Result[T]{Seq: index, Status: StatusEmpty}
		}

		if index < r.writeSeq {
			s := &r.slots[index%uint64(r.capacity)]
			if s.seq != index {
				r.mu.Unlock()
				return Result[T]{Seq: index, Status: StatusLagged}
			}
			v := s.value
			s.credit()
			rd.next++
			if s.consumed() {
				r.advanceLocked()
				r.recordSizeLocked()
				r.signalLocked()
			}
			r.mu.Unlock()

			r.stats.Read()
			if r.metrics != nil {
				r.metrics.reads.Inc()
			}
			return Result[T]{Value: v, Seq: index, Status: StatusValue}
		}

		if r.closed {
			r.mu.Unlock()
			return Result[T]{Seq: index, Status: StatusClosed}
		}
		if !wait {
			r.mu.Unlock()
			return Result[T]{Seq: index, Status: StatusEmpty}
		}
		ready := r.notify
		r.mu.Unlock()

		select {
		case <-ctx.Done():
			return Result[T]{Seq: index, Status: StatusCancelled}
		case <-ready:
		}
	}
}

// Seq returns the next index this reader will consume.
func (rd *Reader[T]) Seq() uint64 {
	rd.ring.mu.Lock()
	defer rd.ring.mu.Unlock()
	return rd.next
}

// Start returns the index of the first value this reader was owed.
func (rd *Reader[T]) Start() uint64 {
	return rd.start
}

// Lag returns how many written values this reader has not consumed yet.
func (rd *Reader[T]) Lag() int {
	r := rd.ring
	r.mu.Lock()
	defer r.mu.Unlock()
	if rd.closed {
		return 0
	}
	return int(r.writeSeq - rd.next)
}

// Close unregisters the reader. Every slot it still owed is credited as read,
// so early departure never stalls the producer, and slots it already read are
// not counted twice. Later reads return StatusClosed. Close is idempotent.
func (rd *Reader[T]) Close() error {
	r := rd.ring

	r.mu.Lock()
	if rd.closed {
		r.mu.Unlock()
		return nil
	}
	rd.closed = true

	credited := 0
	for seq := rd.next; seq < r.writeSeq; seq++ {
		s := &r.slots[seq%uint64(r.capacity)]
		if s.seq == seq && s.credit() {
			credited++
		}
	}
	rd.next = r.writeSeq
	active := r.readers.Add(-1)

	r.advanceLocked()
	r.recordSizeLocked()
	r.signalLocked()
	r.mu.Unlock()

	r.stats.Departed(credited)
	if r.metrics != nil {
		r.metrics.activeReaders.Set(float64(active))
	}
	r.logger.Debug("Reader unregistered",
		"start", rd.start, "credited", credited, "active_readers", active)

	return nil
}
