package broadcast

import (
	"context"

	"github.com/c360/ringcast/errors"
)

// enqueueLocked writes v in queue mode, applying the overflow policy when full.
func (r *Ring[T]) enqueueLocked(v T) (bool, []T) {
	var dropped []T

	if r.sizeLocked() == r.capacity {
		switch r.opts.overflowPolicy {
		case DropNewest:
			return true, []T{v}
		default:
			s := &r.slots[r.readSeq%uint64(r.capacity)]
			dropped = append(dropped, s.value)
			s.unread = false
			r.readSeq++
		}
	}

	s := &r.slots[r.writeSeq%uint64(r.capacity)]
	s.value = v
	s.seq = r.writeSeq
	s.readersDone = 0
	s.expected = 0
	s.unread = true
	r.writeSeq++

	r.recordPut()
	r.signalLocked()
	return true, dropped
}

// Pop removes and returns the oldest queued value. It never waits; an empty
// ring yields StatusEmpty, or StatusClosed once the ring is closed.
func (r *Ring[T]) Pop() (Result[T], error) {
	if r.opts.mode != ModeQueue {
		return Result[T]{Status: StatusEmpty}, errors.WrapInvalid(errors.ErrWrongMode,
			"Ring", "Pop", "pop from broadcast ring")
	}

	r.mu.Lock()
	res := r.popLocked()
	r.mu.Unlock()

	r.recordPop(res)
	return res, nil
}

// Take removes the oldest queued value, waiting until one is available.
func (r *Ring[T]) Take(ctx context.Context) (Result[T], error) {
	if r.opts.mode != ModeQueue {
		return Result[T]{Status: StatusEmpty}, errors.WrapInvalid(errors.ErrWrongMode,
			"Ring", "Take", "take from broadcast ring")
	}

	for {
		r.mu.Lock()
		res := r.popLocked()
		if res.Status != StatusEmpty {
			r.mu.Unlock()
			r.recordPop(res)
			return res, nil
		}
		ready := r.notify
		r.mu.Unlock()

		select {
		case <-ctx.Done():
			return Result[T]{Status: StatusCancelled}, nil
		case <-ready:
		}
	}
}

func (r *Ring[T]) popLocked() Result[T] {
	if r.sizeLocked() == 0 {
		if r.closed {
			return Result[T]{Seq: r.readSeq, Status: StatusClosed}
		}
		return Result[T]{Seq: r.readSeq, Status: StatusEmpty}
	}

	var zero T
	s := &r.slots[r.readSeq%uint64(r.capacity)]
	res := Result[T]{Value: s.value, Seq: s.seq, Status: StatusValue}
	s.value = zero
	s.unread = false
	r.readSeq++

	r.recordSizeLocked()
	r.signalLocked()
	return res
}

func (r *Ring[T]) recordPop(res Result[T]) {
	if !res.Ok() {
		return
	}
	r.stats.Pop()
	if r.metrics != nil {
		r.metrics.pops.Inc()
	}
}

// Reset discards every queued value by moving the read cursor to the write
// cursor. Stored values are not erased, only made eligible for overwrite.
func (r *Ring[T]) Reset() error {
	if r.opts.mode != ModeQueue {
		return errors.WrapInvalid(errors.ErrWrongMode, "Ring", "Reset",
			"reset broadcast ring")
	}

	r.mu.Lock()
	for seq := r.readSeq; seq < r.writeSeq; seq++ {
		r.slots[seq%uint64(r.capacity)].unread = false
	}
	r.readSeq = r.writeSeq
	r.recordSizeLocked()
	r.signalLocked()
	r.mu.Unlock()

	return nil
}
