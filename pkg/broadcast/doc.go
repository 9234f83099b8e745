// Package broadcast provides a fixed-capacity ring shared by one producer and
// many readers, where every reader observes every value.
//
// # Overview
//
// A Ring is not a work queue. Each value the producer writes stays in its slot
// until every reader that was registered at write time has read it; only then
// may the producer reuse the slot. Slow readers therefore apply backpressure
// to the producer, and fast readers never skip ahead of unwritten data.
//
// # Quick Start
//
//	ring, err := broadcast.New[byte](64)
//	if err != nil {
//		return err
//	}
//
//	reader, err := ring.Register()
//	if err != nil {
//		return err
//	}
//	defer reader.Close()
//
//	go func() {
//		for v := byte(71); ; v = (v+1)%99 + 30 {
//			if err := ring.Put(ctx, v); err != nil {
//				return
//			}
//		}
//	}()
//
//	for {
//		res := reader.Next(ctx)
//		if !res.Ok() {
//			break // cancelled or closed
//		}
//		process(res.Value)
//	}
//
// # Gating
//
// Every write snapshots the number of active readers into the slot. A slot
// is consumed once that many readers have read it. Readers start at the
// current write sequence, so a late reader is never owed older values. A
// Reader that closes early credits every slot it still owed, so the producer
// does not stall on it.
//
// Each slot is stamped with its absolute write sequence. Reader.Get takes that
// absolute index and cannot return a value twice.
//
// # Putting
//
//   - TryPut never waits. It returns false on lock contention or when the
//     next slot is still owed to a reader. Pair it with retry.Poll for a
//     polling producer.
//   - Put waits for the slot and honours context cancellation.
//
// # Results
//
// Reads return a Result whose Status separates a real value from an empty
// ring, a cancelled context, a closed ring, or an index the reader has passed.
//
// # Queue Mode
//
// A ring built WithMode(ModeQueue) is a single-consumer FIFO. Pop, Take and
// Reset are only valid there, and Register is only valid in broadcast mode;
// crossing modes returns errors.ErrWrongMode. When a queue is full the overflow
// policy decides whether the oldest or the newest value is dropped.
//
// # Observability
//
// Statistics are always collected and available via Stats(). WithMetrics
// additionally exports them to Prometheus under the ringcast_ring_ prefix,
// labelled by component.
package broadcast
