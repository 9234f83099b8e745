// Package retry provides backoff helpers for operations that fail fast.
//
// Two shapes are supported:
//
//   - Do: run an error-returning function up to MaxAttempts times with
//     exponential backoff (used for opening output sinks)
//   - Poll: run a non-blocking bool-returning function until it reports
//     success or the context ends (used by producers driving Ring.TryPut)
//
// Poll never gives up on its own. The context is the only way out, which
// matches a producer that must keep offering the same value until a slot
// frees up or the run is cancelled:
//
//	misses, err := retry.Poll(ctx, retry.Spin(), func() bool {
//		return ring.TryPut(v)
//	})
//
// Delays grow by Multiplier from InitialDelay up to MaxDelay. Spin() keeps
// the delays in the microsecond range so a polling producer behaves like the
// classic sleep-and-retry loop without burning a whole core.
package retry
