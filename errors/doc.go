// Package errors provides the error classification used across ringcast.
//
// Errors fall into three classes:
//
//   - Transient: temporary conditions such as metrics registration races or
//     cancelled waits (retry is reasonable)
//   - Invalid: bad input or misuse, for example a zero capacity or calling a
//     queue operation on a broadcast ring (do not retry)
//   - Fatal: unrecoverable states that should stop the run
//
// Contention on the ring is never reported as an error. A rejected TryPut is
// a plain false return and the caller decides whether to retry.
//
// Wrapping follows "component.method: action failed: <cause>":
//
//	if capacity <= 0 {
//		return nil, errors.WrapInvalid(errors.ErrInvalidCapacity, "Ring", "New",
//			fmt.Sprintf("capacity %d", capacity))
//	}
//
// Classified errors keep the wrapped cause, so errors.Is works through them:
//
//	if errors.Is(err, errors.ErrInvalidCapacity) { ... }
package errors
