package broadcast

// Status tags the outcome of a read.
type Status int

const (
	// StatusValue means Result.Value holds a real value.
	StatusValue Status = iota
	// StatusEmpty means nothing was available to read.
	StatusEmpty
	// StatusCancelled means the context ended before a value arrived.
	StatusCancelled
	// StatusClosed means the ring or reader is closed and fully drained.
	StatusClosed
	// StatusLagged means the requested index is no longer readable by this reader.
	StatusLagged
)

func (s Status) String() string {
	switch s {
	case StatusValue:
		return "value"
	case StatusEmpty:
		return "empty"
	case StatusCancelled:
		return "cancelled"
	case StatusClosed:
		return "closed"
	case StatusLagged:
		return "lagged"
	default:
		return "unknown"
	}
}

// Result is the outcome of a read. Value is only meaningful when Status is StatusValue,
// so a zero T is never mistaken for "no data".
type Result[T any] struct {
	Value  T
	Seq    uint64
	Status Status
}

// Ok reports whether the result carries a value.
func (r Result[T]) Ok() bool {
	return r.Status == StatusValue
}
