package fanout

// SequenceStart is the first value the producer emits.
const SequenceStart byte = 71

// Sequence generates producer values: it starts at SequenceStart and each
// following value is ((v+1) % 99) + 30, which keeps every value in 30..128.
type Sequence struct {
	v byte
}

// NewSequence returns a sequence positioned at SequenceStart.
func NewSequence() *Sequence {
	return &Sequence{v: SequenceStart}
}

// Next returns the current value and advances.
func (s *Sequence) Next() byte {
	v := s.v
	s.v = byte((int(s.v)+1)%99 + 30)
	return v
}

// Expected returns the first n values of a fresh sequence.
func Expected(n int) []byte {
	seq := NewSequence()
	out := make([]byte, n)
	for i := range out {
		out[i] = seq.Next()
	}
	return out
}
