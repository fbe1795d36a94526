package packet

import "sync/atomic"

type (
	// Sequence hands out process-wide packet identifiers. Constructed once
	// at startup and injected into the codec; concurrent callers always
	// receive distinct values.
	Sequence struct {
		n atomic.Uint64
	}
)

func NewSequence() *Sequence {
	return &Sequence{}
}

// NextID returns the next identifier, starting from 0.
func (s *Sequence) NextID() uint64 {
	return s.n.Add(1) - 1
}
