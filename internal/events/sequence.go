package events

import "sync/atomic"

// Sequencer provides monotonically increasing event sequence numbers.
type Sequencer struct{ n atomic.Uint64 }

// Next returns the next sequence number, starting at 1.
func (s *Sequencer) Next() uint64 { return s.n.Add(1) }
