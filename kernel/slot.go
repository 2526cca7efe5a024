package kernel

import "sync/atomic"

// Slot is a single-slot, overwrite-on-put mailbox.
//
// Put replaces any value not yet taken and counts it as dropped.
type Slot[T any] struct {
	_     [0]func() // prevent accidental copying.
	v     atomic.Pointer[T]
	drops atomic.Uint64
}

// Put stores v, returning false if an untaken value was overwritten.
func (s *Slot[T]) Put(v *T) bool {
	if old := s.v.Swap(v); old != nil {
		s.drops.Add(1)
		return false
	}
	return true
}

// Take removes and returns the stored value, or nil if the slot is empty.
func (s *Slot[T]) Take() *T {
	return s.v.Swap(nil)
}

// Peek returns the stored value without removing it.
func (s *Slot[T]) Peek() *T {
	return s.v.Load()
}

// Drops returns how many values were overwritten before being taken.
func (s *Slot[T]) Drops() uint64 {
	return s.drops.Load()
}
