package kernel

import (
	"context"
	"sync/atomic"
)

// Semaphore is a binary semaphore shared by exactly one giver and one taker.
//
// Give and TryTake never block and never allocate, so both are safe to call
// from interrupt context. Gives before a take coalesce into one.
type Semaphore struct {
	_     [0]func() // prevent accidental copying.
	state atomic.Uint32
	wake  chan struct{}
}

// NewSemaphore returns an empty semaphore.
func NewSemaphore() *Semaphore {
	return &Semaphore{wake: make(chan struct{}, 1)}
}

// Give makes the semaphore available, returning false if it already was.
func (s *Semaphore) Give() bool {
	if !s.state.CompareAndSwap(0, 1) {
		return false
	}
	select {
	case s.wake <- struct{}{}:
	default:
	}
	return true
}

// TryTake consumes the semaphore if it is available.
func (s *Semaphore) TryTake() bool {
	return s.state.CompareAndSwap(1, 0)
}

// Available reports whether a Give is pending.
func (s *Semaphore) Available() bool {
	return s.state.Load() == 1
}

// Take blocks until the semaphore is given or ctx is done.
//
// The waiter parks on a channel rather than spinning. A stale wakeup left by
// an earlier Give only costs one extra loop iteration.
func (s *Semaphore) Take(ctx context.Context) error {
	for {
		if s.TryTake() {
			return nil
		}
		select {
		case <-s.wake:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
