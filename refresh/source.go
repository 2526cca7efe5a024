package refresh

import (
	"fmt"
	"image"
	"runtime"
	"sync/atomic"

	"rgbtouch/hal"
	"rgbtouch/kernel"
)

// Driver is the part of the panel the handoff needs.
type Driver interface {
	PresentRegion(buf hal.Image, r image.Rectangle) error
	SetSwapWindowHandler(fn func())
}

// Stats counts Source activity since construction.
type Stats struct {
	Windows         uint64
	Swaps           uint64
	Stale           uint64
	Presents        uint64
	PresentFailures uint64
	Violations      uint64
}

// Source is the vsync side of the handoff.
//
// OnSwapWindow consumes at most one ready token per window. Without one it
// leaves the panel showing the previous frame.
type Source struct {
	drv Driver

	ready *kernel.Semaphore
	swap  *kernel.Semaphore

	// Full-repaint bookkeeping. queued holds the buffer waiting for the next
	// window, front the buffer last flipped to the panel, spare the buffer
	// the flip released.
	queued kernel.Slot[FrameBuffer]
	spare  kernel.Slot[FrameBuffer]
	front  atomic.Pointer[FrameBuffer]

	enabled  atomic.Bool
	inflight atomic.Int32

	windows  atomic.Uint64
	swaps    atomic.Uint64
	stale    atomic.Uint64
	presents atomic.Uint64
	failures atomic.Uint64
	lost     atomic.Uint64
}

// NewSource returns a disabled Source bound to drv.
func NewSource(drv Driver) *Source {
	return &Source{
		drv:   drv,
		ready: kernel.NewSemaphore(),
		swap:  kernel.NewSemaphore(),
	}
}

// Enable registers OnSwapWindow with the driver.
func (s *Source) Enable() {
	s.enabled.Store(true)
	s.drv.SetSwapWindowHandler(s.OnSwapWindow)
}

// Disable unregisters the handler and returns once no OnSwapWindow call is
// running. No swap signal is given after Disable returns.
func (s *Source) Disable() {
	s.enabled.Store(false)
	s.drv.SetSwapWindowHandler(nil)
	for s.inflight.Load() != 0 {
		runtime.Gosched()
	}
}

// Enabled reports whether swap windows are being handled.
func (s *Source) Enabled() bool { return s.enabled.Load() }

// OnSwapWindow runs once per refresh interval in the panel's vsync context.
// It never blocks.
func (s *Source) OnSwapWindow() {
	s.inflight.Add(1)
	defer s.inflight.Add(-1)
	if !s.enabled.Load() {
		return
	}

	s.windows.Add(1)
	if !s.ready.TryTake() {
		s.stale.Add(1)
		return
	}

	if fb := s.queued.Take(); fb != nil {
		s.flip(fb)
	}
	s.swaps.Add(1)
	s.swap.Give()
}

// flip shows fb in full and releases the previous front buffer.
func (s *Source) flip(fb *FrameBuffer) {
	// Failures are counted by Present. The flip stands either way.
	_ = s.Present(fb, fb.Bounds())

	old := s.front.Swap(fb)
	if old == nil {
		return
	}
	if err := old.transfer(OwnerSource, OwnerCoordinator); err != nil {
		s.lost.Add(1)
		return
	}
	if !s.spare.Put(old) {
		s.lost.Add(1)
	}
}

// Present copies r of fb to the panel. fb must be owned by the Source.
// A failure is counted and returned; ownership is unaffected.
func (s *Source) Present(fb *FrameBuffer, r image.Rectangle) error {
	if o := fb.Owner(); o != OwnerSource {
		s.failures.Add(1)
		return fmt.Errorf("present buffer %d owned by %s: %w", fb.id, o, ErrOwnership)
	}
	if err := s.drv.PresentRegion(fb.img, r); err != nil {
		s.failures.Add(1)
		return fmt.Errorf("present %v: %w", r, err)
	}
	s.presents.Add(1)
	return nil
}

// Stats returns a snapshot of the counters.
func (s *Source) Stats() Stats {
	return Stats{
		Windows:         s.windows.Load(),
		Swaps:           s.swaps.Load(),
		Stale:           s.stale.Load(),
		Presents:        s.presents.Load(),
		PresentFailures: s.failures.Load(),
		Violations:      s.lost.Load(),
	}
}
