package refresh

import (
	"context"
	"errors"
	"fmt"
	"image"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"rgbtouch/hal"
)

var (
	ErrClosed      = errors.New("refresh: coordinator closed")
	ErrSwapTimeout = errors.New("refresh: swap signal timed out")
)

// Compositor renders widget state into a draw buffer.
type Compositor interface {
	// RenderDamagedRegions redraws every damaged region into buf, clears the
	// damage and returns the regions. Each region is rendered in full.
	RenderDamagedRegions(buf hal.Image) []image.Rectangle
	// RenderFull redraws the whole surface into buf and clears the damage.
	RenderFull(buf hal.Image)
	Dirty() bool
	Invalidate(r image.Rectangle)
}

// Mode selects how draw buffers reach the panel.
type Mode uint8

const (
	// ModeHandshake posts the ready token after each draw pass and presents
	// the damaged regions once the swap signal arrives.
	ModeHandshake Mode = iota
	// ModeFullRepaint repaints the whole surface into one of two buffers and
	// lets the Source flip it at the next window without waiting.
	ModeFullRepaint
	// ModeImmediate presents as soon as a pass is drawn. It can tear.
	ModeImmediate
)

func (m Mode) String() string {
	switch m {
	case ModeHandshake:
		return "handshake"
	case ModeFullRepaint:
		return "full-repaint"
	case ModeImmediate:
		return "immediate"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// ParseMode is the inverse of Mode.String.
func ParseMode(s string) (Mode, error) {
	for _, m := range []Mode{ModeHandshake, ModeFullRepaint, ModeImmediate} {
		if m.String() == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("refresh: unknown mode %q", s)
}

// State is the Coordinator's position in the draw cycle.
type State uint32

const (
	StateDrawing State = iota
	StateAwaitingSwap
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateDrawing:
		return "drawing"
	case StateAwaitingSwap:
		return "awaiting-swap"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", uint32(s))
	}
}

type Config struct {
	Mode Mode
	// SwapTimeout bounds the wait for a swap signal. Zero waits forever.
	SwapTimeout time.Duration
}

// CycleStats counts Coordinator draw cycles.
type CycleStats struct {
	Frames   uint64
	Dropped  uint64
	Timeouts uint64
}

// Coordinator is the UI side of the handoff. Refresh and Run must be called
// from a single goroutine; State, Stats and Shutdown are safe from any.
type Coordinator struct {
	src  *Source
	comp Compositor
	log  hal.Logger
	cfg  Config

	bufs []*FrameBuffer
	cur  int

	// Full-repaint only.
	back        *FrameBuffer
	outstanding bool

	seenFailures   uint64
	seenViolations uint64

	state     atomic.Uint32
	closed    atomic.Bool
	life      context.Context
	stop      context.CancelFunc
	closeOnce sync.Once

	frames   atomic.Uint64
	dropped  atomic.Uint64
	timeouts atomic.Uint64
}

// NewCoordinator binds a Source and a Compositor to one or two draw buffers.
func NewCoordinator(src *Source, comp Compositor, bufs []hal.Image, cfg Config, log hal.Logger) (*Coordinator, error) {
	if src == nil {
		return nil, errors.New("refresh: nil source")
	}
	if comp == nil {
		return nil, errors.New("refresh: nil compositor")
	}
	if len(bufs) < 1 || len(bufs) > 2 {
		return nil, fmt.Errorf("refresh: %d draw buffers, want 1 or 2", len(bufs))
	}
	w, h := bufs[0].Size()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("refresh: empty draw buffer %dx%d", w, h)
	}
	for i, b := range bufs[1:] {
		if bw, bh := b.Size(); bw != w || bh != h {
			return nil, fmt.Errorf("refresh: buffer %d is %dx%d, want %dx%d", i+1, bw, bh, w, h)
		}
	}
	switch cfg.Mode {
	case ModeHandshake, ModeImmediate:
	case ModeFullRepaint:
		if len(bufs) != 2 {
			return nil, fmt.Errorf("refresh: %s mode needs 2 draw buffers, have %d", cfg.Mode, len(bufs))
		}
	default:
		return nil, fmt.Errorf("refresh: invalid mode %d", cfg.Mode)
	}
	if cfg.SwapTimeout < 0 {
		return nil, fmt.Errorf("refresh: negative swap timeout %s", cfg.SwapTimeout)
	}

	c := &Coordinator{
		src:  src,
		comp: comp,
		log:  log,
		cfg:  cfg,
	}
	for i, b := range bufs {
		c.bufs = append(c.bufs, newFrameBuffer(i, b))
	}
	if cfg.Mode == ModeFullRepaint {
		c.back = c.bufs[0]
		src.spare.Put(c.bufs[1])
	}
	c.life, c.stop = context.WithCancel(context.Background())
	return c, nil
}

func (c *Coordinator) State() State    { return State(c.state.Load()) }
func (c *Coordinator) Mode() Mode      { return c.cfg.Mode }
func (c *Coordinator) Source() *Source { return c.src }

// Buffers returns the draw buffers in allocation order.
func (c *Coordinator) Buffers() []*FrameBuffer { return c.bufs }

func (c *Coordinator) Stats() CycleStats {
	return CycleStats{
		Frames:   c.frames.Load(),
		Dropped:  c.dropped.Load(),
		Timeouts: c.timeouts.Load(),
	}
}

// Shutdown disables the Source and then releases a Refresh blocked on the
// swap signal, in that order. Refresh returns ErrClosed afterwards.
func (c *Coordinator) Shutdown() {
	c.closeOnce.Do(func() {
		c.src.Disable()
		c.closed.Store(true)
		c.state.Store(uint32(StateClosed))
		c.stop()
	})
}

// Refresh runs one draw cycle. It returns nil without presenting when
// nothing is damaged.
func (c *Coordinator) Refresh(ctx context.Context) error {
	if c.closed.Load() {
		return ErrClosed
	}
	var err error
	switch c.cfg.Mode {
	case ModeFullRepaint:
		err = c.refreshFull(ctx)
	case ModeImmediate:
		err = c.refreshImmediate()
	default:
		err = c.refreshHandshake(ctx)
	}
	if !c.closed.Load() {
		c.state.Store(uint32(StateDrawing))
	}
	c.observe()
	return err
}

func (c *Coordinator) refreshHandshake(ctx context.Context) error {
	fb := c.bufs[c.cur]
	c.state.Store(uint32(StateDrawing))
	rects := c.comp.RenderDamagedRegions(fb.img)
	if len(rects) == 0 {
		return nil
	}

	c.src.ready.Give()
	if err := c.awaitSwap(ctx); err != nil {
		c.drop(rects)
		return err
	}

	if err := fb.transfer(OwnerCoordinator, OwnerSource); err != nil {
		c.drop(rects)
		return err
	}
	perr := c.presentAll(fb, rects)
	if err := fb.transfer(OwnerSource, OwnerCoordinator); err != nil {
		return err
	}
	if perr != nil {
		c.logf("present failed, frame dropped: %v", perr)
		c.drop(rects)
		return nil
	}
	c.frames.Add(1)
	if len(c.bufs) == 2 {
		c.cur ^= 1
	}
	return nil
}

func (c *Coordinator) refreshImmediate() error {
	fb := c.bufs[c.cur]
	c.state.Store(uint32(StateDrawing))
	rects := c.comp.RenderDamagedRegions(fb.img)
	if len(rects) == 0 {
		return nil
	}
	if err := fb.transfer(OwnerCoordinator, OwnerSource); err != nil {
		return err
	}
	perr := c.presentAll(fb, rects)
	if err := fb.transfer(OwnerSource, OwnerCoordinator); err != nil {
		return err
	}
	if perr != nil {
		c.logf("present failed, frame dropped: %v", perr)
		c.drop(rects)
		return nil
	}
	c.frames.Add(1)
	return nil
}

func (c *Coordinator) refreshFull(ctx context.Context) error {
	if !c.comp.Dirty() {
		return nil
	}
	// A free buffer exists unless both are with the Source; the next flip
	// releases one.
	for c.back == nil {
		if fb := c.src.spare.Take(); fb != nil {
			c.back = fb
			break
		}
		if !c.outstanding {
			return fmt.Errorf("no free draw buffer: %w", ErrOwnership)
		}
		if err := c.awaitFlip(ctx); err != nil {
			return err
		}
	}

	c.state.Store(uint32(StateDrawing))
	c.comp.RenderFull(c.back.img)

	if c.outstanding {
		if err := c.awaitFlip(ctx); err != nil {
			c.comp.Invalidate(c.back.Bounds())
			return err
		}
	}

	fb := c.back
	if err := fb.transfer(OwnerCoordinator, OwnerSource); err != nil {
		return err
	}
	c.back = nil
	c.src.queued.Put(fb)
	c.src.ready.Give()
	c.outstanding = true
	c.frames.Add(1)
	return nil
}

// awaitFlip waits for the queued buffer to be flipped. On failure the queued
// frame is taken back as a spare and counted as dropped.
func (c *Coordinator) awaitFlip(ctx context.Context) error {
	err := c.awaitSwap(ctx)
	c.outstanding = false
	if err == nil {
		return nil
	}
	if fb := c.src.queued.Take(); fb != nil {
		c.dropped.Add(1)
		if terr := fb.transfer(OwnerSource, OwnerCoordinator); terr != nil {
			return terr
		}
		c.src.spare.Put(fb)
		c.comp.Invalidate(fb.Bounds())
	}
	return err
}

// awaitSwap blocks on the swap signal. If the wait is abandoned while the
// ready token is still posted, the token is withdrawn; if the Source already
// consumed it the swap happened and the wait counts as satisfied.
func (c *Coordinator) awaitSwap(ctx context.Context) error {
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(c.life, cancel)
	defer stop()
	if c.cfg.SwapTimeout > 0 {
		var tcancel context.CancelFunc
		wctx, tcancel = context.WithTimeout(wctx, c.cfg.SwapTimeout)
		defer tcancel()
	}

	c.state.Store(uint32(StateAwaitingSwap))
	if c.src.swap.Take(wctx) == nil {
		return nil
	}

	consumed := c.reclaim()
	switch {
	case c.closed.Load():
		return ErrClosed
	case consumed:
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	default:
		c.timeouts.Add(1)
		c.logf("no swap window within %s, frame dropped", c.cfg.SwapTimeout)
		return ErrSwapTimeout
	}
}

// reclaim withdraws a posted ready token. It reports false if the token was
// still posted, and true after draining the swap signal the Source gives
// when it consumes the token.
func (c *Coordinator) reclaim() bool {
	if c.src.ready.TryTake() {
		return false
	}
	// The Source gives the swap signal in the same window it takes the
	// token, and Disable waits for that window to finish.
	for !c.src.swap.TryTake() {
		runtime.Gosched()
	}
	return true
}

func (c *Coordinator) presentAll(fb *FrameBuffer, rects []image.Rectangle) error {
	for _, r := range rects {
		if err := c.src.Present(fb, r); err != nil {
			return err
		}
	}
	return nil
}

// drop counts a lost frame and re-damages its regions so the next pass
// redraws them.
func (c *Coordinator) drop(rects []image.Rectangle) {
	c.dropped.Add(1)
	for _, r := range rects {
		c.comp.Invalidate(r)
	}
}

// observe logs failures the Source counted in vsync context.
func (c *Coordinator) observe() {
	st := c.src.Stats()
	if c.cfg.Mode == ModeFullRepaint && st.PresentFailures > c.seenFailures {
		c.logf("%d flip(s) failed to present", st.PresentFailures-c.seenFailures)
		c.dropped.Add(st.PresentFailures - c.seenFailures)
		c.comp.Invalidate(c.bufs[0].Bounds())
	}
	c.seenFailures = st.PresentFailures
	if st.Violations > c.seenViolations {
		c.logf("%d buffer ownership violation(s) in swap window", st.Violations-c.seenViolations)
		c.seenViolations = st.Violations
	}
}

// Run is the UI loop: step, then Refresh, once per period until ctx is done
// or the Coordinator is shut down.
func (c *Coordinator) Run(ctx context.Context, period time.Duration, step func()) error {
	t := time.NewTicker(period)
	defer t.Stop()
	for {
		if step != nil {
			step()
		}
		err := c.Refresh(ctx)
		switch {
		case err == nil, errors.Is(err, ErrSwapTimeout):
		case errors.Is(err, ErrClosed):
			return nil
		default:
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}

func (c *Coordinator) logf(format string, args ...any) {
	if c.log == nil {
		return
	}
	c.log.WriteLineString("refresh: " + fmt.Sprintf(format, args...))
}
