package ui

import (
	"image"
	"sync"
	"sync/atomic"
	"time"

	"rgbtouch/hal"
)

// maxDamage bounds the damage list; past it the whole surface is redrawn.
const maxDamage = 32

// Compositor owns the active Screen and its damage list and renders into the
// draw buffers handed to it by the refresh loop.
type Compositor struct {
	mu     sync.Mutex
	width  int
	height int
	screen *Screen
	damage []image.Rectangle
	cv     Canvas

	tick  time.Duration
	ticks atomic.Uint64

	pressed bool
}

// NewCompositor returns a compositor for a width x height surface whose UI
// clock advances tick per TickInc step.
func NewCompositor(width, height int, tick time.Duration) *Compositor {
	return &Compositor{width: width, height: height, tick: tick}
}

func (c *Compositor) Bounds() image.Rectangle { return image.Rect(0, 0, c.width, c.height) }

// Load makes s the active screen and damages the whole surface.
func (c *Compositor) Load(s *Screen) {
	c.mu.Lock()
	if c.screen != nil {
		c.screen.inv = nil
		c.screen.captured = nil
		c.screen.down = false
	}
	c.screen = s
	c.mu.Unlock()
	s.inv = c.Invalidate
	c.Invalidate(c.Bounds())
}

func (c *Compositor) Screen() *Screen {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.screen
}

// Invalidate adds r to the damage list, joining it with any region whose
// union is no larger than the two areas apart.
func (c *Compositor) Invalidate(r image.Rectangle) {
	r = r.Intersect(c.Bounds())
	if r.Empty() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for merged := true; merged; {
		merged = false
		for i, d := range c.damage {
			if r.In(d) {
				return
			}
			u := r.Union(d)
			if area(u) <= area(r)+area(d) {
				c.damage = append(c.damage[:i], c.damage[i+1:]...)
				r = u
				merged = true
				break
			}
		}
	}
	if len(c.damage) >= maxDamage {
		c.damage = append(c.damage[:0], c.Bounds())
		return
	}
	c.damage = append(c.damage, r)
}

func area(r image.Rectangle) int { return r.Dx() * r.Dy() }

func (c *Compositor) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.damage) > 0
}

// Damage returns a copy of the pending damage list.
func (c *Compositor) Damage() []image.Rectangle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]image.Rectangle(nil), c.damage...)
}

// RenderDamagedRegions redraws each damaged region of the active screen into
// buf and clears the damage.
func (c *Compositor) RenderDamagedRegions(buf hal.Image) []image.Rectangle {
	c.mu.Lock()
	rects := c.damage
	c.damage = nil
	s := c.screen
	c.mu.Unlock()
	if len(rects) == 0 || s == nil {
		return nil
	}
	c.cv.Reset(buf)
	for _, r := range rects {
		s.draw(&c.cv, c.cv.Clip(r))
	}
	return rects
}

// RenderFull redraws the whole surface into buf and clears the damage.
func (c *Compositor) RenderFull(buf hal.Image) {
	c.mu.Lock()
	c.damage = nil
	s := c.screen
	c.mu.Unlock()
	if s == nil {
		return
	}
	c.cv.Reset(buf)
	s.draw(&c.cv, c.cv.Bounds())
}

// TickInc advances the UI clock by n ticks. Safe from any goroutine.
func (c *Compositor) TickInc(n uint64) { c.ticks.Add(n) }

// Now is the UI clock.
func (c *Compositor) Now() time.Duration {
	return time.Duration(c.ticks.Load()) * c.tick
}

// Step runs the active screen's due timers.
func (c *Compositor) Step() {
	if s := c.Screen(); s != nil {
		s.runTimers(c.Now())
	}
}

// Handle feeds one pointer sample to the active screen. Repeated released
// samples are dropped.
func (c *Compositor) Handle(ev PointerEvent) {
	if !ev.Pressed && !c.pressed {
		return
	}
	c.pressed = ev.Pressed
	if s := c.Screen(); s != nil {
		s.handle(ev)
	}
}
