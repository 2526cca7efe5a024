package ui

import (
	"image"
	"image/color"
	"time"
)

// PointerEvent is one pointer sample in screen coordinates. Raw carries the
// uncalibrated controller reading.
type PointerEvent struct {
	Pos     image.Point
	Raw     Point
	Pressed bool
}

type timer struct {
	period time.Duration
	next   time.Duration
	fn     func()
}

// Screen is a set of widgets drawn in order over a background colour.
type Screen struct {
	bg        color.RGBA
	widgets   []Widget
	timers    []*timer
	onPointer func(PointerEvent)
	captured  Touchable
	down      bool
	inv       func(image.Rectangle)
}

func NewScreen(bg color.RGBA) *Screen {
	return &Screen{bg: bg}
}

// Add appends widgets; later widgets draw on top.
func (s *Screen) Add(ws ...Widget) {
	for _, w := range ws {
		w.attach(s.invalidate)
		s.widgets = append(s.widgets, w)
		s.invalidate(w.Bounds())
	}
}

// OnPointer registers fn to see every pointer event before the widgets.
func (s *Screen) OnPointer(fn func(PointerEvent)) { s.onPointer = fn }

// Every runs fn each period of UI time while the screen is loaded.
func (s *Screen) Every(period time.Duration, fn func()) {
	s.timers = append(s.timers, &timer{period: period, fn: fn})
}

func (s *Screen) invalidate(r image.Rectangle) {
	if s.inv != nil {
		s.inv(r)
	}
}

func (s *Screen) handle(ev PointerEvent) {
	if s.onPointer != nil {
		s.onPointer(ev)
	}
	// Only the widget under the initial press receives the gesture.
	if ev.Pressed && !s.down {
		s.down = true
		for i := len(s.widgets) - 1; i >= 0; i-- {
			t, ok := s.widgets[i].(Touchable)
			if ok && !t.Hidden() && ev.Pos.In(t.Bounds()) {
				s.captured = t
				break
			}
		}
	}
	if !ev.Pressed {
		s.down = false
	}
	if s.captured == nil {
		return
	}
	s.captured.Touch(ev)
	if !ev.Pressed {
		s.captured = nil
	}
}

func (s *Screen) runTimers(now time.Duration) {
	for _, t := range s.timers {
		if t.period <= 0 || now < t.next {
			continue
		}
		t.next = now + t.period
		t.fn()
	}
}

func (s *Screen) draw(cv *Canvas, clip image.Rectangle) {
	cv.Fill(clip, s.bg)
	for _, w := range s.widgets {
		if w.Hidden() || !w.Bounds().Overlaps(clip) {
			continue
		}
		w.Draw(cv)
	}
}
