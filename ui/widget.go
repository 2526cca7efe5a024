package ui

import (
	"image"
	"image/color"
)

// Widget is anything a Screen can draw.
type Widget interface {
	Bounds() image.Rectangle
	Hidden() bool
	Draw(cv *Canvas)
	attach(inv func(image.Rectangle))
}

// Touchable widgets receive the pointer while it is captured by them.
type Touchable interface {
	Widget
	Touch(ev PointerEvent)
}

// base carries the geometry and damage hook every widget shares.
type base struct {
	r      image.Rectangle
	hidden bool
	inv    func(image.Rectangle)
}

func (b *base) Bounds() image.Rectangle          { return b.r }
func (b *base) Hidden() bool                     { return b.hidden }
func (b *base) attach(inv func(image.Rectangle)) { b.inv = inv }

func (b *base) invalidate() {
	if b.inv != nil {
		b.inv(b.r)
	}
}

// SetHidden shows or hides the widget.
func (b *base) SetHidden(v bool) {
	if b.hidden == v {
		return
	}
	b.hidden = v
	b.invalidate()
}

// Move changes the widget bounds, damaging both old and new areas.
func (b *base) Move(r image.Rectangle) {
	if b.r == r {
		return
	}
	b.invalidate()
	b.r = r
	b.invalidate()
}

// Label is a line of text. Centre aligns it in its bounds.
type Label struct {
	base
	text   string
	color  color.RGBA
	Centre bool
}

func NewLabel(r image.Rectangle, text string, c color.RGBA) *Label {
	return &Label{base: base{r: r}, text: text, color: c}
}

func (l *Label) Text() string { return l.text }

func (l *Label) SetText(s string) {
	if l.text == s {
		return
	}
	l.text = s
	l.invalidate()
}

func (l *Label) SetColor(c color.RGBA) {
	if l.color == c {
		return
	}
	l.color = c
	l.invalidate()
}

func (l *Label) Draw(cv *Canvas) {
	if l.Centre {
		cv.TextCentered(l.r, l.text, l.color)
		return
	}
	cv.Text(l.r.Min.X, l.r.Min.Y+(l.r.Dy()-LineHeight)/2, l.text, l.color)
}

// Button fires OnClick when a press is released inside it.
type Button struct {
	base
	text    string
	pressed bool
	OnClick func()
}

func NewButton(r image.Rectangle, text string, onClick func()) *Button {
	return &Button{base: base{r: r}, text: text, OnClick: onClick}
}

func (b *Button) Text() string  { return b.text }
func (b *Button) Pressed() bool { return b.pressed }

func (b *Button) SetText(s string) {
	if b.text == s {
		return
	}
	b.text = s
	b.invalidate()
}

func (b *Button) Touch(ev PointerEvent) {
	inside := ev.Pos.In(b.r)
	switch {
	case ev.Pressed && inside != b.pressed:
		b.pressed = inside
		b.invalidate()
	case !ev.Pressed && b.pressed:
		b.pressed = false
		b.invalidate()
		if inside && b.OnClick != nil {
			b.OnClick()
		}
	}
}

func (b *Button) Draw(cv *Canvas) {
	bg := ColorButton
	if b.pressed {
		bg = ColorPressed
	}
	cv.Fill(b.r, bg)
	cv.Stroke(b.r, ColorBorder)
	cv.TextCentered(b.r, b.text, ColorText)
}

// Slider is a horizontal value picker over [Min, Max].
type Slider struct {
	base
	Min, Max int
	value    int
	OnChange func(v int)
}

func NewSlider(r image.Rectangle, min, max, value int, onChange func(int)) *Slider {
	return &Slider{base: base{r: r}, Min: min, Max: max, value: clampInt(value, min, max), OnChange: onChange}
}

func (s *Slider) Value() int { return s.value }

func (s *Slider) SetValue(v int) {
	v = clampInt(v, s.Min, s.Max)
	if v == s.value {
		return
	}
	s.value = v
	s.invalidate()
	if s.OnChange != nil {
		s.OnChange(v)
	}
}

func (s *Slider) Touch(ev PointerEvent) {
	if !ev.Pressed || s.r.Dx() <= 1 || s.Max <= s.Min {
		return
	}
	x := clampInt(ev.Pos.X-s.r.Min.X, 0, s.r.Dx()-1)
	s.SetValue(s.Min + x*(s.Max-s.Min)/(s.r.Dx()-1))
}

func (s *Slider) knobX() int {
	if s.Max <= s.Min {
		return s.r.Min.X
	}
	return s.r.Min.X + (s.value-s.Min)*(s.r.Dx()-1)/(s.Max-s.Min)
}

func (s *Slider) Draw(cv *Canvas) {
	mid := s.r.Min.Y + s.r.Dy()/2
	cv.Fill(image.Rect(s.r.Min.X, mid-2, s.r.Max.X, mid+2), ColorTrack)
	kx := s.knobX()
	cv.Fill(image.Rect(s.r.Min.X, mid-2, kx, mid+2), ColorKnob)
	half := s.r.Dy() / 2
	if half > 6 {
		half = 6
	}
	cv.Fill(image.Rect(kx-half, mid-half, kx+half+1, mid+half+1), ColorKnob)
}

// Crosshair marks a point. It is used as the calibration target and as the
// touch marker.
type Crosshair struct {
	base
	arm   int
	color color.RGBA
}

func NewCrosshair(at image.Point, arm int, c color.RGBA) *Crosshair {
	ch := &Crosshair{arm: arm, color: c}
	ch.r = ch.rectAt(at)
	return ch
}

func (ch *Crosshair) rectAt(p image.Point) image.Rectangle {
	return image.Rect(p.X-ch.arm, p.Y-ch.arm, p.X+ch.arm+1, p.Y+ch.arm+1)
}

// Center returns the marked point.
func (ch *Crosshair) Center() image.Point {
	return image.Pt(ch.r.Min.X+ch.arm, ch.r.Min.Y+ch.arm)
}

func (ch *Crosshair) MoveTo(p image.Point) { ch.Move(ch.rectAt(p)) }

func (ch *Crosshair) Draw(cv *Canvas) {
	c := ch.Center()
	cv.Fill(image.Rect(ch.r.Min.X, c.Y, ch.r.Max.X, c.Y+1), ch.color)
	cv.Fill(image.Rect(c.X, ch.r.Min.Y, c.X+1, ch.r.Max.Y), ch.color)
	cv.Stroke(image.Rect(c.X-ch.arm/3, c.Y-ch.arm/3, c.X+ch.arm/3+1, c.Y+ch.arm/3+1), ch.color)
}

// Panel is a filled, outlined rectangle.
type Panel struct {
	base
	fill, border color.RGBA
}

func NewPanel(r image.Rectangle, fill, border color.RGBA) *Panel {
	return &Panel{base: base{r: r}, fill: fill, border: border}
}

func (p *Panel) Draw(cv *Canvas) {
	cv.Fill(p.r, p.fill)
	cv.Stroke(p.r, p.border)
}
