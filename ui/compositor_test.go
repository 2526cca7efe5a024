package ui

import (
	"image"
	"testing"
	"time"
)

func TestInvalidateMergesAdjacent(t *testing.T) {
	c := NewCompositor(100, 50, time.Millisecond)
	c.Invalidate(image.Rect(0, 0, 10, 10))
	c.Invalidate(image.Rect(10, 0, 20, 10))
	got := c.Damage()
	if len(got) != 1 || got[0] != image.Rect(0, 0, 20, 10) {
		t.Fatalf("Damage() = %v, want [(0,0)-(20,10)]", got)
	}

	c.Invalidate(image.Rect(2, 2, 4, 4))
	if got := c.Damage(); len(got) != 1 {
		t.Fatalf("contained region added: %v", got)
	}

	c.Invalidate(image.Rect(60, 30, 70, 40))
	if got := c.Damage(); len(got) != 2 {
		t.Fatalf("distant region merged: %v", got)
	}
}

func TestInvalidateClipsAndOverflows(t *testing.T) {
	c := NewCompositor(100, 50, time.Millisecond)
	c.Invalidate(image.Rect(200, 200, 210, 210))
	if c.Dirty() {
		t.Fatalf("off-surface region damaged the screen")
	}
	c.Invalidate(image.Rect(90, 40, 120, 60))
	if got := c.Damage(); got[0] != image.Rect(90, 40, 100, 50) {
		t.Fatalf("Damage() = %v, want clipped region", got)
	}

	for i := 0; i < maxDamage+4; i++ {
		x := (i % 10) * 10
		y := (i / 10) * 12
		c.Invalidate(image.Rect(x, y, x+2, y+2))
	}
	got := c.Damage()
	if len(got) > maxDamage {
		t.Fatalf("damage list grew to %d", len(got))
	}
	full := false
	for _, r := range got {
		if r == c.Bounds() {
			full = true
		}
	}
	if !full {
		t.Fatalf("overflow did not collapse to the full surface: %v", got)
	}
}

func TestRenderDamagedRegionsOnlyTouchesDamage(t *testing.T) {
	c := NewCompositor(40, 20, time.Millisecond)
	s := NewScreen(ColorBackground)
	box := NewPanel(image.Rect(0, 0, 40, 20), ColorButton, ColorButton)
	s.Add(box)
	c.Load(s)

	img := newImage(40, 20)
	if rects := c.RenderDamagedRegions(img); len(rects) != 1 || rects[0] != c.Bounds() {
		t.Fatalf("first render = %v, want full surface", rects)
	}
	if c.Dirty() {
		t.Fatalf("damage not cleared by render")
	}

	sentinel := rgb565(ColorTarget)
	img.FillSolidColor(sentinel)
	c.Invalidate(image.Rect(5, 5, 10, 10))
	rects := c.RenderDamagedRegions(img)
	if len(rects) != 1 {
		t.Fatalf("RenderDamagedRegions() = %v, want one region", rects)
	}
	if got := img.Get(6, 6); got != rgb565(ColorButton) {
		t.Fatalf("damaged pixel = %v, want button colour", got)
	}
	if got := img.Get(20, 15); got != sentinel {
		t.Fatalf("undamaged pixel repainted")
	}
	if rects := c.RenderDamagedRegions(img); rects != nil {
		t.Fatalf("second render = %v, want nil", rects)
	}
}

func TestRenderFullAndHidden(t *testing.T) {
	c := NewCompositor(20, 20, time.Millisecond)
	s := NewScreen(ColorBackground)
	box := NewPanel(image.Rect(0, 0, 10, 10), ColorButton, ColorButton)
	s.Add(box)
	c.Load(s)
	box.SetHidden(true)

	img := newImage(20, 20)
	c.RenderFull(img)
	if c.Dirty() {
		t.Fatalf("damage not cleared by RenderFull")
	}
	if got := img.Get(5, 5); got != rgb565(ColorBackground) {
		t.Fatalf("hidden widget drawn")
	}

	box.SetHidden(false)
	if !c.Dirty() {
		t.Fatalf("showing a widget did not damage it")
	}
	c.RenderDamagedRegions(img)
	if got := img.Get(5, 5); got != rgb565(ColorButton) {
		t.Fatalf("shown widget not drawn")
	}
}

func TestButtonClick(t *testing.T) {
	c := NewCompositor(100, 100, time.Millisecond)
	s := NewScreen(ColorBackground)
	clicks := 0
	b := NewButton(image.Rect(10, 10, 50, 30), "ok", func() { clicks++ })
	s.Add(b)
	c.Load(s)

	c.Handle(PointerEvent{Pos: image.Pt(20, 20), Pressed: true})
	if !b.Pressed() {
		t.Fatalf("Pressed() = false after press")
	}
	c.Handle(PointerEvent{Pos: image.Pt(21, 20), Pressed: true})
	c.Handle(PointerEvent{Pos: image.Pt(21, 20)})
	if clicks != 1 || b.Pressed() {
		t.Fatalf("clicks = %d pressed = %v, want 1 false", clicks, b.Pressed())
	}

	// Release outside cancels.
	c.Handle(PointerEvent{Pos: image.Pt(20, 20), Pressed: true})
	c.Handle(PointerEvent{Pos: image.Pt(90, 90), Pressed: true})
	c.Handle(PointerEvent{Pos: image.Pt(90, 90)})
	if clicks != 1 {
		t.Fatalf("clicks = %d after release outside, want 1", clicks)
	}

	// A press that starts outside never reaches the button.
	c.Handle(PointerEvent{Pos: image.Pt(90, 90), Pressed: true})
	c.Handle(PointerEvent{Pos: image.Pt(20, 20), Pressed: true})
	c.Handle(PointerEvent{Pos: image.Pt(20, 20)})
	if clicks != 1 {
		t.Fatalf("clicks = %d after press outside, want 1", clicks)
	}
}

func TestSliderDrag(t *testing.T) {
	c := NewCompositor(200, 50, time.Millisecond)
	s := NewScreen(ColorBackground)
	var got []int
	sl := NewSlider(image.Rect(0, 10, 101, 30), 0, 100, 50, func(v int) { got = append(got, v) })
	s.Add(sl)
	c.Load(s)

	c.Handle(PointerEvent{Pos: image.Pt(25, 20), Pressed: true})
	c.Handle(PointerEvent{Pos: image.Pt(150, 20), Pressed: true})
	c.Handle(PointerEvent{Pos: image.Pt(150, 20)})
	if sl.Value() != 100 {
		t.Fatalf("Value() = %d, want 100", sl.Value())
	}
	if len(got) != 2 || got[0] != 25 || got[1] != 100 {
		t.Fatalf("OnChange values = %v, want [25 100]", got)
	}
}

func TestHandleDropsRepeatedRelease(t *testing.T) {
	c := NewCompositor(10, 10, time.Millisecond)
	s := NewScreen(ColorBackground)
	n := 0
	s.OnPointer(func(PointerEvent) { n++ })
	c.Load(s)

	c.Handle(PointerEvent{})
	c.Handle(PointerEvent{Pressed: true})
	c.Handle(PointerEvent{})
	c.Handle(PointerEvent{})
	if n != 2 {
		t.Fatalf("OnPointer called %d times, want 2", n)
	}
}

func TestTimersFollowTicks(t *testing.T) {
	c := NewCompositor(10, 10, 2*time.Millisecond)
	s := NewScreen(ColorBackground)
	n := 0
	s.Every(10*time.Millisecond, func() { n++ })
	c.Load(s)

	c.Step()
	c.Step()
	if n != 1 {
		t.Fatalf("runs at t=0 = %d, want 1", n)
	}
	c.TickInc(4)
	c.Step()
	if n != 1 {
		t.Fatalf("ran early at %s", c.Now())
	}
	c.TickInc(1)
	c.Step()
	if n != 2 || c.Now() != 10*time.Millisecond {
		t.Fatalf("runs = %d at %s, want 2 at 10ms", n, c.Now())
	}
}

func TestLoadSwitchesScreen(t *testing.T) {
	c := NewCompositor(10, 10, time.Millisecond)
	a, b := NewScreen(ColorBackground), NewScreen(ColorTrack)
	la := NewLabel(image.Rect(0, 0, 5, 5), "a", ColorText)
	a.Add(la)
	c.Load(a)
	c.RenderFull(newImage(10, 10))
	c.Load(b)
	c.RenderFull(newImage(10, 10))

	la.SetText("changed")
	if c.Dirty() {
		t.Fatalf("widget on an unloaded screen damaged the compositor")
	}
	if c.Screen() != b {
		t.Fatalf("Screen() is not the loaded screen")
	}
}
