package ui

import (
	"fmt"
	"image"
	"time"
)

// Demo is the widgets screen shown once the touch panel is calibrated.
type Demo struct {
	*Screen

	Title   *Label
	Counter *Label
	Level   *Label
	Uptime  *Label
	Coords  *Label
	Button  *Button
	Slider  *Slider
	Marker  *Crosshair

	taps int
}

// NewDemo lays the demo out over bounds. now supplies the UI clock shown in
// the uptime label.
func NewDemo(bounds image.Rectangle, title string, now func() time.Duration) *Demo {
	const margin = 12
	w := bounds.Dx()
	x0, y0 := bounds.Min.X+margin, bounds.Min.Y+margin
	row := LineHeight + 8

	d := &Demo{Screen: NewScreen(ColorBackground)}

	d.Title = NewLabel(image.Rect(x0, y0, bounds.Max.X-margin, y0+row), title, ColorText)
	d.Title.Centre = true

	by := y0 + row + margin
	bw := w / 3
	d.Button = NewButton(image.Rect(x0, by, x0+bw, by+2*row), "Tap me", d.tap)
	d.Counter = NewLabel(image.Rect(x0+bw+margin, by, bounds.Max.X-margin, by+2*row), "Taps: 0", ColorText)

	sy := by + 2*row + margin
	d.Level = NewLabel(image.Rect(x0, sy, bounds.Max.X-margin, sy+row), "Level: 50%", ColorMuted)
	d.Slider = NewSlider(image.Rect(x0, sy+row, bounds.Max.X-margin, sy+2*row), 0, 100, 50, d.level)

	fy := bounds.Max.Y - margin - row
	d.Uptime = NewLabel(image.Rect(x0, fy, x0+w/2, fy+row), "Uptime: 0s", ColorMuted)
	d.Coords = NewLabel(image.Rect(x0+w/2, fy, bounds.Max.X-margin, fy+row), "", ColorMuted)

	d.Marker = NewCrosshair(bounds.Min, 8, ColorMarker)
	d.Marker.SetHidden(true)

	d.Add(d.Title, d.Button, d.Counter, d.Level, d.Slider, d.Uptime, d.Coords, d.Marker)
	d.OnPointer(d.track)
	d.Every(time.Second, func() {
		d.Uptime.SetText(fmt.Sprintf("Uptime: %s", now().Truncate(time.Second)))
	})
	return d
}

// Taps returns how many times the button was clicked.
func (d *Demo) Taps() int { return d.taps }

func (d *Demo) tap() {
	d.taps++
	d.Counter.SetText(fmt.Sprintf("Taps: %d", d.taps))
}

func (d *Demo) level(v int) {
	d.Level.SetText(fmt.Sprintf("Level: %d%%", v))
}

func (d *Demo) track(ev PointerEvent) {
	if !ev.Pressed {
		return
	}
	d.Marker.MoveTo(ev.Pos)
	d.Marker.SetHidden(false)
	d.Coords.SetText(fmt.Sprintf("x=%d y=%d", ev.Pos.X, ev.Pos.Y))
}
