package calib

import (
	"fmt"
	"image"

	"rgbtouch/ui"
)

type phase uint8

const (
	collecting phase = iota
	confirming
	finished
)

// Screen walks the user through touching three crosshairs, then offers to
// accept the result or start over.
//
// Pointer positions are meaningless until coefficients exist, so the screen
// works from raw readings; Map supplies positions for its own buttons once a
// candidate has been computed.
type Screen struct {
	*ui.Screen

	Target  *ui.Crosshair
	Probe   *ui.Crosshair
	Prompt  *ui.Label
	Accept  *ui.Button
	Restart *ui.Button

	// OnSave persists accepted coefficients. Its error is handed to OnReady.
	OnSave  func(Coefficients) error
	OnReady func(Coefficients, error)

	targets   [3]image.Point
	raw       [3]image.Point
	step      int
	phase     phase
	holding   bool
	last      ui.Point
	candidate Coefficients
}

// NewScreen lays out the calibration screen over bounds.
func NewScreen(bounds image.Rectangle) *Screen {
	w, h := bounds.Dx(), bounds.Dy()
	s := &Screen{
		Screen:  ui.NewScreen(ui.Dim(ui.ColorBackground, 1, 2)),
		targets: Targets(w, h),
	}
	for i := range s.targets {
		s.targets[i] = s.targets[i].Add(bounds.Min)
	}

	s.Prompt = ui.NewLabel(image.Rect(bounds.Min.X+w/5, bounds.Min.Y+h*30/100, bounds.Min.X+w*3/4, bounds.Min.Y+h*30/100+24), "", ui.ColorText)
	s.Prompt.Centre = true

	by := bounds.Min.Y + h*55/100
	bw := w / 4
	s.Accept = ui.NewButton(image.Rect(bounds.Min.X+w/2-bw-8, by, bounds.Min.X+w/2-8, by+32), "Accept", s.accept)
	s.Restart = ui.NewButton(image.Rect(bounds.Min.X+w/2+8, by, bounds.Min.X+w/2+bw+8, by+32), "Restart", s.Start)

	s.Target = ui.NewCrosshair(s.targets[0], 10, ui.ColorTarget)
	s.Probe = ui.NewCrosshair(bounds.Min, 6, ui.ColorMarker)

	s.Add(s.Prompt, s.Accept, s.Restart, s.Target, s.Probe)
	s.OnPointer(s.pointer)
	s.Start()
	return s
}

// Start (re)starts collection at the first point.
func (s *Screen) Start() {
	s.step = 0
	s.holding = false
	s.phase = collecting
	s.Accept.SetHidden(true)
	s.Restart.SetHidden(true)
	s.Probe.SetHidden(true)
	s.showTarget()
}

// Done reports whether the user accepted a calibration.
func (s *Screen) Done() bool { return s.phase == finished }

// Candidate returns the coefficients under review, if any.
func (s *Screen) Candidate() (Coefficients, bool) {
	return s.candidate, s.phase != collecting
}

// Map converts a raw reading to a screen position for hit testing. Before a
// candidate exists every reading maps off screen.
func (s *Screen) Map(p ui.Point) image.Point {
	if s.phase == collecting {
		return image.Pt(-1, -1)
	}
	return s.candidate.Map(p)
}

func (s *Screen) showTarget() {
	s.Target.MoveTo(s.targets[s.step])
	s.Target.SetHidden(false)
	s.Prompt.SetText(fmt.Sprintf("Touch the crosshair (%d/3)", s.step+1))
}

func (s *Screen) pointer(ev ui.PointerEvent) {
	switch s.phase {
	case confirming:
		if ev.Pressed {
			s.Probe.MoveTo(ev.Pos)
			s.Probe.SetHidden(false)
		}
		return
	case finished:
		return
	}

	// A point is taken from the last reading before release.
	if ev.Pressed {
		s.holding = true
		s.last = ev.Raw
		return
	}
	if !s.holding {
		return
	}
	s.holding = false
	s.raw[s.step] = image.Pt(s.last.X, s.last.Y)
	s.step++
	if s.step < len(s.targets) {
		s.showTarget()
		return
	}

	k, err := Compute(s.targets, s.raw)
	if err != nil {
		s.Start()
		s.Prompt.SetText("Too close together, again (1/3)")
		return
	}
	s.candidate = k
	s.phase = confirming
	s.Target.SetHidden(true)
	s.Accept.SetHidden(false)
	s.Restart.SetHidden(false)
	s.Prompt.SetText("Check the marker, then accept")
}

func (s *Screen) accept() {
	if s.phase != confirming {
		return
	}
	s.phase = finished
	var err error
	if s.OnSave != nil {
		err = s.OnSave(s.candidate)
	}
	if s.OnReady != nil {
		s.OnReady(s.candidate, err)
	}
}
