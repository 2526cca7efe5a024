//go:build !tinygo

package hal

import (
	"sync"

	"tinygo.org/x/drivers/touch"
)

// Raw ADC span of the simulated resistive panel. The controller axes are
// swapped and the Y axis is inverted relative to the screen, like a panel
// mounted with flip_xy.
const (
	hostTouchRawMin   = 300
	hostTouchRawSpan  = 3500
	hostTouchPressure = 120
)

// hostTouch turns pointer positions into raw resistive readings.
type hostTouch struct {
	mu      sync.Mutex
	width   int
	height  int
	irq     *virtualPin
	pressed bool
	x, y    int
}

func newHostTouch(width, height int, irq *virtualPin) *hostTouch {
	return &hostTouch{width: width, height: height, irq: irq}
}

// set records the pointer state in screen coordinates.
func (t *hostTouch) set(x, y int, pressed bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if x < 0 || y < 0 || x >= t.width || y >= t.height {
		pressed = false
	}
	t.x, t.y, t.pressed = x, y, pressed
	switch {
	case t.irq == nil:
	case pressed:
		// Active low; released, the line floats back to its pull-up.
		t.irq.drive(false)
	default:
		t.irq.release()
	}
}

// ReadTouchPoint implements touch.Pointer.
func (t *hostTouch) ReadTouchPoint() touch.Point {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.pressed {
		return touch.Point{}
	}
	return touch.Point{
		X: hostTouchRawMin + t.y*hostTouchRawSpan/t.height,
		Y: hostTouchRawMin + hostTouchRawSpan - t.x*hostTouchRawSpan/t.width,
		Z: hostTouchPressure,
	}
}
