package ui

import (
	"context"
	"time"

	"rgbtouch/hal"
	"rgbtouch/kernel"

	"tinygo.org/x/drivers/touch"
)

// Point is a raw touch controller reading.
type Point struct {
	X, Y     int
	Pressure int
}

// Sample is one pointer poll.
type Sample struct {
	Point
	Pressed bool
}

// Pointer polls a touch controller. The panel counts as pressed only while
// the active-low IRQ line is low and the reading reaches MinPressure.
type Pointer struct {
	dev         touch.Pointer
	irq         hal.GPIOPin
	minPressure int

	latest kernel.Slot[Sample]
	last   Sample
}

// NewPointer wraps dev. irq may be nil for controllers without one.
func NewPointer(dev touch.Pointer, irq hal.GPIOPin, minPressure int) *Pointer {
	if minPressure < 1 {
		minPressure = 1
	}
	return &Pointer{dev: dev, irq: irq, minPressure: minPressure}
}

// Poll reads the controller once. A failed read is reported as no touch.
func (p *Pointer) Poll() (Point, bool) {
	if p.dev == nil {
		return Point{}, false
	}
	if p.irq != nil {
		level, err := p.irq.Read()
		if err != nil || level {
			return Point{}, false
		}
	}
	pt := p.dev.ReadTouchPoint()
	if pt.Z < p.minPressure {
		return Point{}, false
	}
	return Point{X: pt.X, Y: pt.Y, Pressure: pt.Z}, true
}

// Run polls every period and publishes the newest sample for Read.
func (p *Pointer) Run(ctx context.Context, period time.Duration) error {
	t := time.NewTicker(period)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			pt, ok := p.Poll()
			p.latest.Put(&Sample{Point: pt, Pressed: ok})
		}
	}
}

// Read returns the newest sample published by Run, or the previous one if
// nothing new arrived.
func (p *Pointer) Read() Sample {
	if s := p.latest.Take(); s != nil {
		p.last = *s
	}
	return p.last
}

// Dropped counts samples overwritten before Read saw them.
func (p *Pointer) Dropped() uint64 { return p.latest.Drops() }
