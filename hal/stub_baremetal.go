//go:build tinygo && baremetal

package hal

import (
	"image"
	"sync/atomic"
	"time"

	"tinygo.org/x/drivers/pixel"
	"tinygo.org/x/drivers/touch"
)

// memPanel keeps the scanout in RAM and paces swap windows with a timer.
// It stands in for boards whose panel has no driver in this tree.
type memPanel struct {
	width, height int
	numFB         int
	scan          Image
	handler       atomic.Pointer[func()]
}

func newMemPanel(width, height, numFB int, period time.Duration) *memPanel {
	p := &memPanel{
		width:  width,
		height: height,
		numFB:  numFB,
		scan:   pixel.NewImage[pixel.RGB565BE](width, height),
	}
	go func() {
		t := time.NewTicker(period)
		defer t.Stop()
		for range t.C {
			if fn := p.handler.Load(); fn != nil {
				(*fn)()
			}
		}
	}()
	return p
}

func (p *memPanel) Size() (int, int) { return p.width, p.height }
func (p *memPanel) Reset() error     { return nil }
func (p *memPanel) Init() error      { return nil }

func (p *memPanel) FrameBuffers(n int) ([]Image, error) {
	if n <= 0 || n > p.numFB {
		return nil, ErrNotImplemented
	}
	fbs := make([]Image, n)
	for i := range fbs {
		fbs[i] = pixel.NewImage[pixel.RGB565BE](p.width, p.height)
	}
	return fbs, nil
}

func (p *memPanel) PresentRegion(buf Image, r image.Rectangle) error {
	return copyRegion(p.scan, buf, r)
}

func (p *memPanel) SetSwapWindowHandler(fn func()) {
	if fn == nil {
		p.handler.Store(nil)
		return
	}
	p.handler.Store(&fn)
}

type noTouch struct{}

func (noTouch) ReadTouchPoint() touch.Point { return touch.Point{} }
