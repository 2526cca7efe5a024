//go:build !tinygo

package hal

import (
	"context"
	"errors"
	"fmt"
	"image"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"tinygo.org/x/drivers/pixel"
)

// hostPanel simulates an RGB panel: a scanout buffer read by the window and
// a vsync generator that fires the swap-window handler every frame period.
type hostPanel struct {
	mu     sync.Mutex
	width  int
	height int
	period time.Duration
	numFB  int
	scan   Image
	fbs    []Image
	ready  bool

	handler  atomic.Pointer[func()]
	inflight atomic.Int32
	vsyncs   atomic.Uint64
	presents atomic.Uint64
}

func newHostPanel(width, height int, period time.Duration, numFB int) *hostPanel {
	return &hostPanel{
		width:  width,
		height: height,
		period: period,
		numFB:  numFB,
		scan:   pixel.NewImage[pixel.RGB565BE](width, height),
	}
}

func (p *hostPanel) Size() (int, int) { return p.width, p.height }

func (p *hostPanel) Reset() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ready = false
	p.scan.FillSolidColor(pixel.NewColor[pixel.RGB565BE](0, 0, 0))
	return nil
}

func (p *hostPanel) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ready = true
	return nil
}

func (p *hostPanel) FrameBuffers(n int) ([]Image, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n <= 0 || n > p.numFB {
		return nil, fmt.Errorf("panel has %d frame buffers, want %d", p.numFB, n)
	}
	for len(p.fbs) < n {
		p.fbs = append(p.fbs, pixel.NewImage[pixel.RGB565BE](p.width, p.height))
	}
	return p.fbs[:n], nil
}

func (p *hostPanel) PresentRegion(buf Image, r image.Rectangle) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.ready {
		return errors.New("panel not initialized")
	}
	if err := copyRegion(p.scan, buf, r); err != nil {
		return err
	}
	p.presents.Add(1)
	return nil
}

func (p *hostPanel) SetSwapWindowHandler(fn func()) {
	if fn == nil {
		p.handler.Store(nil)
		for p.inflight.Load() != 0 {
			runtime.Gosched()
		}
		return
	}
	p.handler.Store(&fn)
}

// vsync runs one swap window.
func (p *hostPanel) vsync() {
	p.inflight.Add(1)
	defer p.inflight.Add(-1)
	p.vsyncs.Add(1)
	if fn := p.handler.Load(); fn != nil {
		(*fn)()
	}
}

// run generates vsync events until ctx is done or frames windows have passed
// (0 = forever).
func (p *hostPanel) run(ctx context.Context, frames uint64) error {
	t := time.NewTicker(p.period)
	defer t.Stop()

	var n uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			p.vsync()
			n++
			if frames > 0 && n >= frames {
				return nil
			}
		}
	}
}

// snapshot copies the scanout memory as RGBA8888 into dst.
func (p *hostPanel) snapshot(dst []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	expandRGBA(dst, p.scan.RawBuffer())
}
