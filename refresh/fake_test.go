package refresh

import (
	"errors"
	"image"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"rgbtouch/hal"

	"tinygo.org/x/drivers/pixel"
)

var errPanel = errors.New("panel write failed")

// fakePanel records presents. Swap windows are fired by the test.
type fakePanel struct {
	mu        sync.Mutex
	handler   func()
	fail      bool
	regions   []image.Rectangle
	buffers   []*uint8
	onPresent func(buf hal.Image)
}

func (p *fakePanel) PresentRegion(buf hal.Image, r image.Rectangle) error {
	p.mu.Lock()
	fail, fn := p.fail, p.onPresent
	p.regions = append(p.regions, r)
	p.buffers = append(p.buffers, bufKey(buf))
	p.mu.Unlock()
	if fn != nil {
		fn(buf)
	}
	if fail {
		return errPanel
	}
	return nil
}

func (p *fakePanel) SetSwapWindowHandler(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handler = fn
}

func (p *fakePanel) vsync() {
	p.mu.Lock()
	fn := p.handler
	p.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (p *fakePanel) setFail(v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fail = v
}

func (p *fakePanel) presented() ([]image.Rectangle, []*uint8) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]image.Rectangle(nil), p.regions...), append([]*uint8(nil), p.buffers...)
}

func bufKey(buf hal.Image) *uint8 { return &buf.RawBuffer()[0] }

// tracker flags any overlap between a write and a read of the same buffer.
type tracker struct {
	bufs  sync.Map // *uint8 -> *bufUse
	tears atomic.Int32
}

type bufUse struct {
	writing atomic.Int32
	reading atomic.Int32
}

func (t *tracker) use(buf hal.Image) *bufUse {
	v, _ := t.bufs.LoadOrStore(bufKey(buf), new(bufUse))
	return v.(*bufUse)
}

func (t *tracker) write(buf hal.Image, fn func()) {
	u := t.use(buf)
	u.writing.Add(1)
	if u.reading.Load() != 0 {
		t.tears.Add(1)
	}
	fn()
	u.writing.Add(-1)
}

func (t *tracker) read(buf hal.Image) {
	u := t.use(buf)
	u.reading.Add(1)
	if u.writing.Load() != 0 {
		t.tears.Add(1)
	}
	time.Sleep(10 * time.Microsecond)
	u.reading.Add(-1)
}

// fakeComp paints a frame counter into the damaged regions.
type fakeComp struct {
	mu     sync.Mutex
	damage []image.Rectangle
	full   int
	passes uint8
	hook   func(buf hal.Image)
	tr     *tracker
}

func (c *fakeComp) Invalidate(r image.Rectangle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.damage = append(c.damage, r)
}

func (c *fakeComp) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.damage) > 0
}

func (c *fakeComp) RenderDamagedRegions(buf hal.Image) []image.Rectangle {
	c.mu.Lock()
	rects := c.damage
	c.damage = nil
	c.mu.Unlock()
	if len(rects) == 0 {
		return nil
	}
	for _, r := range rects {
		c.paint(buf, r)
	}
	return rects
}

func (c *fakeComp) RenderFull(buf hal.Image) {
	c.mu.Lock()
	c.damage = nil
	c.full++
	c.mu.Unlock()
	w, h := buf.Size()
	c.paint(buf, image.Rect(0, 0, w, h))
}

func (c *fakeComp) paint(buf hal.Image, r image.Rectangle) {
	c.mu.Lock()
	c.passes++
	v, hook := c.passes, c.hook
	c.mu.Unlock()

	draw := func() {
		if hook != nil {
			hook(buf)
		}
		col := pixel.NewColor[pixel.RGB565BE](v, v, v)
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				buf.Set(x, y, col)
			}
		}
	}
	if c.tr != nil {
		c.tr.write(buf, draw)
		return
	}
	draw()
}

type testLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *testLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, s)
}

func (l *testLogger) WriteLineBytes(b []byte) { l.WriteLineString(string(b)) }

func (l *testLogger) contains(sub string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, s := range l.lines {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func newImages(n, w, h int) []hal.Image {
	imgs := make([]hal.Image, n)
	for i := range imgs {
		imgs[i] = pixel.NewImage[pixel.RGB565BE](w, h)
	}
	return imgs
}

// waitFor polls cond until it holds or a second passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(100 * time.Microsecond)
	}
}
