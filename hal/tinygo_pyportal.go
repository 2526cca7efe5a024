//go:build tinygo && pyportal

package hal

import (
	"errors"
	"image"
	"machine"
	"runtime/interrupt"

	"tinygo.org/x/drivers/ili9341"
	"tinygo.org/x/drivers/pixel"
	"tinygo.org/x/drivers/touch"
	"tinygo.org/x/drivers/touch/resistive"
)

// PinPanelTE is the tearing-effect output of the panel controller.
const PinPanelTE = "LCD_TE"

// Readings below this pressure are noise on the four-wire panel.
const pyportalMinPressure = 8192

var errPanelNotReady = errors.New("ili9341: panel not initialized")

type pyportalHAL struct {
	logger *uartLogger
	bk     *pinLED
	gpio   GPIO
	panel  *ili9341Panel
	touch  *pyportalTouch
	t      *tinyGoTime
	flash  Flash
}

// New returns the PyPortal HAL. The ILI9341 TE pin is the swap-window
// source: the controller raises it while it scans the blanking lines.
func New(cfg Config) (HAL, error) {
	cfg = cfg.withDefaults()

	bkPin := machine.TFT_BACKLIGHT
	bkPin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	bkPin.Low()
	bk := &pinLED{pin: bkPin}

	te := newMachinePin(PinPanelTE, machine.TFT_TE, GPIOCapInput)

	machine.InitADC()
	rt := &pyportalTouch{}
	rt.dev.Configure(&resistive.FourWireConfig{
		YP: machine.TOUCH_YD,
		YM: machine.TOUCH_YU,
		XP: machine.TOUCH_XR,
		XM: machine.TOUCH_XL,
	})

	return &pyportalHAL{
		logger: &uartLogger{uart: machine.Serial},
		bk:     bk,
		gpio:   newVirtualGPIO([]GPIOPin{newLEDPin(PinBacklight, bk), te}),
		panel:  &ili9341Panel{te: machine.TFT_TE, numFB: cfg.NumFB},
		touch:  rt,
		t:      newTinyGoTime(cfg.TickPeriod),
		flash:  newMachineFlash(),
	}, nil
}

func (h *pyportalHAL) Logger() Logger { return h.logger }
func (h *pyportalHAL) Backlight() LED { return h.bk }
func (h *pyportalHAL) GPIO() GPIO     { return h.gpio }
func (h *pyportalHAL) Panel() Panel   { return h.panel }
func (h *pyportalHAL) Input() Input   { return tinyGoInput{t: h.touch} }
func (h *pyportalHAL) Flash() Flash   { return h.flash }
func (h *pyportalHAL) Time() Time     { return h.t }

type ili9341Panel struct {
	dev     *ili9341.Device
	te      machine.Pin
	numFB   int
	width   int
	height  int
	tx      []byte
	handler func()
}

func (p *ili9341Panel) Size() (int, int) {
	if p.dev == nil {
		return 320, 240
	}
	w, h := p.dev.Size()
	return int(w), int(h)
}

func (p *ili9341Panel) Reset() error {
	p.dev = ili9341.NewParallel(
		machine.LCD_DATA0,
		machine.TFT_WR,
		machine.TFT_DC,
		machine.TFT_CS,
		machine.TFT_RESET,
		machine.TFT_RD,
	)
	return nil
}

func (p *ili9341Panel) Init() error {
	if p.dev == nil {
		return errPanelNotReady
	}
	p.dev.Configure(ili9341.Config{Rotation: ili9341.Rotation270})
	p.width, p.height = p.Size()
	p.tx = make([]byte, p.width*2)

	p.te.Configure(machine.PinConfig{Mode: machine.PinInput})
	p.dev.EnableTEOutput(true)
	return p.te.SetInterrupt(machine.PinRising, p.onTE)
}

func (p *ili9341Panel) FrameBuffers(n int) ([]Image, error) {
	if p.width == 0 {
		return nil, errPanelNotReady
	}
	if n <= 0 || n > p.numFB {
		return nil, ErrNotImplemented
	}
	fbs := make([]Image, n)
	for i := range fbs {
		fbs[i] = pixel.NewImage[pixel.RGB565BE](p.width, p.height)
	}
	return fbs, nil
}

// PresentRegion streams r line by line over the parallel bus.
func (p *ili9341Panel) PresentRegion(buf Image, r image.Rectangle) error {
	if p.dev == nil || p.width == 0 {
		return errPanelNotReady
	}
	bw, _ := buf.Size()
	r = r.Intersect(image.Rect(0, 0, p.width, p.height))
	if r.Empty() {
		return nil
	}
	src := buf.RawBuffer()
	stride := bw * 2
	w := r.Dx()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		off := y*stride + r.Min.X*2
		line := p.tx[:w*2]
		copy(line, src[off:off+w*2])
		if err := p.dev.DrawRGBBitmap8(int16(r.Min.X), int16(y), line, int16(w), 1); err != nil {
			return err
		}
	}
	return nil
}

// SetSwapWindowHandler swaps the interrupt callback. The TE interrupt
// preempts the main loop and always runs to completion, so a nil store
// cannot race a running handler.
func (p *ili9341Panel) SetSwapWindowHandler(fn func()) {
	state := interrupt.Disable()
	p.handler = fn
	interrupt.Restore(state)
}

func (p *ili9341Panel) onTE(machine.Pin) {
	if fn := p.handler; fn != nil {
		fn()
	}
}

type pyportalTouch struct {
	dev resistive.FourWire
}

func (t *pyportalTouch) ReadTouchPoint() touch.Point {
	pt := t.dev.ReadTouchPoint()
	if pt.Z <= pyportalMinPressure {
		return touch.Point{}
	}
	return pt
}
