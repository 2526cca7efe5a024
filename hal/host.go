//go:build !tinygo

package hal

import (
	"context"
	"fmt"
	"os"
	"sync"

	"tinygo.org/x/drivers/touch"
)

type hostHAL struct {
	cfg    Config
	logger *hostLogger
	bk     LED
	gpio   GPIO
	irq    *virtualPin
	panel  *hostPanel
	touch  *hostTouch
	t      *hostTime
	flash  Flash
}

// New returns a host HAL implementation that simulates the RGB panel and a
// resistive touch controller.
func New(cfg Config) (HAL, error) {
	return newHost(cfg)
}

func newHost(cfg Config) (*hostHAL, error) {
	cfg = cfg.withDefaults()
	logger := &hostLogger{w: os.Stdout}

	var bk LED = &hostLED{name: "backlight", logger: logger}
	if cfg.BacklightPin != "" {
		pin, err := openPeriphLED(cfg.BacklightPin)
		if err != nil {
			return nil, fmt.Errorf("backlight pin %q: %w", cfg.BacklightPin, err)
		}
		bk = pin
	}

	irq := newVirtualPin(PinTouchIRQ, GPIOCapInput|GPIOCapPullUp)

	var flash Flash = stubFlash{}
	if img, err := OpenFlashImage(cfg.FlashPath); err != nil {
		logger.WriteLineString("hal: flash unavailable: " + err.Error())
	} else {
		flash = img
	}

	gpio := newVirtualGPIO([]GPIOPin{
		newLEDPin(PinBacklight, bk),
		irq,
		newVirtualPin(PinTouchCS, GPIOCapOutput),
	})

	return &hostHAL{
		cfg:    cfg,
		logger: logger,
		bk:     bk,
		gpio:   gpio,
		irq:    irq,
		panel:  newHostPanel(cfg.Width, cfg.Height, cfg.FramePeriod, cfg.NumFB),
		touch:  newHostTouch(cfg.Width, cfg.Height, irq),
		t:      newHostTime(cfg.TickPeriod),
		flash:  flash,
	}, nil
}

func (h *hostHAL) Logger() Logger { return h.logger }
func (h *hostHAL) Backlight() LED { return h.bk }
func (h *hostHAL) GPIO() GPIO     { return h.gpio }
func (h *hostHAL) Panel() Panel   { return h.panel }
func (h *hostHAL) Input() Input   { return hostInput{t: h.touch, irq: h.irq} }
func (h *hostHAL) Flash() Flash   { return h.flash }
func (h *hostHAL) Time() Time     { return h.t }

func (h *hostHAL) Close() error {
	if c, ok := h.flash.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

// run drives the simulated hardware: vsync and the tick timer.
func (h *hostHAL) run(ctx context.Context, frames uint64) error {
	go h.t.run(ctx)
	return h.panel.run(ctx, frames)
}

type hostInput struct {
	t   *hostTouch
	irq *virtualPin
}

func (in hostInput) Touch() touch.Pointer { return in.t }
func (in hostInput) TouchIRQ() GPIOPin    { return in.irq }

type hostLogger struct {
	mu sync.Mutex
	w  *os.File
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(b)
	l.w.Write([]byte{'\n'})
}

type hostLED struct {
	mu     sync.Mutex
	name   string
	on     bool
	logger *hostLogger
}

func (l *hostLED) High() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.on = true
	l.logger.WriteLineString(l.name + ": HIGH")
}

func (l *hostLED) Low() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.on = false
	l.logger.WriteLineString(l.name + ": LOW")
}
