//go:build tinygo && baremetal && !pyportal

package hal

import "machine"

type tinyGoHAL struct {
	logger *uartLogger
	bk     *pinLED
	gpio   GPIO
	panel  Panel
	t      *tinyGoTime
	flash  Flash
}

// New returns a generic board HAL: serial console, the on-board LED as the
// backlight enable, and a RAM panel paced by a timer.
func New(cfg Config) (HAL, error) {
	cfg = cfg.withDefaults()

	ledPin := machine.LED
	ledPin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	bk := &pinLED{pin: ledPin}

	return &tinyGoHAL{
		logger: &uartLogger{uart: machine.Serial},
		bk:     bk,
		gpio:   newVirtualGPIO([]GPIOPin{newLEDPin(PinBacklight, bk)}),
		panel:  newMemPanel(cfg.Width, cfg.Height, cfg.NumFB, cfg.FramePeriod),
		t:      newTinyGoTime(cfg.TickPeriod),
		flash:  newMachineFlash(),
	}, nil
}

func (h *tinyGoHAL) Logger() Logger { return h.logger }
func (h *tinyGoHAL) Backlight() LED { return h.bk }
func (h *tinyGoHAL) GPIO() GPIO     { return h.gpio }
func (h *tinyGoHAL) Panel() Panel   { return h.panel }
func (h *tinyGoHAL) Input() Input   { return tinyGoInput{t: noTouch{}} }
func (h *tinyGoHAL) Flash() Flash   { return h.flash }
func (h *tinyGoHAL) Time() Time     { return h.t }
