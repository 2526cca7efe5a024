//go:build !tinygo

package hal

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// periphLED drives a real backlight enable line on Linux single-board hosts.
type periphLED struct {
	pin gpio.PinIO
}

func openPeriphLED(name string) (*periphLED, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph init: %w", err)
	}
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, errors.New("no such gpio")
	}
	if err := pin.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("configure %s: %w", pin, err)
	}
	return &periphLED{pin: pin}, nil
}

func (l *periphLED) High() { _ = l.pin.Out(gpio.High) }
func (l *periphLED) Low()  { _ = l.pin.Out(gpio.Low) }
