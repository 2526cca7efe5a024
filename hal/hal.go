package hal

import (
	"errors"
	"image"
	"time"

	"tinygo.org/x/drivers/pixel"
	"tinygo.org/x/drivers/touch"
)

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

// LED is a minimal output pin abstraction (status LED, backlight).
type LED interface {
	High()
	Low()
}

var ErrNotImplemented = errors.New("not implemented")

// Image is the RGB565 pixel layout shared by the panel and the draw buffers.
type Image = pixel.Image[pixel.RGB565BE]

// Panel is an RGB panel driver.
//
// Electrical timing is fixed at construction. The panel scans out its own
// memory continuously; PresentRegion copies a region of buf (screen
// coordinates, Max exclusive) into that memory.
type Panel interface {
	Size() (width, height int)
	Reset() error
	Init() error

	// FrameBuffers returns n panel-owned buffers for double-buffered mode.
	FrameBuffers(n int) ([]Image, error)

	PresentRegion(buf Image, r image.Rectangle) error

	// SetSwapWindowHandler registers fn to run at the start of every refresh
	// interval (vsync). fn runs in interrupt context and must not block.
	// A nil fn disables the callback; after it returns no further calls start.
	SetSwapWindowHandler(fn func())
}

// Input provides the touch controller and its active-low IRQ line.
type Input interface {
	Touch() touch.Pointer
	TouchIRQ() GPIOPin
}

// Flash provides raw access to non-volatile memory.
//
// It is intentionally low-level: addresses and erase blocks only.
type Flash interface {
	SizeBytes() uint32
	EraseBlockBytes() uint32
	ReadAt(p []byte, off uint32) (int, error)
	WriteAt(p []byte, off uint32) (int, error)
	Erase(off, size uint32) error
}

// Time provides a base tick stream.
//
// One tick is Config.TickPeriod long. Each value is a running tick count, so
// receivers advance by the difference from the last value they saw.
type Time interface {
	Ticks() <-chan uint64
}

// HAL provides the only contact point between the demo and the outside world.
type HAL interface {
	Logger() Logger
	Backlight() LED
	GPIO() GPIO
	Panel() Panel
	Input() Input
	Flash() Flash
	Time() Time
}

// Config describes the board to the HAL.
type Config struct {
	Width  int
	Height int

	// FramePeriod is the interval between swap windows.
	FramePeriod time.Duration
	TickPeriod  time.Duration

	// NumFB is the number of panel-owned frame buffers (1 or 2).
	NumFB int

	// BacklightPin names a real GPIO on hosts with one; empty means virtual.
	BacklightPin string
	FlashPath    string
}

func (c Config) withDefaults() Config {
	if c.Width <= 0 {
		c.Width = 480
	}
	if c.Height <= 0 {
		c.Height = 272
	}
	if c.FramePeriod <= 0 {
		c.FramePeriod = 16 * time.Millisecond
	}
	if c.TickPeriod <= 0 {
		c.TickPeriod = 2 * time.Millisecond
	}
	if c.NumFB <= 0 {
		c.NumFB = 1
	}
	return c
}
