// Package hwconfig describes the board: panel geometry and timing, pin
// assignments, the touch controller and the UI cadence.
package hwconfig

import (
	"errors"
	"fmt"
	"time"

	"rgbtouch/hal"

	"periph.io/x/conn/v3/physic"
)

// Config is the complete board description.
type Config struct {
	Panel Panel `yaml:"panel"`
	Touch Touch `yaml:"touch"`
	UI    UI    `yaml:"ui"`
}

// Panel describes the RGB parallel LCD.
type Panel struct {
	Width            int       `yaml:"width"`
	Height           int       `yaml:"height"`
	PixelClock       Frequency `yaml:"pixel_clock"`
	Timing           Timing    `yaml:"timing"`
	Pins             Pins      `yaml:"pins"`
	BacklightOnLevel int       `yaml:"backlight_on_level"`
	DoubleFB         bool      `yaml:"double_fb"` // two panel frame buffers, full-repaint refresh
}

// Timing holds the sync porches and pulse widths, in pixel clocks (H) and
// lines (V).
type Timing struct {
	HSyncBackPorch  int  `yaml:"hsync_back_porch"`
	HSyncFrontPorch int  `yaml:"hsync_front_porch"`
	HSyncPulseWidth int  `yaml:"hsync_pulse_width"`
	HSyncIdleLow    bool `yaml:"hsync_idle_low"`
	VSyncBackPorch  int  `yaml:"vsync_back_porch"`
	VSyncFrontPorch int  `yaml:"vsync_front_porch"`
	VSyncPulseWidth int  `yaml:"vsync_pulse_width"`
	VSyncIdleLow    bool `yaml:"vsync_idle_low"`
}

// Pins are GPIO numbers; -1 means not connected.
type Pins struct {
	Backlight int   `yaml:"backlight"`
	HSync     int   `yaml:"hsync"`
	VSync     int   `yaml:"vsync"`
	DE        int   `yaml:"de"`
	PCLK      int   `yaml:"pclk"`
	DispEn    int   `yaml:"disp_en"`
	Data      []int `yaml:"data"` // B0-B4, G0-G5, R0-R4
}

// Touch describes the XPT2046 resistive controller.
type Touch struct {
	SCLK          int       `yaml:"sclk"`
	MOSI          int       `yaml:"mosi"`
	MISO          int       `yaml:"miso"`
	IRQ           int       `yaml:"irq"`
	CS            int       `yaml:"cs"`
	SPIClock      Frequency `yaml:"spi_clock"`
	MinPressure   int       `yaml:"min_pressure"`
	FlipXY        bool      `yaml:"flip_xy"`
	Oversample    int       `yaml:"oversample"`
	MovingAverage int       `yaml:"moving_average"`
}

// UI sets the compositor cadence and the refresh handoff.
type UI struct {
	TickPeriod    time.Duration `yaml:"tick_period"`
	HandlerPeriod time.Duration `yaml:"handler_period"`
	SwapTimeout   time.Duration `yaml:"swap_timeout"` // 0 waits forever
	Refresh       string        `yaml:"refresh"`      // handshake, full-repaint or immediate
}

// Frequency is a physic.Frequency written as "7MHz" in config files.
type Frequency struct {
	physic.Frequency
}

func Hz(f physic.Frequency) Frequency { return Frequency{f} }

// Default is the 4.3" 480x272 board with an XPT2046 touch controller.
func Default() Config {
	return Config{
		Panel: Panel{
			Width:      480,
			Height:     272,
			PixelClock: Hz(7 * physic.MegaHertz),
			Timing: Timing{
				HSyncBackPorch:  43,
				HSyncFrontPorch: 8,
				HSyncPulseWidth: 2,
				HSyncIdleLow:    true,
				VSyncBackPorch:  12,
				VSyncFrontPorch: 8,
				VSyncPulseWidth: 2,
				VSyncIdleLow:    true,
			},
			Pins: Pins{
				Backlight: 2,
				HSync:     39,
				VSync:     41,
				DE:        40,
				PCLK:      42,
				DispEn:    -1,
				Data:      []int{8, 3, 46, 9, 1, 5, 6, 7, 15, 16, 4, 45, 48, 47, 21, 14},
			},
			BacklightOnLevel: 1,
		},
		Touch: Touch{
			SCLK:          12,
			MOSI:          11,
			MISO:          13,
			IRQ:           36,
			CS:            0,
			SPIClock:      Hz(physic.MegaHertz),
			MinPressure:   5,
			FlipXY:        true,
			Oversample:    4,
			MovingAverage: 1,
		},
		UI: UI{
			TickPeriod:    2 * time.Millisecond,
			HandlerPeriod: 10 * time.Millisecond,
			Refresh:       "handshake",
		},
	}
}

// Validate checks that c describes a usable board.
func Validate(c *Config) error {
	var errs []error
	p := c.Panel
	if p.Width <= 0 || p.Height <= 0 {
		errs = append(errs, fmt.Errorf("panel: resolution %dx%d", p.Width, p.Height))
	}
	if p.PixelClock.Frequency <= 0 {
		errs = append(errs, fmt.Errorf("panel: pixel clock %s", p.PixelClock))
	}
	t := p.Timing
	for name, v := range map[string]int{
		"hsync_back_porch":  t.HSyncBackPorch,
		"hsync_front_porch": t.HSyncFrontPorch,
		"hsync_pulse_width": t.HSyncPulseWidth,
		"vsync_back_porch":  t.VSyncBackPorch,
		"vsync_front_porch": t.VSyncFrontPorch,
		"vsync_pulse_width": t.VSyncPulseWidth,
	} {
		if v < 0 {
			errs = append(errs, fmt.Errorf("panel: %s %d", name, v))
		}
	}
	if n := len(p.Pins.Data); n != 16 {
		errs = append(errs, fmt.Errorf("panel: %d data pins, want 16", n))
	}
	if p.BacklightOnLevel != 0 && p.BacklightOnLevel != 1 {
		errs = append(errs, fmt.Errorf("panel: backlight_on_level %d", p.BacklightOnLevel))
	}
	if c.Touch.MinPressure < 0 {
		errs = append(errs, fmt.Errorf("touch: min_pressure %d", c.Touch.MinPressure))
	}
	if c.UI.TickPeriod <= 0 || c.UI.HandlerPeriod <= 0 {
		errs = append(errs, fmt.Errorf("ui: tick %s handler %s", c.UI.TickPeriod, c.UI.HandlerPeriod))
	}
	if c.UI.SwapTimeout < 0 {
		errs = append(errs, fmt.Errorf("ui: swap_timeout %s", c.UI.SwapTimeout))
	}
	switch c.UI.Refresh {
	case "handshake", "immediate":
	case "full-repaint":
		if !p.DoubleFB {
			errs = append(errs, errors.New("ui: full-repaint refresh needs panel.double_fb"))
		}
	default:
		errs = append(errs, fmt.Errorf("ui: unknown refresh %q", c.UI.Refresh))
	}
	return errors.Join(errs...)
}

// FramePeriod is the time the panel takes to scan one frame including
// blanking, i.e. the interval between swap windows.
func (p Panel) FramePeriod() time.Duration {
	if p.PixelClock.Frequency <= 0 {
		return 0
	}
	t := p.Timing
	htotal := p.Width + t.HSyncBackPorch + t.HSyncFrontPorch + t.HSyncPulseWidth
	vtotal := p.Height + t.VSyncBackPorch + t.VSyncFrontPorch + t.VSyncPulseWidth
	hz := float64(p.PixelClock.Frequency) / float64(physic.Hertz)
	return time.Duration(float64(htotal*vtotal) / hz * float64(time.Second))
}

// NumFB is the number of panel frame buffers.
func (p Panel) NumFB() int {
	if p.DoubleFB {
		return 2
	}
	return 1
}

// HAL returns the subset of c the HAL needs.
func (c Config) HAL() hal.Config {
	return hal.Config{
		Width:       c.Panel.Width,
		Height:      c.Panel.Height,
		FramePeriod: c.Panel.FramePeriod(),
		TickPeriod:  c.UI.TickPeriod,
		NumFB:       c.Panel.NumFB(),
	}
}
