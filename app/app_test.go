package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"rgbtouch/calib"
	"rgbtouch/hal"
	"rgbtouch/hwconfig"
	"rgbtouch/settings"
)

func testConfig(refresh string) Config {
	board := hwconfig.Default()
	board.Panel.Width, board.Panel.Height = 160, 96
	board.Panel.DoubleFB = true
	board.UI.Refresh = refresh
	board.UI.HandlerPeriod = 2 * time.Millisecond
	board.UI.SwapTimeout = 500 * time.Millisecond
	return Config{Board: board}
}

func halConfig(t *testing.T, cfg Config) hal.Config {
	hc := cfg.Board.HAL()
	hc.FramePeriod = time.Millisecond
	hc.FlashPath = filepath.Join(t.TempDir(), "flash.img")
	return hc
}

func newHost(t *testing.T, hc hal.Config) hal.HAL {
	t.Helper()
	h, err := hal.New(hc)
	if err != nil {
		t.Fatalf("hal.New() error = %v", err)
	}
	t.Cleanup(func() {
		if c, ok := h.(interface{ Close() error }); ok {
			c.Close()
		}
	})
	return h
}

func TestNewSystemStartsCalibrationWithoutRecord(t *testing.T) {
	cfg := testConfig("handshake")
	h := newHost(t, halConfig(t, cfg))

	s, err := newSystem(h, cfg)
	if err != nil {
		t.Fatalf("newSystem() error = %v", err)
	}
	defer s.coord.Shutdown()
	if s.calib == nil || s.demo != nil {
		t.Fatalf("calib = %v, demo = %v, want calibration screen", s.calib, s.demo)
	}
	if s.comp.Screen() != s.calib.Screen {
		t.Fatal("compositor is not showing the calibration screen")
	}
	if len(s.coord.Buffers()) != 2 {
		t.Fatalf("len(Buffers()) = %d, want 2", len(s.coord.Buffers()))
	}
}

func TestNewSystemUsesStoredCalibration(t *testing.T) {
	cfg := testConfig("full-repaint")
	h := newHost(t, halConfig(t, cfg))
	if err := settings.NewStore(h.Flash()).Save(calib.Identity); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	s, err := newSystem(h, cfg)
	if err != nil {
		t.Fatalf("newSystem() error = %v", err)
	}
	s.coord.Shutdown()
	if s.demo == nil {
		t.Fatal("demo screen not shown with a stored calibration")
	}

	cfg.Recalibrate = true
	s, err = newSystem(h, cfg)
	if err != nil {
		t.Fatalf("newSystem() error = %v", err)
	}
	s.coord.Shutdown()
	if s.calib == nil {
		t.Fatal("Recalibrate did not show the calibration screen")
	}
}

func TestNewSystemImmediateUsesOneBuffer(t *testing.T) {
	cfg := testConfig("immediate")
	h := newHost(t, halConfig(t, cfg))

	s, err := newSystem(h, cfg)
	if err != nil {
		t.Fatalf("newSystem() error = %v", err)
	}
	defer s.coord.Shutdown()
	if len(s.coord.Buffers()) != 1 {
		t.Fatalf("len(Buffers()) = %d, want 1", len(s.coord.Buffers()))
	}
}

func TestNewSystemRejectsInvalidBoard(t *testing.T) {
	cfg := testConfig("handshake")
	h := newHost(t, halConfig(t, cfg))
	cfg.Board.UI.Refresh = "sometimes"
	if _, err := newSystem(h, cfg); err == nil {
		t.Fatal("newSystem() error = nil, want error")
	}
}

func TestRunHeadless(t *testing.T) {
	for _, mode := range []string{"handshake", "full-repaint", "immediate"} {
		t.Run(mode, func(t *testing.T) {
			cfg := testConfig(mode)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			err := hal.RunHeadless(ctx, halConfig(t, cfg), hal.HeadlessConfig{Enabled: true, Frames: 50},
				func(ctx context.Context, h hal.HAL) error { return Run(ctx, h, cfg) })
			if err != nil {
				t.Fatalf("RunHeadless() error = %v", err)
			}
		})
	}
}

type fakeLED struct{ levels []bool }

func (l *fakeLED) High() { l.levels = append(l.levels, true) }
func (l *fakeLED) Low()  { l.levels = append(l.levels, false) }

func TestBacklightOnLevel(t *testing.T) {
	for _, level := range []int{0, 1} {
		led := &fakeLED{}
		b := &backlight{led: led, high: level != 0}
		b.set(false)
		b.set(true)
		want := []bool{level == 0, level == 1}
		if len(led.levels) != 2 || led.levels[0] != want[0] || led.levels[1] != want[1] {
			t.Fatalf("on-level %d: levels = %v, want %v", level, led.levels, want)
		}
	}
}
