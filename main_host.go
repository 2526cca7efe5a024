//go:build !tinygo

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"rgbtouch/app"
	"rgbtouch/hal"
	"rgbtouch/hwconfig"
)

func main() {
	var (
		hcfg        hal.HeadlessConfig
		configPath  string
		flashPath   string
		backlight   string
		mode        string
		swapTimeout time.Duration
		recalibrate bool
	)
	flag.BoolVar(&hcfg.Enabled, "headless", false, "Run without a window.")
	flag.Uint64Var(&hcfg.Frames, "frames", 0, "Stop after N swap windows in headless mode (0 = run forever).")
	flag.StringVar(&configPath, "config", "", "Board description (YAML). Defaults to the built-in 480x272 board.")
	flag.StringVar(&flashPath, "flash", "", "Flash image holding the calibration record (default $RGBTOUCH_FLASH_PATH or "+hal.FlashImageDefaultPath+").")
	flag.StringVar(&backlight, "backlight-pin", "", "Drive a real GPIO (periph name) as the backlight.")
	flag.StringVar(&mode, "mode", "", "Refresh mode: handshake, full-repaint or immediate.")
	flag.DurationVar(&swapTimeout, "swap-timeout", -1, "Give up waiting for a swap window after this long (0 = wait forever).")
	flag.BoolVar(&recalibrate, "recalibrate", false, "Show the calibration screen even if a calibration is stored.")
	flag.Parse()

	board := hwconfig.Default()
	if configPath != "" {
		c, err := hwconfig.Load(configPath)
		if err != nil {
			fatal(err)
		}
		board = *c
	}
	if mode != "" {
		board.UI.Refresh = mode
		if mode == "full-repaint" {
			board.Panel.DoubleFB = true
		}
	}
	if swapTimeout >= 0 {
		board.UI.SwapTimeout = swapTimeout
	}

	hc := board.HAL()
	hc.FlashPath = flashPath
	hc.BacklightPin = backlight
	cfg := app.Config{Board: board, Recalibrate: recalibrate}
	run := func(ctx context.Context, h hal.HAL) error { return app.Run(ctx, h, cfg) }

	var err error
	if hcfg.Enabled {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		err = hal.RunHeadless(ctx, hc, hcfg, run)
	} else {
		err = hal.RunWindow(hc, run)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
