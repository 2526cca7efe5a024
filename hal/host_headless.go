//go:build !tinygo

package hal

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	Enabled bool
	// Frames stops the run after N swap windows (0 = run forever).
	Frames uint64
}

// errStopped ends the group once the frame budget is spent or run returns.
var errStopped = errors.New("headless run stopped")

// RunHeadless runs the demo without opening a window.
func RunHeadless(ctx context.Context, cfg Config, hcfg HeadlessConfig, run func(context.Context, HAL) error) error {
	h, err := newHost(cfg)
	if err != nil {
		return err
	}
	defer h.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := h.run(gctx, hcfg.Frames); err != nil {
			return err
		}
		return errStopped
	})
	g.Go(func() error {
		if err := run(gctx, h); err != nil {
			return err
		}
		return errStopped
	})

	err = g.Wait()
	if errors.Is(err, errStopped) {
		return nil
	}
	return err
}
