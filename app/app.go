// Package app brings the board up and runs the touch demo on top of the
// refresh handoff.
package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"runtime/debug"

	"rgbtouch/calib"
	"rgbtouch/hal"
	"rgbtouch/hwconfig"
	"rgbtouch/internal/buildinfo"
	"rgbtouch/refresh"
	"rgbtouch/settings"
	"rgbtouch/ui"

	"golang.org/x/sync/errgroup"
)

type Config struct {
	Board hwconfig.Config

	// Recalibrate shows the calibration screen even when a stored
	// calibration exists.
	Recalibrate bool
}

type mapper func(ui.Point) image.Point

type system struct {
	h     hal.HAL
	cfg   Config
	log   hal.Logger
	bk    *backlight
	src   *refresh.Source
	comp  *ui.Compositor
	coord *refresh.Coordinator
	ptr   *ui.Pointer
	store *settings.Store

	// Touched only from the UI loop.
	mapPoint mapper
	lastPos  image.Point
	calib    *calib.Screen
	demo     *ui.Demo
}

// Run brings the board up and runs the UI loop until ctx is done. A panic
// in the loop is written to the log and the panel before Run returns it as
// an error.
func Run(ctx context.Context, h hal.HAL, cfg Config) (err error) {
	defer catch(h, &err)
	s, err := newSystem(h, cfg)
	if err != nil {
		return err
	}
	return s.run(ctx)
}

// catch turns a panic into an error after showing it. Deferred ahead of
// Shutdown so the Source is quiet before the panic screen is drawn.
func catch(h hal.HAL, errp *error) {
	if r := recover(); r != nil {
		showPanic(h, r, debug.Stack())
		*errp = fmt.Errorf("panic: %v", r)
	}
}

func newSystem(h hal.HAL, cfg Config) (*system, error) {
	if err := hwconfig.Validate(&cfg.Board); err != nil {
		return nil, err
	}
	mode, err := refresh.ParseMode(cfg.Board.UI.Refresh)
	if err != nil {
		return nil, err
	}
	panel := h.Panel()
	if panel == nil {
		return nil, errors.New("app: no panel")
	}

	s := &system{h: h, cfg: cfg, log: h.Logger()}
	s.logf("rgbtouch %s, %s refresh", buildinfo.String(), mode)

	// Keep the backlight off while the panel comes up so the user never
	// sees garbage.
	s.bk = newBacklight(h, cfg.Board.Panel.BacklightOnLevel)
	s.bk.set(false)
	bootStep(h, "panel reset")
	if err := panel.Reset(); err != nil {
		return nil, fmt.Errorf("app: panel reset: %w", err)
	}
	bootStep(h, "panel init")
	if err := panel.Init(); err != nil {
		return nil, fmt.Errorf("app: panel init: %w", err)
	}
	s.src = refresh.NewSource(panel)
	s.src.Enable()
	s.bk.set(true)

	n := cfg.Board.Panel.NumFB()
	if mode == refresh.ModeImmediate {
		n = 1
	}
	bootStep(h, "frame buffers")
	bufs, err := panel.FrameBuffers(n)
	if err != nil {
		s.src.Disable()
		return nil, fmt.Errorf("app: frame buffers: %w", err)
	}

	w, ht := panel.Size()
	s.comp = ui.NewCompositor(w, ht, cfg.Board.UI.TickPeriod)
	s.coord, err = refresh.NewCoordinator(s.src, s.comp, bufs, refresh.Config{
		Mode:        mode,
		SwapTimeout: cfg.Board.UI.SwapTimeout,
	}, s.log)
	if err != nil {
		s.src.Disable()
		return nil, err
	}

	bootStep(h, "touch")
	s.ptr = s.initTouch()
	s.store = settings.NewStore(h.Flash())

	bootStep(h, "calibration")
	k, ok, err := s.store.Load()
	switch {
	case err != nil:
		s.logf("calibration unreadable: %v", err)
	case ok:
		s.logf("calibration loaded: %s", k)
	}
	if ok && !cfg.Recalibrate {
		s.showDemo(k)
	} else {
		s.showCalibration()
	}
	bootStep(h, "running")
	return s, nil
}

// initTouch deselects the controller and arms its pen IRQ input.
func (s *system) initTouch() *ui.Pointer {
	in := s.h.Input()
	if in == nil {
		return ui.NewPointer(nil, nil, 0)
	}
	if cs := hal.FindPin(s.h.GPIO(), hal.PinTouchCS); cs != nil {
		if err := cs.Configure(hal.GPIOModeOutput, hal.GPIOPullNone); err == nil {
			_ = cs.Write(true)
		}
	}
	irq := in.TouchIRQ()
	if irq != nil {
		if err := irq.Configure(hal.GPIOModeInput, hal.GPIOPullUp); err != nil {
			s.logf("touch irq: %v", err)
			irq = nil
		}
	}
	return ui.NewPointer(in.Touch(), irq, s.cfg.Board.Touch.MinPressure)
}

func (s *system) showCalibration() {
	cs := calib.NewScreen(s.comp.Bounds())
	cs.OnSave = s.store.Save
	cs.OnReady = func(k calib.Coefficients, err error) {
		if err != nil {
			s.logf("calibration not saved: %v", err)
		} else {
			s.logf("calibration saved: %s", k)
		}
		s.showDemo(k)
	}
	s.calib, s.demo = cs, nil
	s.mapPoint = cs.Map
	s.comp.Load(cs.Screen)
}

func (s *system) showDemo(k calib.Coefficients) {
	d := ui.NewDemo(s.comp.Bounds(), "rgbtouch "+buildinfo.Short(), s.comp.Now)
	s.calib, s.demo = nil, d
	s.mapPoint = k.Map
	s.comp.Load(d.Screen)
}

// step feeds the newest pointer sample to the UI and runs due timers.
func (s *system) step() {
	sample := s.ptr.Read()
	if sample.Pressed {
		s.lastPos = s.mapPoint(sample.Point)
	}
	// Releases carry the last pressed position.
	s.comp.Handle(ui.PointerEvent{Pos: s.lastPos, Raw: sample.Point, Pressed: sample.Pressed})
	s.comp.Step()
}

func (s *system) run(ctx context.Context) error {
	period := s.cfg.Board.UI.HandlerPeriod
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.tick(gctx)
		return nil
	})
	g.Go(func() error {
		err := s.ptr.Run(gctx, period)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() (err error) {
		defer catch(s.h, &err)
		defer s.coord.Shutdown()
		err = s.coord.Run(gctx, period, s.step)
		st := s.coord.Stats()
		s.logf("stopped: %d frames, %d dropped, %d swap timeouts", st.Frames, st.Dropped, st.Timeouts)
		return err
	})
	return g.Wait()
}

// tick advances the UI clock from the HAL tick stream. Ticks the channel
// dropped are recovered from the sequence numbers.
func (s *system) tick(ctx context.Context) {
	t := s.h.Time()
	if t == nil || t.Ticks() == nil {
		return
	}
	ch := t.Ticks()
	var last uint64
	for {
		select {
		case <-ctx.Done():
			return
		case seq := <-ch:
			if seq > last {
				s.comp.TickInc(seq - last)
				last = seq
			}
		}
	}
}

func (s *system) logf(format string, args ...any) {
	if s.log == nil {
		return
	}
	s.log.WriteLineString("app: " + fmt.Sprintf(format, args...))
}

// backlight drives the panel backlight at its configured on-level.
type backlight struct {
	led  hal.LED
	high bool
}

func newBacklight(h hal.HAL, onLevel int) *backlight {
	return &backlight{led: h.Backlight(), high: onLevel != 0}
}

func (b *backlight) set(on bool) {
	if b.led == nil {
		return
	}
	if on == b.high {
		b.led.High()
	} else {
		b.led.Low()
	}
}
