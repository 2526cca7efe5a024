//go:build !tinygo && cgo

package hal

import (
	"context"
	"errors"
	"image"

	"rgbtouch/internal/buildinfo"

	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/sync/errgroup"
)

// RunWindow starts a desktop window that scans out the simulated panel and
// forwards the mouse as the touch screen. It blocks until the window closes
// or run returns.
func RunWindow(cfg Config, run func(context.Context, HAL) error) error {
	h, err := newHost(cfg)
	if err != nil {
		return err
	}
	defer h.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return h.run(gctx, 0) })
	g.Go(func() error { return run(gctx, h) })

	game := &hostGame{h: h, done: gctx.Done()}
	ebiten.SetWindowTitle("rgbtouch (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(h.panel.width*2, h.panel.height*2)
	ebiten.SetTPS(60)
	werr := ebiten.RunGame(game)

	cancel()
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(werr, ebiten.Termination) {
		return nil
	}
	return werr
}

type hostGame struct {
	h     *hostHAL
	done  <-chan struct{}
	img   *image.RGBA
	fbImg *ebiten.Image
}

func (g *hostGame) Update() error {
	select {
	case <-g.done:
		return ebiten.Termination
	default:
	}
	x, y := ebiten.CursorPosition()
	g.h.touch.set(x, y, ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft))
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	p := g.h.panel
	if g.img == nil {
		g.img = image.NewRGBA(image.Rect(0, 0, p.width, p.height))
		g.fbImg = ebiten.NewImage(p.width, p.height)
	}

	p.snapshot(g.img.Pix)
	g.fbImg.WritePixels(g.img.Pix)
	screen.DrawImage(g.fbImg, nil)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.h.panel.width, g.h.panel.height
}
