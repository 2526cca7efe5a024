//go:build !tinygo

// Command mkcal inspects and edits the touch calibration record in a flash
// image.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"os"
	"strconv"
	"strings"

	"rgbtouch/calib"
	"rgbtouch/hal"
	"rgbtouch/settings"
)

type options struct {
	flash  string
	set    string
	raw    string
	width  int
	height int
	clear  bool
}

func main() {
	var o options
	flag.StringVar(&o.flash, "flash", "", "Flash image path (default $RGBTOUCH_FLASH_PATH or "+hal.FlashImageDefaultPath+").")
	flag.StringVar(&o.set, "set", "", "Store coefficients \"A,B,C,D,E,F\".")
	flag.StringVar(&o.raw, "raw", "", "Compute from raw readings at the three targets: \"x1,y1 x2,y2 x3,y3\".")
	flag.IntVar(&o.width, "width", 480, "Panel width for -raw.")
	flag.IntVar(&o.height, "height", 272, "Panel height for -raw.")
	flag.BoolVar(&o.clear, "clear", false, "Erase the stored calibration.")
	flag.Parse()

	if err := run(os.Stdout, o); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// run applies at most one edit, then prints the stored record.
func run(w io.Writer, o options) error {
	edits := 0
	for _, on := range []bool{o.set != "", o.raw != "", o.clear} {
		if on {
			edits++
		}
	}
	if edits > 1 {
		return errors.New("-set, -raw and -clear are exclusive")
	}

	img, err := hal.OpenFlashImage(o.flash)
	if err != nil {
		return err
	}
	defer func() { _ = img.Close() }()
	store := settings.NewStore(img)

	switch {
	case o.set != "":
		k, err := parseCoefficients(o.set)
		if err != nil {
			return err
		}
		if err := store.Save(k); err != nil {
			return err
		}
	case o.raw != "":
		raw, err := parsePoints(o.raw)
		if err != nil {
			return err
		}
		k, err := calib.Compute(calib.Targets(o.width, o.height), raw)
		if err != nil {
			return err
		}
		if err := store.Save(k); err != nil {
			return err
		}
	case o.clear:
		if err := store.Clear(); err != nil {
			return err
		}
	}

	k, ok, err := store.Load()
	switch {
	case err != nil:
		return err
	case !ok:
		fmt.Fprintf(w, "no calibration at 0x%x\n", store.Offset())
	default:
		fmt.Fprintf(w, "calibration at 0x%x: %s\n", store.Offset(), k)
	}
	return nil
}

func parseCoefficients(s string) (calib.Coefficients, error) {
	f := strings.Split(s, ",")
	if len(f) != 6 {
		return calib.Coefficients{}, fmt.Errorf("want 6 coefficients, got %d", len(f))
	}
	var v [6]float64
	for i := range f {
		x, err := strconv.ParseFloat(strings.TrimSpace(f[i]), 64)
		if err != nil {
			return calib.Coefficients{}, fmt.Errorf("coefficient %d: %w", i+1, err)
		}
		v[i] = x
	}
	k := calib.Coefficients{A: v[0], B: v[1], C: v[2], D: v[3], E: v[4], F: v[5]}
	if !k.Valid() {
		return calib.Coefficients{}, fmt.Errorf("coefficients %s are not usable", k)
	}
	return k, nil
}

func parsePoints(s string) ([3]image.Point, error) {
	var pts [3]image.Point
	f := strings.Fields(s)
	if len(f) != 3 {
		return pts, fmt.Errorf("want 3 points, got %d", len(f))
	}
	for i, p := range f {
		xy := strings.Split(p, ",")
		if len(xy) != 2 {
			return pts, fmt.Errorf("point %d: %q is not x,y", i+1, p)
		}
		x, err := strconv.Atoi(xy[0])
		if err != nil {
			return pts, fmt.Errorf("point %d: %w", i+1, err)
		}
		y, err := strconv.Atoi(xy[1])
		if err != nil {
			return pts, fmt.Errorf("point %d: %w", i+1, err)
		}
		pts[i] = image.Pt(x, y)
	}
	return pts, nil
}
