// Package calib maps raw resistive touch readings to screen coordinates with
// a three-point affine calibration.
package calib

import (
	"errors"
	"fmt"
	"image"
	"math"

	"rgbtouch/ui"
)

// ErrDegenerate is returned when the raw points are (nearly) collinear.
var ErrDegenerate = errors.New("calib: reference touches are collinear")

// Coefficients of the affine map
//
//	x = A*rawX + B*rawY + C
//	y = D*rawX + E*rawY + F
type Coefficients struct {
	A, B, C float64
	D, E, F float64
}

// Identity passes raw readings through unchanged.
var Identity = Coefficients{A: 1, E: 1}

// Compute solves the map that takes raw[i] to screen[i] for all three points.
func Compute(screen, raw [3]image.Point) (Coefficients, error) {
	x1, y1 := float64(raw[0].X), float64(raw[0].Y)
	x2, y2 := float64(raw[1].X), float64(raw[1].Y)
	x3, y3 := float64(raw[2].X), float64(raw[2].Y)

	det := (x1-x3)*(y2-y3) - (x2-x3)*(y1-y3)
	if math.Abs(det) < 1 {
		return Coefficients{}, ErrDegenerate
	}

	solve := func(s1, s2, s3 float64) (a, b, c float64) {
		a = ((s1-s3)*(y2-y3) - (s2-s3)*(y1-y3)) / det
		b = ((x1-x3)*(s2-s3) - (x2-x3)*(s1-s3)) / det
		c = s3 - a*x3 - b*y3
		return a, b, c
	}

	var k Coefficients
	k.A, k.B, k.C = solve(float64(screen[0].X), float64(screen[1].X), float64(screen[2].X))
	k.D, k.E, k.F = solve(float64(screen[0].Y), float64(screen[1].Y), float64(screen[2].Y))
	return k, nil
}

// Apply maps a raw reading to the nearest screen pixel.
func (k Coefficients) Apply(rawX, rawY int) image.Point {
	x, y := float64(rawX), float64(rawY)
	return image.Pt(
		int(math.Round(k.A*x+k.B*y+k.C)),
		int(math.Round(k.D*x+k.E*y+k.F)),
	)
}

// Map is Apply for a pointer reading.
func (k Coefficients) Map(p ui.Point) image.Point { return k.Apply(p.X, p.Y) }

// Valid reports whether k is finite and invertible.
func (k Coefficients) Valid() bool {
	for _, v := range []float64{k.A, k.B, k.C, k.D, k.E, k.F} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return math.Abs(k.A*k.E-k.B*k.D) > 1e-12
}

func (k Coefficients) String() string {
	return fmt.Sprintf("x=%.5f*rx%+.5f*ry%+.1f y=%.5f*rx%+.5f*ry%+.1f", k.A, k.B, k.C, k.D, k.E, k.F)
}

// Targets returns the three reference points for a width x height screen.
func Targets(width, height int) [3]image.Point {
	return [3]image.Point{
		image.Pt(width*15/100, height*15/100),
		image.Pt(width*85/100, height/2),
		image.Pt(width/2, height*85/100),
	}
}
