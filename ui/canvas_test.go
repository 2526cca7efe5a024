package ui

import (
	"image"
	"testing"

	"rgbtouch/hal"

	"tinygo.org/x/drivers/pixel"
)

func newImage(w, h int) hal.Image {
	return pixel.NewImage[pixel.RGB565BE](w, h)
}

func TestCanvasFillClips(t *testing.T) {
	img := newImage(20, 10)
	cv := NewCanvas(img)
	cv.Clip(image.Rect(5, 0, 10, 10))
	cv.Fill(image.Rect(0, 0, 20, 10), ColorKnob)

	want := rgb565(ColorKnob)
	for x := 0; x < 20; x++ {
		got := img.Get(x, 3)
		inside := x >= 5 && x < 10
		if (got == want) != inside {
			t.Fatalf("pixel (%d,3) = %v, inside clip = %v", x, got, inside)
		}
	}
}

func TestCanvasClipToSurface(t *testing.T) {
	cv := NewCanvas(newImage(8, 8))
	if got := cv.Clip(image.Rect(-4, -4, 4, 20)); got != image.Rect(0, 0, 4, 8) {
		t.Fatalf("Clip() = %v, want %v", got, image.Rect(0, 0, 4, 8))
	}
	// Outside the surface must not panic.
	cv.SetPixel(-1, 2, ColorText)
	cv.SetPixel(100, 2, ColorText)
}

func TestCanvasText(t *testing.T) {
	img := newImage(64, 20)
	cv := NewCanvas(img)
	cv.Text(2, 2, "Hi", ColorText)

	want := rgb565(ColorText)
	n := 0
	for y := 0; y < 20; y++ {
		for x := 0; x < 64; x++ {
			if img.Get(x, y) == want {
				n++
			}
		}
	}
	if n == 0 {
		t.Fatalf("Text() drew nothing")
	}
	if TextWidth("Hi") <= TextWidth("H") {
		t.Fatalf("TextWidth() not increasing with length")
	}
}

func TestCanvasStroke(t *testing.T) {
	img := newImage(10, 10)
	cv := NewCanvas(img)
	cv.Stroke(image.Rect(2, 2, 8, 8), ColorBorder)
	want := rgb565(ColorBorder)
	if img.Get(2, 2) != want || img.Get(7, 7) != want || img.Get(2, 5) != want {
		t.Fatalf("outline corner/edge not drawn")
	}
	if img.Get(5, 5) == want {
		t.Fatalf("outline filled the interior")
	}
}
