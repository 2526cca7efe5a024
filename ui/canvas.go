package ui

import (
	"image"
	"image/color"

	"rgbtouch/hal"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/pixel"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

// Font is the text face used by every widget.
var Font tinyfont.Fonter = &proggy.TinySZ8pt7b

const fontAscent = 9

// LineHeight is the vertical advance between lines of Font.
const LineHeight = 13

var _ drivers.Displayer = (*Canvas)(nil)

// Canvas draws into an RGB565 buffer. Drawing outside the clip rectangle is
// discarded.
type Canvas struct {
	img  hal.Image
	w, h int
	clip image.Rectangle
}

func NewCanvas(img hal.Image) *Canvas {
	cv := &Canvas{}
	cv.Reset(img)
	return cv
}

// Reset retargets the canvas and clears the clip.
func (cv *Canvas) Reset(img hal.Image) {
	cv.img = img
	cv.w, cv.h = img.Size()
	cv.clip = image.Rect(0, 0, cv.w, cv.h)
}

// Clip restricts drawing to r and returns the effective clip.
func (cv *Canvas) Clip(r image.Rectangle) image.Rectangle {
	cv.clip = r.Intersect(image.Rect(0, 0, cv.w, cv.h))
	return cv.clip
}

func (cv *Canvas) Bounds() image.Rectangle { return image.Rect(0, 0, cv.w, cv.h) }

func (cv *Canvas) Size() (x, y int16) { return int16(cv.w), int16(cv.h) }

func (cv *Canvas) SetPixel(x, y int16, c color.RGBA) {
	if !image.Pt(int(x), int(y)).In(cv.clip) {
		return
	}
	cv.img.Set(int(x), int(y), rgb565(c))
}

func (cv *Canvas) Display() error { return nil }

func (cv *Canvas) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	cv.Fill(image.Rect(int(x), int(y), int(x)+int(width), int(y)+int(height)), c)
	return nil
}

// Fill paints r clipped to the canvas clip.
func (cv *Canvas) Fill(r image.Rectangle, c color.RGBA) {
	r = r.Intersect(cv.clip)
	if r.Empty() {
		return
	}
	px := rgb565(c)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			cv.img.Set(x, y, px)
		}
	}
}

// Stroke draws a one pixel outline just inside r.
func (cv *Canvas) Stroke(r image.Rectangle, c color.RGBA) {
	if r.Empty() {
		return
	}
	cv.Fill(image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), c)
	cv.Fill(image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), c)
	cv.Fill(image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), c)
	cv.Fill(image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), c)
}

// Text writes s with its top-left corner at (x, y).
func (cv *Canvas) Text(x, y int, s string, c color.RGBA) {
	tinyfont.WriteLine(cv, Font, int16(x), int16(y+fontAscent), s, c)
}

// TextCentered writes s centred in r.
func (cv *Canvas) TextCentered(r image.Rectangle, s string, c color.RGBA) {
	w := TextWidth(s)
	cv.Text(r.Min.X+(r.Dx()-w)/2, r.Min.Y+(r.Dy()-LineHeight)/2, s, c)
}

// TextWidth returns the advance of s in pixels.
func TextWidth(s string) int {
	_, w := tinyfont.LineWidth(Font, s)
	return int(w)
}

func rgb565(c color.RGBA) pixel.RGB565BE {
	return pixel.NewColor[pixel.RGB565BE](c.R, c.G, c.B)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
