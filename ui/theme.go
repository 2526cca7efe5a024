package ui

import (
	"image/color"

	"golang.org/x/image/colornames"
)

// Theme colours shared by the screens.
var (
	ColorBackground = colornames.Midnightblue
	ColorText       = colornames.White
	ColorMuted      = colornames.Lightsteelblue
	ColorButton     = colornames.Steelblue
	ColorPressed    = colornames.Darkorange
	ColorTrack      = colornames.Slategray
	ColorKnob       = colornames.Orange
	ColorMarker     = colornames.Limegreen
	ColorTarget     = colornames.Red
	ColorBorder     = colornames.Lightskyblue
)

// Dim returns c scaled to num/den of its intensity.
func Dim(c color.RGBA, num, den uint8) color.RGBA {
	return color.RGBA{
		R: uint8(uint16(c.R) * uint16(num) / uint16(den)),
		G: uint8(uint16(c.G) * uint16(num) / uint16(den)),
		B: uint8(uint16(c.B) * uint16(num) / uint16(den)),
		A: c.A,
	}
}
