package app

import (
	"fmt"
	"image/color"
	"strings"
	"unicode/utf8"

	"rgbtouch/hal"
	"rgbtouch/ui"
)

var (
	panicBackground = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	panicText       = color.RGBA{A: 255}
)

// showPanic logs v and its stack, then paints them over the whole panel.
func showPanic(h hal.HAL, v any, stack []byte) {
	lines := panicLines(v, stack)
	if l := h.Logger(); l != nil {
		for _, line := range lines {
			l.WriteLineString(line)
		}
	}

	p := h.Panel()
	if p == nil {
		return
	}
	bufs, err := p.FrameBuffers(1)
	if err != nil || len(bufs) == 0 {
		return
	}
	cv := ui.NewCanvas(bufs[0])
	drawPanic(cv, lines)
	_ = p.PresentRegion(bufs[0], cv.Bounds())
}

func panicLines(v any, stack []byte) []string {
	lines := []string{"rgbtouch panic:", fmt.Sprintf("panic: %v", v)}
	if len(stack) == 0 {
		return append(lines, "stack: unavailable")
	}
	lines = append(lines, "stack:")
	for _, line := range strings.Split(string(stack), "\n") {
		if line == "" {
			continue
		}
		lines = append(lines, strings.ReplaceAll(line, "\t", "  "))
	}
	return lines
}

// drawPanic wraps lines to the canvas width and stops at the bottom edge.
func drawPanic(cv *ui.Canvas, lines []string) {
	r := cv.Bounds()
	cv.Fill(r, panicBackground)

	cols := r.Dx() / max(ui.TextWidth("0"), 1)
	if cols <= 0 {
		cols = 1
	}
	y := 0
	for _, line := range lines {
		for len(line) > 0 {
			if y+ui.LineHeight > r.Dy() {
				return
			}
			chunk, rest := takeRunes(line, cols)
			cv.Text(0, y, chunk, panicText)
			y += ui.LineHeight
			line = strings.TrimLeft(rest, " ")
		}
	}
}

func takeRunes(s string, n int) (prefix, rest string) {
	if n <= 0 || s == "" {
		return "", s
	}
	if len(s) <= n {
		return s, ""
	}
	i, count := 0, 0
	for i < len(s) && count < n {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
		count++
	}
	return s[:i], s[i:]
}
