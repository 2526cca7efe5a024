package hal

import (
	"fmt"
	"image"
)

func rgb888From565(p uint16) (r, g, b uint8) {
	rr := (p >> 11) & 0x1F
	gg := (p >> 5) & 0x3F
	bb := p & 0x1F

	r = uint8((rr * 255) / 31)
	g = uint8((gg * 255) / 63)
	b = uint8((bb * 255) / 31)
	return r, g, b
}

// expandRGBA converts a big-endian RGB565 buffer into RGBA8888.
func expandRGBA(dst, src []byte) {
	for i := 0; i+1 < len(src) && i/2*4+3 < len(dst); i += 2 {
		r, g, b := rgb888From565(uint16(src[i])<<8 | uint16(src[i+1]))
		j := (i / 2) * 4
		dst[j+0] = r
		dst[j+1] = g
		dst[j+2] = b
		dst[j+3] = 0xFF
	}
}

// copyRegion copies r from src into dst. Both images must have the same size.
func copyRegion(dst, src Image, r image.Rectangle) error {
	dw, dh := dst.Size()
	sw, sh := src.Size()
	if dw != sw || dh != sh {
		return fmt.Errorf("present: buffer %dx%d does not match panel %dx%d", sw, sh, dw, dh)
	}
	r = r.Intersect(image.Rect(0, 0, dw, dh))
	if r.Empty() {
		return nil
	}

	d := dst.RawBuffer()
	s := src.RawBuffer()
	stride := dw * 2
	for y := r.Min.Y; y < r.Max.Y; y++ {
		start := y*stride + r.Min.X*2
		end := y*stride + r.Max.X*2
		copy(d[start:end], s[start:end])
	}
	return nil
}
