package refresh

import (
	"errors"
	"fmt"
	"image"
	"sync/atomic"

	"rgbtouch/hal"
)

// ErrOwnership reports a buffer transfer from a side that did not own it.
var ErrOwnership = errors.New("refresh: frame buffer ownership violation")

// Owner identifies which side may touch a FrameBuffer.
type Owner uint32

const (
	OwnerNone Owner = iota
	OwnerCoordinator
	OwnerSource
)

func (o Owner) String() string {
	switch o {
	case OwnerNone:
		return "none"
	case OwnerCoordinator:
		return "coordinator"
	case OwnerSource:
		return "source"
	default:
		return fmt.Sprintf("owner(%d)", uint32(o))
	}
}

// FrameBuffer is a draw buffer plus its owner tag.
type FrameBuffer struct {
	_     [0]func() // prevent accidental copying.
	id    int
	img   hal.Image
	owner atomic.Uint32
}

func newFrameBuffer(id int, img hal.Image) *FrameBuffer {
	fb := &FrameBuffer{id: id, img: img}
	fb.owner.Store(uint32(OwnerCoordinator))
	return fb
}

func (fb *FrameBuffer) ID() int          { return fb.id }
func (fb *FrameBuffer) Image() hal.Image { return fb.img }
func (fb *FrameBuffer) Owner() Owner     { return Owner(fb.owner.Load()) }

// Bounds returns the full surface rectangle.
func (fb *FrameBuffer) Bounds() image.Rectangle {
	w, h := fb.img.Size()
	return image.Rect(0, 0, w, h)
}

func (fb *FrameBuffer) transfer(from, to Owner) error {
	if fb.owner.CompareAndSwap(uint32(from), uint32(to)) {
		return nil
	}
	return fmt.Errorf("buffer %d: %s -> %s while owned by %s: %w", fb.id, from, to, fb.Owner(), ErrOwnership)
}
