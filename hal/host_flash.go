//go:build !tinygo

package hal

import (
	"errors"
	"fmt"
	"os"
	"sync"
)

const (
	FlashImageDefaultPath = "rgbtouch.flash"
	FlashImageDefaultSize = 64 * 1024
	FlashImageEraseBlock  = 4096
)

var ErrFlashWriteRequiresErase = errors.New("flash write requires erase")

// FlashImage is a file-backed NOR flash. Writes can only clear bits; Erase
// sets whole blocks back to 0xFF.
type FlashImage struct {
	mu   sync.Mutex
	f    *os.File
	size uint32
}

// OpenFlashImage opens path, creating an erased image of
// FlashImageDefaultSize if it is missing or empty. An empty path falls back
// to $RGBTOUCH_FLASH_PATH and then FlashImageDefaultPath.
func OpenFlashImage(path string) (*FlashImage, error) {
	if path == "" {
		path = os.Getenv("RGBTOUCH_FLASH_PATH")
	}
	if path == "" {
		path = FlashImageDefaultPath
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open flash image: %w", err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat flash image: %w", err)
	}

	img := &FlashImage{f: f, size: uint32(st.Size())}
	switch {
	case st.Size() > int64(^uint32(0)):
		f.Close()
		return nil, fmt.Errorf("flash image %s: %d bytes is too large", path, st.Size())
	case st.Size()%FlashImageEraseBlock != 0:
		f.Close()
		return nil, fmt.Errorf("flash image %s: size %d is not a multiple of %d", path, st.Size(), FlashImageEraseBlock)
	case st.Size() == 0:
		img.size = FlashImageDefaultSize
		if err := img.Erase(0, img.size); err != nil {
			f.Close()
			return nil, err
		}
	}
	return img, nil
}

func (m *FlashImage) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.f == nil {
		return nil
	}
	err := m.f.Close()
	m.f = nil
	return err
}

func (m *FlashImage) SizeBytes() uint32       { return m.size }
func (m *FlashImage) EraseBlockBytes() uint32 { return FlashImageEraseBlock }

// span clips [off, off+n) to the image.
func (m *FlashImage) span(op string, off uint32, n int) (int, error) {
	if m.f == nil {
		return 0, ErrNotImplemented
	}
	if off >= m.size {
		return 0, fmt.Errorf("flash %s at %d: %w", op, off, os.ErrInvalid)
	}
	if room := int(m.size - off); n > room {
		n = room
	}
	return n, nil
}

func (m *FlashImage) ReadAt(p []byte, off uint32) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, err := m.span("read", off, len(p))
	if err != nil {
		return 0, err
	}
	return m.f.ReadAt(p[:n], int64(off))
}

func (m *FlashImage) WriteAt(p []byte, off uint32) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, err := m.span("write", off, len(p))
	if err != nil {
		return 0, err
	}
	p = p[:n]

	cur := make([]byte, n)
	if _, err := m.f.ReadAt(cur, int64(off)); err != nil {
		return 0, fmt.Errorf("flash read before write at %d: %w", off, err)
	}
	for i := range p {
		if cur[i]&p[i] != p[i] {
			return 0, fmt.Errorf("flash write at %d: %w", off+uint32(i), ErrFlashWriteRequiresErase)
		}
	}
	return m.f.WriteAt(p, int64(off))
}

func (m *FlashImage) Erase(off, size uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.f == nil {
		return ErrNotImplemented
	}
	if off%FlashImageEraseBlock != 0 || size%FlashImageEraseBlock != 0 || uint64(off)+uint64(size) > uint64(m.size) {
		return fmt.Errorf("flash erase off=%d size=%d: %w", off, size, os.ErrInvalid)
	}
	blank := make([]byte, FlashImageEraseBlock)
	for i := range blank {
		blank[i] = 0xFF
	}
	for end := off + size; off < end; off += FlashImageEraseBlock {
		if _, err := m.f.WriteAt(blank, int64(off)); err != nil {
			return fmt.Errorf("flash erase block at %d: %w", off, err)
		}
	}
	return nil
}
