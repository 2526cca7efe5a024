// Package settings keeps the touch calibration in the last erase block of
// the board flash.
//
// Record layout (little endian):
//
//	0  "TCAL"
//	4  codec id
//	5  reserved (3 bytes)
//	8  payload length
//	12 CRC-32 (IEEE) of the payload
//	16 payload
package settings

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"

	"rgbtouch/calib"
	"rgbtouch/hal"
)

var (
	// ErrCorrupt means a record header was found but could not be used.
	ErrCorrupt = errors.New("settings: corrupt calibration record")
	// ErrNoFlash means the board offers no usable flash.
	ErrNoFlash = errors.New("settings: no flash")
)

var magic = [4]byte{'T', 'C', 'A', 'L'}

const headerSize = 16

// Store loads and saves calibration coefficients.
type Store struct {
	flash hal.Flash
	off   uint32
	block uint32
}

// NewStore places the record in the last erase block of f. A Store over a
// missing or empty flash reports no record and refuses to save.
func NewStore(f hal.Flash) *Store {
	s := &Store{flash: f}
	if f == nil {
		return s
	}
	size, block := f.SizeBytes(), f.EraseBlockBytes()
	if block == 0 || size < block {
		return s
	}
	s.block = block
	s.off = (size/block - 1) * block
	return s
}

// Offset is the flash address of the record block.
func (s *Store) Offset() uint32 { return s.off }

func (s *Store) usable() bool { return s.flash != nil && s.block > 0 }

// Load returns the stored coefficients. ok is false when no record exists;
// err is set only for a record that exists but is unreadable.
func (s *Store) Load() (k calib.Coefficients, ok bool, err error) {
	if !s.usable() {
		return k, false, nil
	}
	var hdr [headerSize]byte
	if _, err := s.flash.ReadAt(hdr[:], s.off); err != nil {
		return k, false, fmt.Errorf("settings: read header: %w", err)
	}
	if bytes.Equal(hdr[:4], []byte{0xFF, 0xFF, 0xFF, 0xFF}) {
		return k, false, nil
	}
	if !bytes.Equal(hdr[:4], magic[:]) {
		return k, false, fmt.Errorf("bad magic %q: %w", hdr[:4], ErrCorrupt)
	}
	if hdr[4] != codecID {
		return k, false, fmt.Errorf("codec %d, want %d: %w", hdr[4], codecID, ErrCorrupt)
	}
	n := binary.LittleEndian.Uint32(hdr[8:])
	if n == 0 || n > s.block-headerSize {
		return k, false, fmt.Errorf("payload length %d: %w", n, ErrCorrupt)
	}
	payload := make([]byte, n)
	if _, err := s.flash.ReadAt(payload, s.off+headerSize); err != nil {
		return k, false, fmt.Errorf("settings: read payload: %w", err)
	}
	if crc32.ChecksumIEEE(payload) != binary.LittleEndian.Uint32(hdr[12:]) {
		return k, false, fmt.Errorf("checksum mismatch: %w", ErrCorrupt)
	}
	k, err = decode(payload)
	if err != nil {
		return k, false, fmt.Errorf("decode: %v: %w", err, ErrCorrupt)
	}
	if !k.Valid() {
		return calib.Coefficients{}, false, fmt.Errorf("singular coefficients: %w", ErrCorrupt)
	}
	return k, true, nil
}

// Save replaces the record with k.
func (s *Store) Save(k calib.Coefficients) error {
	if !s.usable() {
		return ErrNoFlash
	}
	payload, err := encode(k)
	if err != nil {
		return fmt.Errorf("settings: encode: %w", err)
	}
	if headerSize+len(payload) > int(s.block) {
		return fmt.Errorf("settings: record of %d bytes exceeds block", headerSize+len(payload))
	}

	rec := make([]byte, headerSize+len(payload))
	copy(rec, magic[:])
	rec[4] = codecID
	binary.LittleEndian.PutUint32(rec[8:], uint32(len(payload)))
	binary.LittleEndian.PutUint32(rec[12:], crc32.ChecksumIEEE(payload))
	copy(rec[headerSize:], payload)

	if err := s.flash.Erase(s.off, s.block); err != nil {
		return fmt.Errorf("settings: erase: %w", err)
	}
	if _, err := s.flash.WriteAt(rec, s.off); err != nil {
		return fmt.Errorf("settings: write: %w", err)
	}
	return nil
}

// Clear erases the record so the next boot calibrates again.
func (s *Store) Clear() error {
	if !s.usable() {
		return ErrNoFlash
	}
	if err := s.flash.Erase(s.off, s.block); err != nil {
		return fmt.Errorf("settings: erase: %w", err)
	}
	return nil
}
