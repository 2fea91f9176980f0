package memory

import (
	"encoding/binary"

	printnf "github.com/wippyai/wasm-printnf"
	"github.com/wippyai/wasm-printnf/errors"
)

var (
	_ printnf.Memory      = Slice(nil)
	_ printnf.MemorySizer = Slice(nil)
)

// Slice is a fixed-size little-endian memory over a byte slice.
type Slice []byte

// Size returns len(s).
func (s Slice) Size() uint32 { return uint32(len(s)) }

func (s Slice) span(offset, length uint32) ([]byte, error) {
	end := uint64(offset) + uint64(length)
	if end > uint64(len(s)) {
		return nil, errors.OutOfBounds(errors.PhaseMemory, offset, length)
	}
	return s[offset:end], nil
}

// Read returns a view of length bytes at offset.
func (s Slice) Read(offset, length uint32) ([]byte, error) {
	return s.span(offset, length)
}

// Write copies data to offset.
func (s Slice) Write(offset uint32, data []byte) error {
	dst, err := s.span(offset, uint32(len(data)))
	if err != nil {
		return err
	}
	copy(dst, data)
	return nil
}

func (s Slice) ReadU8(offset uint32) (uint8, error) {
	b, err := s.span(offset, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (s Slice) ReadU16(offset uint32) (uint16, error) {
	b, err := s.span(offset, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (s Slice) ReadU32(offset uint32) (uint32, error) {
	b, err := s.span(offset, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (s Slice) ReadU64(offset uint32) (uint64, error) {
	b, err := s.span(offset, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (s Slice) WriteU8(offset uint32, value uint8) error {
	b, err := s.span(offset, 1)
	if err != nil {
		return err
	}
	b[0] = value
	return nil
}

func (s Slice) WriteU16(offset uint32, value uint16) error {
	b, err := s.span(offset, 2)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(b, value)
	return nil
}

func (s Slice) WriteU32(offset uint32, value uint32) error {
	b, err := s.span(offset, 4)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(b, value)
	return nil
}

func (s Slice) WriteU64(offset uint32, value uint64) error {
	b, err := s.span(offset, 8)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(b, value)
	return nil
}
