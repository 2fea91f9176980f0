package printnf

import "bytes"

// Memory represents guest linear memory. Multi-byte values are little-endian.
type Memory interface {
	Read(offset uint32, length uint32) ([]byte, error)
	Write(offset uint32, data []byte) error
	ReadU8(offset uint32) (uint8, error)
	ReadU16(offset uint32) (uint16, error)
	ReadU32(offset uint32) (uint32, error)
	ReadU64(offset uint32) (uint64, error)
	WriteU8(offset uint32, value uint8) error
	WriteU16(offset uint32, value uint16) error
	WriteU32(offset uint32, value uint32) error
	WriteU64(offset uint32, value uint64) error
}

// MemorySizer provides the current size of linear memory in bytes.
type MemorySizer interface {
	Size() uint32
}

// Allocator manages blocks of guest linear memory with malloc semantics.
type Allocator interface {
	Malloc(size uint32) (uint32, error)
	Realloc(ptr, size uint32) (uint32, error)
	Free(ptr uint32) error
}

// MaxZString bounds NUL scans over guest memory.
const MaxZString = 64 << 10

// ReadZString reads a NUL-terminated string starting at ptr. At most max bytes
// are examined; a string without a terminator inside that window is returned
// truncated. A max of 0 means MaxZString.
func ReadZString(mem Memory, ptr uint32, max uint32) (string, error) {
	if max == 0 {
		max = MaxZString
	}
	if s, ok := mem.(MemorySizer); ok {
		size := s.Size()
		if ptr >= size {
			_, err := mem.Read(ptr, 1)
			return "", err
		}
		if size-ptr < max {
			max = size - ptr
		}
	}
	data, err := mem.Read(ptr, max)
	if err != nil {
		return "", err
	}
	if i := bytes.IndexByte(data, 0); i >= 0 {
		data = data[:i]
	}
	return string(data), nil
}
