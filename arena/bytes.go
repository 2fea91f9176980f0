package arena

import (
	"encoding/binary"
	"math"
	"strings"

	"github.com/wippyai/wasm-printnf/errors"
)

// NumberWriter writes the decimal text form of a number into dst and returns
// the byte count. It fails when len(dst) is too small.
type NumberWriter interface {
	WriteU32(dst []byte, v uint32) (int, error)
	WriteI32(dst []byte, v int32) (int, error)
	WriteF32(dst []byte, v float32) (int, error)
}

// Widest text any NumberWriter needs: a float32 in fixed notation tops out at
// "-0.00000011754944" and "-340282350000000000000000000000000000000"
// switches to exponent notation, so 32 covers both with room.
const (
	maxIntText   = 11
	maxFloatText = 32
)

// Bytes is a growable byte accumulator used as the argument arena and as a
// text builder.
type Bytes struct {
	Buffer[byte]
	numbers NumberWriter
}

// NewBytes returns an empty accumulator. w may be nil when the encoded-number
// helpers are not used.
func NewBytes(limit int, w NumberWriter) *Bytes {
	return &Bytes{Buffer: Buffer[byte]{limit: limit}, numbers: w}
}

// SetNumberWriter replaces the numeric text writer.
func (b *Bytes) SetNumberWriter(w NumberWriter) {
	b.numbers = w
}

// AppendByte appends a single byte.
func (b *Bytes) AppendByte(c byte) error {
	return b.Append(c)
}

// AppendTerminator appends a single zero byte.
func (b *Bytes) AppendTerminator() error {
	return b.Append(0)
}

// AppendCString appends the bytes of s up to its first NUL. The terminator
// itself is appended only when terminate is set.
func (b *Bytes) AppendCString(s string, terminate bool) error {
	if i := strings.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	n := len(s)
	if terminate {
		n++
	}
	if err := b.EnsureCapacity(n); err != nil {
		return err
	}
	b.items = append(b.items, s...)
	if terminate {
		b.items = append(b.items, 0)
	}
	return nil
}

// AppendRaw appends the exact bytes given.
func (b *Bytes) AppendRaw(raw ...byte) error {
	return b.AppendSlice(raw...)
}

// AppendU32 appends the 4-byte little-endian representation of v.
func (b *Bytes) AppendU32(v uint32) error {
	if err := b.EnsureCapacity(4); err != nil {
		return err
	}
	b.items = binary.LittleEndian.AppendUint32(b.items, v)
	return nil
}

// AppendI32 appends the 4-byte little-endian representation of v.
func (b *Bytes) AppendI32(v int32) error {
	return b.AppendU32(uint32(v))
}

// AppendF32 appends the 4-byte little-endian IEEE 754 representation of v.
func (b *Bytes) AppendF32(v float32) error {
	return b.AppendU32(math.Float32bits(v))
}

// AppendEncodedUint appends the decimal text of v.
func (b *Bytes) AppendEncodedUint(v uint32) error {
	return b.appendEncoded(maxIntText, func(w NumberWriter, dst []byte) (int, error) {
		return w.WriteU32(dst, v)
	})
}

// AppendEncodedInt appends the decimal text of v.
func (b *Bytes) AppendEncodedInt(v int32) error {
	return b.appendEncoded(maxIntText, func(w NumberWriter, dst []byte) (int, error) {
		return w.WriteI32(dst, v)
	})
}

// AppendEncodedFloat appends the text of v as produced by the number writer.
func (b *Bytes) AppendEncodedFloat(v float32) error {
	return b.appendEncoded(maxFloatText, func(w NumberWriter, dst []byte) (int, error) {
		return w.WriteF32(dst, v)
	})
}

func (b *Bytes) appendEncoded(reserve int, write func(NumberWriter, []byte) (int, error)) error {
	if b.numbers == nil {
		return errors.New(errors.PhaseEncode, errors.KindNilPointer).
			Detail("no number writer configured").
			Build()
	}
	if err := b.EnsureCapacity(reserve); err != nil {
		return err
	}
	n, err := write(b.numbers, b.Spare())
	if err != nil {
		return err
	}
	b.Advance(n)
	return nil
}

// String returns the accumulated bytes as a string, without a trailing NUL.
func (b *Bytes) String() string {
	s := b.items
	if n := len(s); n > 0 && s[n-1] == 0 {
		s = s[:n-1]
	}
	return string(s)
}
