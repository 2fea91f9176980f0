// Package numtext writes numbers as text into caller-provided buffers.
//
// The writers mirror the host-side js_write_* imports: they write as many
// bytes as the number needs, return the count, and fail without writing when
// the destination is too small. Float text follows the JavaScript
// Number.prototype.toString conventions so host and guest render alike.
package numtext

import (
	"math"
	"strconv"
	"strings"

	"github.com/wippyai/wasm-printnf/arena"
	"github.com/wippyai/wasm-printnf/errors"
)

// Writer implements arena.NumberWriter.
type Writer struct{}

var _ arena.NumberWriter = Writer{}

// WriteU32 writes the decimal text of v into dst.
func (Writer) WriteU32(dst []byte, v uint32) (int, error) {
	return WriteU32(dst, v)
}

// WriteI32 writes the decimal text of v into dst.
func (Writer) WriteI32(dst []byte, v int32) (int, error) {
	return WriteI32(dst, v)
}

// WriteF32 writes the text of v into dst.
func (Writer) WriteF32(dst []byte, v float32) (int, error) {
	return WriteF32(dst, v)
}

// WriteU32 writes the decimal text of v into dst.
func WriteU32(dst []byte, v uint32) (int, error) {
	var scratch [10]byte
	return place(dst, strconv.AppendUint(scratch[:0], uint64(v), 10))
}

// WriteI32 writes the decimal text of v into dst.
func WriteI32(dst []byte, v int32) (int, error) {
	var scratch [11]byte
	return place(dst, strconv.AppendInt(scratch[:0], int64(v), 10))
}

// WriteF32 writes FormatF32(v) into dst.
func WriteF32(dst []byte, v float32) (int, error) {
	return place(dst, []byte(FormatF32(v)))
}

func place(dst, text []byte) (int, error) {
	if len(dst) < len(text) {
		return 0, errors.InsufficientCapacity(errors.PhaseEncode, len(text), len(dst))
	}
	return copy(dst, text), nil
}

// FormatF32 renders v with the shortest digits that round-trip as float32.
// Decimal exponents in [-6, 21) use fixed notation, others use exponent notation.
func FormatF32(v float32) string {
	if v == 0 {
		v = 0 // -0 prints as 0
	}
	f := float64(v)
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	exp := strconv.FormatFloat(f, 'e', -1, 32)
	_, e, _ := strings.Cut(exp, "e")
	if n, err := strconv.Atoi(e); err == nil && n >= -6 && n < 21 {
		return strconv.FormatFloat(f, 'f', -1, 32)
	}
	return FormatExp(v, false)
}

// FormatExp renders v in exponent notation: "1.5e+0", "-2e-7", "1E+21".
func FormatExp(v float32, upper bool) string {
	if v == 0 {
		v = 0
	}
	f := float64(v)
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	s := strconv.FormatFloat(f, 'e', -1, 32)
	mant, exp, _ := strings.Cut(s, "e")
	sign := exp[:1]
	digits := strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	e := "e"
	if upper {
		e = "E"
	}
	return mant + e + sign + digits
}
