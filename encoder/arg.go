package encoder

import (
	"math"
	"strconv"
)

// ArgKind identifies which variant an Arg holds.
type ArgKind uint8

const (
	ArgNone ArgKind = iota
	ArgString
	ArgNullString
	ArgByte
	ArgUnsigned
	ArgSigned
	ArgFloat
	ArgChar
	ArgStruct
	ArgPointer
)

var argKindNames = [...]string{
	ArgNone:       "none",
	ArgString:     "string",
	ArgNullString: "null string",
	ArgByte:       "byte",
	ArgUnsigned:   "unsigned",
	ArgSigned:     "signed",
	ArgFloat:      "float",
	ArgChar:       "char",
	ArgStruct:     "struct",
	ArgPointer:    "pointer",
}

func (k ArgKind) String() string {
	if int(k) < len(argKindNames) {
		return argKindNames[k]
	}
	return "ArgKind(" + strconv.Itoa(int(k)) + ")"
}

// Arg is one typed format argument. The zero value is ArgNone, which no
// specifier accepts.
type Arg struct {
	str  string // string payload or struct tag
	bits uint32 // integer, pointer, or float32 bits
	kind ArgKind
}

// String returns a string argument for %s.
func String(s string) Arg { return Arg{kind: ArgString, str: s} }

// Null returns a null string argument. %s encodes it as a single zero byte.
func Null() Arg { return Arg{kind: ArgNullString} }

// Byte returns a byte argument.
func Byte(v byte) Arg { return Arg{kind: ArgByte, bits: uint32(v)} }

// Uint returns an unsigned 32-bit argument.
func Uint(v uint32) Arg { return Arg{kind: ArgUnsigned, bits: v} }

// Int returns a signed 32-bit argument.
func Int(v int32) Arg { return Arg{kind: ArgSigned, bits: uint32(v)} }

// Float returns a float argument. The value is narrowed to float32 on encode.
func Float(v float64) Arg { return Float32(float32(v)) }

// Float32 returns a float argument.
func Float32(v float32) Arg { return Arg{kind: ArgFloat, bits: math.Float32bits(v)} }

// Char returns a character argument.
func Char(c byte) Arg { return Arg{kind: ArgChar, bits: uint32(c)} }

// Struct returns a pointer to a named structure in guest memory. An empty tag
// matches any %{NAME}.
func Struct(tag string, ptr uint32) Arg { return Arg{kind: ArgStruct, str: tag, bits: ptr} }

// Pointer returns an untyped guest pointer.
func Pointer(ptr uint32) Arg { return Arg{kind: ArgPointer, bits: ptr} }

// Kind returns the variant held by a.
func (a Arg) Kind() ArgKind { return a.kind }

// Text returns the string payload of a string argument.
func (a Arg) Text() string { return a.str }

// Tag returns the struct name of a struct argument.
func (a Arg) Tag() string { return a.str }

// Bits returns the raw 32-bit payload of a scalar or pointer argument.
func (a Arg) Bits() uint32 { return a.bits }

// Float32Value returns the payload of a float argument.
func (a Arg) Float32Value() float32 { return math.Float32frombits(a.bits) }

// size estimates the arena bytes this argument occupies.
func (a Arg) size() int {
	switch a.kind {
	case ArgString:
		return len(a.str)
	case ArgNullString:
		return 1
	case ArgNone:
		return 0
	default:
		return 4
	}
}

func (a Arg) String() string {
	switch a.kind {
	case ArgString:
		return strconv.Quote(a.str)
	case ArgNullString:
		return "null"
	case ArgByte, ArgUnsigned:
		return strconv.FormatUint(uint64(a.bits), 10)
	case ArgSigned:
		return strconv.FormatInt(int64(int32(a.bits)), 10)
	case ArgFloat:
		return strconv.FormatFloat(float64(a.Float32Value()), 'g', -1, 32)
	case ArgChar:
		return strconv.QuoteRune(rune(a.bits))
	case ArgStruct:
		return "{" + a.str + "}0x" + strconv.FormatUint(uint64(a.bits), 16)
	case ArgPointer:
		return "0x" + strconv.FormatUint(uint64(a.bits), 16)
	}
	return a.kind.String()
}
