package layout

import (
	"strings"

	"github.com/wippyai/wasm-printnf/errors"
)

// Kind is the storage type of a field.
type Kind uint8

const (
	KindPtr Kind = iota + 1
	KindI32
	KindU32
	KindF32
	KindI64
	KindU64
	KindI8
	KindU8
	KindZString // pointer to a NUL-terminated string
	KindStruct
)

var kindNames = map[Kind]string{
	KindPtr:     "ptr",
	KindI32:     "i32",
	KindU32:     "u32",
	KindF32:     "f32",
	KindI64:     "i64",
	KindU64:     "u64",
	KindI8:      "i8",
	KindU8:      "u8",
	KindZString: "zstring",
	KindStruct:  "struct",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "invalid"
}

// Size returns the byte size of a scalar kind. Structs report 0; their size
// comes from the Struct.
func (k Kind) Size() uint32 {
	switch k {
	case KindI64, KindU64:
		return 8
	case KindI8, KindU8:
		return 1
	case KindStruct:
		return 0
	default:
		return 4
	}
}

// ParseKind maps a scalar kind name to its Kind.
func ParseKind(name string) (Kind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for k, n := range kindNames {
		if n == name && k != KindStruct {
			return k, nil
		}
	}
	return 0, errors.NotFound(errors.PhaseLayout, "field kind", name)
}
