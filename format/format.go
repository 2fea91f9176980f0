// Package format scans printnf format strings.
//
// The grammar is deliberately small: literal text, "%%", the single-character
// verbs listed below, and "%{NAME}" for a pointer to a named structure. There
// are no flags, widths, or precisions. The encoder and the sink both scan with
// this package so they agree on which slot belongs to which specifier.
package format

// Verb identifies the conversion of a specifier.
type Verb byte

const (
	VerbString   Verb = 's'
	VerbByte     Verb = 'b'
	VerbUnsigned Verb = 'u'
	VerbInt      Verb = 'i'
	VerbDecimal  Verb = 'd'
	VerbFloat    Verb = 'f'
	VerbFloatF   Verb = 'F'
	VerbExp      Verb = 'e'
	VerbExpE     Verb = 'E'
	VerbChar     Verb = 'c'
	VerbStruct   Verb = '{'
	VerbPointer  Verb = 'p'
)

// Valid reports whether v is a recognized verb.
func (v Verb) Valid() bool {
	switch v {
	case VerbString, VerbByte, VerbUnsigned, VerbInt, VerbDecimal,
		VerbFloat, VerbFloatF, VerbExp, VerbExpE, VerbChar, VerbStruct, VerbPointer:
		return true
	}
	return false
}

// Width returns the serialized size of the verb's argument, or -1 for strings.
func (v Verb) Width() int {
	switch v {
	case VerbString:
		return -1
	case VerbByte, VerbChar:
		return 1
	default:
		return 4
	}
}

// IsFloat reports whether v consumes a float.
func (v Verb) IsFloat() bool {
	return v == VerbFloat || v == VerbFloatF || v == VerbExp || v == VerbExpE
}

// IsInteger reports whether v consumes an integer.
func (v Verb) IsInteger() bool {
	switch v {
	case VerbByte, VerbChar, VerbUnsigned, VerbInt, VerbDecimal:
		return true
	}
	return false
}

// IsPointer reports whether v consumes a pointer.
func (v Verb) IsPointer() bool {
	return v == VerbStruct || v == VerbPointer
}

func (v Verb) String() string {
	if v == VerbStruct {
		return "%{}"
	}
	return "%" + string(rune(v))
}
