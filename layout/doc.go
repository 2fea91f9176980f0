// Package layout describes C structures in guest memory so the sink can
// render %{NAME} arguments.
//
// A Struct is an ordered list of packed fields. Fields are scalars, pointers,
// NUL-terminated strings, nested structs, or references that are followed
// through a pointer:
//
//	rect, _ := layout.NewBuilder("Rect").
//		Field("x", layout.KindF32).
//		Field("y", layout.KindF32).
//		Field("w", layout.KindI32).
//		Field("h", layout.KindI32).
//		Build()
//
//	v, err := rect.Decode(mem, ptr)       // *Object with x, y, w, h in order
//	out, err := layout.MarshalIndent(v)   // 4-space indented JSON
//
// A Registry resolves struct names case-insensitively. DefaultRegistry holds
// the structures the demo guests use; LoadConfig adds more from YAML.
package layout
