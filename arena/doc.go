// Package arena provides the growable storage behind the format encoder.
//
// Buffer[T] is a contiguous store that grows to max(cap*2, 512) whenever an
// insert finds it full. Reset keeps the capacity so buffers can be reused
// across calls without reallocating. A configurable limit turns runaway growth
// into an allocation error instead of an unbounded allocation.
//
// Bytes specializes Buffer[byte] with helpers for raw little-endian values,
// C strings, and numbers rendered as text through a NumberWriter:
//
//	b := arena.NewBytes(0, numtext.Writer{})
//	_ = b.AppendCString("This is a number: ", false)
//	_ = b.AppendEncodedInt(69)
//	_ = b.AppendByte('.')
//	_ = b.AppendTerminator()
//	b.String() // "This is a number: 69."
//
// Growth may move the storage. Keep indices, not slices, across appends.
package arena
