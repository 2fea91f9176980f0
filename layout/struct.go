package layout

import (
	"math"
	"strings"

	printnf "github.com/wippyai/wasm-printnf"
	"github.com/wippyai/wasm-printnf/errors"
)

// Field is one member of a Struct.
type Field struct {
	// Struct is the nested layout of a KindStruct field.
	Struct *Struct
	Name   string
	Offset uint32
	Kind   Kind
	// Ref marks a 4-byte pointer whose target holds the Kind value.
	Ref bool
}

// Size returns the bytes the field occupies inside its parent.
func (f Field) Size() uint32 {
	if f.Ref {
		return 4
	}
	if f.Kind == KindStruct {
		return f.Struct.Size
	}
	return f.Kind.Size()
}

// TransformFunc replaces the decoded object of a struct with another value.
type TransformFunc func(mem printnf.Memory, obj *Object) (any, error)

var transforms = map[string]TransformFunc{
	"sized-string": sizedString,
}

// RegisterTransform makes a transform available to Builder.Transform and
// layout files.
func RegisterTransform(name string, fn TransformFunc) {
	transforms[name] = fn
}

// sizedString decodes a {count, data} pair as count bytes at data.
func sizedString(mem printnf.Memory, obj *Object) (any, error) {
	count, _ := obj.Get("count")
	data, _ := obj.Get("data")
	n, ok1 := asUint32(count)
	ptr, ok2 := asUint32(data)
	if !ok1 || !ok2 {
		return nil, errors.InvalidInput(errors.PhaseLayout, "sized-string needs integer count and data fields")
	}
	if n == 0 {
		return "", nil
	}
	b, err := mem.Read(ptr, n)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Struct is a packed structure layout.
type Struct struct {
	transform     TransformFunc
	Name          string
	TransformName string
	Fields        []Field
	Size          uint32
}

// Builder accumulates fields for a Struct.
type Builder struct {
	err    error
	s      *Struct
	offset uint32
}

// NewBuilder starts a layout named name.
func NewBuilder(name string) *Builder {
	return &Builder{s: &Struct{Name: name}}
}

func (b *Builder) add(f Field) *Builder {
	if b.err != nil {
		return b
	}
	for _, existing := range b.s.Fields {
		if existing.Name == f.Name {
			b.err = errors.Duplicate(errors.PhaseLayout, "field", b.s.Name+"."+f.Name)
			return b
		}
	}
	f.Offset = b.offset
	b.offset += f.Size()
	b.s.Fields = append(b.s.Fields, f)
	return b
}

// Field appends a scalar field.
func (b *Builder) Field(name string, kind Kind) *Builder {
	if kind == KindStruct && b.err == nil {
		b.err = errors.InvalidInput(errors.PhaseLayout, "use Nested for struct field "+name)
		return b
	}
	return b.add(Field{Name: name, Kind: kind})
}

// Ref appends a pointer field whose target is decoded as kind.
func (b *Builder) Ref(name string, kind Kind) *Builder {
	return b.add(Field{Name: name, Kind: kind, Ref: true})
}

// RefStruct appends a pointer field whose target is decoded as s.
func (b *Builder) RefStruct(name string, s *Struct) *Builder {
	return b.add(Field{Name: name, Kind: KindStruct, Struct: s, Ref: true})
}

// Nested appends an inline struct field.
func (b *Builder) Nested(name string, s *Struct) *Builder {
	return b.add(Field{Name: name, Kind: KindStruct, Struct: s})
}

// Transform replaces the decoded object with the named transform's result.
func (b *Builder) Transform(name string) *Builder {
	if b.err != nil {
		return b
	}
	fn, ok := transforms[name]
	if !ok {
		b.err = errors.NotFound(errors.PhaseLayout, "transform", name)
		return b
	}
	b.s.transform = fn
	b.s.TransformName = name
	return b
}

// Build returns the finished layout.
func (b *Builder) Build() (*Struct, error) {
	if b.err != nil {
		return nil, b.err
	}
	b.s.Size = b.offset
	return b.s, nil
}

// MustBuild is Build that panics on error.
func (b *Builder) MustBuild() *Struct {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}

// Decode reads the struct at ptr. The result is an *Object, or whatever the
// struct's transform returns.
func (s *Struct) Decode(mem printnf.Memory, ptr uint32) (any, error) {
	obj := &Object{Name: s.Name, Members: make([]Member, 0, len(s.Fields))}
	for _, f := range s.Fields {
		v, err := f.decode(mem, ptr+f.Offset)
		if err != nil {
			return nil, errors.New(errors.PhaseLayout, errors.KindOutOfBounds).
				Path(s.Name, f.Name).
				Cause(err).
				Detail("cannot decode field").
				Build()
		}
		obj.Members = append(obj.Members, Member{Name: f.Name, Value: v})
	}
	if s.transform != nil {
		return s.transform(mem, obj)
	}
	return obj, nil
}

func (f Field) decode(mem printnf.Memory, addr uint32) (any, error) {
	if f.Ref {
		target, err := mem.ReadU32(addr)
		if err != nil {
			return nil, err
		}
		addr = target
	}
	if f.Kind == KindStruct {
		return f.Struct.Decode(mem, addr)
	}
	return readScalar(mem, addr, f.Kind)
}

func readScalar(mem printnf.Memory, addr uint32, kind Kind) (any, error) {
	switch kind {
	case KindI8:
		v, err := mem.ReadU8(addr)
		return int8(v), err
	case KindU8:
		return mem.ReadU8(addr)
	case KindI32:
		v, err := mem.ReadU32(addr)
		return int32(v), err
	case KindU32, KindPtr:
		return mem.ReadU32(addr)
	case KindF32:
		v, err := mem.ReadU32(addr)
		return math.Float32frombits(v), err
	case KindI64:
		v, err := mem.ReadU64(addr)
		return int64(v), err
	case KindU64:
		return mem.ReadU64(addr)
	case KindZString:
		p, err := mem.ReadU32(addr)
		if err != nil {
			return nil, err
		}
		return printnf.ReadZString(mem, p, 0)
	}
	return nil, errors.InvalidInput(errors.PhaseLayout, "unknown field kind "+kind.String())
}

// Locate resolves a dotted path through inline nested structs to a field and
// its offset from the struct start.
func (s *Struct) Locate(path string) (Field, uint32, error) {
	cur := s
	var base uint32
	parts := strings.Split(path, ".")
	for i, part := range parts {
		var found *Field
		for j := range cur.Fields {
			if cur.Fields[j].Name == part {
				found = &cur.Fields[j]
				break
			}
		}
		if found == nil {
			return Field{}, 0, errors.NotFound(errors.PhaseLayout, "field", s.Name+"."+path)
		}
		if i == len(parts)-1 {
			return *found, base + found.Offset, nil
		}
		if found.Kind != KindStruct || found.Ref {
			return Field{}, 0, errors.InvalidInput(errors.PhaseLayout, "field "+part+" of "+cur.Name+" is not an inline struct")
		}
		base += found.Offset
		cur = found.Struct
	}
	return Field{}, 0, errors.NotFound(errors.PhaseLayout, "field", s.Name+"."+path)
}

// Store writes a scalar value to the field at path of the struct at ptr.
func (s *Struct) Store(mem printnf.Memory, ptr uint32, path string, value any) error {
	f, off, err := s.Locate(path)
	if err != nil {
		return err
	}
	if f.Ref || f.Kind == KindStruct || f.Kind == KindZString {
		return errors.InvalidInput(errors.PhaseLayout, "cannot store into non-scalar field "+path)
	}
	addr := ptr + off
	switch f.Kind {
	case KindF32:
		v, ok := asFloat64(value)
		if !ok {
			return storeMismatch(path, value)
		}
		return mem.WriteU32(addr, math.Float32bits(float32(v)))
	case KindI8, KindU8:
		v, ok := asInt64(value)
		if !ok {
			return storeMismatch(path, value)
		}
		return mem.WriteU8(addr, uint8(v))
	case KindI64, KindU64:
		v, ok := asInt64(value)
		if !ok {
			return storeMismatch(path, value)
		}
		return mem.WriteU64(addr, uint64(v))
	default:
		v, ok := asInt64(value)
		if !ok {
			return storeMismatch(path, value)
		}
		return mem.WriteU32(addr, uint32(v))
	}
}

func storeMismatch(path string, value any) error {
	return errors.New(errors.PhaseLayout, errors.KindTypeMismatch).
		Path(path).
		Value(value).
		Detail("value is not numeric").
		Build()
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint8:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), true
	case float32:
		return int64(n), true
	case float64:
		return int64(n), true
	}
	return 0, false
}

func asFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	i, ok := asInt64(v)
	return float64(i), ok
}

func asUint32(v any) (uint32, bool) {
	i, ok := asInt64(v)
	return uint32(i), ok
}
