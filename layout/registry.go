package layout

import (
	"strings"
	"sync"

	"github.com/wippyai/wasm-printnf/errors"
)

// Registry maps struct names to layouts. Lookups ignore case; iteration
// follows registration order.
type Registry struct {
	byName map[string]*Struct
	order  []*Struct
	mu     sync.RWMutex
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Struct)}
}

// Register adds s. Names that differ only in case collide.
func (r *Registry) Register(s *Struct) error {
	key := strings.ToLower(s.Name)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[key]; ok {
		return errors.Duplicate(errors.PhaseLayout, "struct", s.Name)
	}
	r.byName[key] = s
	r.order = append(r.order, s)
	return nil
}

// Lookup finds a struct by name, ignoring case and surrounding space.
func (r *Registry) Lookup(name string) (*Struct, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	return s, ok
}

// Structs returns the registered layouts in registration order.
func (r *Registry) Structs() []*Struct {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Struct(nil), r.order...)
}

// Names returns the registered struct names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.order))
	for i, s := range r.order {
		names[i] = s.Name
	}
	return names
}

// Standard layouts shared by the demo guests.
var (
	StringView = NewBuilder("String_View").
			Field("count", KindI32).
			Field("data", KindPtr).
			Transform("sized-string").
			MustBuild()

	ColorRGBa = NewBuilder("Color_RGBa").
			Field("r", KindU8).
			Field("g", KindU8).
			Field("b", KindU8).
			Field("a", KindU8).
			MustBuild()

	Vec2 = NewBuilder("Vec2").
		Field("x", KindF32).
		Field("y", KindF32).
		MustBuild()

	Rect = NewBuilder("Rect").
		Field("x", KindF32).
		Field("y", KindF32).
		Field("w", KindI32).
		Field("h", KindI32).
		MustBuild()

	MyWindow = NewBuilder("My_Window").
			Nested("title", StringView).
			Nested("bounds", Rect).
			MustBuild()

	VoidList = NewBuilder("Void_List").
			Field("len", KindI32).
			Field("cap", KindI32).
			Ref("items", KindPtr).
			MustBuild()

	ZStrList = NewBuilder("ZStr_List").
			Field("len", KindI32).
			Field("cap", KindI32).
			Ref("items", KindZString).
			MustBuild()

	Vec2List = NewBuilder("Vec2_List").
			Field("len", KindI32).
			Field("cap", KindI32).
			RefStruct("items", Vec2).
			MustBuild()
)

// DefaultRegistry returns a fresh registry holding the standard layouts.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, s := range []*Struct{StringView, ColorRGBa, Rect, Vec2, MyWindow, VoidList, ZStrList, Vec2List} {
		_ = r.Register(s)
	}
	return r
}
