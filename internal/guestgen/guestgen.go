// Package guestgen assembles small WASM guest modules for tests.
//
// A generated guest imports functions from one host module, exports a linear
// memory named "memory", immutable i32 globals such as __heap_base, and
// functions whose bodies either forward their parameters to an import,
// return a constant, or call imports with constant arguments.
package guestgen

import (
	"fmt"

	"github.com/tetratelabs/wazero/api"
)

// Section ids.
const (
	sectionType   = 0x01
	sectionImport = 0x02
	sectionFunc   = 0x03
	sectionMemory = 0x05
	sectionGlobal = 0x06
	sectionExport = 0x07
	sectionCode   = 0x0a
	sectionData   = 0x0b
)

// Opcodes.
const (
	opDrop     = 0x1a
	opLocalGet = 0x20
	opCall     = 0x10
	opI32Const = 0x41
	opEnd      = 0x0b
)

type signature struct {
	params  []api.ValueType
	results []api.ValueType
}

type hostImport struct {
	name string
	sig  signature
}

type bodyKind uint8

const (
	bodyForward bodyKind = iota
	bodyConst
	bodyCalls
)

// Call is one import invocation with constant i32 arguments. Results are
// dropped.
type Call struct {
	Import string
	Args   []int32
}

type export struct {
	name   string
	target string
	calls  []Call
	sig    signature
	value  int32
	kind   bodyKind
	drop   bool
}

type global struct {
	name  string
	value int32
}

type segment struct {
	data   []byte
	offset uint32
}

// Builder collects the parts of a guest module.
type Builder struct {
	module   string
	imports  []hostImport
	exports  []export
	globals  []global
	data     []segment
	memPages uint32
}

// New creates a builder whose imports come from module.
func New(module string) *Builder {
	return &Builder{module: module}
}

// Import declares a host function.
func (b *Builder) Import(name string, params, results []api.ValueType) *Builder {
	b.imports = append(b.imports, hostImport{name: name, sig: signature{params, results}})
	return b
}

// Forward exports a function with the import's signature that passes its
// parameters through. With dropResults the export returns nothing.
func (b *Builder) Forward(exportName, importName string, dropResults bool) *Builder {
	b.exports = append(b.exports, export{name: exportName, target: importName, kind: bodyForward, drop: dropResults})
	return b
}

// Const exports a function returning v as i32.
func (b *Builder) Const(exportName string, v int32) *Builder {
	b.exports = append(b.exports, export{
		name:  exportName,
		kind:  bodyConst,
		value: v,
		sig:   signature{results: []api.ValueType{api.ValueTypeI32}},
	})
	return b
}

// Calls exports a function taking params, ignoring them, and running calls in
// order.
func (b *Builder) Calls(exportName string, params []api.ValueType, calls ...Call) *Builder {
	b.exports = append(b.exports, export{
		name:  exportName,
		kind:  bodyCalls,
		calls: calls,
		sig:   signature{params: params},
	})
	return b
}

// Memory declares the exported "memory" with the given initial page count.
func (b *Builder) Memory(pages uint32) *Builder {
	b.memPages = pages
	return b
}

// Global exports an immutable i32 global.
func (b *Builder) Global(name string, v int32) *Builder {
	b.globals = append(b.globals, global{name: name, value: v})
	return b
}

// Data places bytes at offset when the module is instantiated.
func (b *Builder) Data(offset uint32, data []byte) *Builder {
	b.data = append(b.data, segment{offset: offset, data: data})
	return b
}

func (b *Builder) importIndex(name string) (int, bool) {
	for i, imp := range b.imports {
		if imp.name == name {
			return i, true
		}
	}
	return 0, false
}

// Build encodes the module.
func (b *Builder) Build() ([]byte, error) {
	exports := make([]export, len(b.exports))
	copy(exports, b.exports)
	for i := range exports {
		e := &exports[i]
		switch e.kind {
		case bodyForward:
			idx, ok := b.importIndex(e.target)
			if !ok {
				return nil, fmt.Errorf("export %s forwards to undeclared import %s", e.name, e.target)
			}
			e.sig.params = b.imports[idx].sig.params
			if !e.drop {
				e.sig.results = b.imports[idx].sig.results
			}
		case bodyCalls:
			for _, c := range e.calls {
				idx, ok := b.importIndex(c.Import)
				if !ok {
					return nil, fmt.Errorf("export %s calls undeclared import %s", e.name, c.Import)
				}
				params := b.imports[idx].sig.params
				if len(c.Args) != len(params) {
					return nil, fmt.Errorf("export %s passes %d args to %s", e.name, len(c.Args), c.Import)
				}
				for _, p := range params {
					if p != api.ValueTypeI32 {
						return nil, fmt.Errorf("export %s: import %s takes non-i32 parameters", e.name, c.Import)
					}
				}
			}
		}
	}

	wasm := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	if len(b.imports)+len(exports) > 0 {
		wasm = appendSection(wasm, sectionType, b.typeSection(exports))
	}
	if len(b.imports) > 0 {
		wasm = appendSection(wasm, sectionImport, b.importSection())
	}
	if len(exports) > 0 {
		wasm = appendSection(wasm, sectionFunc, b.funcSection(exports))
	}
	if b.memPages > 0 {
		mem := []byte{0x01, 0x00}
		wasm = appendSection(wasm, sectionMemory, appendULEB128(mem, b.memPages))
	}
	if len(b.globals) > 0 {
		wasm = appendSection(wasm, sectionGlobal, b.globalSection())
	}
	wasm = appendSection(wasm, sectionExport, b.exportSection(exports))
	if len(exports) > 0 {
		wasm = appendSection(wasm, sectionCode, b.codeSection(exports))
	}
	if len(b.data) > 0 {
		wasm = appendSection(wasm, sectionData, b.dataSection())
	}
	return wasm, nil
}

// MustBuild is Build that panics on error.
func (b *Builder) MustBuild() []byte {
	wasm, err := b.Build()
	if err != nil {
		panic(err)
	}
	return wasm
}

func appendSection(dst []byte, id byte, body []byte) []byte {
	dst = append(dst, id)
	dst = appendULEB128(dst, uint32(len(body)))
	return append(dst, body...)
}

func appendSignature(dst []byte, sig signature) []byte {
	dst = append(dst, 0x60)
	dst = appendULEB128(dst, uint32(len(sig.params)))
	for _, t := range sig.params {
		dst = append(dst, valType(t))
	}
	dst = appendULEB128(dst, uint32(len(sig.results)))
	for _, t := range sig.results {
		dst = append(dst, valType(t))
	}
	return dst
}

// Type indices: imports first, then exports, one type each.
func (b *Builder) typeSection(exports []export) []byte {
	section := appendULEB128(nil, uint32(len(b.imports)+len(exports)))
	for _, imp := range b.imports {
		section = appendSignature(section, imp.sig)
	}
	for _, e := range exports {
		section = appendSignature(section, e.sig)
	}
	return section
}

func (b *Builder) importSection() []byte {
	section := appendULEB128(nil, uint32(len(b.imports)))
	for i, imp := range b.imports {
		section = appendName(section, b.module)
		section = appendName(section, imp.name)
		section = append(section, 0x00)
		section = appendULEB128(section, uint32(i))
	}
	return section
}

func (b *Builder) funcSection(exports []export) []byte {
	section := appendULEB128(nil, uint32(len(exports)))
	for i := range exports {
		section = appendULEB128(section, uint32(len(b.imports)+i))
	}
	return section
}

func (b *Builder) globalSection() []byte {
	section := appendULEB128(nil, uint32(len(b.globals)))
	for _, g := range b.globals {
		section = append(section, 0x7f, 0x00, opI32Const)
		section = appendSLEB128(section, g.value)
		section = append(section, opEnd)
	}
	return section
}

func (b *Builder) exportSection(exports []export) []byte {
	n := len(exports) + len(b.globals)
	if b.memPages > 0 {
		n++
	}
	section := appendULEB128(nil, uint32(n))
	if b.memPages > 0 {
		section = appendName(section, "memory")
		section = append(section, 0x02, 0x00)
	}
	for i, g := range b.globals {
		section = appendName(section, g.name)
		section = append(section, 0x03)
		section = appendULEB128(section, uint32(i))
	}
	for i, e := range exports {
		section = appendName(section, e.name)
		section = append(section, 0x00)
		section = appendULEB128(section, uint32(len(b.imports)+i))
	}
	return section
}

func (b *Builder) codeSection(exports []export) []byte {
	section := appendULEB128(nil, uint32(len(exports)))
	for _, e := range exports {
		body := b.funcBody(e)
		section = appendULEB128(section, uint32(len(body)))
		section = append(section, body...)
	}
	return section
}

func (b *Builder) funcBody(e export) []byte {
	body := []byte{0x00} // no locals
	switch e.kind {
	case bodyForward:
		idx, _ := b.importIndex(e.target)
		for i := range e.sig.params {
			body = append(body, opLocalGet)
			body = appendULEB128(body, uint32(i))
		}
		body = append(body, opCall)
		body = appendULEB128(body, uint32(idx))
		if e.drop {
			for range b.imports[idx].sig.results {
				body = append(body, opDrop)
			}
		}
	case bodyConst:
		body = append(body, opI32Const)
		body = appendSLEB128(body, e.value)
	case bodyCalls:
		for _, c := range e.calls {
			idx, _ := b.importIndex(c.Import)
			for _, arg := range c.Args {
				body = append(body, opI32Const)
				body = appendSLEB128(body, arg)
			}
			body = append(body, opCall)
			body = appendULEB128(body, uint32(idx))
			for range b.imports[idx].sig.results {
				body = append(body, opDrop)
			}
		}
	}
	return append(body, opEnd)
}

func (b *Builder) dataSection() []byte {
	section := appendULEB128(nil, uint32(len(b.data)))
	for _, d := range b.data {
		section = append(section, 0x00, opI32Const)
		section = appendSLEB128(section, int32(d.offset))
		section = append(section, opEnd)
		section = appendULEB128(section, uint32(len(d.data)))
		section = append(section, d.data...)
	}
	return section
}
