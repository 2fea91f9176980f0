// Package host implements the "env" module that printnf guests import.
//
// The module provides the guest heap (malloc, realloc, free), text output
// (printn and friends, printnf_void_list), numeric text writers for guest
// string builders, and canvas drawing calls that forward to a Canvas.
//
//	env := host.New(host.Config{Stdout: os.Stdout, Canvas: &host.Recorder{}})
//	if _, err := env.Instantiate(ctx, rt); err != nil {
//		return err
//	}
//
// Guest faults inside a host function abort the guest call with an
// *errors.Error that errors.As can recover from the call error.
package host

import (
	"context"
	"io"
	"math/rand"
	"sort"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-printnf/errors"
	"github.com/wippyai/wasm-printnf/layout"
	"github.com/wippyai/wasm-printnf/memory"
	"github.com/wippyai/wasm-printnf/render"
)

// ModuleName is the import module name guests use.
const ModuleName = "env"

// Heap bound globals a guest exports.
const (
	GlobalHeapBase = "__heap_base"
	GlobalHeapEnd  = "__heap_end"
)

// Config configures the env module.
type Config struct {
	// Stdout receives printn output. Defaults to io.Discard.
	Stdout io.Writer
	// Canvas receives drawing calls. Defaults to a Recorder.
	Canvas Canvas
	// Logger receives eprintn output and diagnostics.
	Logger *zap.Logger
	// Registry resolves %{NAME} in printnf_void_list. Defaults to
	// layout.DefaultRegistry.
	Registry *layout.Registry
	// Rand backs randf. Defaults to math/rand.
	Rand func() float32
}

// Env is the host side of one or more guest instances.
type Env struct {
	cfg    Config
	heaps  map[string]*memory.Heap
	outMu  sync.Mutex
	heapMu sync.Mutex
}

// New creates an env module with cfg's defaults filled in.
func New(cfg Config) *Env {
	if cfg.Stdout == nil {
		cfg.Stdout = io.Discard
	}
	if cfg.Canvas == nil {
		cfg.Canvas = &Recorder{}
	}
	if cfg.Logger == nil {
		cfg.Logger = Logger()
	}
	if cfg.Registry == nil {
		cfg.Registry = layout.DefaultRegistry()
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.Float32
	}
	return &Env{cfg: cfg, heaps: make(map[string]*memory.Heap)}
}

// Canvas returns the configured canvas.
func (e *Env) Canvas() Canvas { return e.cfg.Canvas }

// Functions returns the env functions by export name.
func (e *Env) Functions() map[string]any {
	return map[string]any{
		"malloc":  e.malloc,
		"realloc": e.realloc,
		"free":    e.free,

		"printn":               e.printn,
		"eprintn":              e.eprintn,
		"printn_sv":            e.printnSV,
		"printn_int":           e.printnInt,
		"printn_zstrs":         e.printnZStrs,
		"js_printn_zstr_array": e.printnZStrArray,
		"js_printn_int":        e.jsPrintnInt,
		"js_printn_flt":        e.jsPrintnFlt,
		"printnf_void_list":    e.printnfVoidList,

		"js_write_u32": e.writeU32,
		"js_write_i32": e.writeI32,
		"js_write_f32": e.writeF32,
		"js_write_int": e.writeInt,

		"js_crash": e.crash,
		"randf":    e.randf,

		"set_fill_rgba":    e.setFillRGBA,
		"clear_background": e.clearBackground,
		"clear_screen":     e.clearScreen,
		"draw_rect":        e.drawRect,
	}
}

// Instantiate registers the env module in rt.
func (e *Env) Instantiate(ctx context.Context, rt wazero.Runtime) (api.Module, error) {
	funcs := e.Functions()
	names := make([]string, 0, len(funcs))
	for name := range funcs {
		names = append(names, name)
	}
	sort.Strings(names)

	b := rt.NewHostModuleBuilder(ModuleName)
	for _, name := range names {
		b.NewFunctionBuilder().WithFunc(funcs[name]).Export(name)
	}
	mod, err := b.Instantiate(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseHost, errors.KindInstantiation, err, "failed to instantiate env module")
	}
	return mod, nil
}

// Heap returns the heap serving mod, creating it from the module's
// __heap_base and __heap_end globals on first use. Without __heap_end the
// heap runs to the end of memory.
func (e *Env) Heap(mod api.Module) (*memory.Heap, error) {
	e.heapMu.Lock()
	defer e.heapMu.Unlock()

	if h, ok := e.heaps[mod.Name()]; ok {
		return h, nil
	}
	mem := memory.ModuleMemory(mod)
	if mem == nil {
		return nil, errors.NotFound(errors.PhaseHost, "memory of module", mod.Name())
	}
	base := mod.ExportedGlobal(GlobalHeapBase)
	if base == nil {
		return nil, errors.NotFound(errors.PhaseHost, "global", GlobalHeapBase)
	}
	end := mem.Size()
	if g := mod.ExportedGlobal(GlobalHeapEnd); g != nil {
		end = uint32(g.Get())
	}
	h := memory.NewHeap(memory.WrapMemory(mem), uint32(base.Get()), end)
	h.SetLogger(e.cfg.Logger)
	e.heaps[mod.Name()] = h
	return h, nil
}

// Release forgets the heap of a closed module.
func (e *Env) Release(mod api.Module) {
	e.heapMu.Lock()
	delete(e.heaps, mod.Name())
	e.heapMu.Unlock()
}

func (e *Env) println(line string) {
	e.outMu.Lock()
	defer e.outMu.Unlock()
	if _, err := io.WriteString(e.cfg.Stdout, line+"\n"); err != nil {
		e.cfg.Logger.Warn("stdout write failed", zap.Error(err))
	}
}

// abort ends the guest call. wazero recovers the panic and returns it
// wrapped from the guest function call.
func (e *Env) abort(fn string, err error) {
	e.cfg.Logger.Error("host function failed", zap.String("func", fn), zap.Error(err))
	panic(err)
}

func (e *Env) renderer(mod api.Module) *render.Renderer {
	return render.New(
		render.WithRegistry(e.cfg.Registry),
		render.WithMemory(memory.WrapMemory(mod.Memory())),
		render.WithLogger(e.cfg.Logger),
	)
}
