package host

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	printnf "github.com/wippyai/wasm-printnf"
	"github.com/wippyai/wasm-printnf/errors"
	"github.com/wippyai/wasm-printnf/layout"
	"github.com/wippyai/wasm-printnf/memory"
	"github.com/wippyai/wasm-printnf/numtext"
	"github.com/wippyai/wasm-printnf/render"
)

// Heap

func (e *Env) malloc(_ context.Context, mod api.Module, size uint32) uint32 {
	h, err := e.Heap(mod)
	if err != nil {
		e.abort("malloc", err)
	}
	ptr, err := h.Malloc(size)
	if err != nil {
		e.abort("malloc", err)
	}
	return ptr
}

func (e *Env) realloc(_ context.Context, mod api.Module, ptr, size uint32) uint32 {
	h, err := e.Heap(mod)
	if err != nil {
		e.abort("realloc", err)
	}
	newPtr, err := h.Realloc(ptr, size)
	if err != nil {
		e.abort("realloc", err)
	}
	return newPtr
}

func (e *Env) free(_ context.Context, mod api.Module, ptr uint32) {
	h, err := e.Heap(mod)
	if err != nil {
		e.abort("free", err)
	}
	if err := h.Free(ptr); err != nil {
		e.abort("free", err)
	}
}

// Text

func (e *Env) zstring(fn string, mod api.Module, ptr uint32) string {
	s, err := printnf.ReadZString(memory.WrapMemory(mod.Memory()), ptr, 0)
	if err != nil {
		e.abort(fn, err)
	}
	return s
}

func (e *Env) printn(_ context.Context, mod api.Module, ptr uint32) {
	e.println(e.zstring("printn", mod, ptr))
}

func (e *Env) eprintn(_ context.Context, mod api.Module, ptr uint32) {
	e.cfg.Logger.Error(e.zstring("eprintn", mod, ptr), zap.String("module", mod.Name()))
}

func (e *Env) printnSV(_ context.Context, mod api.Module, ptr uint32) {
	v, err := layout.StringView.Decode(memory.WrapMemory(mod.Memory()), ptr)
	if err != nil {
		e.abort("printn_sv", err)
	}
	s, _ := v.(string)
	e.println(s)
}

func (e *Env) printnInt(_ context.Context, n int32) {
	e.println(strconv.FormatInt(int64(n), 10))
}

func (e *Env) printnZStrs(_ context.Context, mod api.Module, ptr uint32) {
	mem := memory.WrapMemory(mod.Memory())
	n, err := mem.ReadU32(ptr)
	if err != nil {
		e.abort("printn_zstrs", err)
	}
	items, err := mem.ReadU32(ptr + 8)
	if err != nil {
		e.abort("printn_zstrs", err)
	}
	ptrs, err := readList(mem, items, n)
	if err != nil {
		e.abort("printn_zstrs", err)
	}
	parts := make([]string, 0, n)
	for _, p := range ptrs {
		parts = append(parts, e.zstring("printn_zstrs", mod, p))
	}
	e.println(strings.Join(parts, " "))
}

func (e *Env) printnZStrArray(_ context.Context, mod api.Module, ptr uint32) {
	mem := memory.WrapMemory(mod.Memory())
	var parts []string
	for {
		p, err := mem.ReadU32(ptr)
		if err != nil {
			e.abort("js_printn_zstr_array", err)
		}
		if p == 0 {
			break
		}
		parts = append(parts, e.zstring("js_printn_zstr_array", mod, p))
		ptr += 4
	}
	e.println(strings.Join(parts, " "))
}

func (e *Env) jsPrintnInt(_ context.Context, n int32) int32 {
	e.println(strconv.FormatInt(int64(n), 10))
	return 0
}

func (e *Env) jsPrintnFlt(_ context.Context, f float32) int32 {
	e.println(numtext.FormatF32(f))
	return 0
}

// printnfVoidList renders fmt against a Void_List of argument addresses.
// Render failures are reported on the diagnostic log and print nothing.
func (e *Env) printnfVoidList(_ context.Context, mod api.Module, fmtPtr, listPtr uint32) {
	mem := memory.WrapMemory(mod.Memory())
	format := e.zstring("printnf_void_list", mod, fmtPtr)

	n, err := mem.ReadU32(listPtr)
	if err != nil {
		e.abort("printnf_void_list", err)
	}
	items, err := mem.ReadU32(listPtr + 8)
	if err != nil {
		e.abort("printnf_void_list", err)
	}
	addrs, err := readList(mem, items, n)
	if err != nil {
		e.abort("printnf_void_list", err)
	}

	line, err := e.renderer(mod).Render(format, render.GuestSlots{Mem: mem, Addrs: addrs})
	if err != nil {
		e.cfg.Logger.Error("printnf failed", zap.String("format", format), zap.Error(err))
		return
	}
	e.println(line)
}

// readList reads n u32 items at items. The whole list must lie inside
// memory before anything is allocated for it.
func readList(mem *memory.Wrapper, items, n uint32) ([]uint32, error) {
	if uint64(items)+4*uint64(n) > uint64(mem.Size()) {
		return nil, errors.OutOfBounds(errors.PhaseHost, items, uint32(min(4*uint64(n), math.MaxUint32)))
	}
	out := make([]uint32, n)
	for i := range out {
		v, err := mem.ReadU32(items + 4*uint32(i))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Numeric writers

func (e *Env) write(fn string, mod api.Module, buf, size uint32, write func([]byte) (int, error)) uint32 {
	tmp := make([]byte, min(size, 64))
	n, err := write(tmp)
	if err != nil {
		e.abort(fn, errors.Wrap(errors.PhaseHost, errors.KindInsufficientCapacity, err, fn))
	}
	if err := memory.WrapMemory(mod.Memory()).Write(buf, tmp[:n]); err != nil {
		e.abort(fn, err)
	}
	return uint32(n)
}

func (e *Env) writeU32(_ context.Context, mod api.Module, buf, size, v uint32) uint32 {
	return e.write("js_write_u32", mod, buf, size, func(dst []byte) (int, error) {
		return numtext.WriteU32(dst, v)
	})
}

func (e *Env) writeI32(_ context.Context, mod api.Module, buf, size uint32, v int32) uint32 {
	return e.write("js_write_i32", mod, buf, size, func(dst []byte) (int, error) {
		return numtext.WriteI32(dst, v)
	})
}

func (e *Env) writeF32(_ context.Context, mod api.Module, buf, size uint32, v float32) uint32 {
	return e.write("js_write_f32", mod, buf, size, func(dst []byte) (int, error) {
		return numtext.WriteF32(dst, v)
	})
}

func (e *Env) writeInt(_ context.Context, mod api.Module, buf, size uint32, v int32) int32 {
	return int32(e.write("js_write_int", mod, buf, size, func(dst []byte) (int, error) {
		return numtext.WriteI32(dst, v)
	}))
}

// Misc

func (e *Env) crash(_ context.Context, mod api.Module, ptr uint32) int32 {
	msg := e.zstring("js_crash", mod, ptr)
	e.abort("js_crash", errors.Crash(msg))
	return 0
}

func (e *Env) randf(context.Context) float32 {
	return e.cfg.Rand()
}

// Canvas

func (e *Env) color(fn string, mod api.Module, ptr uint32) Color {
	raw, err := memory.WrapMemory(mod.Memory()).Read(ptr, layout.ColorRGBa.Size)
	if err != nil {
		e.abort(fn, err)
	}
	return Color{R: raw[0], G: raw[1], B: raw[2], A: raw[3]}
}

func (e *Env) setFillRGBA(_ context.Context, mod api.Module, ptr uint32) {
	e.cfg.Canvas.SetFill(e.color("set_fill_rgba", mod, ptr))
}

func (e *Env) clearBackground(_ context.Context, mod api.Module, ptr uint32) {
	e.cfg.Canvas.ClearBackground(e.color("clear_background", mod, ptr))
}

func (e *Env) clearScreen(context.Context) {
	e.cfg.Canvas.Clear()
}

func (e *Env) drawRect(_ context.Context, mod api.Module, ptr uint32) {
	mem := memory.WrapMemory(mod.Memory())
	var words [4]uint32
	for i := range words {
		v, err := mem.ReadU32(ptr + 4*uint32(i))
		if err != nil {
			e.abort("draw_rect", err)
		}
		words[i] = v
	}
	e.cfg.Canvas.FillRect(Rect{
		X: math.Float32frombits(words[0]),
		Y: math.Float32frombits(words[1]),
		W: int32(words[2]),
		H: int32(words[3]),
	})
}
