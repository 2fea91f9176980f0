package runtime

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-printnf/errors"
	"github.com/wippyai/wasm-printnf/layout"
	"github.com/wippyai/wasm-printnf/memory"
)

// Frame thresholds in seconds.
const (
	DrawThreshold      = 0.02
	LongFrameThreshold = 10.0
)

// Guest entry points.
const (
	ExportInit         = "init"
	ExportDraw         = "draw"
	ExportWindowHandle = "get_window_handle"
)

// FrameResult reports what Step did with a frame.
type FrameResult uint8

const (
	FrameDrawn FrameResult = iota + 1
	FrameSkipped
	FrameLong
)

func (f FrameResult) String() string {
	switch f {
	case FrameDrawn:
		return "drawn"
	case FrameSkipped:
		return "skipped"
	case FrameLong:
		return "long"
	}
	return "unknown"
}

// Instance is one loaded guest.
type Instance struct {
	rt       *Runtime
	mod      api.Module
	compiled wazero.CompiledModule
	logger   *zap.Logger
}

// Name returns the module name the guest was instantiated under.
func (i *Instance) Name() string { return i.mod.Name() }

// Memory returns the guest's linear memory.
func (i *Instance) Memory() *memory.Wrapper {
	return memory.WrapMemory(i.mod.Memory())
}

// Heap returns the heap serving the guest's malloc imports.
func (i *Instance) Heap() (*memory.Heap, error) {
	return i.rt.env.Heap(i.mod)
}

// Has reports whether the guest exports a function named name.
func (i *Instance) Has(name string) bool {
	return i.mod.ExportedFunction(name) != nil
}

// Call invokes an exported guest function.
func (i *Instance) Call(ctx context.Context, name string, args ...uint64) ([]uint64, error) {
	fn := i.mod.ExportedFunction(name)
	if fn == nil {
		return nil, errors.NotFound(errors.PhaseRuntime, "export", name)
	}
	res, err := fn.Call(ctx, args...)
	if err != nil {
		return nil, errors.New(errors.PhaseRuntime, errors.KindCrash).
			Path(name).
			Cause(err).
			Detail("guest call failed").
			Build()
	}
	return res, nil
}

// Init calls the guest's init.
func (i *Instance) Init(ctx context.Context) error {
	_, err := i.Call(ctx, ExportInit)
	return err
}

// Draw calls the guest's draw with dt seconds.
func (i *Instance) Draw(ctx context.Context, dt float32) error {
	_, err := i.Call(ctx, ExportDraw, api.EncodeF32(dt))
	return err
}

// WindowHandle returns the address of the guest's My_Window.
func (i *Instance) WindowHandle(ctx context.Context) (uint32, error) {
	res, err := i.Call(ctx, ExportWindowHandle)
	if err != nil {
		return 0, err
	}
	return api.DecodeU32(res[0]), nil
}

// SetWindowSize stores w and h into the guest window's bounds.
func (i *Instance) SetWindowSize(ctx context.Context, w, h int32) error {
	ptr, err := i.WindowHandle(ctx)
	if err != nil {
		return err
	}
	mem := i.Memory()
	if err := layout.MyWindow.Store(mem, ptr, "bounds.w", w); err != nil {
		return err
	}
	return layout.MyWindow.Store(mem, ptr, "bounds.h", h)
}

// Window decodes the guest's My_Window.
func (i *Instance) Window(ctx context.Context) (*layout.Object, error) {
	ptr, err := i.WindowHandle(ctx)
	if err != nil {
		return nil, err
	}
	v, err := layout.MyWindow.Decode(i.Memory(), ptr)
	if err != nil {
		return nil, err
	}
	return v.(*layout.Object), nil
}

// Step applies the frame rule to a frame delta of dt seconds.
func (i *Instance) Step(ctx context.Context, dt float64) (FrameResult, error) {
	switch {
	case dt < DrawThreshold:
		if err := i.Draw(ctx, float32(dt)); err != nil {
			return FrameSkipped, err
		}
		return FrameDrawn, nil
	case dt >= LongFrameThreshold:
		i.logger.Warn("very long time between frames", zap.Float64("dt", dt))
		return FrameLong, nil
	default:
		return FrameSkipped, nil
	}
}

// Close releases the guest.
func (i *Instance) Close(ctx context.Context) error {
	i.rt.env.Release(i.mod)
	err := i.mod.Close(ctx)
	if cerr := i.compiled.Close(ctx); err == nil {
		err = cerr
	}
	return err
}
