package runtime

import (
	"bytes"
	"context"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wippyai/wasm-printnf/errors"
	"github.com/wippyai/wasm-printnf/host"
	"github.com/wippyai/wasm-printnf/internal/guestgen"
	"github.com/wippyai/wasm-printnf/layout"
)

func newDemo(t *testing.T, cfg *Config) (*Instance, *bytes.Buffer, *host.Recorder) {
	t.Helper()
	ctx := context.Background()
	out := &bytes.Buffer{}
	canvas := &host.Recorder{}
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.Env.Stdout = out
	cfg.Env.Canvas = canvas

	rt, err := New(ctx, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { rt.Close(ctx) })

	inst, err := rt.Load(ctx, guestgen.Demo())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	t.Cleanup(func() { inst.Close(ctx) })
	return inst, out, canvas
}

func TestInstance_Init(t *testing.T) {
	inst, out, canvas := newDemo(t, nil)
	if err := inst.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	if lines[0] != "Hello, world!" {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.HasPrefix(out.String(), "Hello, world!\nBG Color = Color_RGBa {\n    \"r\": 51,") {
		t.Errorf("output = %q", out.String())
	}
	if last := lines[len(lines)-1]; last != "r = 51, g = 51, b = 51, a = 255" {
		t.Errorf("last line = %q", last)
	}

	ops := canvas.Ops()
	if len(ops) != 1 || ops[0].Kind != host.OpClearBackground || ops[0].Color.CSS() != "rgba(51, 51, 51, 1)" {
		t.Errorf("ops = %+v", ops)
	}
}

func TestInstance_SetWindowSize(t *testing.T) {
	inst, _, _ := newDemo(t, nil)
	ctx := context.Background()

	if err := inst.SetWindowSize(ctx, 1440, 810); err != nil {
		t.Fatalf("SetWindowSize: %v", err)
	}
	win, err := inst.Window(ctx)
	if err != nil {
		t.Fatal(err)
	}
	title, _ := win.Get("title")
	if title != "Foo, Bar" {
		t.Errorf("title = %v", title)
	}
	bounds, _ := win.Get("bounds")
	w, _ := bounds.(*layout.Object).Get("w")
	if w != int32(1440) {
		t.Errorf("bounds.w = %v", w)
	}
}

func TestInstance_Step(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	inst, _, canvas := newDemo(t, &Config{Logger: zap.New(core)})
	ctx := context.Background()

	tests := []struct {
		dt   float64
		want FrameResult
		ops  int
	}{
		{0.016, FrameDrawn, 3},
		{0.5, FrameSkipped, 0},
		{12, FrameLong, 0},
	}
	for _, tt := range tests {
		got, err := inst.Step(ctx, tt.dt)
		if err != nil {
			t.Fatalf("Step(%v): %v", tt.dt, err)
		}
		if got != tt.want {
			t.Errorf("Step(%v) = %v, want %v", tt.dt, got, tt.want)
		}
		if n := len(canvas.Take()); n != tt.ops {
			t.Errorf("Step(%v) recorded %d ops, want %d", tt.dt, n, tt.ops)
		}
	}
	if logs.Len() != 1 {
		t.Errorf("logged %d warnings, want 1", logs.Len())
	}
}

func TestInstance_Draw(t *testing.T) {
	inst, _, canvas := newDemo(t, nil)
	if err := inst.Draw(context.Background(), 0.01); err != nil {
		t.Fatal(err)
	}
	ops := canvas.Ops()
	if len(ops) != 3 {
		t.Fatalf("ops = %+v", ops)
	}
	r := ops[2].Rect
	if ops[2].Kind != host.OpFillRect || r.X != 670 || r.Y != 355 || r.W != 100 || r.H != 100 {
		t.Errorf("rect op = %+v", ops[2])
	}
	if ops[2].Color != (host.Color{R: 255, A: 255}) {
		t.Errorf("fill = %+v", ops[2].Color)
	}
}

func TestInstance_Errors(t *testing.T) {
	inst, _, _ := newDemo(t, nil)
	ctx := context.Background()

	if _, err := inst.Call(ctx, "missing"); !stderrors.Is(err, errors.ErrNotFound) {
		t.Errorf("missing export err = %v", err)
	}
	if !inst.Has("draw") || inst.Has("main") {
		t.Error("Has reports wrong exports")
	}

	heap, err := inst.Heap()
	if err != nil {
		t.Fatal(err)
	}
	if heap.Base() != guestgen.DemoHeapBase {
		t.Errorf("heap base = %d", heap.Base())
	}
}

func TestRuntime_LoadErrors(t *testing.T) {
	ctx := context.Background()
	rt, err := New(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer rt.Close(ctx)

	if _, err := rt.Load(ctx, []byte("not wasm")); err == nil {
		t.Error("expected compile error")
	}

	noMemory := guestgen.New("env").Const("init", 0).MustBuild()
	if _, err := rt.Load(ctx, noMemory); !stderrors.Is(err, errors.ErrNotFound) {
		t.Errorf("guest without memory err = %v", err)
	}

	crashing := guestgen.New("env").
		Import("js_crash", []api.ValueType{api.ValueTypeI32}, []api.ValueType{api.ValueTypeI32}).
		Calls("init", nil, guestgen.Call{Import: "js_crash", Args: []int32{16}}).
		Memory(1).
		Data(16, []byte("boom\x00")).
		MustBuild()
	inst, err := rt.Load(ctx, crashing)
	if err != nil {
		t.Fatal(err)
	}
	defer inst.Close(ctx)
	if err := inst.Init(ctx); !stderrors.Is(err, errors.ErrCrash) {
		t.Errorf("crash err = %v", err)
	}
}
