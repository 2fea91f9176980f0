package render

import (
	"bytes"
	stderrors "errors"
	"math"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wippyai/wasm-printnf/encoder"
	"github.com/wippyai/wasm-printnf/errors"
	"github.com/wippyai/wasm-printnf/memory"
)

func renderArgs(t *testing.T, r *Renderer, format string, args ...encoder.Arg) string {
	t.Helper()
	msg, err := encoder.New().Encode(format, args...)
	if err != nil {
		t.Fatalf("encode %q: %v", format, err)
	}
	out, err := r.RenderMessage(msg)
	if err != nil {
		t.Fatalf("render %q: %v", format, err)
	}
	return out
}

func TestRender_Verbs(t *testing.T) {
	tests := []struct {
		name   string
		format string
		want   string
		args   []encoder.Arg
	}{
		{"literal", "Hello, World!", "Hello, World!", nil},
		{"percent", "100%%", "100%", nil},
		{"string", "<%s>", "<abc>", []encoder.Arg{encoder.String("abc")}},
		{"null string", "<%s>", "<>", []encoder.Arg{encoder.Null()}},
		{"byte", "%b", "200", []encoder.Arg{encoder.Byte(200)}},
		{"char", "%c%c", "Hi", []encoder.Arg{encoder.Char('H'), encoder.Char('i')}},
		{"unsigned", "%u", "4294967295", []encoder.Arg{encoder.Uint(math.MaxUint32)}},
		{"signed", "%i %d", "-1 42", []encoder.Arg{encoder.Int(-1), encoder.Int(42)}},
		{"float", "%f %F", "1.5 -0.25", []encoder.Arg{encoder.Float(1.5), encoder.Float(-0.25)}},
		{"exp", "%e %E", "1.5e+0 1.25E+2", []encoder.Arg{encoder.Float(1.5), encoder.Float(125)}},
		{"pointer", "%p", "0x1f", []encoder.Arg{encoder.Pointer(31)}},
		{"anonymous struct", "%{ }", "4096", []encoder.Arg{encoder.Pointer(4096)}},
		{"mixed", "r = %b, g = %b, name = %s", "r = 1, g = 2, name = rgb",
			[]encoder.Arg{encoder.Byte(1), encoder.Byte(2), encoder.String("rgb")}},
	}

	r := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := renderArgs(t, r, tt.format, tt.args...); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRender_UnknownStruct(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	r := New(WithLogger(zap.New(core)))

	got := renderArgs(t, r, "%{Nope}", encoder.Pointer(0x40))
	if got != "0x40" {
		t.Errorf("got %q", got)
	}
	if logs.Len() != 1 {
		t.Errorf("logged %d warnings, want 1", logs.Len())
	}
}

func TestRender_StructWithoutMemory(t *testing.T) {
	got := renderArgs(t, New(), "%{rect}", encoder.Struct("Rect", 0x20))
	if got != "Rect 0x20" {
		t.Errorf("got %q", got)
	}
}

func TestRender_StructFromMemory(t *testing.T) {
	mem := make(memory.Slice, 64)
	mem[16], mem[17], mem[18], mem[19] = 255, 128, 0, 255

	r := New(WithMemory(mem))
	got := renderArgs(t, r, "color: %{Color_RGBa}", encoder.Struct("Color_RGBa", 16))
	want := "color: Color_RGBa {\n    \"r\": 255,\n    \"g\": 128,\n    \"b\": 0,\n    \"a\": 255\n}"
	if got != want {
		t.Errorf("got %q\nwant %q", got, want)
	}

	msg, err := encoder.New().Encode("%{Rect}", encoder.Pointer(62))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.RenderMessage(msg); !stderrors.Is(err, errors.ErrOutOfBounds) {
		t.Errorf("decode past end err = %v", err)
	}
}

func TestRender_GuestSlots(t *testing.T) {
	mem := make(memory.Slice, 64)
	copy(mem[0:], "hello\x00")
	_ = mem.WriteU32(8, 7)
	mem[12] = 'Z'
	copy(mem[13:], "tail")

	r := New(WithMemory(mem))
	slots := GuestSlots{Mem: mem, Addrs: []uint32{0, 8, 12, 13}}
	got, err := r.Render("%s %u %c %s", slots)
	if err != nil {
		t.Fatal(err)
	}
	if got != "hello 7 Z tail" {
		t.Errorf("got %q", got)
	}
}

func TestRender_Errors(t *testing.T) {
	r := New()

	_, err := r.Render("%d %d", GuestSlots{Mem: make(memory.Slice, 8), Addrs: []uint32{0}})
	if !stderrors.Is(err, errors.ErrArgumentCount) {
		t.Errorf("missing slot err = %v", err)
	}

	_, err = r.Render("%u", GuestSlots{Mem: make(memory.Slice, 8), Addrs: []uint32{6}})
	if !stderrors.Is(err, errors.ErrOutOfBounds) {
		t.Errorf("short slot err = %v", err)
	}

	core, logs := observer.New(zap.ErrorLevel)
	r = New(WithLogger(zap.New(core)))
	_, err = r.Render("%{Rect", GuestSlots{})
	if !stderrors.Is(err, errors.ErrUnterminatedStruct) {
		t.Errorf("unterminated err = %v", err)
	}
	if logs.Len() != 1 {
		t.Errorf("logged %d errors, want 1", logs.Len())
	}
}

func TestTextSink(t *testing.T) {
	var buf bytes.Buffer
	enc := encoder.New(encoder.WithSink(NewTextSink(&buf, nil)))
	if err := enc.Printf("%s=%d", encoder.String("x"), encoder.Int(3)); err != nil {
		t.Fatal(err)
	}
	if err := enc.Printf("done"); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "x=3\ndone\n" {
		t.Errorf("output = %q", got)
	}
}

func TestLogSink(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	enc := encoder.New(encoder.WithSink(NewLogSink(zap.New(core), zapcore.InfoLevel, nil)))
	if err := enc.Printf("frame %u", encoder.Uint(9)); err != nil {
		t.Fatal(err)
	}
	entries := logs.All()
	if len(entries) != 1 || entries[0].Message != "frame 9" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestRender_LongString(t *testing.T) {
	long := strings.Repeat("ab", 1000)
	if got := renderArgs(t, New(), "%s|%u", encoder.String(long), encoder.Uint(5)); got != long+"|5" {
		t.Errorf("got %d bytes", len(got))
	}
}
