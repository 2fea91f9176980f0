package memory

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/tetratelabs/wazero"

	printnf "github.com/wippyai/wasm-printnf"
	"github.com/wippyai/wasm-printnf/errors"
)

// memoryWASM is a minimal WASM module with 1 page of memory exported as "memory"
var memoryWASM = []byte{
	0x00, 0x61, 0x73, 0x6d, // magic
	0x01, 0x00, 0x00, 0x00, // version
	0x05, 0x03, 0x01, 0x00, 0x01, // memory section: 1 page, no max
	0x07, 0x0a, 0x01, // export section: 10 bytes, 1 export
	0x06, 0x6d, 0x65, 0x6d, 0x6f, 0x72, 0x79, // name: "memory"
	0x02, 0x00, // kind: memory, index 0
}

func newGuestMemory(t *testing.T) *Wrapper {
	t.Helper()
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	t.Cleanup(func() { rt.Close(ctx) })

	mod, err := rt.Instantiate(ctx, memoryWASM)
	if err != nil {
		t.Fatalf("failed to instantiate: %v", err)
	}
	mem := WrapMemory(mod.ExportedMemory("memory"))
	if mem == nil {
		t.Fatal("expected non-nil wrapped memory")
	}
	return mem
}

func TestWrapMemory_Nil(t *testing.T) {
	if mem := WrapMemory(nil); mem != nil {
		t.Error("expected nil for nil memory")
	}
}

func TestWrapper_ReadWrite(t *testing.T) {
	mem := newGuestMemory(t)

	if mem.Size() != 65536 {
		t.Errorf("Size() = %d, want 65536", mem.Size())
	}
	if err := mem.WriteU32(8, 0xdeadbeef); err != nil {
		t.Fatalf("WriteU32 failed: %v", err)
	}
	raw, err := mem.Read(8, 4)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if raw[0] != 0xef || raw[3] != 0xde {
		t.Errorf("not little-endian: %x", raw)
	}
	if err := mem.Write(100, []byte("hi\x00")); err != nil {
		t.Fatal(err)
	}
	s, err := printnf.ReadZString(mem, 100, 0)
	if err != nil || s != "hi" {
		t.Errorf("ReadZString = %q, %v", s, err)
	}
}

func TestWrapper_OutOfBounds(t *testing.T) {
	mem := newGuestMemory(t)

	if _, err := mem.Read(65535, 2); !stderrors.Is(err, errors.ErrOutOfBounds) {
		t.Errorf("Read err = %v", err)
	}
	if err := mem.WriteU64(65530, 1); !stderrors.Is(err, errors.ErrOutOfBounds) {
		t.Errorf("WriteU64 err = %v", err)
	}
	if _, err := printnf.ReadZString(mem, 70000, 0); !stderrors.Is(err, errors.ErrOutOfBounds) {
		t.Errorf("ReadZString err = %v", err)
	}
}

func TestSlice(t *testing.T) {
	mem := make(Slice, 16)
	if err := mem.WriteU16(0, 0x0102); err != nil {
		t.Fatal(err)
	}
	if mem[0] != 0x02 || mem[1] != 0x01 {
		t.Errorf("WriteU16 = %x", mem[:2])
	}
	if err := mem.WriteU64(8, 1<<40); err != nil {
		t.Fatal(err)
	}
	if v, _ := mem.ReadU64(8); v != 1<<40 {
		t.Errorf("ReadU64 = %d", v)
	}
	if _, err := mem.ReadU32(14); !stderrors.Is(err, errors.ErrOutOfBounds) {
		t.Errorf("ReadU32 past end err = %v", err)
	}

	copy(mem[4:], "abc")
	mem[7] = 'd'
	s, err := printnf.ReadZString(mem, 4, 0)
	if err != nil || s != "abcd" {
		t.Errorf("unterminated ReadZString = %q, %v", s, err)
	}
}
