package arena

import (
	stderrors "errors"
	"testing"

	"github.com/wippyai/wasm-printnf/errors"
)

func TestBuffer_FirstGrowthJumpsTo512(t *testing.T) {
	var b Buffer[uint32]
	if b.Cap() != 0 {
		t.Fatalf("Cap() = %d, want 0", b.Cap())
	}
	if err := b.Append(1); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if b.Cap() != MinGrowth {
		t.Errorf("Cap() = %d, want %d", b.Cap(), MinGrowth)
	}
	if b.Len() != 1 {
		t.Errorf("Len() = %d, want 1", b.Len())
	}
}

func TestBuffer_Doubling(t *testing.T) {
	var b Buffer[byte]
	for i := 0; i < MinGrowth+1; i++ {
		if err := b.Append(byte(i)); err != nil {
			t.Fatalf("Append(%d) failed: %v", i, err)
		}
	}
	if b.Cap() != 2*MinGrowth {
		t.Errorf("Cap() = %d, want %d", b.Cap(), 2*MinGrowth)
	}
	if b.Grows() != 2 {
		t.Errorf("Grows() = %d, want 2", b.Grows())
	}
}

func TestBuffer_ContentSurvivesGrowth(t *testing.T) {
	var b Buffer[byte]
	total := 4*MinGrowth + 17
	for i := 0; i < total; i++ {
		if err := b.Append(byte(i * 7)); err != nil {
			t.Fatalf("Append(%d) failed: %v", i, err)
		}
	}
	if b.Grows() < 2 {
		t.Fatalf("expected at least two reallocations, got %d", b.Grows())
	}
	for i := 0; i < total; i++ {
		if got := b.At(i); got != byte(i*7) {
			t.Fatalf("At(%d) = %d, want %d", i, got, byte(i*7))
		}
	}
}

func TestBuffer_ResetKeepsCapacity(t *testing.T) {
	var b Buffer[int]
	for i := 0; i < 600; i++ {
		_ = b.Append(i)
	}
	capBefore := b.Cap()
	b.Reset()
	if b.Len() != 0 {
		t.Errorf("Len() = %d after Reset, want 0", b.Len())
	}
	if b.Cap() != capBefore {
		t.Errorf("Cap() = %d after Reset, want %d", b.Cap(), capBefore)
	}
	grows := b.Grows()
	for i := 0; i < 600; i++ {
		_ = b.Append(i)
	}
	if b.Grows() != grows {
		t.Errorf("refill after Reset reallocated: grows %d -> %d", grows, b.Grows())
	}
}

func TestBuffer_EnsureCapacity(t *testing.T) {
	var b Buffer[byte]
	if err := b.EnsureCapacity(1500); err != nil {
		t.Fatalf("EnsureCapacity failed: %v", err)
	}
	if b.Cap() != 2048 {
		t.Errorf("Cap() = %d, want 2048", b.Cap())
	}
	grows := b.Grows()
	for i := 0; i < 1500; i++ {
		_ = b.Append(1)
	}
	if b.Grows() != grows {
		t.Errorf("appends within ensured capacity reallocated")
	}
	if err := b.EnsureCapacity(0); err != nil {
		t.Errorf("EnsureCapacity(0) failed: %v", err)
	}
}

func TestBuffer_Limit(t *testing.T) {
	b := NewBuffer[byte](600)
	for i := 0; i < 600; i++ {
		if err := b.Append(byte(i)); err != nil {
			t.Fatalf("Append(%d) within limit failed: %v", i, err)
		}
	}
	if b.Cap() != 600 {
		t.Errorf("Cap() = %d, want capped 600", b.Cap())
	}
	err := b.Append(0)
	if err == nil {
		t.Fatal("expected allocation failure past limit")
	}
	if !stderrors.Is(err, errors.ErrAllocation) {
		t.Errorf("expected ErrAllocation, got %v", err)
	}
	if b.Len() != 600 {
		t.Errorf("failed append changed Len to %d", b.Len())
	}
}

func TestBuffer_SpareAdvance(t *testing.T) {
	var b Buffer[byte]
	_ = b.EnsureCapacity(4)
	spare := b.Spare()
	if len(spare) < 4 {
		t.Fatalf("Spare() len = %d, want >= 4", len(spare))
	}
	copy(spare, "abcd")
	b.Advance(3)
	if got := string(b.Items()); got != "abc" {
		t.Errorf("Items() = %q, want %q", got, "abc")
	}
}

func TestBuffer_AppendSlice(t *testing.T) {
	var b Buffer[uint32]
	if err := b.AppendSlice(1, 2, 3); err != nil {
		t.Fatalf("AppendSlice failed: %v", err)
	}
	if b.Len() != 3 || b.At(2) != 3 {
		t.Errorf("Items() = %v", b.Items())
	}
}
