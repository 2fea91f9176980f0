package memory

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	printnf "github.com/wippyai/wasm-printnf"
	"github.com/wippyai/wasm-printnf/errors"
)

// HeapAlign is the alignment of every heap block.
const HeapAlign = 4

var _ printnf.Allocator = (*Heap)(nil)

type block struct {
	ptr    uint32
	size   uint32
	unused bool
}

// Heap is a bump allocator over [base, end) of guest memory. Once the bump
// region is exhausted it reuses freed blocks first-fit by address. Every
// returned block is zero-filled.
//
// Heap is not safe for concurrent use; a guest calls into it from one thread.
type Heap struct {
	mem    printnf.Memory
	logger *zap.Logger
	blocks map[uint32]*block
	order  []uint32 // block pointers in ascending order
	base   uint32
	end    uint32
	index  uint32
}

// NewHeap creates a heap serving [base, end) of mem.
func NewHeap(mem printnf.Memory, base, end uint32) *Heap {
	base = alignUp(base)
	if base < HeapAlign {
		// Zero is the NULL pointer; never hand it out.
		base = HeapAlign
	}
	return &Heap{
		mem:    mem,
		logger: Logger(),
		blocks: make(map[uint32]*block),
		base:   base,
		end:    end,
		index:  base,
	}
}

// SetLogger overrides the package logger for this heap.
func (h *Heap) SetLogger(l *zap.Logger) { h.logger = l }

// Base returns the first address of the heap.
func (h *Heap) Base() uint32 { return h.base }

// Size returns end - base.
func (h *Heap) Size() uint32 { return h.end - h.base }

// Unused returns the bytes left in the bump region.
func (h *Heap) Unused() uint32 { return h.end - h.index }

// BlockSize returns the size of the live block at ptr.
func (h *Heap) BlockSize(ptr uint32) (uint32, bool) {
	b, ok := h.blocks[ptr]
	if !ok || b.unused {
		return 0, false
	}
	return b.size, true
}

// Malloc returns a zeroed block of at least size bytes.
func (h *Heap) Malloc(size uint32) (uint32, error) {
	size = alignUp(size)
	h.logger.Debug("malloc", zap.Uint32("size", size))

	if size > h.Unused() {
		return h.reuse(size)
	}
	ptr := h.index
	h.index += size
	h.insert(&block{ptr: ptr, size: size})
	if err := h.zero(ptr, size); err != nil {
		return 0, err
	}
	return ptr, nil
}

func (h *Heap) reuse(size uint32) (uint32, error) {
	for _, p := range h.order {
		b := h.blocks[p]
		if !b.unused || b.size < size {
			continue
		}
		b.unused = false
		if b.size > size*2 {
			rest := &block{ptr: b.ptr + size, size: b.size - size, unused: true}
			b.size = size
			h.insert(rest)
		}
		if err := h.zero(b.ptr, b.size); err != nil {
			return 0, err
		}
		return b.ptr, nil
	}
	return 0, errors.New(errors.PhaseMemory, errors.KindAllocation).
		Detail("out of memory: no free block of %d bytes", size).
		Value(size).
		Build()
}

// Realloc moves the block at ptr to a new block of size bytes, copying
// min(old, new) bytes, and frees the old block. A zero ptr behaves as Malloc.
func (h *Heap) Realloc(ptr, size uint32) (uint32, error) {
	if ptr == 0 {
		return h.Malloc(size)
	}
	old, ok := h.blocks[ptr]
	if !ok || old.unused {
		return 0, errors.NotFound(errors.PhaseMemory, "heap block", fmt.Sprintf("%#x", ptr))
	}
	oldSize := old.size

	// The old block stays live until the copy is done.
	newPtr, err := h.Malloc(size)
	if err != nil {
		return 0, errors.Wrap(errors.PhaseMemory, errors.KindAllocation, err, "failed to reallocate an existing block")
	}
	n := min(oldSize, alignUp(size))
	data, err := h.mem.Read(ptr, n)
	if err != nil {
		return 0, err
	}
	if err := h.mem.Write(newPtr, append([]byte(nil), data...)); err != nil {
		return 0, err
	}
	old.unused = true
	return newPtr, nil
}

// Free marks the block at ptr as reusable. Freeing NULL is logged and ignored.
func (h *Heap) Free(ptr uint32) error {
	if ptr == 0 {
		h.logger.Error("attempting to free NULL pointer")
		return nil
	}
	b, ok := h.blocks[ptr]
	if !ok {
		return errors.NotFound(errors.PhaseMemory, "heap block", fmt.Sprintf("%#x", ptr))
	}
	b.unused = true
	return nil
}

func (h *Heap) insert(b *block) {
	h.blocks[b.ptr] = b
	i := sort.Search(len(h.order), func(i int) bool { return h.order[i] >= b.ptr })
	h.order = append(h.order, 0)
	copy(h.order[i+1:], h.order[i:])
	h.order[i] = b.ptr
}

func (h *Heap) zero(ptr, size uint32) error {
	if size == 0 {
		return nil
	}
	return h.mem.Write(ptr, make([]byte, size))
}

func alignUp(n uint32) uint32 {
	return (n + HeapAlign - 1) &^ (HeapAlign - 1)
}
