package arena

import (
	"github.com/wippyai/wasm-printnf/errors"
)

// MinGrowth is the capacity a buffer jumps to on its first growth.
const MinGrowth = 512

// Buffer is a contiguous, reallocating store of T that doubles on overflow.
//
// Growth preserves contents but may move them, so a slice obtained from Items
// or Spare is only valid until the next call that can grow the buffer. Indices
// stay valid until Reset.
type Buffer[T any] struct {
	items []T
	limit int
	grows int
}

// NewBuffer returns an empty buffer. A limit of 0 means unbounded.
func NewBuffer[T any](limit int) *Buffer[T] {
	return &Buffer[T]{limit: limit}
}

// SetLimit caps the capacity the buffer may grow to. 0 removes the cap.
func (b *Buffer[T]) SetLimit(limit int) {
	b.limit = limit
}

// Len returns the number of live elements.
func (b *Buffer[T]) Len() int { return len(b.items) }

// Cap returns the allocated element count.
func (b *Buffer[T]) Cap() int { return cap(b.items) }

// Grows returns how many times the storage has been reallocated.
func (b *Buffer[T]) Grows() int { return b.grows }

// At returns the element at index i.
func (b *Buffer[T]) At(i int) T { return b.items[i] }

// Items returns the live elements.
func (b *Buffer[T]) Items() []T { return b.items }

// Reset drops all elements and keeps the capacity.
func (b *Buffer[T]) Reset() {
	b.items = b.items[:0]
}

// Append adds one element, growing the storage when full.
func (b *Buffer[T]) Append(item T) error {
	if len(b.items) == cap(b.items) {
		if err := b.grow(len(b.items) + 1); err != nil {
			return err
		}
	}
	b.items = append(b.items, item)
	return nil
}

// AppendSlice adds all of items with at most one reallocation.
func (b *Buffer[T]) AppendSlice(items ...T) error {
	if err := b.EnsureCapacity(len(items)); err != nil {
		return err
	}
	b.items = append(b.items, items...)
	return nil
}

// EnsureCapacity grows the storage so that n more elements fit without
// another reallocation.
func (b *Buffer[T]) EnsureCapacity(n int) error {
	need := len(b.items) + n
	if need <= cap(b.items) {
		return nil
	}
	return b.grow(need)
}

// Spare returns the unused capacity past Len. Writers fill it in place and
// then call Advance.
func (b *Buffer[T]) Spare() []T {
	return b.items[len(b.items):cap(b.items)]
}

// Advance extends Len by n elements already written into Spare.
func (b *Buffer[T]) Advance(n int) {
	b.items = b.items[:len(b.items)+n]
}

func (b *Buffer[T]) grow(need int) error {
	newCap := cap(b.items)
	for newCap < need {
		newCap = max(newCap*2, MinGrowth)
	}
	if b.limit > 0 && newCap > b.limit {
		if need > b.limit {
			return errors.AllocationFailed(errors.PhaseEncode, need, b.limit)
		}
		newCap = b.limit
	}
	items := make([]T, len(b.items), newCap)
	copy(items, b.items)
	b.items = items
	b.grows++
	return nil
}
