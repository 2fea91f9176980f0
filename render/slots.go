package render

import (
	printnf "github.com/wippyai/wasm-printnf"
	"github.com/wippyai/wasm-printnf/encoder"
	"github.com/wippyai/wasm-printnf/errors"
	"github.com/wippyai/wasm-printnf/format"
)

// Slots yields the serialized argument for each specifier in turn.
type Slots interface {
	// Len returns the number of available slots.
	Len() int
	// Slot returns the bytes of slot i for a specifier with the given verb.
	// Fixed-width verbs need at least Verb.Width bytes; strings run to NUL
	// or to the end of the slot.
	Slot(i int, verb format.Verb) ([]byte, error)
}

// ArenaSlots reads slots from an encoded message.
type ArenaSlots struct {
	Msg encoder.Message
}

func (a ArenaSlots) Len() int { return a.Msg.Len() }

func (a ArenaSlots) Slot(i int, _ format.Verb) ([]byte, error) {
	return a.Msg.Slot(i), nil
}

// GuestSlots reads slots at absolute addresses in guest memory.
type GuestSlots struct {
	Mem   printnf.Memory
	Addrs []uint32
}

func (g GuestSlots) Len() int { return len(g.Addrs) }

func (g GuestSlots) Slot(i int, verb format.Verb) ([]byte, error) {
	addr := g.Addrs[i]
	if w := verb.Width(); w > 0 {
		return g.Mem.Read(addr, uint32(w))
	}
	limit := uint32(printnf.MaxZString)
	if i+1 < len(g.Addrs) && g.Addrs[i+1] > addr {
		limit = g.Addrs[i+1] - addr
	}
	if s, ok := g.Mem.(printnf.MemorySizer); ok {
		size := s.Size()
		if addr > size {
			return nil, errors.OutOfBounds(errors.PhaseRender, addr, 1)
		}
		limit = min(limit, size-addr)
	}
	return g.Mem.Read(addr, limit)
}
