package encoder

// Message is one encoded call: the format string, the argument arena, and one
// arena offset per specifier in format order.
//
// Arena and Refs alias the encoder's buffers and are valid until the encoder
// is used again. Use Clone to keep a message past that point.
type Message struct {
	Format string
	Arena  []byte
	Refs   []uint32
}

// Len returns the number of references.
func (m Message) Len() int { return len(m.Refs) }

// Slot returns the bytes of reference i: from its offset up to the next
// reference, or to the end of the arena for the last one.
func (m Message) Slot(i int) []byte {
	start := m.Refs[i]
	end := uint32(len(m.Arena))
	if i+1 < len(m.Refs) {
		end = m.Refs[i+1]
	}
	return m.Arena[start:end]
}

// Resolve converts the offsets into absolute addresses for an arena copied to
// base. Call it only once the arena has reached its final location.
func (m Message) Resolve(base uint32) []uint32 {
	addrs := make([]uint32, len(m.Refs))
	for i, off := range m.Refs {
		addrs[i] = base + off
	}
	return addrs
}

// Clone returns a copy that does not alias any encoder buffer.
func (m Message) Clone() Message {
	return Message{
		Format: m.Format,
		Arena:  append([]byte(nil), m.Arena...),
		Refs:   append([]uint32(nil), m.Refs...),
	}
}

// Sink consumes encoded messages.
type Sink interface {
	Deliver(Message) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Message) error

// Deliver calls f(m).
func (f SinkFunc) Deliver(m Message) error { return f(m) }
