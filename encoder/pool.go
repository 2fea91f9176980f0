package encoder

import "sync"

// DefaultPoolMaxArena is the largest arena a Pool keeps for reuse.
const DefaultPoolMaxArena = 64 << 10

// Pool hands out one Encoder per caller so concurrent goroutines never share
// buffers. Encoders whose arena grew past the cap are dropped on Put.
type Pool struct {
	pool     sync.Pool
	maxArena int
}

// NewPool creates a pool whose encoders are built with opts. maxArena <= 0
// selects DefaultPoolMaxArena.
func NewPool(maxArena int, opts ...Option) *Pool {
	if maxArena <= 0 {
		maxArena = DefaultPoolMaxArena
	}
	p := &Pool{maxArena: maxArena}
	p.pool.New = func() any {
		return New(opts...)
	}
	return p
}

// Get returns an idle encoder.
func (p *Pool) Get() *Encoder {
	return p.pool.Get().(*Encoder)
}

// Put returns e to the pool. Oversized or busy encoders are dropped.
func (p *Pool) Put(e *Encoder) {
	if e == nil || e.busy || e.arena.Cap() > p.maxArena {
		return
	}
	p.pool.Put(e)
}

// Printf encodes and delivers with a pooled encoder.
func (p *Pool) Printf(format string, args ...Arg) error {
	e := p.Get()
	defer p.Put(e)
	return e.Printf(format, args...)
}

// Locked serializes every encode-and-deliver sequence on one shared encoder.
// Its sink must not call back into the same Locked value.
type Locked struct {
	mu  sync.Mutex
	enc *Encoder
}

// NewLocked creates a Locked encoder built with opts.
func NewLocked(opts ...Option) *Locked {
	return &Locked{enc: New(opts...)}
}

// Printf encodes and delivers under the lock.
func (l *Locked) Printf(format string, args ...Arg) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enc.Printf(format, args...)
}

// Encode encodes and delivers under the lock and returns a copy of the
// message, since the shared buffers are reused once the lock is released.
func (l *Locked) Encode(format string, args ...Arg) (Message, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	msg, err := l.enc.Encode(format, args...)
	if err != nil {
		return Message{}, err
	}
	return msg.Clone(), nil
}
