// Package encoder serializes typed format arguments into a byte arena.
//
// For every specifier of a format string the encoder appends the argument's
// raw bytes to the arena and records the offset where they start. The
// finished Message goes to a Sink, which re-scans the format and reads each
// slot back by offset. Offsets survive arena growth where addresses would not.
//
// An Encoder owns its buffers and is not safe for concurrent use. Use Pool or
// Locked to share encoding across goroutines.
package encoder

import (
	stderrors "errors"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-printnf/arena"
	"github.com/wippyai/wasm-printnf/errors"
	"github.com/wippyai/wasm-printnf/format"
)

// Option configures an Encoder.
type Option func(*Encoder)

// WithSink sets the consumer of encoded messages.
func WithSink(s Sink) Option {
	return func(e *Encoder) { e.sink = s }
}

// WithStrict makes every failure log and then panic with the *errors.Error.
func WithStrict(strict bool) Option {
	return func(e *Encoder) { e.strict = strict }
}

// WithLogger overrides the package logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Encoder) { e.logger = l }
}

// WithLimit caps the arena and the reference list at limit elements each.
// 0 means unbounded.
func WithLimit(limit int) Option {
	return func(e *Encoder) {
		e.arena.SetLimit(limit)
		e.refs.SetLimit(limit)
	}
}

// Encoder turns a format string and typed arguments into a Message.
type Encoder struct {
	arena  *arena.Bytes
	refs   *arena.Buffer[uint32]
	sink   Sink
	logger *zap.Logger
	scan   format.Scanner
	strict bool
	busy   bool
}

// New creates an encoder with empty buffers.
func New(opts ...Option) *Encoder {
	e := &Encoder{
		arena: arena.NewBytes(0, nil),
		refs:  arena.NewBuffer[uint32](0),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = Logger()
	}
	return e
}

// ArenaCap returns the arena's current capacity in bytes.
func (e *Encoder) ArenaCap() int { return e.arena.Cap() }

// ArenaGrows returns how many times the arena has been reallocated.
func (e *Encoder) ArenaGrows() int { return e.arena.Grows() }

// Printf encodes and delivers, discarding the message.
func (e *Encoder) Printf(src string, args ...Arg) error {
	_, err := e.Encode(src, args...)
	return err
}

// Encode serializes args against src and hands the result to the sink, if
// one is configured. The returned Message aliases the encoder's buffers.
func (e *Encoder) Encode(src string, args ...Arg) (Message, error) {
	if e.busy {
		return Message{}, e.fail(src, errors.Reentrant(errors.PhaseEncode))
	}
	e.busy = true
	defer func() { e.busy = false }()

	e.arena.Reset()
	e.refs.Reset()

	total := 0
	for _, a := range args {
		total += a.size()
	}
	if err := e.arena.EnsureCapacity(total); err != nil {
		// A malformed format is reported ahead of the allocation failure.
		if scanErr := e.check(src); scanErr != nil {
			err = scanErr
		}
		return Message{}, e.fail(src, err)
	}

	if err := e.encode(src, args); err != nil {
		return Message{}, e.fail(src, err)
	}

	msg := Message{Format: src, Arena: e.arena.Items(), Refs: e.refs.Items()}
	if e.sink != nil {
		if err := e.sink.Deliver(msg); err != nil {
			return msg, err
		}
	}
	return msg, nil
}

// check scans src without encoding anything.
func (e *Encoder) check(src string) error {
	e.scan.Reset(src)
	for e.scan.Next() {
	}
	return e.scan.Err()
}

func (e *Encoder) encode(src string, args []Arg) error {
	e.scan.Reset(src)
	next := 0
	for e.scan.Next() {
		tok := e.scan.Token()
		if tok.Kind != format.TokenSpec {
			continue
		}
		if next >= len(args) {
			return errors.ArgumentCount(errors.PhaseEncode, countSpecs(src), len(args))
		}
		start := uint32(e.arena.Len())
		if err := e.encodeArg(tok, next, args[next]); err != nil {
			return err
		}
		if err := e.refs.Append(start); err != nil {
			return err
		}
		next++
	}
	if err := e.scan.Err(); err != nil {
		return err
	}
	if next != len(args) {
		return errors.ArgumentCount(errors.PhaseEncode, next, len(args))
	}
	return nil
}

func (e *Encoder) encodeArg(tok format.Token, index int, a Arg) error {
	v := tok.Verb
	switch {
	case v == format.VerbString:
		switch a.kind {
		case ArgString:
			return e.arena.AppendCString(a.str, false)
		case ArgNullString:
			return e.arena.AppendTerminator()
		}
	case v == format.VerbByte || v == format.VerbChar:
		if isInteger(a.kind) {
			return e.arena.AppendByte(byte(a.bits))
		}
	case v.IsInteger():
		if isInteger(a.kind) {
			return e.arena.AppendU32(a.bits)
		}
	case v.IsFloat():
		if a.kind == ArgFloat {
			return e.arena.AppendU32(a.bits)
		}
	case v == format.VerbStruct:
		if a.kind == ArgPointer {
			return e.arena.AppendU32(a.bits)
		}
		if a.kind == ArgStruct {
			name := strings.TrimSpace(tok.Name)
			if name != "" && a.str != "" && !strings.EqualFold(name, a.str) {
				return errors.TypeMismatch(errors.PhaseEncode, index, byte(v), "struct "+a.str+" for "+name)
			}
			return e.arena.AppendU32(a.bits)
		}
	case v == format.VerbPointer:
		if a.kind == ArgPointer || a.kind == ArgStruct {
			return e.arena.AppendU32(a.bits)
		}
	}
	return errors.TypeMismatch(errors.PhaseEncode, index, byte(v), a.kind.String())
}

func (e *Encoder) fail(src string, err error) error {
	var ee *errors.Error
	if !stderrors.As(err, &ee) {
		ee = errors.Wrap(errors.PhaseEncode, errors.KindInvalidInput, err, "encode failed")
	}
	fields := []zap.Field{zap.String("format", src), zap.String("kind", string(ee.Kind))}
	if ee.Pos >= 0 {
		fields = append(fields, zap.Int("pos", ee.Pos))
	}
	if ee.Kind == errors.KindUnterminatedStruct || e.strict {
		e.logger.Error(ee.Detail, fields...)
	} else {
		e.logger.Debug(ee.Detail, fields...)
	}
	if e.strict {
		panic(ee)
	}
	return ee
}

func isInteger(k ArgKind) bool {
	switch k {
	case ArgByte, ArgChar, ArgSigned, ArgUnsigned:
		return true
	}
	return false
}

// countSpecs counts the specifiers of src that scan cleanly.
func countSpecs(src string) int {
	n := 0
	s := format.NewScanner(src)
	for s.Next() {
		if s.Token().Kind == format.TokenSpec {
			n++
		}
	}
	return n
}
