// Package render turns encoded messages back into text.
//
// The renderer re-scans the format string with the same scanner the encoder
// used and reads one slot per specifier. Numbers are written through
// numtext into an arena.Bytes builder; %{NAME} pointers are decoded with the
// layout registry and printed as indented JSON.
package render

import (
	"encoding/binary"
	stderrors "errors"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	printnf "github.com/wippyai/wasm-printnf"
	"github.com/wippyai/wasm-printnf/arena"
	"github.com/wippyai/wasm-printnf/encoder"
	"github.com/wippyai/wasm-printnf/errors"
	"github.com/wippyai/wasm-printnf/format"
	"github.com/wippyai/wasm-printnf/layout"
	"github.com/wippyai/wasm-printnf/numtext"
)

// Option configures a Renderer.
type Option func(*Renderer)

// WithRegistry sets the struct layouts used for %{NAME}.
func WithRegistry(reg *layout.Registry) Option {
	return func(r *Renderer) { r.registry = reg }
}

// WithMemory sets the guest memory that %{NAME} pointers refer to.
func WithMemory(mem printnf.Memory) Option {
	return func(r *Renderer) { r.mem = mem }
}

// WithLogger overrides the package logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Renderer) { r.logger = l }
}

// Renderer formats messages. It keeps a reusable text builder and is not safe
// for concurrent use.
type Renderer struct {
	registry *layout.Registry
	mem      printnf.Memory
	logger   *zap.Logger
	out      *arena.Bytes
	scan     format.Scanner
}

// New creates a renderer. Without WithRegistry it uses layout.DefaultRegistry.
func New(opts ...Option) *Renderer {
	r := &Renderer{out: arena.NewBytes(0, numtext.Writer{})}
	for _, opt := range opts {
		opt(r)
	}
	if r.registry == nil {
		r.registry = layout.DefaultRegistry()
	}
	if r.logger == nil {
		r.logger = Logger()
	}
	return r
}

// Registry returns the renderer's struct layouts.
func (r *Renderer) Registry() *layout.Registry { return r.registry }

// SetMemory replaces the guest memory used for %{NAME}.
func (r *Renderer) SetMemory(mem printnf.Memory) { r.mem = mem }

// RenderMessage renders an encoded message.
func (r *Renderer) RenderMessage(msg encoder.Message) (string, error) {
	return r.Render(msg.Format, ArenaSlots{Msg: msg})
}

// Render formats src, taking one slot per specifier.
func (r *Renderer) Render(src string, slots Slots) (string, error) {
	r.out.Reset()
	r.scan.Reset(src)
	next := 0
	for r.scan.Next() {
		tok := r.scan.Token()
		var err error
		switch tok.Kind {
		case format.TokenText:
			err = r.out.AppendRaw([]byte(tok.Text)...)
		case format.TokenPercent:
			err = r.out.AppendByte('%')
		case format.TokenSpec:
			if next >= slots.Len() {
				return "", errors.New(errors.PhaseRender, errors.KindArgumentCount).
					Pos(tok.Pos).
					Detail("insufficient arguments for %s", tok.Text).
					Build()
			}
			err = r.spec(tok, next, slots)
			next++
		}
		if err != nil {
			return "", err
		}
	}
	if err := r.scan.Err(); err != nil {
		var se *errors.Error
		if stderrors.As(err, &se) && se.Kind == errors.KindUnterminatedStruct {
			r.logger.Error("unclosed format braces, missing }", zap.String("format", src))
		}
		return "", err
	}
	return r.out.String(), nil
}

func (r *Renderer) spec(tok format.Token, i int, slots Slots) error {
	slot, err := slots.Slot(i, tok.Verb)
	if err != nil {
		return err
	}
	if w := tok.Verb.Width(); w > 0 && len(slot) < w {
		return errors.New(errors.PhaseRender, errors.KindOutOfBounds).
			Pos(tok.Pos).
			Detail("%s slot holds %d bytes, need %d", tok.Text, len(slot), w).
			Build()
	}

	switch tok.Verb {
	case format.VerbString:
		return r.out.AppendCString(string(slot), false)
	case format.VerbByte:
		return r.out.AppendEncodedUint(uint32(slot[0]))
	case format.VerbChar:
		return r.out.AppendRaw(utf8.AppendRune(nil, rune(slot[0]))...)
	case format.VerbUnsigned:
		return r.out.AppendEncodedUint(binary.LittleEndian.Uint32(slot))
	case format.VerbInt, format.VerbDecimal:
		return r.out.AppendEncodedInt(int32(binary.LittleEndian.Uint32(slot)))
	case format.VerbFloat, format.VerbFloatF:
		return r.out.AppendEncodedFloat(math.Float32frombits(binary.LittleEndian.Uint32(slot)))
	case format.VerbExp, format.VerbExpE:
		f := math.Float32frombits(binary.LittleEndian.Uint32(slot))
		return r.out.AppendCString(numtext.FormatExp(f, tok.Verb == format.VerbExpE), false)
	case format.VerbPointer:
		return r.out.AppendCString(hexPointer(binary.LittleEndian.Uint32(slot)), false)
	case format.VerbStruct:
		return r.structure(tok, binary.LittleEndian.Uint32(slot))
	}
	return errors.UnsupportedSpecifier(errors.PhaseRender, tok.Pos, byte(tok.Verb))
}

func (r *Renderer) structure(tok format.Token, ptr uint32) error {
	name := strings.TrimSpace(tok.Name)
	if name == "" {
		return r.out.AppendEncodedUint(ptr)
	}
	s, ok := r.registry.Lookup(name)
	if !ok {
		r.logger.Warn("unknown struct requested to be printed",
			zap.String("struct", name), zap.Uint32("ptr", ptr))
		return r.out.AppendCString(hexPointer(ptr), false)
	}
	if r.mem == nil {
		return r.out.AppendCString(s.Name+" "+hexPointer(ptr), false)
	}
	v, err := s.Decode(r.mem, ptr)
	if err != nil {
		return errors.New(errors.PhaseRender, errors.KindOutOfBounds).
			Pos(tok.Pos).
			Path(s.Name).
			Cause(err).
			Detail("cannot decode struct at %s", hexPointer(ptr)).
			Build()
	}
	text, err := layout.MarshalIndent(v)
	if err != nil {
		return err
	}
	if err := r.out.AppendCString(s.Name+" ", false); err != nil {
		return err
	}
	return r.out.AppendRaw(text...)
}

func hexPointer(p uint32) string {
	return "0x" + strconv.FormatUint(uint64(p), 16)
}
