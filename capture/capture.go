// Package capture moves encoded messages between processes as a stream of
// msgpack frames.
//
// A Writer is an encoder.Sink, so an encoder can write straight to a file or
// pipe. A Reader yields the frames back and Frame.Message rebuilds the
// encoder.Message a renderer consumes.
package capture

import (
	"encoding/hex"
	stderrors "errors"
	"io"
	"strconv"
	"sync"

	gojson "github.com/goccy/go-json"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/wippyai/wasm-printnf/encoder"
	"github.com/wippyai/wasm-printnf/errors"
)

// Frame is the wire form of one encoded message.
type Frame struct {
	Format string   `msgpack:"format" json:"format"`
	Arena  []byte   `msgpack:"arena" json:"-"`
	Refs   []uint32 `msgpack:"refs" json:"refs"`
}

// FromMessage copies m into a frame.
func FromMessage(m encoder.Message) Frame {
	c := m.Clone()
	return Frame{Format: c.Format, Arena: c.Arena, Refs: c.Refs}
}

// Message returns the frame as a message. It shares the frame's slices.
func (f Frame) Message() encoder.Message {
	return encoder.Message{Format: f.Format, Arena: f.Arena, Refs: f.Refs}
}

// Validate checks that the references are ascending offsets into the arena.
func (f Frame) Validate() error {
	var prev uint32
	for i, off := range f.Refs {
		if off > uint32(len(f.Arena)) || (i > 0 && off < prev) {
			return errors.New(errors.PhaseCapture, errors.KindOutOfBounds).
				Path("refs", strconv.Itoa(i)).
				Value(off).
				Detail("reference %d outside arena of %d bytes", off, len(f.Arena)).
				Build()
		}
		prev = off
	}
	return nil
}

type frameView struct {
	Format string   `json:"format"`
	Arena  string   `json:"arena"`
	Refs   []uint32 `json:"refs"`
	Slots  []string `json:"slots"`
}

// JSON returns an inspection view of the frame with the arena and each slot
// in hex.
func (f Frame) JSON() ([]byte, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	view := frameView{
		Format: f.Format,
		Arena:  hex.EncodeToString(f.Arena),
		Refs:   f.Refs,
		Slots:  make([]string, len(f.Refs)),
	}
	if view.Refs == nil {
		view.Refs = []uint32{}
	}
	msg := f.Message()
	for i := range f.Refs {
		view.Slots[i] = hex.EncodeToString(msg.Slot(i))
	}
	return gojson.Marshal(view)
}

// Writer appends frames to a stream. It is safe for concurrent use.
type Writer struct {
	enc *msgpack.Encoder
	mu  sync.Mutex
	n   int
}

var _ encoder.Sink = (*Writer)(nil)

// NewWriter returns a Writer encoding to w.
func NewWriter(w io.Writer) *Writer {
	enc := msgpack.NewEncoder(w)
	enc.UseCompactInts(true)
	return &Writer{enc: enc}
}

// Deliver writes m as one frame.
func (w *Writer) Deliver(m encoder.Message) error {
	return w.Write(Frame{Format: m.Format, Arena: m.Arena, Refs: m.Refs})
}

// Write encodes f.
func (w *Writer) Write(f Frame) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.enc.Encode(&f); err != nil {
		return errors.Wrap(errors.PhaseCapture, errors.KindInvalidInput, err, "failed to write frame")
	}
	w.n++
	return nil
}

// Frames returns how many frames have been written.
func (w *Writer) Frames() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.n
}

// Reader reads frames written by a Writer.
type Reader struct {
	dec *msgpack.Decoder
}

// NewReader returns a Reader decoding from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{dec: msgpack.NewDecoder(r)}
}

// Next returns the next frame, or io.EOF once the stream is exhausted.
func (r *Reader) Next() (Frame, error) {
	var f Frame
	if err := r.dec.Decode(&f); err != nil {
		if stderrors.Is(err, io.EOF) {
			return Frame{}, io.EOF
		}
		return Frame{}, errors.Wrap(errors.PhaseCapture, errors.KindInvalidInput, err, "failed to read frame")
	}
	if err := f.Validate(); err != nil {
		return Frame{}, err
	}
	return f, nil
}

// ReadAll returns every remaining frame.
func (r *Reader) ReadAll() ([]Frame, error) {
	var frames []Frame
	for {
		f, err := r.Next()
		if err == io.EOF {
			return frames, nil
		}
		if err != nil {
			return frames, err
		}
		frames = append(frames, f)
	}
}
