package host

import (
	"strconv"
	"sync"
)

// Color is an 8-bit RGBA color as laid out by Color_RGBa.
type Color struct {
	R, G, B, A uint8
}

// CSS returns the color as a CSS rgba() value.
func (c Color) CSS() string {
	alpha := strconv.FormatFloat(float64(c.A)/255, 'f', -1, 64)
	return "rgba(" + strconv.Itoa(int(c.R)) + ", " + strconv.Itoa(int(c.G)) + ", " +
		strconv.Itoa(int(c.B)) + ", " + alpha + ")"
}

// Rect is a rectangle as laid out by Rect.
type Rect struct {
	X, Y float32
	W, H int32
}

// Canvas receives the guest's drawing calls.
type Canvas interface {
	SetFill(c Color)
	ClearBackground(c Color)
	Clear()
	FillRect(r Rect)
}

// OpKind identifies a recorded canvas call.
type OpKind uint8

const (
	OpSetFill OpKind = iota + 1
	OpClearBackground
	OpClear
	OpFillRect
)

func (k OpKind) String() string {
	switch k {
	case OpSetFill:
		return "set_fill"
	case OpClearBackground:
		return "clear_background"
	case OpClear:
		return "clear"
	case OpFillRect:
		return "fill_rect"
	}
	return "unknown"
}

// Op is one recorded canvas call. Fill carries the fill color in effect.
type Op struct {
	Rect  Rect
	Color Color
	Kind  OpKind
}

// Recorder is a Canvas that records calls for later replay.
type Recorder struct {
	ops  []Op
	fill Color
	mu   sync.Mutex
}

var _ Canvas = (*Recorder)(nil)

func (r *Recorder) SetFill(c Color) {
	r.mu.Lock()
	r.fill = c
	r.ops = append(r.ops, Op{Kind: OpSetFill, Color: c})
	r.mu.Unlock()
}

func (r *Recorder) ClearBackground(c Color) {
	r.mu.Lock()
	r.ops = append(r.ops, Op{Kind: OpClearBackground, Color: c})
	r.mu.Unlock()
}

func (r *Recorder) Clear() {
	r.mu.Lock()
	r.ops = append(r.ops, Op{Kind: OpClear})
	r.mu.Unlock()
}

func (r *Recorder) FillRect(rect Rect) {
	r.mu.Lock()
	r.ops = append(r.ops, Op{Kind: OpFillRect, Rect: rect, Color: r.fill})
	r.mu.Unlock()
}

// Ops returns a copy of the recorded calls.
func (r *Recorder) Ops() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Op(nil), r.ops...)
}

// Take returns the recorded calls and clears the recording.
func (r *Recorder) Take() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	ops := r.ops
	r.ops = nil
	return ops
}
