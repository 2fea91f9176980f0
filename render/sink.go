package render

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/wasm-printnf/encoder"
)

var (
	_ encoder.Sink = (*TextSink)(nil)
	_ encoder.Sink = (*LogSink)(nil)
)

// TextSink renders each message as one line of w.
type TextSink struct {
	r *Renderer
	w io.Writer
}

// NewTextSink returns a sink writing to w. A nil renderer selects New().
func NewTextSink(w io.Writer, r *Renderer) *TextSink {
	if r == nil {
		r = New()
	}
	return &TextSink{r: r, w: w}
}

// Deliver implements encoder.Sink.
func (s *TextSink) Deliver(msg encoder.Message) error {
	line, err := s.r.RenderMessage(msg)
	if err != nil {
		return err
	}
	_, err = io.WriteString(s.w, line+"\n")
	return err
}

// LogSink renders each message as a log entry.
type LogSink struct {
	r     *Renderer
	l     *zap.Logger
	level zapcore.Level
}

// NewLogSink returns a sink logging at level through l.
func NewLogSink(l *zap.Logger, level zapcore.Level, r *Renderer) *LogSink {
	if r == nil {
		r = New()
	}
	return &LogSink{r: r, l: l, level: level}
}

// Deliver implements encoder.Sink.
func (s *LogSink) Deliver(msg encoder.Message) error {
	line, err := s.r.RenderMessage(msg)
	if err != nil {
		return err
	}
	s.l.Log(s.level, line, zap.Int("args", msg.Len()))
	return nil
}
