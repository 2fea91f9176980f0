package layout

import (
	"math"

	jsoniter "github.com/json-iterator/go"

	"github.com/wippyai/wasm-printnf/numtext"
)

var indentJSON = jsoniter.Config{IndentionStep: 4}.Froze()

// MarshalIndent renders a decoded value as JSON with a 4-space indent.
// Object members keep declaration order. NaN and infinities become null.
func MarshalIndent(v any) ([]byte, error) {
	stream := indentJSON.BorrowStream(nil)
	defer indentJSON.ReturnStream(stream)

	writeValue(stream, v)
	if stream.Error != nil {
		return nil, stream.Error
	}
	return append([]byte(nil), stream.Buffer()...), nil
}

func writeValue(s *jsoniter.Stream, v any) {
	switch x := v.(type) {
	case nil:
		s.WriteNil()
	case *Object:
		writeObject(s, x)
	case string:
		s.WriteString(x)
	case bool:
		s.WriteBool(x)
	case int8:
		s.WriteInt8(x)
	case uint8:
		s.WriteUint8(x)
	case int32:
		s.WriteInt32(x)
	case uint32:
		s.WriteUint32(x)
	case int64:
		s.WriteInt64(x)
	case uint64:
		s.WriteUint64(x)
	case int:
		s.WriteInt(x)
	case float32:
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			s.WriteNil()
			return
		}
		s.WriteRaw(numtext.FormatF32(x))
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			s.WriteNil()
			return
		}
		s.WriteFloat64(x)
	default:
		s.WriteVal(x)
	}
}

func writeObject(s *jsoniter.Stream, o *Object) {
	if len(o.Members) == 0 {
		s.WriteEmptyObject()
		return
	}
	s.WriteObjectStart()
	for i, m := range o.Members {
		if i > 0 {
			s.WriteMore()
		}
		s.WriteObjectField(m.Name)
		writeValue(s, m.Value)
	}
	s.WriteObjectEnd()
}
