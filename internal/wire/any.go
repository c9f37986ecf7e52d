package wire

import (
	"encoding/json"

	"github.com/nerrad567/edge-mapper/internal/rpcapi"
)

// Well-known Any type URLs for the scalar wrapper types this mapper
// understands (spec §4.J).
const (
	typeURLString = "type.googleapis.com/google.protobuf.StringValue"
	typeURLInt32  = "type.googleapis.com/google.protobuf.Int32Value"
	typeURLInt64  = "type.googleapis.com/google.protobuf.Int64Value"
	typeURLDouble = "type.googleapis.com/google.protobuf.DoubleValue"
	typeURLBool   = "type.googleapis.com/google.protobuf.BoolValue"
)

// DecodeAny implements the Any-decoding rule from spec §4.J: StringValue,
// Int32Value, Int64Value, DoubleValue and BoolValue decode to their scalar
// Go value; any other type URL (or a value that fails its scalar decode)
// first tries a {"value": ...} wrapper shape, then a best-effort decode of
// the raw JSON, before giving up and returning the raw bytes as a string.
func DecodeAny(a rpcapi.AnyValue) any {
	switch a.TypeURL {
	case typeURLString:
		var s string
		if json.Unmarshal(a.Value, &s) == nil {
			return s
		}
	case typeURLInt32, typeURLInt64:
		var n int64
		if json.Unmarshal(a.Value, &n) == nil {
			return n
		}
	case typeURLDouble:
		var f float64
		if json.Unmarshal(a.Value, &f) == nil {
			return f
		}
	case typeURLBool:
		var b bool
		if json.Unmarshal(a.Value, &b) == nil {
			return b
		}
	}

	var wrapped struct {
		Value any `json:"value"`
	}
	if json.Unmarshal(a.Value, &wrapped) == nil && wrapped.Value != nil {
		return wrapped.Value
	}

	var generic any
	if json.Unmarshal(a.Value, &generic) == nil {
		return generic
	}

	return string(a.Value)
}

// decodeAnyMap decodes every entry of m with DecodeAny.
func decodeAnyMap(m map[string]rpcapi.AnyValue) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = DecodeAny(v)
	}
	return out
}

// encodeAnyMap is the inverse of decodeAnyMap, used by the model-to-wire
// direction; every value is carried as a raw JSON-encoded StringValue-style
// wrapper since the internal model no longer distinguishes the original
// protobuf scalar type once decoded.
func encodeAnyMap(m map[string]any) map[string]rpcapi.AnyValue {
	if m == nil {
		return nil
	}
	out := make(map[string]rpcapi.AnyValue, len(m))
	for k, v := range m {
		raw, err := json.Marshal(v)
		if err != nil {
			raw = []byte("null")
		}
		out[k] = rpcapi.AnyValue{TypeURL: typeURLString, Value: raw}
	}
	return out
}
