package codec

import (
	"math"

	"github.com/wippyai/wasm-gateway/component"
)

// Decode converts a typed value into the generic JSON form accepted by
// encoding/json. Decoding is total: every value the engine can return has a
// JSON rendering. Non-finite floats become null, the one JSON-representable
// choice that keeps the response well formed.
func Decode(v component.Value) any {
	switch val := v.(type) {
	case component.BoolValue:
		return bool(val)
	case component.U8Value:
		return uint64(val)
	case component.S8Value:
		return int64(val)
	case component.U16Value:
		return uint64(val)
	case component.S16Value:
		return int64(val)
	case component.U32Value:
		return uint64(val)
	case component.S32Value:
		return int64(val)
	case component.U64Value:
		return uint64(val)
	case component.S64Value:
		return int64(val)
	case component.F32Value:
		return decodeFloat(float64(val))
	case component.F64Value:
		return decodeFloat(float64(val))
	case component.CharValue:
		return string(rune(val))
	case component.StringValue:
		return string(val)

	case component.ListValue:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = Decode(elem)
		}
		return out

	case component.RecordValue:
		out := make(map[string]any, len(val))
		for _, f := range val {
			out[f.Name] = Decode(f.Value)
		}
		return out

	case component.TupleValue:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = Decode(elem)
		}
		return out

	case component.VariantValue:
		if val.Payload == nil {
			return val.Case
		}
		return map[string]any{val.Case: Decode(val.Payload)}

	case component.EnumValue:
		return string(val)

	case component.OptionValue:
		if val.Some == nil {
			return nil
		}
		// A nested option wraps in {"some": ...} so some(none) does not
		// collapse into none.
		if _, nested := val.Some.(component.OptionValue); nested {
			return map[string]any{"some": Decode(val.Some)}
		}
		return Decode(val.Some)

	case component.ResultValue:
		key := "ok"
		if val.IsErr {
			key = "err"
		}
		var payload any
		if val.Payload != nil {
			payload = Decode(val.Payload)
		}
		return map[string]any{key: payload}

	case component.FlagsValue:
		out := make([]any, len(val))
		for i, name := range val {
			out[i] = name
		}
		return out

	case component.ResourceValue:
		return uint64(val)

	default:
		return nil
	}
}

func decodeFloat(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}
