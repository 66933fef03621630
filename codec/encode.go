package codec

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/wippyai/wasm-gateway/component"
	"github.com/wippyai/wasm-gateway/errors"
)

// Encode converts a decoded JSON value into a typed value matching the
// descriptor. The input is the generic form produced by encoding/json: nil,
// bool, string, float64 or json.Number, []any, and map[string]any. Every
// shape or range violation is reported with the path to the offending value.
func Encode(v any, d *component.Desc) (component.Value, error) {
	return EncodeAt(v, d, nil)
}

// EncodeAt is Encode with an error-path prefix, used by the dispatcher to
// anchor paths at the parameter name.
func EncodeAt(v any, d *component.Desc, path []string) (component.Value, error) {
	switch d.Kind {
	case component.KindBool:
		b, ok := v.(bool)
		if !ok {
			return nil, mismatch(d, v, path)
		}
		return component.BoolValue(b), nil

	case component.KindU8, component.KindS8, component.KindU16, component.KindS16,
		component.KindU32, component.KindS32, component.KindU64, component.KindS64:
		return encodeInt(v, d, path)

	case component.KindF32, component.KindF64:
		f, ok := toFloat(v)
		if !ok {
			return nil, mismatch(d, v, path)
		}
		if d.Kind == component.KindF32 {
			return component.F32Value(f), nil
		}
		return component.F64Value(f), nil

	case component.KindChar:
		s, ok := v.(string)
		if !ok || utf8.RuneCountInString(s) != 1 {
			return nil, mismatch(d, v, path)
		}
		r, _ := utf8.DecodeRuneInString(s)
		if r == utf8.RuneError {
			return nil, mismatch(d, v, path)
		}
		return component.CharValue(r), nil

	case component.KindString:
		s, ok := v.(string)
		if !ok {
			return nil, mismatch(d, v, path)
		}
		return component.StringValue(s), nil

	case component.KindList:
		return encodeList(v, d, path)

	case component.KindRecord:
		return encodeRecord(v, d, path)

	case component.KindTuple:
		return encodeTuple(v, d, path)

	case component.KindVariant:
		return encodeVariant(v, d, path)

	case component.KindEnum:
		s, ok := v.(string)
		if !ok {
			return nil, mismatch(d, v, path)
		}
		if d.NameIndex(s) < 0 {
			return nil, errors.New(errors.PhaseEncode, errors.KindTypeMismatch).
				Path(path...).
				Want(caseList(d)).
				Got(strconv.Quote(s)).
				Value(v).
				Build()
		}
		return component.EnumValue(s), nil

	case component.KindOption:
		return encodeOption(v, d, path)

	case component.KindResult:
		return encodeResult(v, d, path)

	case component.KindFlags:
		return encodeFlags(v, d, path)

	case component.KindResource:
		u, ok := toUint(v, math.MaxUint32)
		if !ok {
			return nil, mismatch(d, v, path)
		}
		return component.ResourceValue(uint32(u)), nil

	default:
		return nil, errors.Unsupported(errors.PhaseEncode, fmt.Sprintf("type %s", d))
	}
}

var intRanges = map[component.Kind][2]int64{
	component.KindS8:  {math.MinInt8, math.MaxInt8},
	component.KindS16: {math.MinInt16, math.MaxInt16},
	component.KindS32: {math.MinInt32, math.MaxInt32},
	component.KindS64: {math.MinInt64, math.MaxInt64},
}

var uintMax = map[component.Kind]uint64{
	component.KindU8:  math.MaxUint8,
	component.KindU16: math.MaxUint16,
	component.KindU32: math.MaxUint32,
	component.KindU64: math.MaxUint64,
}

func encodeInt(v any, d *component.Desc, path []string) (component.Value, error) {
	if d.Kind.IsSigned() {
		bounds := intRanges[d.Kind]
		i, ok := toInt(v, bounds[0], bounds[1])
		if !ok {
			return nil, mismatch(d, v, path)
		}
		switch d.Kind {
		case component.KindS8:
			return component.S8Value(i), nil
		case component.KindS16:
			return component.S16Value(i), nil
		case component.KindS32:
			return component.S32Value(i), nil
		default:
			return component.S64Value(i), nil
		}
	}

	u, ok := toUint(v, uintMax[d.Kind])
	if !ok {
		return nil, mismatch(d, v, path)
	}
	switch d.Kind {
	case component.KindU8:
		return component.U8Value(u), nil
	case component.KindU16:
		return component.U16Value(u), nil
	case component.KindU32:
		return component.U32Value(u), nil
	default:
		return component.U64Value(u), nil
	}
}

func encodeList(v any, d *component.Desc, path []string) (component.Value, error) {
	arr, ok := v.([]any)
	if !ok {
		return nil, mismatch(d, v, path)
	}
	out := make(component.ListValue, len(arr))
	for i, elem := range arr {
		ev, err := EncodeAt(elem, d.Elem, append(path, strconv.Itoa(i)))
		if err != nil {
			return nil, err
		}
		out[i] = ev
	}
	return out, nil
}

func encodeRecord(v any, d *component.Desc, path []string) (component.Value, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, mismatch(d, v, path)
	}
	out := make(component.RecordValue, 0, len(d.Fields))
	for _, f := range d.Fields {
		fv, present := obj[f.Name]
		if !present {
			return nil, errors.New(errors.PhaseEncode, errors.KindTypeMismatch).
				Path(append(path, f.Name)...).
				Want(f.Type.String()).
				Got("absent").
				Detail("missing record field %q", f.Name).
				Build()
		}
		ev, err := EncodeAt(fv, f.Type, append(path, f.Name))
		if err != nil {
			return nil, err
		}
		out = append(out, component.FieldValue{Name: f.Name, Value: ev})
	}
	for key := range obj {
		if fieldIndex(d, key) < 0 {
			return nil, errors.New(errors.PhaseEncode, errors.KindTypeMismatch).
				Path(append(path, key)...).
				Got(jsonShape(obj[key])).
				Detail("unknown record field %q", key).
				Build()
		}
	}
	return out, nil
}

func encodeTuple(v any, d *component.Desc, path []string) (component.Value, error) {
	arr, ok := v.([]any)
	if !ok {
		return nil, mismatch(d, v, path)
	}
	if len(arr) != len(d.Fields) {
		return nil, errors.New(errors.PhaseEncode, errors.KindTypeMismatch).
			Path(path...).
			Want(fmt.Sprintf("array of %d elements", len(d.Fields))).
			Got(fmt.Sprintf("array of %d elements", len(arr))).
			Build()
	}
	out := make(component.TupleValue, len(arr))
	for i, elem := range arr {
		ev, err := EncodeAt(elem, d.Fields[i].Type, append(path, strconv.Itoa(i)))
		if err != nil {
			return nil, err
		}
		out[i] = ev
	}
	return out, nil
}

func encodeVariant(v any, d *component.Desc, path []string) (component.Value, error) {
	switch val := v.(type) {
	case string:
		idx := d.CaseIndex(val)
		if idx < 0 {
			return nil, errors.New(errors.PhaseEncode, errors.KindTypeMismatch).
				Path(path...).
				Want(caseList(d)).
				Got(strconv.Quote(val)).
				Build()
		}
		if d.Cases[idx].Type != nil {
			return nil, errors.New(errors.PhaseEncode, errors.KindTypeMismatch).
				Path(path...).
				Want(fmt.Sprintf("object with key %q", val)).
				Got("string").
				Detail("case %q carries a payload", val).
				Build()
		}
		return component.VariantValue{Case: val}, nil

	case map[string]any:
		if len(val) != 1 {
			return nil, errors.New(errors.PhaseEncode, errors.KindTypeMismatch).
				Path(path...).
				Want("object with exactly one case key").
				Got(fmt.Sprintf("object with %d keys", len(val))).
				Build()
		}
		for name, payload := range val {
			idx := d.CaseIndex(name)
			if idx < 0 {
				return nil, errors.New(errors.PhaseEncode, errors.KindTypeMismatch).
					Path(path...).
					Want(caseList(d)).
					Got(strconv.Quote(name)).
					Build()
			}
			caseType := d.Cases[idx].Type
			if caseType == nil {
				if payload != nil {
					return nil, errors.New(errors.PhaseEncode, errors.KindTypeMismatch).
						Path(append(path, name)...).
						Want("null").
						Got(jsonShape(payload)).
						Detail("case %q carries no payload", name).
						Build()
				}
				return component.VariantValue{Case: name}, nil
			}
			pv, err := EncodeAt(payload, caseType, append(path, name))
			if err != nil {
				return nil, err
			}
			return component.VariantValue{Case: name, Payload: pv}, nil
		}
	}
	return nil, mismatch(d, v, path)
}

func encodeOption(v any, d *component.Desc, path []string) (component.Value, error) {
	if v == nil {
		return component.OptionValue{}, nil
	}

	// A nested option payload arrives wrapped in {"some": ...} so none and
	// some(none) stay distinct on the wire.
	if d.Elem != nil && d.Elem.Kind == component.KindOption {
		obj, ok := v.(map[string]any)
		if !ok || len(obj) != 1 {
			return nil, mismatch(d, v, path)
		}
		inner, ok := obj["some"]
		if !ok {
			return nil, mismatch(d, v, path)
		}
		iv, err := EncodeAt(inner, d.Elem, append(path, "some"))
		if err != nil {
			return nil, err
		}
		return component.OptionValue{Some: iv}, nil
	}

	pv, err := EncodeAt(v, d.Elem, path)
	if err != nil {
		return nil, err
	}
	return component.OptionValue{Some: pv}, nil
}

func encodeResult(v any, d *component.Desc, path []string) (component.Value, error) {
	obj, ok := v.(map[string]any)
	if !ok || len(obj) != 1 {
		return nil, mismatch(d, v, path)
	}

	var isErr bool
	var payload any
	if p, found := obj["ok"]; found {
		payload = p
	} else if p, found := obj["err"]; found {
		isErr = true
		payload = p
	} else {
		return nil, mismatch(d, v, path)
	}

	side := d.OK
	key := "ok"
	if isErr {
		side = d.Err
		key = "err"
	}
	if side == nil {
		if payload != nil {
			return nil, errors.New(errors.PhaseEncode, errors.KindTypeMismatch).
				Path(append(path, key)...).
				Want("null").
				Got(jsonShape(payload)).
				Detail("result %s side carries no payload", key).
				Build()
		}
		return component.ResultValue{IsErr: isErr}, nil
	}
	pv, err := EncodeAt(payload, side, append(path, key))
	if err != nil {
		return nil, err
	}
	return component.ResultValue{IsErr: isErr, Payload: pv}, nil
}

// encodeFlags accepts an array of flag names, rejects duplicates and
// unknowns, and canonicalizes the set to declaration order.
func encodeFlags(v any, d *component.Desc, path []string) (component.Value, error) {
	arr, ok := v.([]any)
	if !ok {
		return nil, mismatch(d, v, path)
	}
	set := make([]bool, len(d.Names))
	for i, elem := range arr {
		s, ok := elem.(string)
		if !ok {
			return nil, mismatch(component.String, elem, append(path, strconv.Itoa(i)))
		}
		idx := d.NameIndex(s)
		if idx < 0 {
			return nil, errors.New(errors.PhaseEncode, errors.KindTypeMismatch).
				Path(append(path, strconv.Itoa(i))...).
				Want(caseList(d)).
				Got(strconv.Quote(s)).
				Build()
		}
		if set[idx] {
			return nil, errors.New(errors.PhaseEncode, errors.KindTypeMismatch).
				Path(append(path, strconv.Itoa(i))...).
				Got(strconv.Quote(s)).
				Detail("duplicate flag %q", s).
				Build()
		}
		set[idx] = true
	}
	var out component.FlagsValue
	for i, on := range set {
		if on {
			out = append(out, d.Names[i])
		}
	}
	if out == nil {
		out = component.FlagsValue{}
	}
	return out, nil
}

// toInt extracts an integral number within [min, max].
func toInt(v any, min, max int64) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, i >= min && i <= max
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return floatToInt(f, min, max)
	case float64:
		return floatToInt(n, min, max)
	}
	return 0, false
}

// toUint extracts an integral non-negative number within [0, max].
func toUint(v any, max uint64) (uint64, bool) {
	switch n := v.(type) {
	case json.Number:
		s := n.String()
		if !strings.ContainsAny(s, ".eE") {
			u, err := strconv.ParseUint(s, 10, 64)
			return u, err == nil && u <= max
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return floatToUint(f, max)
	case float64:
		return floatToUint(n, max)
	}
	return 0, false
}

// toFloat extracts any finite JSON number.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	}
	return 0, false
}

func floatToInt(f float64, min, max int64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	// Bounds where float64 precision can no longer represent int64 exactly.
	if f < -9223372036854775808.0 || f >= 9223372036854775808.0 {
		return 0, false
	}
	i := int64(f)
	return i, i >= min && i <= max
}

func floatToUint(f float64, max uint64) (uint64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || f < 0 {
		return 0, false
	}
	if f >= 18446744073709551616.0 {
		return 0, false
	}
	u := uint64(f)
	return u, u <= max
}

func fieldIndex(d *component.Desc, name string) int {
	for i, f := range d.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// caseList names the admissible strings for an enum, variant, or flags
// descriptor in error messages.
func caseList(d *component.Desc) string {
	var names []string
	if len(d.Names) > 0 {
		names = d.Names
	} else {
		for _, c := range d.Cases {
			names = append(names, c.Name)
		}
	}
	return "one of " + strings.Join(names, ", ")
}

func mismatch(d *component.Desc, v any, path []string) *errors.Error {
	return errors.New(errors.PhaseEncode, errors.KindTypeMismatch).
		Path(path...).
		Want(d.String()).
		Got(jsonShape(v)).
		Value(v).
		Build()
}

// jsonShape describes a decoded JSON value for error messages. Numbers keep
// their literal so range violations read back the offending value.
func jsonShape(v any) string {
	switch n := v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case json.Number:
		return "number " + n.String()
	case float64:
		return "number " + strconv.FormatFloat(n, 'g', -1, 64)
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
