package component

// Value is a typed value tagged with its descriptor variant. Values are
// produced fresh per call by the codec, consumed by the invocation, and
// discarded once the result has been converted back to JSON; no Value
// outlives one request.
type Value interface {
	isValue()
	ValueKind() Kind
}

// BoolValue carries a bool.
type BoolValue bool

// U8Value carries a u8.
type U8Value uint8

// S8Value carries an s8.
type S8Value int8

// U16Value carries a u16.
type U16Value uint16

// S16Value carries an s16.
type S16Value int16

// U32Value carries a u32.
type U32Value uint32

// S32Value carries an s32.
type S32Value int32

// U64Value carries a u64.
type U64Value uint64

// S64Value carries an s64.
type S64Value int64

// F32Value carries an f32.
type F32Value float32

// F64Value carries an f64.
type F64Value float64

// CharValue carries a single Unicode scalar value.
type CharValue rune

// StringValue carries a string.
type StringValue string

// ListValue carries list elements in order.
type ListValue []Value

// FieldValue is one named record field value.
type FieldValue struct {
	Value Value
	Name  string
}

// RecordValue carries record fields in declaration order.
type RecordValue []FieldValue

// TupleValue carries positional tuple elements.
type TupleValue []Value

// VariantValue carries the active case of a variant. Payload is nil for
// unit cases.
type VariantValue struct {
	Payload Value
	Case    string
}

// EnumValue carries the active case name of an enum.
type EnumValue string

// OptionValue carries an optional payload. Some is nil for none.
type OptionValue struct {
	Some Value
}

// ResultValue carries the ok or err payload of a result. Payload is nil
// when the active side has no declared type.
type ResultValue struct {
	Payload Value
	IsErr   bool
}

// FlagsValue carries the set flag names in declaration order.
type FlagsValue []string

// ResourceValue carries an opaque resource handle.
type ResourceValue uint32

func (BoolValue) isValue()     {}
func (U8Value) isValue()       {}
func (S8Value) isValue()       {}
func (U16Value) isValue()      {}
func (S16Value) isValue()      {}
func (U32Value) isValue()      {}
func (S32Value) isValue()      {}
func (U64Value) isValue()      {}
func (S64Value) isValue()      {}
func (F32Value) isValue()      {}
func (F64Value) isValue()      {}
func (CharValue) isValue()     {}
func (StringValue) isValue()   {}
func (ListValue) isValue()     {}
func (RecordValue) isValue()   {}
func (TupleValue) isValue()    {}
func (VariantValue) isValue()  {}
func (EnumValue) isValue()     {}
func (OptionValue) isValue()   {}
func (ResultValue) isValue()   {}
func (FlagsValue) isValue()    {}
func (ResourceValue) isValue() {}

func (BoolValue) ValueKind() Kind     { return KindBool }
func (U8Value) ValueKind() Kind       { return KindU8 }
func (S8Value) ValueKind() Kind       { return KindS8 }
func (U16Value) ValueKind() Kind      { return KindU16 }
func (S16Value) ValueKind() Kind      { return KindS16 }
func (U32Value) ValueKind() Kind      { return KindU32 }
func (S32Value) ValueKind() Kind      { return KindS32 }
func (U64Value) ValueKind() Kind      { return KindU64 }
func (S64Value) ValueKind() Kind      { return KindS64 }
func (F32Value) ValueKind() Kind      { return KindF32 }
func (F64Value) ValueKind() Kind      { return KindF64 }
func (CharValue) ValueKind() Kind     { return KindChar }
func (StringValue) ValueKind() Kind   { return KindString }
func (ListValue) ValueKind() Kind     { return KindList }
func (RecordValue) ValueKind() Kind   { return KindRecord }
func (TupleValue) ValueKind() Kind    { return KindTuple }
func (VariantValue) ValueKind() Kind  { return KindVariant }
func (EnumValue) ValueKind() Kind     { return KindEnum }
func (OptionValue) ValueKind() Kind   { return KindOption }
func (ResultValue) ValueKind() Kind   { return KindResult }
func (FlagsValue) ValueKind() Kind    { return KindFlags }
func (ResourceValue) ValueKind() Kind { return KindResource }
