package component

// Kind discriminates the variants of a type descriptor.
type Kind uint8

const (
	KindBool Kind = iota
	KindU8
	KindS8
	KindU16
	KindS16
	KindU32
	KindS32
	KindU64
	KindS64
	KindF32
	KindF64
	KindChar
	KindString
	KindList
	KindRecord
	KindTuple
	KindVariant
	KindEnum
	KindOption
	KindResult
	KindFlags
	KindResource
)

var kindNames = [...]string{
	KindBool:     "bool",
	KindU8:       "u8",
	KindS8:       "s8",
	KindU16:      "u16",
	KindS16:      "s16",
	KindU32:      "u32",
	KindS32:      "s32",
	KindU64:      "u64",
	KindS64:      "s64",
	KindF32:      "f32",
	KindF64:      "f64",
	KindChar:     "char",
	KindString:   "string",
	KindList:     "list",
	KindRecord:   "record",
	KindTuple:    "tuple",
	KindVariant:  "variant",
	KindEnum:     "enum",
	KindOption:   "option",
	KindResult:   "result",
	KindFlags:    "flags",
	KindResource: "resource",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsScalar reports whether the kind is a primitive scalar (bool through
// string) that carries no nested descriptors.
func (k Kind) IsScalar() bool {
	return k <= KindString
}

// IsInteger reports whether the kind is a fixed-width integer.
func (k Kind) IsInteger() bool {
	return k >= KindU8 && k <= KindS64
}

// IsSigned reports whether the kind is a signed integer.
func (k Kind) IsSigned() bool {
	switch k {
	case KindS8, KindS16, KindS32, KindS64:
		return true
	default:
		return false
	}
}

// IsFloat reports whether the kind is a floating-point type.
func (k Kind) IsFloat() bool {
	return k == KindF32 || k == KindF64
}
