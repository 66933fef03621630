package component

import (
	"strings"
)

// Desc describes one component-interface type. Descriptors are immutable
// trees: every named reference is resolved to a concrete descriptor before
// it reaches the schema mapper or the codec.
type Desc struct {
	Elem   *Desc  // list element, option payload
	OK     *Desc  // result ok payload, nil when absent
	Err    *Desc  // result err payload, nil when absent
	Name   string // defined-type name, empty for anonymous types
	Fields []Field
	Cases  []Case
	Names  []string // enum case names or flags names
	Kind   Kind
}

// Field is a named record field or an unnamed (positional) tuple element.
type Field struct {
	Type *Desc
	Name string
}

// Case is one variant case. Type is nil for unit cases.
type Case struct {
	Type *Desc
	Name string
}

// Shared scalar descriptors. Scalars carry no nested state, so one instance
// per kind serves every signature.
var (
	Bool   = &Desc{Kind: KindBool}
	U8     = &Desc{Kind: KindU8}
	S8     = &Desc{Kind: KindS8}
	U16    = &Desc{Kind: KindU16}
	S16    = &Desc{Kind: KindS16}
	U32    = &Desc{Kind: KindU32}
	S32    = &Desc{Kind: KindS32}
	U64    = &Desc{Kind: KindU64}
	S64    = &Desc{Kind: KindS64}
	F32    = &Desc{Kind: KindF32}
	F64    = &Desc{Kind: KindF64}
	Char   = &Desc{Kind: KindChar}
	String = &Desc{Kind: KindString}
)

// List returns a list<elem> descriptor.
func List(elem *Desc) *Desc {
	return &Desc{Kind: KindList, Elem: elem}
}

// Record returns a record descriptor with the given ordered fields.
func Record(fields ...Field) *Desc {
	return &Desc{Kind: KindRecord, Fields: fields}
}

// Tuple returns a tuple descriptor with positional element types.
func Tuple(elems ...*Desc) *Desc {
	fields := make([]Field, len(elems))
	for i, e := range elems {
		fields[i] = Field{Type: e}
	}
	return &Desc{Kind: KindTuple, Fields: fields}
}

// Variant returns a variant descriptor with the given cases.
func Variant(cases ...Case) *Desc {
	return &Desc{Kind: KindVariant, Cases: cases}
}

// Enum returns an enum descriptor with the given case names.
func Enum(names ...string) *Desc {
	return &Desc{Kind: KindEnum, Names: names}
}

// Option returns an option<payload> descriptor.
func Option(payload *Desc) *Desc {
	return &Desc{Kind: KindOption, Elem: payload}
}

// Result returns a result descriptor. Either side may be nil.
func Result(ok, errDesc *Desc) *Desc {
	return &Desc{Kind: KindResult, OK: ok, Err: errDesc}
}

// Flags returns a flags descriptor with the given names.
func Flags(names ...string) *Desc {
	return &Desc{Kind: KindFlags, Names: names}
}

// Resource returns an opaque resource-handle descriptor.
func Resource(name string) *Desc {
	return &Desc{Kind: KindResource, Name: name}
}

// CaseIndex returns the index of the named variant case, or -1.
func (d *Desc) CaseIndex(name string) int {
	for i, c := range d.Cases {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// NameIndex returns the index of name within an enum or flags descriptor,
// or -1.
func (d *Desc) NameIndex(name string) int {
	for i, n := range d.Names {
		if n == name {
			return i
		}
	}
	return -1
}

// String renders the descriptor in WIT surface syntax, e.g. "list<u32>".
func (d *Desc) String() string {
	if d == nil {
		return "_"
	}
	if d.Kind.IsScalar() {
		return d.Kind.String()
	}
	if d.Name != "" {
		return d.Name
	}

	var b strings.Builder
	switch d.Kind {
	case KindList:
		b.WriteString("list<")
		b.WriteString(d.Elem.String())
		b.WriteByte('>')
	case KindOption:
		b.WriteString("option<")
		b.WriteString(d.Elem.String())
		b.WriteByte('>')
	case KindResult:
		b.WriteString("result")
		if d.OK != nil || d.Err != nil {
			b.WriteByte('<')
			b.WriteString(d.OK.String())
			b.WriteString(", ")
			b.WriteString(d.Err.String())
			b.WriteByte('>')
		}
	case KindTuple:
		b.WriteString("tuple<")
		for i, f := range d.Fields {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(f.Type.String())
		}
		b.WriteByte('>')
	case KindRecord:
		b.WriteString("record")
	case KindVariant:
		b.WriteString("variant")
	case KindEnum:
		b.WriteString("enum")
	case KindFlags:
		b.WriteString("flags")
	case KindResource:
		b.WriteString("resource")
	default:
		b.WriteString(d.Kind.String())
	}
	return b.String()
}
