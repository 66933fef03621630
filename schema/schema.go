package schema

import (
	"encoding/json"
	"strconv"

	"github.com/wippyai/wasm-gateway/component"
)

// Node is one JSON Schema object. Zero-valued fields are omitted when
// marshaled, so a Node renders only the keywords the mapped type needs.
type Node struct {
	Type                 string           `json:"type,omitempty"`
	Format               string           `json:"format,omitempty"`
	Title                string           `json:"title,omitempty"`
	Description          string           `json:"description,omitempty"`
	Minimum              json.Number      `json:"minimum,omitempty"`
	Maximum              json.Number      `json:"maximum,omitempty"`
	MinLength            *int             `json:"minLength,omitempty"`
	MaxLength            *int             `json:"maxLength,omitempty"`
	Items                *Node            `json:"items,omitempty"`
	PrefixItems          []*Node          `json:"prefixItems,omitempty"`
	MinItems             *int             `json:"minItems,omitempty"`
	MaxItems             *int             `json:"maxItems,omitempty"`
	UniqueItems          bool             `json:"uniqueItems,omitempty"`
	Properties           map[string]*Node `json:"properties,omitempty"`
	Required             []string         `json:"required,omitempty"`
	AdditionalProperties *bool            `json:"additionalProperties,omitempty"`
	Enum                 []string         `json:"enum,omitempty"`
	OneOf                []*Node          `json:"oneOf,omitempty"`
}

// integer value ranges, keyed by kind
var intBounds = map[component.Kind][2]string{
	component.KindU8:  {"0", "255"},
	component.KindS8:  {"-128", "127"},
	component.KindU16: {"0", "65535"},
	component.KindS16: {"-32768", "32767"},
	component.KindU32: {"0", "4294967295"},
	component.KindS32: {"-2147483648", "2147483647"},
	component.KindU64: {"0", "18446744073709551615"},
	component.KindS64: {"-9223372036854775808", "9223372036854775807"},
}

// Map derives the JSON Schema for one type descriptor. The schema describes
// exactly the wire shape the codec accepts and produces for that type.
func Map(d *component.Desc) *Node {
	if d == nil {
		return &Node{Type: "null"}
	}

	switch d.Kind {
	case component.KindBool:
		return &Node{Type: "boolean"}

	case component.KindU8, component.KindS8, component.KindU16, component.KindS16,
		component.KindU32, component.KindS32, component.KindU64, component.KindS64:
		bounds := intBounds[d.Kind]
		n := &Node{
			Type:    "integer",
			Minimum: json.Number(bounds[0]),
			Maximum: json.Number(bounds[1]),
		}
		switch d.Kind {
		case component.KindS32:
			n.Format = "int32"
		case component.KindS64:
			n.Format = "int64"
		}
		return n

	case component.KindF32:
		return &Node{Type: "number", Format: "float"}
	case component.KindF64:
		return &Node{Type: "number", Format: "double"}

	case component.KindChar:
		one := 1
		return &Node{Type: "string", MinLength: &one, MaxLength: &one}
	case component.KindString:
		return &Node{Type: "string"}

	case component.KindList:
		return &Node{Type: "array", Items: Map(d.Elem)}

	case component.KindRecord:
		return mapRecord(d)

	case component.KindTuple:
		n := len(d.Fields)
		items := make([]*Node, n)
		for i, f := range d.Fields {
			items[i] = Map(f.Type)
		}
		return &Node{
			Type:        "array",
			PrefixItems: items,
			MinItems:    &n,
			MaxItems:    &n,
		}

	case component.KindVariant:
		return mapVariant(d)

	case component.KindEnum:
		return &Node{Type: "string", Title: d.Name, Enum: d.Names}

	case component.KindOption:
		return mapOption(d)

	case component.KindResult:
		return &Node{
			Title: d.Name,
			OneOf: []*Node{
				payloadObject("ok", d.OK),
				payloadObject("err", d.Err),
			},
		}

	case component.KindFlags:
		max := len(d.Names)
		return &Node{
			Type:        "array",
			Title:       d.Name,
			Items:       &Node{Type: "string", Enum: d.Names},
			UniqueItems: true,
			MaxItems:    &max,
		}

	case component.KindResource:
		return &Node{
			Type:        "integer",
			Title:       d.Name,
			Minimum:     json.Number("0"),
			Maximum:     json.Number(strconv.FormatUint(1<<32-1, 10)),
			Description: "opaque resource handle",
		}

	default:
		return &Node{}
	}
}

func mapRecord(d *component.Desc) *Node {
	props := make(map[string]*Node, len(d.Fields))
	required := make([]string, 0, len(d.Fields))
	for _, f := range d.Fields {
		props[f.Name] = Map(f.Type)
		required = append(required, f.Name)
	}
	closed := false
	return &Node{
		Type:                 "object",
		Title:                d.Name,
		Properties:           props,
		Required:             required,
		AdditionalProperties: &closed,
	}
}

// mapVariant renders unit cases as one string-enum branch and each payload
// case as a single-key object branch.
func mapVariant(d *component.Desc) *Node {
	var units []string
	var branches []*Node
	for _, c := range d.Cases {
		if c.Type == nil {
			units = append(units, c.Name)
			continue
		}
		branches = append(branches, payloadObject(c.Name, c.Type))
	}

	var oneOf []*Node
	if len(units) > 0 {
		oneOf = append(oneOf, &Node{Type: "string", Enum: units})
	}
	oneOf = append(oneOf, branches...)

	if len(oneOf) == 1 {
		node := *oneOf[0]
		node.Title = d.Name
		return &node
	}
	return &Node{Title: d.Name, OneOf: oneOf}
}

// mapOption renders option<T> as null-or-payload. A nested option payload is
// wrapped in a {"some": ...} object so the two levels of absence stay
// distinguishable.
func mapOption(d *component.Desc) *Node {
	var some *Node
	if d.Elem != nil && d.Elem.Kind == component.KindOption {
		some = payloadObject("some", d.Elem)
	} else {
		some = Map(d.Elem)
	}
	return &Node{
		OneOf: []*Node{
			{Type: "null"},
			some,
		},
	}
}

// payloadObject builds the closed single-key object shape used by variant
// cases, result sides, and nested options.
func payloadObject(key string, payload *component.Desc) *Node {
	closed := false
	return &Node{
		Type:                 "object",
		Properties:           map[string]*Node{key: Map(payload)},
		Required:             []string{key},
		AdditionalProperties: &closed,
	}
}
