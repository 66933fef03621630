package component

import (
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/wasm-gateway/errors"
)

// FromWIT converts a go.bytecodealliance.org/wit type into a descriptor.
// Embedders that already hold wit.Type values from the bytecodealliance
// toolchain can bridge them into the gateway's type model with this.
func FromWIT(t wit.Type) (*Desc, error) {
	return fromWIT(t, nil)
}

func fromWIT(t wit.Type, path []string) (*Desc, error) {
	switch t.(type) {
	case wit.Bool:
		return Bool, nil
	case wit.U8:
		return U8, nil
	case wit.S8:
		return S8, nil
	case wit.U16:
		return U16, nil
	case wit.S16:
		return S16, nil
	case wit.U32:
		return U32, nil
	case wit.S32:
		return S32, nil
	case wit.U64:
		return U64, nil
	case wit.S64:
		return S64, nil
	case wit.F32:
		return F32, nil
	case wit.F64:
		return F64, nil
	case wit.Char:
		return Char, nil
	case wit.String:
		return String, nil
	}

	td, ok := t.(*wit.TypeDef)
	if !ok {
		return nil, errors.New(errors.PhaseLoad, errors.KindUnsupported).
			Path(path...).
			Detail("unsupported WIT type: %T", t).
			Build()
	}
	return fromTypeDef(td, path)
}

func fromTypeDef(td *wit.TypeDef, path []string) (*Desc, error) {
	name := ""
	if td.Name != nil {
		name = *td.Name
	}

	switch k := td.Kind.(type) {
	case *wit.Record:
		fields := make([]Field, len(k.Fields))
		for i, f := range k.Fields {
			ft, err := fromWIT(f.Type, append(path, f.Name))
			if err != nil {
				return nil, err
			}
			fields[i] = Field{Name: f.Name, Type: ft}
		}
		return &Desc{Kind: KindRecord, Name: name, Fields: fields}, nil

	case *wit.List:
		elem, err := fromWIT(k.Type, append(path, "list"))
		if err != nil {
			return nil, err
		}
		return &Desc{Kind: KindList, Name: name, Elem: elem}, nil

	case *wit.Tuple:
		fields := make([]Field, len(k.Types))
		for i, et := range k.Types {
			ft, err := fromWIT(et, append(path, "tuple"))
			if err != nil {
				return nil, err
			}
			fields[i] = Field{Type: ft}
		}
		return &Desc{Kind: KindTuple, Name: name, Fields: fields}, nil

	case *wit.Variant:
		cases := make([]Case, len(k.Cases))
		for i, c := range k.Cases {
			var ct *Desc
			if c.Type != nil {
				var err error
				ct, err = fromWIT(c.Type, append(path, c.Name))
				if err != nil {
					return nil, err
				}
			}
			cases[i] = Case{Name: c.Name, Type: ct}
		}
		return &Desc{Kind: KindVariant, Name: name, Cases: cases}, nil

	case *wit.Enum:
		names := make([]string, len(k.Cases))
		for i, c := range k.Cases {
			names[i] = c.Name
		}
		return &Desc{Kind: KindEnum, Name: name, Names: names}, nil

	case *wit.Option:
		payload, err := fromWIT(k.Type, append(path, "option"))
		if err != nil {
			return nil, err
		}
		return &Desc{Kind: KindOption, Name: name, Elem: payload}, nil

	case *wit.Result:
		var okDesc, errDesc *Desc
		var err error
		if k.OK != nil {
			okDesc, err = fromWIT(k.OK, append(path, "ok"))
			if err != nil {
				return nil, err
			}
		}
		if k.Err != nil {
			errDesc, err = fromWIT(k.Err, append(path, "err"))
			if err != nil {
				return nil, err
			}
		}
		return &Desc{Kind: KindResult, Name: name, OK: okDesc, Err: errDesc}, nil

	case *wit.Flags:
		names := make([]string, len(k.Flags))
		for i, f := range k.Flags {
			names[i] = f.Name
		}
		return &Desc{Kind: KindFlags, Name: name, Names: names}, nil

	case *wit.Own:
		return &Desc{Kind: KindResource, Name: name}, nil

	case *wit.Borrow:
		return &Desc{Kind: KindResource, Name: name}, nil

	default:
		return nil, errors.New(errors.PhaseLoad, errors.KindUnsupported).
			Path(path...).
			Detail("unsupported WIT type definition: %T", td.Kind).
			Build()
	}
}

// parseBuiltin resolves a bare WIT type token (a primitive such as "u32")
// through the bytecodealliance parser.
func parseBuiltin(token string) (*Desc, error) {
	t, err := wit.ParseType(token)
	if err != nil {
		return nil, err
	}
	return FromWIT(t)
}
