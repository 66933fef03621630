package component

import (
	"fmt"
	"strings"

	"github.com/wippyai/wasm-gateway/errors"
)

// DefaultNamespace is the export group used for functions declared outside
// any interface or world block. Top-level world exports resolve to "root"
// in the upstream tooling as well.
const DefaultNamespace = "root"

// Parse reads a WIT interface description and returns one Interface per
// export group, in source order. Functions keep their declaration order and
// attached /// documentation. Named types (record, variant, enum, flags,
// resource, type aliases) are fully resolved into descriptors; an unknown or
// cyclic type reference is an interface-decode error.
func Parse(src string) ([]Interface, error) {
	items, err := scanItems(src)
	if err != nil {
		return nil, err
	}

	r := &resolver{
		raw:   make(map[string]rawDef),
		done:  make(map[string]*Desc),
		state: make(map[string]int),
	}
	if err := r.collect(items); err != nil {
		return nil, err
	}

	var groups []Interface
	root := Interface{Namespace: DefaultNamespace}

	for _, it := range items {
		head, rest := headWord(it.text)
		switch head {
		case "package", "use":
			continue
		case "interface", "world":
			name, body, err := splitBlock(rest)
			if err != nil {
				return nil, errors.InterfaceDecode(fmt.Sprintf("malformed %s declaration", head), err)
			}
			bodyItems, err := scanItems(body)
			if err != nil {
				return nil, err
			}
			group := Interface{Namespace: name}
			if err := r.parseFunctions(bodyItems, &group); err != nil {
				return nil, err
			}
			groups = append(groups, group)
		case "record", "variant", "enum", "flags", "resource", "type":
			continue
		default:
			fn, ok, err := r.parseFunction(it)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, errors.InterfaceDecode(fmt.Sprintf("unrecognized declaration %q", firstLine(it.text)), nil)
			}
			if root.Function(fn.Name) != nil {
				return nil, errors.InterfaceDecode(fmt.Sprintf("duplicate function %q", fn.Name), nil)
			}
			root.Functions = append(root.Functions, fn)
		}
	}

	if len(root.Functions) > 0 {
		groups = append([]Interface{root}, groups...)
	}
	if len(groups) == 0 {
		return nil, errors.InterfaceDecode("no exported functions found", nil)
	}
	return groups, nil
}

// item is one top-level statement with its attached documentation.
type item struct {
	docs string
	text string
}

// scanItems splits WIT source into statements. A statement ends at a
// semicolon at brace depth zero or at the closing brace of a block opened at
// depth zero. /// lines preceding a statement become its documentation.
func scanItems(src string) ([]item, error) {
	var items []item
	var docs []string
	var stmt strings.Builder
	depth := 0

	i := 0
	for i < len(src) {
		c := src[i]

		// Comments. Doc comments attach to the next statement when we are
		// between statements; inside a block body they stay verbatim so the
		// recursive scan of that body sees them.
		if c == '/' && i+1 < len(src) && src[i+1] == '/' {
			end := strings.IndexByte(src[i:], '\n')
			if end < 0 {
				end = len(src) - i
			}
			line := src[i : i+end]
			if depth > 0 {
				stmt.WriteString(line)
				stmt.WriteByte('\n')
			} else if strings.HasPrefix(line, "///") {
				docs = append(docs, strings.TrimPrefix(strings.TrimPrefix(line, "///"), " "))
			}
			i += end
			continue
		}

		switch c {
		case '{':
			depth++
			stmt.WriteByte(c)
		case '}':
			depth--
			if depth < 0 {
				return nil, errors.InterfaceDecode("unbalanced braces in interface description", nil)
			}
			stmt.WriteByte(c)
			if depth == 0 {
				items = append(items, item{docs: strings.Join(docs, "\n"), text: strings.TrimSpace(stmt.String())})
				stmt.Reset()
				docs = nil
			}
		case ';':
			if depth == 0 {
				text := strings.TrimSpace(stmt.String())
				if text != "" {
					items = append(items, item{docs: strings.Join(docs, "\n"), text: text})
				}
				stmt.Reset()
				docs = nil
			} else {
				stmt.WriteByte(c)
			}
		default:
			if stmt.Len() == 0 && (c == ' ' || c == '\t' || c == '\n' || c == '\r') {
				// leading whitespace
			} else {
				stmt.WriteByte(c)
			}
		}
		i++
	}

	if depth != 0 {
		return nil, errors.InterfaceDecode("unbalanced braces in interface description", nil)
	}
	if rest := strings.TrimSpace(stmt.String()); rest != "" {
		return nil, errors.InterfaceDecode(fmt.Sprintf("unterminated declaration %q", firstLine(rest)), nil)
	}
	return items, nil
}

// rawDef is an unresolved named type definition.
type rawDef struct {
	kind string // record, variant, enum, flags, alias
	body string
}

const (
	stateResolving = 1
	stateDone      = 2
)

type resolver struct {
	raw   map[string]rawDef
	done  map[string]*Desc
	state map[string]int
}

// collect gathers named type definitions from all scopes so that references
// resolve regardless of declaration order.
func (r *resolver) collect(items []item) error {
	for _, it := range items {
		head, rest := headWord(it.text)
		switch head {
		case "interface", "world":
			_, body, err := splitBlock(rest)
			if err != nil {
				return errors.InterfaceDecode(fmt.Sprintf("malformed %s declaration", head), err)
			}
			bodyItems, err := scanItems(body)
			if err != nil {
				return err
			}
			if err := r.collect(bodyItems); err != nil {
				return err
			}
		case "record", "variant", "enum", "flags":
			name, body, err := splitBlock(rest)
			if err != nil {
				return errors.InterfaceDecode(fmt.Sprintf("malformed %s declaration", head), err)
			}
			if err := r.add(name, rawDef{kind: head, body: body}); err != nil {
				return err
			}
		case "resource":
			name, _ := headWord(rest)
			name = strings.TrimSuffix(name, "{")
			if name == "" {
				return errors.InterfaceDecode("resource declaration missing name", nil)
			}
			if err := r.add(name, rawDef{}); err != nil {
				return err
			}
			r.done[name] = Resource(name)
			r.state[name] = stateDone
		case "type":
			name, expr, found := strings.Cut(rest, "=")
			if !found {
				return errors.InterfaceDecode(fmt.Sprintf("type alias %q missing '='", strings.TrimSpace(rest)), nil)
			}
			if err := r.add(strings.TrimSpace(name), rawDef{kind: "alias", body: strings.TrimSpace(expr)}); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *resolver) add(name string, def rawDef) error {
	if _, exists := r.raw[name]; exists {
		return errors.InterfaceDecode(fmt.Sprintf("type %q defined twice", name), nil)
	}
	r.raw[name] = def
	return nil
}

// resolve returns the descriptor for a named type, resolving it on first
// use. Cycles cannot be represented by the descriptor tree and are errors.
func (r *resolver) resolve(name string) (*Desc, error) {
	if d, ok := r.done[name]; ok {
		return d, nil
	}
	def, ok := r.raw[name]
	if !ok {
		return nil, errors.InterfaceDecode(fmt.Sprintf("unknown type %q", name), nil)
	}
	if r.state[name] == stateResolving {
		return nil, errors.InterfaceDecode(fmt.Sprintf("recursive type %q", name), nil)
	}
	r.state[name] = stateResolving

	var d *Desc
	var err error
	switch def.kind {
	case "record":
		d, err = r.parseRecordBody(name, def.body)
	case "variant":
		d, err = r.parseVariantBody(name, def.body)
	case "enum":
		d = &Desc{Kind: KindEnum, Name: name, Names: listNames(def.body)}
	case "flags":
		d = &Desc{Kind: KindFlags, Name: name, Names: listNames(def.body)}
	case "alias":
		d, err = r.parseTypeExpr(def.body)
	default:
		err = errors.InterfaceDecode(fmt.Sprintf("unresolvable type %q", name), nil)
	}
	if err != nil {
		return nil, err
	}

	r.done[name] = d
	r.state[name] = stateDone
	return d, nil
}

func (r *resolver) parseRecordBody(name, body string) (*Desc, error) {
	var fields []Field
	for _, entry := range splitEntries(body) {
		fname, ftype, found := strings.Cut(entry, ":")
		if !found {
			return nil, errors.InterfaceDecode(fmt.Sprintf("record %q: field %q missing type", name, entry), nil)
		}
		ft, err := r.parseTypeExpr(strings.TrimSpace(ftype))
		if err != nil {
			return nil, err
		}
		fields = append(fields, Field{Name: strings.TrimSpace(fname), Type: ft})
	}
	if len(fields) == 0 {
		return nil, errors.InterfaceDecode(fmt.Sprintf("record %q has no fields", name), nil)
	}
	return &Desc{Kind: KindRecord, Name: name, Fields: fields}, nil
}

func (r *resolver) parseVariantBody(name, body string) (*Desc, error) {
	var cases []Case
	for _, entry := range splitEntries(body) {
		if open := strings.IndexByte(entry, '('); open >= 0 {
			if !strings.HasSuffix(entry, ")") {
				return nil, errors.InterfaceDecode(fmt.Sprintf("variant %q: malformed case %q", name, entry), nil)
			}
			ct, err := r.parseTypeExpr(entry[open+1 : len(entry)-1])
			if err != nil {
				return nil, err
			}
			cases = append(cases, Case{Name: strings.TrimSpace(entry[:open]), Type: ct})
		} else {
			cases = append(cases, Case{Name: entry})
		}
	}
	if len(cases) == 0 {
		return nil, errors.InterfaceDecode(fmt.Sprintf("variant %q has no cases", name), nil)
	}
	return &Desc{Kind: KindVariant, Name: name, Cases: cases}, nil
}

// parseTypeExpr resolves one WIT type expression: a named reference, a
// builtin primitive, or a generic form (list, option, tuple, result, own,
// borrow).
func (r *resolver) parseTypeExpr(s string) (*Desc, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.InterfaceDecode("empty type expression", nil)
	}

	if open := strings.IndexByte(s, '<'); open >= 0 {
		if !strings.HasSuffix(s, ">") {
			return nil, errors.InterfaceDecode(fmt.Sprintf("malformed type expression %q", s), nil)
		}
		head := strings.TrimSpace(s[:open])
		inner := s[open+1 : len(s)-1]
		switch head {
		case "list":
			elem, err := r.parseTypeExpr(inner)
			if err != nil {
				return nil, err
			}
			return List(elem), nil
		case "option":
			payload, err := r.parseTypeExpr(inner)
			if err != nil {
				return nil, err
			}
			return Option(payload), nil
		case "tuple":
			parts := splitTop(inner, ',')
			elems := make([]*Desc, len(parts))
			for i, p := range parts {
				var err error
				elems[i], err = r.parseTypeExpr(p)
				if err != nil {
					return nil, err
				}
			}
			return Tuple(elems...), nil
		case "result":
			parts := splitTop(inner, ',')
			if len(parts) > 2 {
				return nil, errors.InterfaceDecode(fmt.Sprintf("result takes at most two type arguments: %q", s), nil)
			}
			var okDesc, errDesc *Desc
			var err error
			if len(parts) >= 1 && strings.TrimSpace(parts[0]) != "_" {
				okDesc, err = r.parseTypeExpr(parts[0])
				if err != nil {
					return nil, err
				}
			}
			if len(parts) == 2 && strings.TrimSpace(parts[1]) != "_" {
				errDesc, err = r.parseTypeExpr(parts[1])
				if err != nil {
					return nil, err
				}
			}
			return Result(okDesc, errDesc), nil
		case "own", "borrow":
			return Resource(strings.TrimSpace(inner)), nil
		default:
			return nil, errors.InterfaceDecode(fmt.Sprintf("unknown generic type %q", head), nil)
		}
	}

	if s == "result" {
		return Result(nil, nil), nil
	}

	if _, defined := r.raw[s]; defined {
		return r.resolve(s)
	}

	d, err := parseBuiltin(s)
	if err != nil {
		return nil, errors.InterfaceDecode(fmt.Sprintf("unknown type %q", s), err)
	}
	return d, nil
}

// parseFunctions appends every function declaration in items to group.
func (r *resolver) parseFunctions(items []item, group *Interface) error {
	for _, it := range items {
		head, _ := headWord(it.text)
		switch head {
		case "record", "variant", "enum", "flags", "resource", "type", "use", "import":
			continue
		}
		fn, ok, err := r.parseFunction(it)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if group.Function(fn.Name) != nil {
			return errors.InterfaceDecode(fmt.Sprintf("duplicate function %q in %q", fn.Name, group.Namespace), nil)
		}
		group.Functions = append(group.Functions, fn)
	}
	return nil
}

// parseFunction parses "name: func(params) -> results". The ok result is
// false when the statement is not a function declaration.
func (r *resolver) parseFunction(it item) (Function, bool, error) {
	text := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(it.text), "export "))

	name, sig, found := strings.Cut(text, ":")
	if !found {
		return Function{}, false, nil
	}
	sig = strings.TrimSpace(sig)
	if !strings.HasPrefix(sig, "func") {
		return Function{}, false, nil
	}
	name = strings.TrimSpace(name)

	rest := strings.TrimSpace(strings.TrimPrefix(sig, "func"))
	if !strings.HasPrefix(rest, "(") {
		return Function{}, false, errors.InterfaceDecode(fmt.Sprintf("function %q: malformed parameter list", name), nil)
	}
	close := matchParen(rest)
	if close < 0 {
		return Function{}, false, errors.InterfaceDecode(fmt.Sprintf("function %q: unbalanced parameter list", name), nil)
	}

	fn := Function{Name: name, Docs: it.docs}

	for _, entry := range splitTop(rest[1:close], ',') {
		pname, ptype, ok := strings.Cut(entry, ":")
		if !ok {
			return Function{}, false, errors.InterfaceDecode(fmt.Sprintf("function %q: parameter %q missing type", name, entry), nil)
		}
		pname = strings.TrimSpace(pname)
		if fn.Param(pname) != nil {
			return Function{}, false, errors.InterfaceDecode(fmt.Sprintf("function %q: duplicate parameter %q", name, pname), nil)
		}
		pd, err := r.parseTypeExpr(ptype)
		if err != nil {
			return Function{}, false, err
		}
		fn.Params = append(fn.Params, Param{Name: pname, Type: pd})
	}

	tail := strings.TrimSpace(rest[close+1:])
	if tail == "" {
		return fn, true, nil
	}
	if !strings.HasPrefix(tail, "->") {
		return Function{}, false, errors.InterfaceDecode(fmt.Sprintf("function %q: unexpected trailing %q", name, tail), nil)
	}
	results, err := r.parseResults(name, strings.TrimSpace(tail[2:]))
	if err != nil {
		return Function{}, false, err
	}
	fn.Results = results
	return fn, true, nil
}

// parseResults parses a result shape: either a parenthesized list of named
// results or a single anonymous type. "()" means no results.
func (r *resolver) parseResults(fname, s string) (Results, error) {
	if s == "" || s == "()" {
		return Results{}, nil
	}
	if !strings.HasPrefix(s, "(") {
		d, err := r.parseTypeExpr(s)
		if err != nil {
			return Results{}, err
		}
		return Results{Anon: d}, nil
	}
	close := matchParen(s)
	if close != len(s)-1 {
		return Results{}, errors.InterfaceDecode(fmt.Sprintf("function %q: malformed result list %q", fname, s), nil)
	}

	var named []Param
	for _, entry := range splitTop(s[1:close], ',') {
		rname, rtype, ok := strings.Cut(entry, ":")
		if !ok {
			// A parenthesized single anonymous type, e.g. "-> (s32)".
			if len(named) == 0 && !strings.Contains(s[1:close], ",") {
				d, err := r.parseTypeExpr(entry)
				if err != nil {
					return Results{}, err
				}
				return Results{Anon: d}, nil
			}
			return Results{}, errors.InterfaceDecode(fmt.Sprintf("function %q: result %q missing name", fname, entry), nil)
		}
		d, err := r.parseTypeExpr(rtype)
		if err != nil {
			return Results{}, err
		}
		named = append(named, Param{Name: strings.TrimSpace(rname), Type: d})
	}
	return Results{Named: named}, nil
}

// splitBlock splits "name { body }" into the name and the brace contents.
func splitBlock(s string) (name, body string, err error) {
	open := strings.IndexByte(s, '{')
	if open < 0 || !strings.HasSuffix(strings.TrimSpace(s), "}") {
		return "", "", fmt.Errorf("missing block body in %q", firstLine(s))
	}
	name = strings.TrimSpace(s[:open])
	if name == "" {
		return "", "", fmt.Errorf("missing name in %q", firstLine(s))
	}
	trimmed := strings.TrimSpace(s)
	return name, trimmed[strings.IndexByte(trimmed, '{')+1 : len(trimmed)-1], nil
}

// splitEntries splits a record or variant body on commas and newlines at
// nesting depth zero, dropping comment lines and empties.
func splitEntries(body string) []string {
	var entries []string
	var current strings.Builder
	depth := 0

	flush := func() {
		entry := strings.TrimSpace(current.String())
		current.Reset()
		if entry != "" && !strings.HasPrefix(entry, "//") {
			entries = append(entries, entry)
		}
	}

	i := 0
	for i < len(body) {
		c := body[i]
		if c == '/' && i+1 < len(body) && body[i+1] == '/' {
			end := strings.IndexByte(body[i:], '\n')
			if end < 0 {
				break
			}
			i += end
			continue
		}
		switch c {
		case '<', '(', '{':
			depth++
			current.WriteByte(c)
		case '>', ')', '}':
			depth--
			current.WriteByte(c)
		case ',', '\n':
			if depth == 0 {
				flush()
			} else if c == ',' {
				current.WriteByte(c)
			}
		default:
			current.WriteByte(c)
		}
		i++
	}
	flush()
	return entries
}

// listNames parses a comma/newline separated list of bare names (enum and
// flags bodies).
func listNames(body string) []string {
	var names []string
	for _, entry := range splitEntries(body) {
		names = append(names, entry)
	}
	return names
}

// splitTop splits s on sep at angle/paren/brace depth zero.
func splitTop(s string, sep byte) []string {
	var result []string
	var current strings.Builder
	depth := 0

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '<', '(', '{':
			depth++
			current.WriteByte(c)
		case '>', ')', '}':
			depth--
			current.WriteByte(c)
		default:
			if c == sep && depth == 0 {
				if str := strings.TrimSpace(current.String()); str != "" {
					result = append(result, str)
				}
				current.Reset()
				continue
			}
			current.WriteByte(c)
		}
	}
	if str := strings.TrimSpace(current.String()); str != "" {
		result = append(result, str)
	}
	return result
}

// matchParen returns the index of the ')' matching the '(' at s[0], or -1.
func matchParen(s string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func headWord(s string) (head, rest string) {
	s = strings.TrimSpace(s)
	idx := strings.IndexAny(s, " \t\n")
	if idx < 0 {
		return s, ""
	}
	return s[:idx], strings.TrimSpace(s[idx:])
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}
