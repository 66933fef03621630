package component

import (
	"strings"
	"testing"

	"github.com/wippyai/wasm-gateway/errors"
)

func TestParseSimpleFunction(t *testing.T) {
	ifaces, err := Parse(`add: func(a: s32, b: s32) -> s32;`)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(ifaces) != 1 {
		t.Fatalf("got %d interfaces, want 1", len(ifaces))
	}
	if ifaces[0].Namespace != DefaultNamespace {
		t.Errorf("namespace = %q, want %q", ifaces[0].Namespace, DefaultNamespace)
	}

	fn := ifaces[0].Function("add")
	if fn == nil {
		t.Fatal("add not found")
	}
	if len(fn.Params) != 2 {
		t.Fatalf("got %d params, want 2", len(fn.Params))
	}
	if fn.Params[0].Name != "a" || fn.Params[0].Type.Kind != KindS32 {
		t.Errorf("param 0 = %s: %s", fn.Params[0].Name, fn.Params[0].Type)
	}
	if fn.Results.Anon == nil || fn.Results.Anon.Kind != KindS32 {
		t.Errorf("result = %s, want s32", fn.Results.Anon)
	}
}

func TestParseInterfaceBlocks(t *testing.T) {
	src := `
		add: func(a: s32, b: s32) -> s32;

		interface text {
			concat: func(parts: list<string>) -> string;
			len: func(s: string) -> u32;
		}

		world calc {
			export mul: func(a: s32, b: s32) -> s32;
		}
	`
	ifaces, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(ifaces) != 3 {
		t.Fatalf("got %d interfaces, want 3", len(ifaces))
	}

	// Top-level functions come first under the default namespace, then
	// blocks in source order.
	wantNS := []string{"root", "text", "calc"}
	for i, ns := range wantNS {
		if ifaces[i].Namespace != ns {
			t.Errorf("interface %d namespace = %q, want %q", i, ifaces[i].Namespace, ns)
		}
	}

	if ifaces[1].Function("concat") == nil || ifaces[1].Function("len") == nil {
		t.Error("text interface missing functions")
	}
	if ifaces[2].Function("mul") == nil {
		t.Error("export prefix not stripped from world function")
	}
}

func TestParseSameNameDifferentNamespaces(t *testing.T) {
	src := `
		add: func(a: s32, b: s32) -> s32;
		interface foo {
			add: func(a: f64, b: f64) -> f64;
		}
	`
	ifaces, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(ifaces) != 2 {
		t.Fatalf("got %d interfaces, want 2", len(ifaces))
	}
	if ifaces[0].Function("add").Results.Anon.Kind != KindS32 {
		t.Error("root add should return s32")
	}
	if ifaces[1].Function("add").Results.Anon.Kind != KindF64 {
		t.Error("foo add should return f64")
	}
}

func TestParseDocComments(t *testing.T) {
	src := `
		/// Adds two numbers.
		///
		/// Overflow wraps around.
		add: func(a: s32, b: s32) -> s32;

		// not a doc comment
		sub: func(a: s32, b: s32) -> s32;
	`
	ifaces, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	add := ifaces[0].Function("add")
	if got := add.Summary(); got != "Adds two numbers." {
		t.Errorf("Summary() = %q", got)
	}
	if got := add.Description(); got != "Overflow wraps around." {
		t.Errorf("Description() = %q", got)
	}
	if sub := ifaces[0].Function("sub"); sub.Docs != "" {
		t.Errorf("sub picked up non-doc comment: %q", sub.Docs)
	}
}

func TestParseNamedTypes(t *testing.T) {
	src := `
		record point {
			x: s32,
			y: s32,
		}

		variant shape {
			circle(f64),
			rect(point),
			empty,
		}

		enum color { red, green, blue }

		flags perms { read, write, exec }

		type points = list<point>;

		draw: func(s: shape, c: color, p: perms) -> points;
	`
	ifaces, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	fn := ifaces[0].Function("draw")
	if fn == nil {
		t.Fatal("draw not found")
	}

	shape := fn.Params[0].Type
	if shape.Kind != KindVariant || shape.Name != "shape" {
		t.Fatalf("param s = %s (%s), want variant shape", shape, shape.Kind)
	}
	if len(shape.Cases) != 3 {
		t.Fatalf("shape has %d cases, want 3", len(shape.Cases))
	}
	rect := shape.Cases[1]
	if rect.Name != "rect" || rect.Type == nil || rect.Type.Name != "point" {
		t.Errorf("case 1 = %s(%s), want rect(point)", rect.Name, rect.Type)
	}
	if rect.Type.Kind != KindRecord || len(rect.Type.Fields) != 2 {
		t.Error("rect payload must resolve to the point record")
	}
	if shape.Cases[2].Type != nil {
		t.Error("empty must be a unit case")
	}

	color := fn.Params[1].Type
	if color.Kind != KindEnum || len(color.Names) != 3 || color.Names[1] != "green" {
		t.Errorf("param c = %s, want enum of three colors", color)
	}

	perms := fn.Params[2].Type
	if perms.Kind != KindFlags || len(perms.Names) != 3 {
		t.Errorf("param p = %s, want flags of three names", perms)
	}

	out := fn.Results.Anon
	if out.Kind != KindList || out.Elem.Name != "point" {
		t.Errorf("result = %s, want list<point>", out)
	}
}

func TestParseForwardReference(t *testing.T) {
	src := `
		head: func(xs: pair) -> s32;
		record pair { first: s32, second: s32 }
	`
	ifaces, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	p := ifaces[0].Function("head").Params[0].Type
	if p.Kind != KindRecord || len(p.Fields) != 2 {
		t.Errorf("pair did not resolve ahead of its declaration: %s", p)
	}
}

func TestParseGenericTypes(t *testing.T) {
	src := `f: func(a: option<list<u8>>, b: tuple<s32, string>, c: result<u32, string>) -> result;`
	ifaces, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	fn := ifaces[0].Function("f")

	a := fn.Params[0].Type
	if a.Kind != KindOption || a.Elem.Kind != KindList || a.Elem.Elem.Kind != KindU8 {
		t.Errorf("a = %s, want option<list<u8>>", a)
	}
	b := fn.Params[1].Type
	if b.Kind != KindTuple || len(b.Fields) != 2 || b.Fields[1].Type.Kind != KindString {
		t.Errorf("b = %s, want tuple<s32, string>", b)
	}
	c := fn.Params[2].Type
	if c.Kind != KindResult || c.OK.Kind != KindU32 || c.Err.Kind != KindString {
		t.Errorf("c = %s, want result<u32, string>", c)
	}
	out := fn.Results.Anon
	if out.Kind != KindResult || out.OK != nil || out.Err != nil {
		t.Errorf("result = %s, want bare result", out)
	}
}

func TestParseNamedResults(t *testing.T) {
	ifaces, err := Parse(`divmod: func(a: u32, b: u32) -> (quot: u32, rem: u32);`)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	res := ifaces[0].Function("divmod").Results
	if res.Anon != nil {
		t.Fatal("named results must not set Anon")
	}
	if len(res.Named) != 2 || res.Named[0].Name != "quot" || res.Named[1].Name != "rem" {
		t.Fatalf("Named = %+v", res.Named)
	}
}

func TestParseNoResults(t *testing.T) {
	for _, src := range []string{
		`ping: func();`,
		`ping: func() -> ();`,
	} {
		ifaces, err := Parse(src)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", src, err)
		}
		if !ifaces[0].Function("ping").Results.IsEmpty() {
			t.Errorf("Parse(%q): results should be empty", src)
		}
	}
}

func TestParseResource(t *testing.T) {
	src := `
		resource blob;
		open: func(name: string) -> own<blob>;
		size: func(b: borrow<blob>) -> u64;
	`
	ifaces, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	out := ifaces[0].Function("open").Results.Anon
	if out.Kind != KindResource || out.Name != "blob" {
		t.Errorf("open result = %s, want resource blob", out)
	}
	in := ifaces[0].Function("size").Params[0].Type
	if in.Kind != KindResource {
		t.Errorf("size param = %s, want resource", in)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		detail string
	}{
		{"empty", "", "no exported functions"},
		{"unknown type", `f: func(a: widget);`, `unknown type "widget"`},
		{"recursive type", `type a = list<a>; f: func(x: a);`, `recursive type "a"`},
		{"duplicate function", "f: func();\nf: func();", "duplicate function"},
		{"duplicate param", `f: func(a: s32, a: s32);`, "duplicate parameter"},
		{"duplicate type", "record a { x: s32 }\nenum a { b }\nf: func();", "defined twice"},
		{"unbalanced braces", `interface x { f: func();`, "unbalanced braces"},
		{"garbage", `not a declaration;`, "unrecognized declaration"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.src)
			if err == nil {
				t.Fatal("Parse() succeeded, want error")
			}
			if !errors.IsKind(err, errors.KindInterfaceDecode) {
				t.Errorf("error kind = %v, want interface_decode", err)
			}
			if !strings.Contains(err.Error(), tc.detail) {
				t.Errorf("error %q does not mention %q", err, tc.detail)
			}
		})
	}
}

func TestParseIgnoresPackageAndUse(t *testing.T) {
	src := `
		package docs:example@1.0.0;
		use wasi:io/streams.{input-stream};
		f: func() -> u32;
	`
	ifaces, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(ifaces) != 1 || ifaces[0].Function("f") == nil {
		t.Fatal("f not found")
	}
}
