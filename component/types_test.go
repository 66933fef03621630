package component

import "testing"

func TestDescString(t *testing.T) {
	tests := []struct {
		name string
		desc *Desc
		want string
	}{
		{"scalar", U32, "u32"},
		{"list", List(String), "list<string>"},
		{"nested list", List(List(U8)), "list<list<u8>>"},
		{"option", Option(F64), "option<f64>"},
		{"tuple", Tuple(S32, String, Bool), "tuple<s32, string, bool>"},
		{"empty result", Result(nil, nil), "result"},
		{"ok-only result", Result(U32, nil), "result<u32, _>"},
		{"full result", Result(U32, String), "result<u32, string>"},
		{"named record", &Desc{Kind: KindRecord, Name: "point"}, "point"},
		{"anonymous record", Record(Field{Name: "x", Type: S32}), "record"},
		{"resource", Resource("blob"), "blob"},
		{"nil", nil, "_"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.desc.String(); got != tc.want {
				t.Errorf("String() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestKindPredicates(t *testing.T) {
	if !KindU8.IsScalar() || !KindString.IsScalar() {
		t.Error("u8 and string must be scalar")
	}
	if KindList.IsScalar() || KindRecord.IsScalar() {
		t.Error("list and record must not be scalar")
	}
	if !KindS64.IsInteger() || KindF32.IsInteger() || KindBool.IsInteger() {
		t.Error("integer predicate wrong")
	}
	if !KindS8.IsSigned() || KindU16.IsSigned() {
		t.Error("signed predicate wrong")
	}
	if !KindF64.IsFloat() || KindU64.IsFloat() {
		t.Error("float predicate wrong")
	}
}

func TestCaseAndNameIndex(t *testing.T) {
	v := Variant(Case{Name: "none"}, Case{Name: "some", Type: U32})
	if got := v.CaseIndex("some"); got != 1 {
		t.Errorf("CaseIndex(some) = %d, want 1", got)
	}
	if got := v.CaseIndex("missing"); got != -1 {
		t.Errorf("CaseIndex(missing) = %d, want -1", got)
	}

	e := Enum("red", "green", "blue")
	if got := e.NameIndex("blue"); got != 2 {
		t.Errorf("NameIndex(blue) = %d, want 2", got)
	}
	if got := e.NameIndex("purple"); got != -1 {
		t.Errorf("NameIndex(purple) = %d, want -1", got)
	}
}

func TestTupleWrapsElements(t *testing.T) {
	d := Tuple(U32, String)
	if len(d.Fields) != 2 {
		t.Fatalf("tuple has %d fields, want 2", len(d.Fields))
	}
	if d.Fields[0].Name != "" || d.Fields[1].Name != "" {
		t.Error("tuple fields must be unnamed")
	}
	if d.Fields[0].Type != U32 || d.Fields[1].Type != String {
		t.Error("tuple field types wrong")
	}
}
