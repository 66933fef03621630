package engine

import (
	"context"
	"testing"

	"github.com/wippyai/wasm-gateway/component"
	"github.com/wippyai/wasm-gateway/errors"
)

// testModule is a hand-assembled core module with two exports:
//
//	(func (export "add") (param i32 i32) (result i32) ...)
//	(func (export "boom") unreachable)
var testModule = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00, // magic, version
	// type section: (i32,i32)->i32 and ()->()
	0x01, 0x0a, 0x02,
	0x60, 0x02, 0x7f, 0x7f, 0x01, 0x7f,
	0x60, 0x00, 0x00,
	// function section
	0x03, 0x03, 0x02, 0x00, 0x01,
	// export section: "add" func 0, "boom" func 1
	0x07, 0x0e, 0x02,
	0x03, 0x61, 0x64, 0x64, 0x00, 0x00,
	0x04, 0x62, 0x6f, 0x6f, 0x6d, 0x00, 0x01,
	// code section
	0x0a, 0x0d, 0x02,
	0x07, 0x00, 0x20, 0x00, 0x20, 0x01, 0x6a, 0x0b, // local.get 0; local.get 1; i32.add
	0x03, 0x00, 0x00, 0x0b, // unreachable
}

func addFunction() *component.Function {
	return &component.Function{
		Name: "add",
		Params: []component.Param{
			{Name: "a", Type: component.S32},
			{Name: "b", Type: component.S32},
		},
		Results: component.Results{Anon: component.S32},
	}
}

func loadedEngine(t *testing.T) *CoreEngine {
	t.Helper()
	ctx := context.Background()
	e := NewCoreEngine(nil)
	if err := e.Load(ctx, testModule); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	t.Cleanup(func() { _ = e.Close(ctx) })
	return e
}

func TestCoreEngineInvoke(t *testing.T) {
	e := loadedEngine(t)
	call, err := e.Bind("root", addFunction())
	if err != nil {
		t.Fatalf("Bind() error: %v", err)
	}

	out, err := call.Invoke(context.Background(), []component.Value{
		component.S32Value(2),
		component.S32Value(40),
	})
	if err != nil {
		t.Fatalf("Invoke() error: %v", err)
	}
	if len(out) != 1 || out[0] != component.S32Value(42) {
		t.Errorf("Invoke() = %#v, want [42]", out)
	}

	if err := call.Cleanup(context.Background()); err != nil {
		t.Errorf("Cleanup() error: %v", err)
	}
}

func TestCoreEngineNegativeValues(t *testing.T) {
	e := loadedEngine(t)
	call, err := e.Bind("root", addFunction())
	if err != nil {
		t.Fatalf("Bind() error: %v", err)
	}
	out, err := call.Invoke(context.Background(), []component.Value{
		component.S32Value(-50),
		component.S32Value(8),
	})
	if err != nil {
		t.Fatalf("Invoke() error: %v", err)
	}
	if out[0] != component.S32Value(-42) {
		t.Errorf("Invoke() = %#v, want [-42]", out)
	}
}

func TestCoreEngineTrap(t *testing.T) {
	e := loadedEngine(t)
	call, err := e.Bind("root", &component.Function{Name: "boom"})
	if err != nil {
		t.Fatalf("Bind() error: %v", err)
	}
	if _, err := call.Invoke(context.Background(), nil); err == nil {
		t.Error("Invoke() must surface the trap")
	}
}

func TestCoreEngineBindErrors(t *testing.T) {
	e := loadedEngine(t)

	t.Run("missing export", func(t *testing.T) {
		_, err := e.Bind("root", &component.Function{Name: "nope"})
		if !errors.IsKind(err, errors.KindNotFound) {
			t.Errorf("error = %v, want not_found", err)
		}
	})

	t.Run("composite parameter", func(t *testing.T) {
		fn := &component.Function{
			Name:   "add",
			Params: []component.Param{{Name: "xs", Type: component.List(component.S32)}},
		}
		_, err := e.Bind("root", fn)
		if !errors.IsKind(err, errors.KindUnsupported) {
			t.Errorf("error = %v, want unsupported", err)
		}
	})

	t.Run("core type mismatch", func(t *testing.T) {
		fn := &component.Function{
			Name: "add",
			Params: []component.Param{
				{Name: "a", Type: component.F64},
				{Name: "b", Type: component.F64},
			},
			Results: component.Results{Anon: component.F64},
		}
		_, err := e.Bind("root", fn)
		if !errors.IsKind(err, errors.KindTypeMismatch) {
			t.Errorf("error = %v, want type_mismatch", err)
		}
	})

	t.Run("arity mismatch", func(t *testing.T) {
		fn := &component.Function{
			Name:    "add",
			Params:  []component.Param{{Name: "a", Type: component.S32}},
			Results: component.Results{Anon: component.S32},
		}
		_, err := e.Bind("root", fn)
		if !errors.IsKind(err, errors.KindTypeMismatch) {
			t.Errorf("error = %v, want type_mismatch", err)
		}
	})
}

func TestCoreEngineBindBeforeLoad(t *testing.T) {
	e := NewCoreEngine(nil)
	if _, err := e.Bind("root", addFunction()); err == nil {
		t.Error("Bind() before Load() must fail")
	}
}

func TestCoreEngineLoadRejectsGarbage(t *testing.T) {
	e := NewCoreEngine(nil)
	err := e.Load(context.Background(), []byte("not wasm"))
	if err == nil {
		t.Fatal("Load() accepted invalid bytes")
	}
	if !errors.IsKind(err, errors.KindInvalidInput) {
		t.Errorf("error = %v, want invalid_input", err)
	}
}
