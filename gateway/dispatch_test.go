package gateway

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-gateway/component"
	"github.com/wippyai/wasm-gateway/engine"
	"github.com/wippyai/wasm-gateway/errors"
)

// fakeCallable is a scriptable engine.Callable that records its calls.
type fakeCallable struct {
	mu       sync.Mutex
	invoke   func(args []component.Value) ([]component.Value, error)
	cleanups int
	invokes  int
	active   int
	peak     int
}

func (f *fakeCallable) Invoke(_ context.Context, args []component.Value) ([]component.Value, error) {
	f.mu.Lock()
	f.invokes++
	f.active++
	if f.active > f.peak {
		f.peak = f.active
	}
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.active--
		f.mu.Unlock()
	}()

	if f.invoke == nil {
		return nil, nil
	}
	return f.invoke(args)
}

func (f *fakeCallable) Cleanup(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleanups++
	return nil
}

func addEndpoint(call engine.Callable) *Endpoint {
	return &Endpoint{
		Call:      call,
		Path:      "/root/add",
		Namespace: "root",
		Fn: &component.Function{
			Name: "add",
			Params: []component.Param{
				{Name: "a", Type: component.S32},
				{Name: "b", Type: component.S32},
			},
			Results: component.Results{Anon: component.S32},
		},
	}
}

func addCallable() *fakeCallable {
	return &fakeCallable{invoke: func(args []component.Value) ([]component.Value, error) {
		a := int32(args[0].(component.S32Value))
		b := int32(args[1].(component.S32Value))
		return []component.Value{component.S32Value(a + b)}, nil
	}}
}

func newTestDispatcher() *Dispatcher {
	return NewDispatcher(engine.NewLease(), zap.NewNop())
}

func handle(t *testing.T, d *Dispatcher, ep *Endpoint, body string) (any, error) {
	t.Helper()
	return d.Handle(context.Background(), ep, strings.NewReader(body))
}

func TestDispatchSuccess(t *testing.T) {
	call := addCallable()
	ep := addEndpoint(call)
	d := newTestDispatcher()

	got, err := handle(t, d, ep, `{"a": 2, "b": 40}`)
	if err != nil {
		t.Fatalf("Handle() error: %v", err)
	}
	if got != int64(42) {
		t.Errorf("Handle() = %#v, want 42", got)
	}
	if call.cleanups != 1 {
		t.Errorf("cleanups = %d, want 1", call.cleanups)
	}
}

func TestDispatchMissingParameterFirst(t *testing.T) {
	ep := addEndpoint(addCallable())
	d := newTestDispatcher()

	// "a" is absent and "b" is mismatched; the earlier parameter's absence
	// must win.
	_, err := handle(t, d, ep, `{"b": "not a number"}`)
	if !errors.IsKind(err, errors.KindMissingParameter) {
		t.Fatalf("error = %v, want missing_parameter", err)
	}
	e := err.(*errors.Error)
	if strings.Join(e.Path, ".") != "params.a" {
		t.Errorf("path = %v, want params.a", e.Path)
	}
}

func TestDispatchTypeMismatchPath(t *testing.T) {
	ep := addEndpoint(addCallable())
	d := newTestDispatcher()

	_, err := handle(t, d, ep, `{"a": 1, "b": true}`)
	if !errors.IsKind(err, errors.KindTypeMismatch) {
		t.Fatalf("error = %v, want type_mismatch", err)
	}
	e := err.(*errors.Error)
	if strings.Join(e.Path, ".") != "params.b" {
		t.Errorf("path = %v, want params.b", e.Path)
	}
}

func TestDispatchRejectsBadBodies(t *testing.T) {
	ep := addEndpoint(addCallable())
	d := newTestDispatcher()

	tests := []struct {
		name string
		body string
	}{
		{"array body", `[1, 2]`},
		{"scalar body", `7`},
		{"unknown parameter", `{"a": 1, "b": 2, "c": 3}`},
		{"malformed json", `{"a": `},
		{"trailing data", `{"a": 1, "b": 2} {}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := handle(t, d, ep, tc.body)
			if err == nil {
				t.Fatal("Handle() succeeded, want error")
			}
			if !errors.IsClientError(err) {
				t.Errorf("error %v must be a client error", err)
			}
		})
	}
}

func TestDispatchNoParams(t *testing.T) {
	call := &fakeCallable{}
	ep := &Endpoint{
		Call: call,
		Path: "/root/ping",
		Fn:   &component.Function{Name: "ping"},
	}
	d := newTestDispatcher()

	for _, body := range []string{``, `null`, `{}`} {
		got, err := handle(t, d, ep, body)
		if err != nil {
			t.Errorf("Handle(%q) error: %v", body, err)
		}
		if got != nil {
			t.Errorf("Handle(%q) = %#v, want nil", body, got)
		}
	}

	if _, err := handle(t, d, ep, `{"x": 1}`); err == nil {
		t.Error("arguments to a parameterless function must be rejected")
	}
}

func TestDispatchCallFailure(t *testing.T) {
	call := &fakeCallable{invoke: func([]component.Value) ([]component.Value, error) {
		return nil, fmt.Errorf("trap: unreachable")
	}}
	ep := addEndpoint(call)
	d := newTestDispatcher()

	_, err := handle(t, d, ep, `{"a": 1, "b": 2}`)
	if !errors.IsKind(err, errors.KindCallFailed) {
		t.Fatalf("error = %v, want call_failed", err)
	}
	if errors.IsClientError(err) {
		t.Error("a trap is not a client error")
	}
	// Cleanup still ran after the failed call.
	if call.cleanups != 1 {
		t.Errorf("cleanups = %d, want 1", call.cleanups)
	}
}

func TestDispatchNamedResults(t *testing.T) {
	call := &fakeCallable{invoke: func(args []component.Value) ([]component.Value, error) {
		return []component.Value{component.U32Value(3), component.U32Value(1)}, nil
	}}
	ep := &Endpoint{
		Call: call,
		Path: "/root/divmod",
		Fn: &component.Function{
			Name: "divmod",
			Params: []component.Param{
				{Name: "a", Type: component.U32},
				{Name: "b", Type: component.U32},
			},
			Results: component.Results{Named: []component.Param{
				{Name: "quot", Type: component.U32},
				{Name: "rem", Type: component.U32},
			}},
		},
	}
	d := newTestDispatcher()

	got, err := handle(t, d, ep, `{"a": 7, "b": 2}`)
	if err != nil {
		t.Fatalf("Handle() error: %v", err)
	}
	obj := got.(map[string]any)
	if obj["quot"] != uint64(3) || obj["rem"] != uint64(1) {
		t.Errorf("Handle() = %#v", obj)
	}
}

func TestDispatchResultArityMismatch(t *testing.T) {
	call := &fakeCallable{invoke: func([]component.Value) ([]component.Value, error) {
		return nil, nil
	}}
	ep := addEndpoint(call)
	d := newTestDispatcher()

	_, err := handle(t, d, ep, `{"a": 1, "b": 2}`)
	if !errors.IsKind(err, errors.KindCallFailed) {
		t.Errorf("error = %v, want call_failed", err)
	}
}

func TestDispatchSerializesCalls(t *testing.T) {
	call := addCallable()
	ep := addEndpoint(call)
	d := newTestDispatcher()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := handle(t, d, ep, `{"a": 1, "b": 2}`); err != nil {
				t.Errorf("Handle() error: %v", err)
			}
		}()
	}
	wg.Wait()

	if call.peak != 1 {
		t.Errorf("observed %d concurrent invocations, want 1", call.peak)
	}
	if call.invokes != 16 || call.cleanups != 16 {
		t.Errorf("invokes = %d, cleanups = %d, want 16 each", call.invokes, call.cleanups)
	}
}

func TestDispatchCancelledContext(t *testing.T) {
	ep := addEndpoint(addCallable())
	lease := engine.NewLease()
	d := NewDispatcher(lease, zap.NewNop())

	// Hold the lease so the dispatcher has to wait, then cancel.
	if err := lease.Acquire(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer lease.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := d.Handle(ctx, ep, strings.NewReader(`{"a": 1, "b": 2}`))
	if !errors.IsKind(err, errors.KindCanceled) {
		t.Errorf("error = %v, want canceled", err)
	}
	if errors.IsKind(err, errors.KindCallFailed) {
		t.Errorf("abandoned wait must not report an engine failure: %v", err)
	}
}
