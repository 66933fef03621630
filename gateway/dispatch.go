package gateway

import (
	"context"
	"encoding/json"
	"io"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-gateway/codec"
	"github.com/wippyai/wasm-gateway/component"
	"github.com/wippyai/wasm-gateway/engine"
	"github.com/wippyai/wasm-gateway/errors"
)

// Guard grants exclusive access to the instance for the duration of one
// call plus its cleanup. *engine.Lease implements it.
type Guard interface {
	Acquire(ctx context.Context) error
	Release()
}

var _ Guard = (*engine.Lease)(nil)

// Dispatcher turns a JSON request body into a typed invocation and the
// typed results back into a JSON response value.
type Dispatcher struct {
	guard Guard
	log   *zap.Logger
}

// NewDispatcher returns a dispatcher serializing all calls through guard.
func NewDispatcher(guard Guard, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{guard: guard, log: logger}
}

// Handle runs one request against an endpoint. The returned value is ready
// for json.Marshal; any error carries the phase and kind the HTTP layer
// needs for status mapping.
func (d *Dispatcher) Handle(ctx context.Context, ep *Endpoint, body io.Reader) (any, error) {
	args, err := d.readArgs(ep.Fn, body)
	if err != nil {
		return nil, err
	}

	// Acquire fails only when the request context ends first, so a gone
	// client never counts as an engine failure.
	if err := d.guard.Acquire(ctx); err != nil {
		return nil, errors.Wrap(errors.PhaseDispatch, errors.KindCanceled, err, "request ended while waiting for instance")
	}
	defer d.guard.Release()

	out, callErr := ep.Call.Invoke(ctx, args)

	// Cleanup runs under the same hold whether or not the call succeeded.
	// Its failure is logged but never overrides the call's outcome.
	if cerr := ep.Call.Cleanup(ctx); cerr != nil {
		d.log.Warn("cleanup failed",
			zap.String("path", ep.Path),
			zap.Error(errors.CleanupFailed(ep.Fn.Name, cerr)))
	}

	if callErr != nil {
		if _, typed := callErr.(*errors.Error); typed {
			return nil, callErr
		}
		return nil, errors.CallFailed(ep.Fn.Name, callErr)
	}

	return d.respond(ep.Fn, out)
}

// readArgs decodes and type-checks the request body against the parameter
// list. Parameters are checked in declaration order, so a missing earlier
// parameter is reported before a mismatched later one.
func (d *Dispatcher) readArgs(fn *component.Function, body io.Reader) ([]component.Value, error) {
	raw, err := decodeBody(body)
	if err != nil {
		return nil, err
	}

	if len(fn.Params) == 0 {
		// Tolerate an empty body, null, or an empty object.
		if raw == nil {
			return nil, nil
		}
		obj, ok := raw.(map[string]any)
		if !ok || len(obj) != 0 {
			return nil, errors.InvalidInput(errors.PhaseDispatch, "function takes no parameters")
		}
		return nil, nil
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, errors.New(errors.PhaseDispatch, errors.KindInvalidInput).
			Want("JSON object of parameters").
			Got(bodyShape(raw)).
			Build()
	}

	args := make([]component.Value, len(fn.Params))
	for i, p := range fn.Params {
		v, present := obj[p.Name]
		if !present {
			return nil, errors.MissingParameter(p.Name)
		}
		ev, err := codec.EncodeAt(v, p.Type, []string{"params", p.Name})
		if err != nil {
			return nil, err
		}
		args[i] = ev
	}

	for key := range obj {
		if fn.Param(key) == nil {
			return nil, errors.New(errors.PhaseDispatch, errors.KindInvalidInput).
				Path("params", key).
				Detail("unknown parameter %q", key).
				Build()
		}
	}
	return args, nil
}

// respond maps invocation results to the response value: null for none, the
// bare value for a single anonymous result, an object for named results.
func (d *Dispatcher) respond(fn *component.Function, out []component.Value) (any, error) {
	switch {
	case fn.Results.IsEmpty():
		if len(out) != 0 {
			return nil, errors.CallFailed(fn.Name, nil)
		}
		return nil, nil

	case fn.Results.Anon != nil:
		if len(out) != 1 {
			return nil, errors.New(errors.PhaseDecode, errors.KindCallFailed).
				Detail("function %q returned %d values, want 1", fn.Name, len(out)).
				Build()
		}
		return codec.Decode(out[0]), nil

	default:
		if len(out) != len(fn.Results.Named) {
			return nil, errors.New(errors.PhaseDecode, errors.KindCallFailed).
				Detail("function %q returned %d values, want %d", fn.Name, len(out), len(fn.Results.Named)).
				Build()
		}
		resp := make(map[string]any, len(out))
		for i, p := range fn.Results.Named {
			resp[p.Name] = codec.Decode(out[i])
		}
		return resp, nil
	}
}

// decodeBody reads the request body as one JSON value with numbers kept as
// json.Number. An empty body decodes to nil.
func decodeBody(body io.Reader) (any, error) {
	dec := json.NewDecoder(body)
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, errors.Wrap(errors.PhaseDispatch, errors.KindInvalidInput, err, "request body is not valid JSON")
	}
	if dec.More() {
		return nil, errors.InvalidInput(errors.PhaseDispatch, "trailing data after JSON body")
	}
	return raw, nil
}

func bodyShape(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case json.Number:
		return "number"
	case []any:
		return "array"
	default:
		return "object"
	}
}
