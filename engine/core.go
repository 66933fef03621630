package engine

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-gateway/component"
	"github.com/wippyai/wasm-gateway/errors"
)

// CoreEngine runs a compiled module on wazero and binds exports whose
// signatures lower to flat core-wasm scalars. Composite parameters need the
// canonical ABI and are rejected at bind time, never at call time.
type CoreEngine struct {
	runtime wazero.Runtime
	module  api.Module
	log     *zap.Logger
}

// NewCoreEngine returns an engine with no module loaded.
func NewCoreEngine(logger *zap.Logger) *CoreEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CoreEngine{log: logger}
}

// Load compiles and instantiates the module bytes. WASI preview 1 imports
// are provided so modules built against wasi-libc instantiate cleanly.
func (e *CoreEngine) Load(ctx context.Context, wasm []byte) error {
	rt := wazero.NewRuntime(ctx)

	wasi_snapshot_preview1.MustInstantiate(ctx, rt)

	compiled, err := rt.CompileModule(ctx, wasm)
	if err != nil {
		_ = rt.Close(ctx)
		return errors.Wrap(errors.PhaseLoad, errors.KindInvalidInput, err, "compile module")
	}
	mod, err := rt.InstantiateModule(ctx, compiled,
		wazero.NewModuleConfig().WithName("component").WithStartFunctions())
	if err != nil {
		_ = rt.Close(ctx)
		return errors.Wrap(errors.PhaseLoad, errors.KindInvalidInput, err, "instantiate module")
	}

	e.runtime = rt
	e.module = mod
	e.log.Info("module loaded", zap.Int("size", len(wasm)))
	return nil
}

// Close releases the runtime and all instantiated modules.
func (e *CoreEngine) Close(ctx context.Context) error {
	if e.runtime == nil {
		return nil
	}
	err := e.runtime.Close(ctx)
	e.runtime = nil
	e.module = nil
	return err
}

// Bind resolves fn to an exported core function. The export is looked up by
// bare name first, then by the namespaced "ns#name" form components use for
// interface exports.
func (e *CoreEngine) Bind(namespace string, fn *component.Function) (Callable, error) {
	if e.module == nil {
		return nil, errors.New(errors.PhaseLoad, errors.KindNotFound).
			Detail("no module loaded").
			Build()
	}

	export := e.module.ExportedFunction(fn.Name)
	name := fn.Name
	if export == nil {
		name = namespace + "#" + fn.Name
		export = e.module.ExportedFunction(name)
	}
	if export == nil {
		return nil, errors.NotFound(errors.PhaseLoad, "export", fn.Name)
	}

	params := make([]*component.Desc, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = p.Type
	}
	var results []*component.Desc
	switch {
	case fn.Results.Anon != nil:
		results = []*component.Desc{fn.Results.Anon}
	case len(fn.Results.Named) > 0:
		for _, p := range fn.Results.Named {
			results = append(results, p.Type)
		}
	}

	def := export.Definition()
	if err := checkSignature(fn.Name, params, def.ParamTypes(), "parameter"); err != nil {
		return nil, err
	}
	if err := checkSignature(fn.Name, results, def.ResultTypes(), "result"); err != nil {
		return nil, err
	}

	e.log.Debug("export bound",
		zap.String("function", fn.Name),
		zap.String("export", name),
		zap.String("namespace", namespace))

	return &coreCallable{fn: export, params: params, results: results}, nil
}

// checkSignature verifies that each descriptor lowers to the matching core
// value type.
func checkSignature(fname string, descs []*component.Desc, core []api.ValueType, what string) error {
	if len(descs) != len(core) {
		return errors.New(errors.PhaseLoad, errors.KindTypeMismatch).
			Want(fmt.Sprintf("%d %ss", len(descs), what)).
			Got(fmt.Sprintf("%d", len(core))).
			Detail("export %q signature arity", fname).
			Build()
	}
	for i, d := range descs {
		vt, ok := coreType(d)
		if !ok {
			return errors.Unsupported(errors.PhaseLoad,
				fmt.Sprintf("export %q: %s %d has type %s, which needs the canonical ABI", fname, what, i, d))
		}
		if vt != core[i] {
			return errors.New(errors.PhaseLoad, errors.KindTypeMismatch).
				Want(d.String()).
				Got(api.ValueTypeName(core[i])).
				Detail("export %q %s %d", fname, what, i).
				Build()
		}
	}
	return nil
}

// coreType maps a scalar descriptor to its flat core representation.
func coreType(d *component.Desc) (api.ValueType, bool) {
	switch d.Kind {
	case component.KindBool, component.KindU8, component.KindS8,
		component.KindU16, component.KindS16, component.KindU32,
		component.KindS32, component.KindChar, component.KindResource:
		return api.ValueTypeI32, true
	case component.KindU64, component.KindS64:
		return api.ValueTypeI64, true
	case component.KindF32:
		return api.ValueTypeF32, true
	case component.KindF64:
		return api.ValueTypeF64, true
	default:
		return 0, false
	}
}

type coreCallable struct {
	fn      api.Function
	params  []*component.Desc
	results []*component.Desc
}

func (c *coreCallable) Invoke(ctx context.Context, args []component.Value) ([]component.Value, error) {
	if len(args) != len(c.params) {
		return nil, errors.New(errors.PhaseDispatch, errors.KindInvalidInput).
			Want(fmt.Sprintf("%d arguments", len(c.params))).
			Got(fmt.Sprintf("%d", len(args))).
			Build()
	}

	stack := make([]uint64, len(args))
	for i, arg := range args {
		raw, err := lowerScalar(arg)
		if err != nil {
			return nil, err
		}
		stack[i] = raw
	}

	out, err := c.fn.Call(ctx, stack...)
	if err != nil {
		return nil, err
	}
	if len(out) != len(c.results) {
		return nil, errors.New(errors.PhaseDispatch, errors.KindCallFailed).
			Want(fmt.Sprintf("%d results", len(c.results))).
			Got(fmt.Sprintf("%d", len(out))).
			Build()
	}

	values := make([]component.Value, len(out))
	for i, raw := range out {
		values[i] = liftScalar(raw, c.results[i])
	}
	return values, nil
}

// Cleanup is a no-op: flat scalar calls leave no per-call state behind.
func (c *coreCallable) Cleanup(context.Context) error {
	return nil
}

func lowerScalar(v component.Value) (uint64, error) {
	switch val := v.(type) {
	case component.BoolValue:
		if val {
			return 1, nil
		}
		return 0, nil
	case component.U8Value:
		return api.EncodeU32(uint32(val)), nil
	case component.S8Value:
		return api.EncodeI32(int32(val)), nil
	case component.U16Value:
		return api.EncodeU32(uint32(val)), nil
	case component.S16Value:
		return api.EncodeI32(int32(val)), nil
	case component.U32Value:
		return api.EncodeU32(uint32(val)), nil
	case component.S32Value:
		return api.EncodeI32(int32(val)), nil
	case component.U64Value:
		return uint64(val), nil
	case component.S64Value:
		return uint64(int64(val)), nil
	case component.F32Value:
		return api.EncodeF32(float32(val)), nil
	case component.F64Value:
		return api.EncodeF64(float64(val)), nil
	case component.CharValue:
		return api.EncodeU32(uint32(val)), nil
	case component.ResourceValue:
		return api.EncodeU32(uint32(val)), nil
	default:
		return 0, errors.Unsupported(errors.PhaseDispatch,
			fmt.Sprintf("lowering %s values", v.ValueKind()))
	}
}

func liftScalar(raw uint64, d *component.Desc) component.Value {
	switch d.Kind {
	case component.KindBool:
		return component.BoolValue(api.DecodeU32(raw) != 0)
	case component.KindU8:
		return component.U8Value(api.DecodeU32(raw))
	case component.KindS8:
		return component.S8Value(api.DecodeI32(raw))
	case component.KindU16:
		return component.U16Value(api.DecodeU32(raw))
	case component.KindS16:
		return component.S16Value(api.DecodeI32(raw))
	case component.KindU32:
		return component.U32Value(api.DecodeU32(raw))
	case component.KindS32:
		return component.S32Value(api.DecodeI32(raw))
	case component.KindU64:
		return component.U64Value(raw)
	case component.KindS64:
		return component.S64Value(int64(raw))
	case component.KindF32:
		return component.F32Value(api.DecodeF32(raw))
	case component.KindF64:
		return component.F64Value(api.DecodeF64(raw))
	case component.KindChar:
		return component.CharValue(rune(api.DecodeU32(raw)))
	case component.KindResource:
		return component.ResourceValue(api.DecodeU32(raw))
	default:
		return nil
	}
}
