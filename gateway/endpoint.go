package gateway

import (
	"go.uber.org/zap"

	"github.com/wippyai/wasm-gateway/component"
	"github.com/wippyai/wasm-gateway/engine"
	"github.com/wippyai/wasm-gateway/errors"
	"github.com/wippyai/wasm-gateway/openapi"
)

// Endpoint is one registered route: a path, the function it exposes, and
// the bound callable that runs it.
type Endpoint struct {
	Call      engine.Callable
	Fn        *component.Function
	Path      string
	Namespace string
}

// Options control endpoint registration.
type Options struct {
	// Strict turns registration conflicts and bind failures into errors
	// instead of skips.
	Strict bool
}

// BuildEndpoints derives one endpoint per exported function, preserving the
// interface order. The path is "/<namespace>/<function>". When two functions
// map to the same path the first registration wins and the loser is dropped
// with a warning; a function whose signature the binder cannot support is
// likewise skipped. With Options.Strict both cases fail the build instead.
func BuildEndpoints(ifaces []component.Interface, bind engine.Binder, opts Options, logger *zap.Logger) ([]Endpoint, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var endpoints []Endpoint
	seen := make(map[string]string)

	for i := range ifaces {
		iface := &ifaces[i]
		for j := range iface.Functions {
			fn := &iface.Functions[j]
			path := "/" + iface.Namespace + "/" + fn.Name

			if kept, dup := seen[path]; dup {
				err := errors.DuplicatePath(path, kept, fn.Name)
				if opts.Strict {
					return nil, err
				}
				logger.Warn("endpoint dropped", zap.String("path", path), zap.Error(err))
				continue
			}

			call, err := bind(iface.Namespace, fn)
			if err != nil {
				if opts.Strict {
					return nil, err
				}
				logger.Warn("function skipped",
					zap.String("path", path),
					zap.String("function", fn.Name),
					zap.Error(err))
				continue
			}

			seen[path] = fn.Name
			endpoints = append(endpoints, Endpoint{
				Call:      call,
				Fn:        fn,
				Path:      path,
				Namespace: iface.Namespace,
			})
			logger.Info("endpoint registered",
				zap.String("path", path),
				zap.Int("params", len(fn.Params)))
		}
	}
	return endpoints, nil
}

// Routes projects the endpoints into the form the OpenAPI builder consumes,
// in registration order.
func Routes(endpoints []Endpoint) []openapi.Route {
	routes := make([]openapi.Route, len(endpoints))
	for i, ep := range endpoints {
		routes[i] = openapi.Route{Path: ep.Path, Fn: ep.Fn}
	}
	return routes
}
