package engine

import (
	"context"

	"github.com/wippyai/wasm-gateway/component"
)

// Callable invokes one bound component export. Invoke and Cleanup are not
// safe for concurrent use; the dispatcher serializes calls through a Lease.
type Callable interface {
	// Invoke runs the export with fully typed arguments and returns its
	// results in declaration order.
	Invoke(ctx context.Context, args []component.Value) ([]component.Value, error)

	// Cleanup releases per-call state after a completed or failed
	// invocation. It runs under the same lease as the call itself.
	Cleanup(ctx context.Context) error
}

// Binder resolves a function signature to a callable at registration time.
// Binding fails when the export is missing or its runtime signature cannot
// carry the declared types.
type Binder func(namespace string, fn *component.Function) (Callable, error)
