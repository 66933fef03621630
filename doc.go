// Package wasmgateway exposes a WebAssembly component's typed exports as
// JSON-over-HTTP endpoints with a generated OpenAPI description.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	wasmgateway/         Root package (documentation only)
//	├── component/       TypeDescriptor model, typed values, WIT interface parsing
//	├── schema/          TypeDescriptor to JSON Schema mapping
//	├── codec/           Bidirectional JSON <-> typed value conversion
//	├── engine/          Execution engine interfaces and wazero-backed core engine
//	├── gateway/         Endpoint registry, request dispatcher, HTTP server
//	├── openapi/         OpenAPI 3.0 document assembly
//	├── errors/          Structured error types with phase/kind taxonomy
//	└── cmd/             wasm-gateway CLI (convert, serve, explore)
//
// # Quick Start
//
// Parse an interface, bind it to an engine, and serve:
//
//	ifaces, err := component.Parse(witText)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	eng := engine.NewCoreEngine(logger)
//	if err := eng.Load(ctx, wasmBytes); err != nil {
//	    log.Fatal(err)
//	}
//	defer eng.Close(ctx)
//
//	endpoints, err := gateway.BuildEndpoints(ifaces, eng.Bind, gateway.Options{}, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	d := gateway.NewDispatcher(engine.NewLease(), logger)
//	srv := gateway.NewServer(endpoints, d, gateway.Config{Addr: ":8080"}, logger)
//	log.Fatal(srv.ListenAndServe(ctx))
//
// # The Type Bridge
//
// The core of the gateway is a lossless bridge between JSON values and
// component-model typed values. Every exported function's signature is
// introspected into component.Desc descriptors; schema.Map derives a JSON
// Schema for each descriptor, and codec.Encode/codec.Decode convert between
// JSON and component.Value so that a client holding only the generated
// schema can always construct requests and parse responses.
//
// # Concurrency
//
// A bound component instance is a single shared mutable resource. All calls
// against it serialize on an exclusive engine.Lease held for the duration of
// invoke plus post-call cleanup. The dispatcher depends only on the Guard
// interface, so a pooled-instance strategy can replace the single shared
// instance without touching dispatch logic.
package wasmgateway
