// Package errors provides structured error types for the wasm-gateway.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The Error type includes rich context: field path, expected and
// observed shapes, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseEncode, errors.KindTypeMismatch).
//		Path("params", "amount").
//		Want("integer").
//		Got("string").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.MissingParameter("amount")
//	err := errors.TypeMismatch(errors.PhaseEncode, path, "integer", "string")
//
// IsClientError distinguishes request-caused errors (400-class) from
// engine-caused ones (500-class). All errors implement the standard error
// interface and support errors.Is/As.
package errors
