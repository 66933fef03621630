// Package openapi renders the registered endpoints as an OpenAPI 3.0.3
// document. Paths appear in registration order and every operation's request
// and response schemas come from the same type mapping the codec enforces at
// runtime.
package openapi
