// Package engine binds component exports to invocable functions. The
// Callable and Binder types decouple dispatch from the execution backend;
// CoreEngine is the wazero-backed implementation for modules whose exports
// use flat scalar signatures. Exclusive instance access during a call is
// enforced with a Lease.
package engine
