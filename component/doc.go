// Package component models the exported surface of a WebAssembly component:
// type descriptors, typed values, and function signatures.
//
// A Desc describes one component-model type as a tree. Scalar descriptors
// are shared singletons (component.Bool, component.U32); composites are
// built with constructors (List, Record, Variant) or resolved from WIT text
// by Parse. A Value carries one runtime value tagged with its Kind; the
// concrete types (U32Value, RecordValue, VariantValue) mirror the descriptor
// kinds one to one.
//
// Parse reads a textual WIT interface description and returns the exported
// functions grouped by interface or world, with named types resolved and
// documentation attached. FromWIT converts types from an already parsed
// go.bytecodealliance.org/wit representation into the same descriptor model.
package component
