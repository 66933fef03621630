// Package schema maps component type descriptors to JSON Schema. The mapping
// is total over the descriptor model and mirrors the codec's wire
// conventions, so a request body that validates against a mapped schema is
// exactly a body the codec will accept.
package schema
