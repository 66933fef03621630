// Package codec converts between JSON and typed component values.
//
// Encode walks a decoded JSON value against a type descriptor, checking
// shape and range at every step and reporting the first violation with its
// path. Decode is the reverse direction and is total: any typed value has a
// JSON rendering. For values the codec itself produced, Decode(Encode(v))
// round-trips to an equivalent JSON document.
package codec
