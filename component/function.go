package component

import (
	"strings"
)

// Param is one named, typed function parameter.
type Param struct {
	Type *Desc
	Name string
}

// Results describes a function's result shape: named results, a single
// anonymous result, or none. At most one of Named/Anon is set.
type Results struct {
	Anon  *Desc
	Named []Param
}

// IsEmpty reports whether the function returns nothing.
func (r Results) IsEmpty() bool {
	return r.Anon == nil && len(r.Named) == 0
}

// Function is one exported function signature. Created once at load time,
// read-only thereafter.
type Function struct {
	Name    string
	Docs    string
	Params  []Param
	Results Results
}

// Summary returns the first line of the function's documentation.
func (f *Function) Summary() string {
	line, _, _ := strings.Cut(f.Docs, "\n")
	return strings.TrimSpace(line)
}

// Description returns the documentation after the summary line, with any
// blank lines between summary and body stripped.
func (f *Function) Description() string {
	_, rest, found := strings.Cut(f.Docs, "\n")
	if !found {
		return ""
	}
	lines := strings.Split(rest, "\n")
	start := 0
	for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	if start == len(lines) {
		return ""
	}
	return strings.TrimRight(strings.Join(lines[start:], "\n"), "\n")
}

// Param returns the named parameter, or nil.
func (f *Function) Param(name string) *Param {
	for i := range f.Params {
		if f.Params[i].Name == name {
			return &f.Params[i]
		}
	}
	return nil
}

// Interface is the introspected export surface of one component: its
// namespace and exported functions in source order.
type Interface struct {
	Namespace string
	Functions []Function
}

// Function returns the named exported function, or nil.
func (i *Interface) Function(name string) *Function {
	for idx := range i.Functions {
		if i.Functions[idx].Name == name {
			return &i.Functions[idx]
		}
	}
	return nil
}
