package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseLoad     Phase = "load"     // interface parsing and endpoint registration
	PhaseSchema   Phase = "schema"   // schema derivation
	PhaseEncode   Phase = "encode"   // JSON to typed value
	PhaseDecode   Phase = "decode"   // typed value to JSON
	PhaseDispatch Phase = "dispatch" // request handling and invocation
	PhaseCleanup  Phase = "cleanup"  // post-call cleanup
)

// Kind categorizes the error
type Kind string

const (
	KindInterfaceDecode  Kind = "interface_decode"
	KindDuplicatePath    Kind = "duplicate_path"
	KindMissingParameter Kind = "missing_parameter"
	KindTypeMismatch     Kind = "type_mismatch"
	KindUnsupported      Kind = "unsupported"
	KindCallFailed       Kind = "call_failed"
	KindCanceled         Kind = "canceled"
	KindCleanupFailed    Kind = "cleanup_failed"
	KindNotFound         Kind = "not_found"
	KindInvalidInput     Kind = "invalid_input"
)

// Error is the structured error type used throughout the gateway
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Want   string
	Got    string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Want != "" || e.Got != "" {
		b.WriteString(": ")
		if e.Want != "" && e.Got != "" {
			b.WriteString("expected ")
			b.WriteString(e.Want)
			b.WriteString(", got ")
			b.WriteString(e.Got)
		} else if e.Want != "" {
			b.WriteString("expected ")
			b.WriteString(e.Want)
		} else {
			b.WriteString("got ")
			b.WriteString(e.Got)
		}
	}

	if e.Detail != "" {
		if e.Want != "" || e.Got != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// IsKind reports whether err is an *Error of the given kind
func IsKind(err error, kind Kind) bool {
	e, ok := err.(*Error)
	if !ok {
		return false
	}
	return e.Kind == kind
}

// IsClientError reports whether err was caused by malformed client input
// and should map to a 400-class HTTP response.
func IsClientError(err error) bool {
	e, ok := err.(*Error)
	if !ok {
		return false
	}
	switch e.Kind {
	case KindMissingParameter, KindTypeMismatch, KindInvalidInput:
		return true
	default:
		return false
	}
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Want sets the expected shape
func (b *Builder) Want(w string) *Builder {
	b.err.Want = w
	return b
}

// Got sets the observed shape
func (b *Builder) Got(g string) *Builder {
	b.err.Got = g
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// InterfaceDecode creates a fatal interface-description parse error
func InterfaceDecode(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInterfaceDecode,
		Detail: detail,
		Cause:  cause,
	}
}

// DuplicatePath reports two functions deriving the same endpoint path
func DuplicatePath(path, kept, dropped string) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindDuplicatePath,
		Detail: fmt.Sprintf("path %q already bound to %q; dropping %q", path, kept, dropped),
		Value:  path,
	}
}

// MissingParameter reports an absent required top-level parameter
func MissingParameter(name string) *Error {
	return &Error{
		Phase:  PhaseDispatch,
		Kind:   KindMissingParameter,
		Path:   []string{"params", name},
		Detail: fmt.Sprintf("required parameter %q not found", name),
	}
}

// TypeMismatch reports a JSON value whose shape does not match the descriptor
func TypeMismatch(phase Phase, path []string, want, got string) *Error {
	return &Error{
		Phase: phase,
		Kind:  KindTypeMismatch,
		Path:  path,
		Want:  want,
		Got:   got,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// CallFailed wraps a trap or engine failure from the component callable
func CallFailed(function string, cause error) *Error {
	return &Error{
		Phase:  PhaseDispatch,
		Kind:   KindCallFailed,
		Detail: fmt.Sprintf("call %q", function),
		Cause:  cause,
	}
}

// CleanupFailed wraps a post-call cleanup failure. It never overrides the
// call's own outcome; callers log it and carry on.
func CleanupFailed(function string, cause error) *Error {
	return &Error{
		Phase:  PhaseCleanup,
		Kind:   KindCleanupFailed,
		Detail: fmt.Sprintf("cleanup after %q", function),
		Cause:  cause,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
