package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in request processing the error occurred
type Phase string

const (
	PhaseUsage    Phase = "usage"    // command line handling
	PhaseLoad     Phase = "load"     // library loading, listener binding
	PhaseProtocol Phase = "protocol" // request line tokenization
	PhaseParse    Phase = "parse"    // signature parsing
	PhaseResolve  Phase = "resolve"  // symbol lookup
	PhaseInvoke   Phase = "invoke"   // argument marshaling and the call itself
	PhaseServe    Phase = "serve"    // connection handling
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidInput    Kind = "invalid_input"
	KindMalformed       Kind = "malformed"
	KindUnsupported     Kind = "unsupported"
	KindNotFound        Kind = "not_found"
	KindInvalidArgument Kind = "invalid_argument"
	KindCallFailed      Kind = "call_failed"
	KindLoad            Kind = "load"
	KindClosed          Kind = "closed"
)

// Error is the structured error type used throughout the bridge
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Symbol string
	Detail string
}

// Error implements the error interface. The rendering is meant for logs;
// Message returns the text sent to protocol clients.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Symbol != "" {
		b.WriteString(" at ")
		b.WriteString(e.Symbol)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Message renders the error for a protocol response: the detail, followed
// by the cause when there is one.
func (e *Error) Message() string {
	switch {
	case e.Cause == nil:
		return e.Detail
	case e.Detail == "":
		return e.Cause.Error()
	default:
		return e.Detail + ": " + e.Cause.Error()
	}
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

// Symbol sets the function name the error relates to
func (b *Builder) Symbol(name string) *Builder {
	b.err.Symbol = name
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

// Usage creates a command line usage error
func Usage(detail string) *Error {
	return &Error{
		Phase:  PhaseUsage,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Load creates a library loading or listener binding error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindLoad,
		Detail: detail,
		Cause:  cause,
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

// Malformed creates a malformed text error
func Malformed(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindMalformed,
		Detail: detail,
	}
}

// Unsupported creates an unsupported value error
func Unsupported(phase Phase, what string, value any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: fmt.Sprintf("Unsupported %s: %v", what, value),
		Value:  value,
	}
}

// NotFound creates a symbol resolution error carrying the loader diagnostic
func NotFound(name string, cause error) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindNotFound,
		Symbol: name,
		Detail: fmt.Sprintf("Symbol lookup failed for %q", name),
		Cause:  cause,
	}
}

// InvalidArgument creates an argument marshaling error
func InvalidArgument(index int, token string, cause error) *Error {
	return &Error{
		Phase:  PhaseInvoke,
		Kind:   KindInvalidArgument,
		Detail: "Argument parsing error",
		Value:  token,
		Cause:  argumentCause{index: index, token: token, err: cause},
	}
}

// CallFailed creates an error for a call that could not be performed
func CallFailed(name string, cause error) *Error {
	return &Error{
		Phase:  PhaseInvoke,
		Kind:   KindCallFailed,
		Symbol: name,
		Detail: fmt.Sprintf("Call to %q failed", name),
		Cause:  cause,
	}
}

// Closed creates an error for use of a released resource
func Closed(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindClosed,
		Detail: what + " is closed",
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

type argumentCause struct {
	err   error
	token string
	index int
}

func (a argumentCause) Error() string {
	return fmt.Sprintf("argument %d %q is not a 32-bit integer", a.index, a.token)
}

func (a argumentCause) Unwrap() error {
	return a.err
}
