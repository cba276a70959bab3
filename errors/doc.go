// Package errors provides structured error types for the bridge.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the function name, the offending value and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseResolve, errors.KindNotFound).
//		Symbol("add").
//		Cause(loaderErr).
//		Detail("Symbol lookup failed for %q", "add").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.NotFound("add", loaderErr)
//	err := errors.InvalidArgument(1, "x", parseErr)
//
// Error() renders the log form "[phase] kind at symbol: detail (caused by: ...)".
// Message() renders the text that follows "ERR " in a protocol response.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
