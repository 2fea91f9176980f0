// Package errors provides structured error types for the printnf module.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the format string position, field path, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseEncode, errors.KindTypeMismatch).
//		Path("arg2").
//		Pos(14).
//		Detail("string argument cannot satisfy %q", "%u").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.UnsupportedSpecifier(errors.PhaseScan, pos, 'q')
//	err := errors.AllocationFailed(errors.PhaseEncode, 1024, 512)
//
// Every failure the format encoder can produce is returned as an *Error;
// callers that want the abort-on-error behaviour wrap the encoder in strict mode.
// All errors implement the standard error interface and support errors.Is/As.
// Kind-only sentinels such as ErrUnsupportedSpecifier match regardless of phase.
package errors
