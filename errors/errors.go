package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseScan    Phase = "scan"    // format string scanning
	PhaseEncode  Phase = "encode"  // argument serialization
	PhaseRender  Phase = "render"  // sink re-scan and display
	PhaseLayout  Phase = "layout"  // struct layout registration/decoding
	PhaseMemory  Phase = "memory"  // guest memory and heap access
	PhaseHost    Phase = "host"    // env host functions
	PhaseLoad    Phase = "load"    // guest module loading
	PhaseRuntime Phase = "runtime" // guest calls
	PhaseConfig  Phase = "config"  // configuration files
	PhaseCapture Phase = "capture" // capture frame transport
)

// Kind categorizes the error
type Kind string

const (
	KindAllocation           Kind = "allocation"
	KindUnsupportedSpecifier Kind = "unsupported_specifier"
	KindUnterminatedStruct   Kind = "unterminated_struct"
	KindTypeMismatch         Kind = "type_mismatch"
	KindArgumentCount        Kind = "argument_count"
	KindReentrant            Kind = "reentrant"
	KindInsufficientCapacity Kind = "insufficient_capacity"
	KindOutOfBounds          Kind = "out_of_bounds"
	KindNotFound             Kind = "not_found"
	KindInvalidInput         Kind = "invalid_input"
	KindDuplicate            Kind = "duplicate"
	KindCrash                Kind = "crash"
	KindInstantiation        Kind = "instantiation"
	KindNilPointer           Kind = "nil_pointer"
)

// Sentinels for errors.Is. A sentinel without a Phase matches any phase.
var (
	ErrAllocation           = &Error{Kind: KindAllocation}
	ErrUnsupportedSpecifier = &Error{Kind: KindUnsupportedSpecifier}
	ErrUnterminatedStruct   = &Error{Kind: KindUnterminatedStruct}
	ErrTypeMismatch         = &Error{Kind: KindTypeMismatch}
	ErrArgumentCount        = &Error{Kind: KindArgumentCount}
	ErrReentrant            = &Error{Kind: KindReentrant}
	ErrInsufficientCapacity = &Error{Kind: KindInsufficientCapacity}
	ErrOutOfBounds          = &Error{Kind: KindOutOfBounds}
	ErrNotFound             = &Error{Kind: KindNotFound}
	ErrCrash                = &Error{Kind: KindCrash}
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Path   []string
	// Pos is the byte offset into the format string, or -1 when not applicable.
	Pos int
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

	if e.Pos >= 0 && (e.Kind == KindUnsupportedSpecifier || e.Kind == KindUnterminatedStruct) {
		fmt.Fprintf(&b, " (pos %d)", e.Pos)
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

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase == "" {
		return e.Kind == t.Kind
	}
	return e.Phase == t.Phase && e.Kind == t.Kind
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
			Pos:   -1,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Pos sets the format string offset
func (b *Builder) Pos(pos int) *Builder {
	b.err.Pos = pos
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

// AllocationFailed creates an allocation failure error
func AllocationFailed(phase Phase, requested, limit int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAllocation,
		Pos:    -1,
		Detail: fmt.Sprintf("cannot grow to %d elements (limit %d)", requested, limit),
		Value:  requested,
	}
}

// UnsupportedSpecifier creates an error for an unrecognized character after '%'.
// A zero verb means the format string ended right after '%'.
func UnsupportedSpecifier(phase Phase, pos int, verb byte) *Error {
	detail := fmt.Sprintf("unsupported format specifier %q", "%"+string(verb))
	if verb == 0 {
		detail = "dangling '%' at end of format string"
	}
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupportedSpecifier,
		Pos:    pos,
		Detail: detail,
		Value:  verb,
	}
}

// UnterminatedStruct creates an error for a '%{' without a closing brace
func UnterminatedStruct(phase Phase, pos int, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnterminatedStruct,
		Pos:    pos,
		Detail: fmt.Sprintf("missing closing brace in struct name format specifier %q", "%{"+name),
		Value:  name,
	}
}

// TypeMismatch creates an argument/specifier type mismatch error
func TypeMismatch(phase Phase, index int, verb byte, got string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Pos:    -1,
		Path:   []string{fmt.Sprintf("arg%d", index)},
		Detail: fmt.Sprintf("%s argument cannot satisfy %q", got, "%"+string(verb)),
	}
}

// ArgumentCount creates an error for a specifier/argument count mismatch
func ArgumentCount(phase Phase, want, got int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindArgumentCount,
		Pos:    -1,
		Detail: fmt.Sprintf("format needs %d arguments, got %d", want, got),
	}
}

// Reentrant creates an error for a nested call into a busy encoder
func Reentrant(phase Phase) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindReentrant,
		Pos:    -1,
		Detail: "encoder invoked while a previous message is still being delivered",
	}
}

// InsufficientCapacity creates an error for a writer given too small a buffer
func InsufficientCapacity(phase Phase, need, have int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInsufficientCapacity,
		Pos:    -1,
		Detail: fmt.Sprintf("insufficient space for writing: need %d bytes, have %d", need, have),
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, offset, length uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Pos:    -1,
		Detail: fmt.Sprintf("access out of bounds: offset=%d, length=%d", offset, length),
		Value:  offset,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Pos:    -1,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Pos:    -1,
		Detail: detail,
	}
}

// Duplicate creates a duplicate registration error
func Duplicate(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindDuplicate,
		Pos:    -1,
		Detail: fmt.Sprintf("%s %q already registered", what, name),
	}
}

// Crash creates an error for a guest-requested abort
func Crash(message string) *Error {
	return &Error{
		Phase:  PhaseHost,
		Kind:   KindCrash,
		Pos:    -1,
		Detail: message,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Pos:    -1,
		Detail: detail,
		Cause:  cause,
	}
}
