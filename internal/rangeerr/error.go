// Package rangeerr defines the single tagged error type used across the
// buffer, camera, terrain, terrain generator, range pipeline, and kernel
// dispatch packages.
package rangeerr

import "fmt"

// Kind classifies a failure so callers can branch on it without parsing
// messages.
type Kind int

const (
	// InvalidArgument covers wrong buffer shape/depth, a non-conformant
	// terrain size, or a field-of-view outside (0, pi).
	InvalidArgument Kind = iota
	// OutOfRange covers a grid index out of bounds in Buffer.At/Set.
	OutOfRange
	// ResourceExhausted covers allocation failure of an intermediate buffer.
	ResourceExhausted
	// BackendError covers accelerator build/dispatch/copy failure.
	BackendError
	// Cancelled covers a cooperative cancellation request.
	Cancelled
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "InvalidArgument"
	case OutOfRange:
		return "OutOfRange"
	case ResourceExhausted:
		return "ResourceExhausted"
	case BackendError:
		return "BackendError"
	case Cancelled:
		return "Cancelled"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is the single error type returned by every fallible operation in
// this module. Vendor and Log are only populated for BackendError.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Vendor  int
	Log     string
	Err     error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same Kind, so callers can
// use errors.Is(err, rangeerr.OutOfRange) style checks via a sentinel built
// with New(kind, "", "").
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New builds an *Error carrying op/message context.
func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Wrap builds an *Error that also carries a wrapped cause.
func Wrap(kind Kind, op, message string, err error) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Err: err}
}

// InvalidArgf builds an InvalidArgument error with a formatted message.
func InvalidArgf(op, format string, args ...any) *Error {
	return New(InvalidArgument, op, fmt.Sprintf(format, args...))
}

// OutOfRangef builds an OutOfRange error with a formatted message.
func OutOfRangef(op, format string, args ...any) *Error {
	return New(OutOfRange, op, fmt.Sprintf(format, args...))
}

// BackendErrorf builds a BackendError carrying a vendor code and build log.
func BackendErrorf(op string, vendor int, log string, format string, args ...any) *Error {
	return &Error{
		Kind:    BackendError,
		Op:      op,
		Message: fmt.Sprintf(format, args...),
		Vendor:  vendor,
		Log:     log,
	}
}

// ShapeMismatch builds an InvalidArgument error naming both the expected and
// actual (rows, cols, depth), matching the human-readable contract in
// spec §7.
func ShapeMismatch(op string, wantRows, wantCols int, wantDepth uint8, gotRows, gotCols int, gotDepth uint8) *Error {
	return InvalidArgf(op,
		"expected buffer of size (%d, %d, %d) but got (%d, %d, %d)",
		wantRows, wantCols, wantDepth, gotRows, gotCols, gotDepth)
}
