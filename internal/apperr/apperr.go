// Package apperr defines the closed error taxonomy that every service
// operation uses as its failure contract. Errors are plain result values;
// none of the kinds is ever thrown across a component boundary as a panic.
package apperr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind classifies an Error for HTTP-status mapping and logging.
type Kind int

const (
	// KindValidation means caller-supplied input violates field-level
	// constraints (format, length). Recoverable by resubmitting.
	KindValidation Kind = iota

	// KindBusiness means a legitimate domain rule blocks the operation
	// (duplicate email, bad credentials). Never a system fault.
	KindBusiness

	// KindNotFound means the identified state (token, account) does not exist.
	KindNotFound

	// KindConflict means the identified state exists but is non-actionable
	// (already certificated, retired token).
	KindConflict

	// KindSystem means an external collaborator (storage, mail transport)
	// failed unexpectedly. Logged with full detail server-side, surfaced to
	// the caller as an opaque failure.
	KindSystem
)

// String returns a short name for the kind, used in logs.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindBusiness:
		return "business"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindSystem:
		return "system"
	default:
		return "unknown"
	}
}

// Error carries a kind plus a field -> reasons mapping. System errors carry
// no fields; they wrap the underlying cause instead, which is only ever
// logged, never serialized to a client.
type Error struct {
	Kind   Kind
	Fields map[string][]string
	Err    error // wrapped cause, set for system errors
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Kind == KindSystem {
		if e.Err != nil {
			return fmt.Sprintf("system error: %v", e.Err)
		}
		return "system error"
	}

	fields := make([]string, 0, len(e.Fields))
	for field, reasons := range e.Fields {
		fields = append(fields, fmt.Sprintf("%s[%s]", field, strings.Join(reasons, ", ")))
	}
	sort.Strings(fields)
	return fmt.Sprintf("%s error: %s", e.Kind, strings.Join(fields, "; "))
}

// Unwrap returns the wrapped cause to support errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Add appends a reason for a field and returns the error, so callers can
// chain multiple field constraints into one ValidationError.
func (e *Error) Add(field, reason string) *Error {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], reason)
	return e
}

// HasFields reports whether any field reason has been recorded.
func (e *Error) HasFields() bool {
	return len(e.Fields) > 0
}

// Validation creates an empty ValidationError; populate it with Add.
func Validation() *Error {
	return &Error{Kind: KindValidation, Fields: make(map[string][]string)}
}

// Business creates a BusinessError with a single field reason.
func Business(field, reason string) *Error {
	return (&Error{Kind: KindBusiness}).Add(field, reason)
}

// NotFound creates a NotFoundError with a single field reason.
func NotFound(field, reason string) *Error {
	return (&Error{Kind: KindNotFound}).Add(field, reason)
}

// Conflict creates a ConflictError with a single field reason.
func Conflict(field, reason string) *Error {
	return (&Error{Kind: KindConflict}).Add(field, reason)
}

// System creates a SystemError wrapping the underlying cause.
func System(err error) *Error {
	return &Error{Kind: KindSystem, Err: err}
}

// IsKind reports whether err is an apperr.Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// As extracts the apperr.Error from err, if there is one.
func As(err error) (*Error, bool) {
	var appErr *Error
	ok := errors.As(err, &appErr)
	return appErr, ok
}
