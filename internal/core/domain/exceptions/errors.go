package exceptions

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindValidation Kind = iota + 1
	KindConflict
	KindNotFound
	KindForbidden
	KindGone
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not found"
	case KindForbidden:
		return "forbidden"
	case KindGone:
		return "gone"
	default:
		return "unknown"
	}
}

var (
	ErrValidation = &Error{Kind: KindValidation}
	ErrConflict   = &Error{Kind: KindConflict}
	ErrNotFound   = &Error{Kind: KindNotFound}
	ErrForbidden  = &Error{Kind: KindForbidden}
	ErrGone       = &Error{Kind: KindGone}
)

// Error is the single error type surfaced by the core. Field is set for
// validation failures, Resource and ID for everything else.
type Error struct {
	Kind     Kind
	Field    string
	Resource string
	ID       string
	Message  string
}

func (e *Error) Error() string {
	switch {
	case e.Field != "":
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Message)
	case e.Resource != "" && e.ID != "":
		return fmt.Sprintf("%s: %s %s: %s", e.Kind, e.Resource, e.ID, e.Message)
	case e.Resource != "":
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Resource, e.Message)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	default:
		return e.Kind.String()
	}
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrConflict)
// works for every conflict regardless of its context.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func Validation(field, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: fmt.Sprintf(format, args...)}
}

func Conflict(resource, id, format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Resource: resource, ID: id, Message: fmt.Sprintf(format, args...)}
}

func NotFound(resource, id string) *Error {
	return &Error{Kind: KindNotFound, Resource: resource, ID: id, Message: "not found"}
}

func Forbidden(resource, id, format string, args ...any) *Error {
	return &Error{Kind: KindForbidden, Resource: resource, ID: id, Message: fmt.Sprintf(format, args...)}
}

func Gone(resource, id, format string, args ...any) *Error {
	return &Error{Kind: KindGone, Resource: resource, ID: id, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// Resource names used across the core.
const (
	ResourceTask    = "task"
	ResourceAttempt = "attempt"
	ResourceReward  = "reward"
	ResourceCompany = "company"
	ResourcePuzzle  = "puzzle"
)
