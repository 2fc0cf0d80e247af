package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrInvalidState indicates that the operation is not legal in the entity's current status.
var ErrInvalidState = errors.New("invalid state")

// ErrConcurrencyConflict indicates that a concurrent writer invalidated the operation's
// precondition. Callers should retry the whole operation.
var ErrConcurrencyConflict = errors.New("concurrency conflict")

// ErrForbidden indicates that the actor lacks the role required for the action.
var ErrForbidden = errors.New("forbidden")

// ErrInternal is a generic infrastructure failure.
var ErrInternal = errors.New("internal error")

// Error is a domain failure naming the entity and the rule that failed.
// It unwraps to one of the sentinel errors above.
type Error struct {
	Kind   error
	Entity string
	ID     string
	Rule   string
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Entity)
	if e.ID != "" {
		b.WriteString(" ")
		b.WriteString(e.ID)
	}
	if e.Rule != "" {
		b.WriteString(": ")
		b.WriteString(e.Rule)
	}
	b.WriteString(": ")
	b.WriteString(e.Kind.Error())
	return b.String()
}

func (e *Error) Unwrap() error { return e.Kind }

// NewNotFoundError reports a missing entity.
func NewNotFoundError(entity, id string) error {
	return &Error{Kind: ErrNotFound, Entity: entity, ID: id, Rule: "does not exist"}
}

// NewValidationError reports malformed or out-of-range input for an entity.
func NewValidationError(entity, rule string) error {
	return &Error{Kind: ErrValidation, Entity: entity, Rule: rule}
}

// NewInvalidStateError reports an operation that is illegal in the entity's current status.
func NewInvalidStateError(entity, id, rule string) error {
	return &Error{Kind: ErrInvalidState, Entity: entity, ID: id, Rule: rule}
}

// NewConflictError reports a lost race against a concurrent writer.
func NewConflictError(entity, id, rule string) error {
	return &Error{Kind: ErrConcurrencyConflict, Entity: entity, ID: id, Rule: rule}
}

// NewDuplicateError reports a uniqueness violation.
func NewDuplicateError(entity, rule string) error {
	return &Error{Kind: ErrDuplicate, Entity: entity, Rule: rule}
}

// AppError wraps infrastructure failures with an HTTP-style status code.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError creates an AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error, or ErrInternal when there is none, so that
// errors.Is(err, ErrInternal) holds for every AppError without a cause.
func (e *AppError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInternal
}
