package domain

import (
	"errors"
	"fmt"
)

// Sentinel kinds for the engine's error taxonomy. Handlers map these to
// HTTP status codes; services and repositories only ever deal in kinds.
var (
	ErrValidation  = errors.New("validation")
	ErrConflict    = errors.New("conflict")
	ErrNotFound    = errors.New("not found")
	ErrUnavailable = errors.New("unavailable")
)

// DomainError carries a user-facing message together with its kind.
type DomainError struct {
	Err     error
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewValidationError reports malformed or missing input. No side effects
// have occurred when one of these is returned.
func NewValidationError(format string, args ...any) *DomainError {
	return &DomainError{Err: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

// NewConflictError reports a transactional rejection: inventory exhausted,
// a discount already consumed, or a booking in an incompatible state.
func NewConflictError(format string, args ...any) *DomainError {
	return &DomainError{Err: ErrConflict, Message: fmt.Sprintf(format, args...)}
}

// NewInvalidStateError reports an illegal state-machine transition.
func NewInvalidStateError(from, to string) *DomainError {
	return &DomainError{Err: ErrConflict, Message: fmt.Sprintf("cannot transition from %s to %s", from, to)}
}

// NewNotFoundError reports an unknown entity reference.
func NewNotFoundError(entity, id string) *DomainError {
	return &DomainError{Err: ErrNotFound, Message: fmt.Sprintf("%s %s not found", entity, id)}
}

// NewUnavailableError reports a transient infrastructure failure. The
// caller may retry the whole operation; nothing was partially applied.
func NewUnavailableError(format string, args ...any) *DomainError {
	return &DomainError{Err: ErrUnavailable, Message: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool  { return errors.Is(err, ErrValidation) }
func IsConflict(err error) bool    { return errors.Is(err, ErrConflict) }
func IsNotFound(err error) bool    { return errors.Is(err, ErrNotFound) }
func IsUnavailable(err error) bool { return errors.Is(err, ErrUnavailable) }
