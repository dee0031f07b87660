package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrNotModifiable     = errors.New("not modifiable")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrAlreadyClaimed    = errors.New("already claimed")
	ErrValidation        = errors.New("validation error")
)

// Operation names a state machine transition.
type Operation string

const (
	OpSubmit   Operation = "submit"
	OpClaim    Operation = "claim"
	OpValidate Operation = "validate"
	OpRefuse   Operation = "refuse"
	OpStart    Operation = "start"
	OpComplete Operation = "complete"
	OpMoveTo   Operation = "move"
)

// TransitionError reports an operation that is illegal from the current status.
type TransitionError struct {
	From      Status
	Operation Operation
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("Cannot %s internship with status %s", e.Operation, e.From)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// IsDomainError reports whether err is one of the engine's own failure kinds,
// as opposed to an infrastructure failure.
func IsDomainError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrNotModifiable) ||
		errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrAlreadyClaimed) ||
		errors.Is(err, ErrValidation)
}

// Message strips the kind prefix added by fmt.Errorf("%w: ...") so callers
// can show the detail alone.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var te *TransitionError
	if errors.As(err, &te) {
		return te.Error()
	}
	msg := err.Error()
	for _, kind := range []error{ErrNotFound, ErrNotModifiable, ErrUnauthorized, ErrAlreadyClaimed, ErrValidation} {
		if rest, ok := strings.CutPrefix(msg, kind.Error()+": "); ok && rest != "" {
			return rest
		}
	}
	return msg
}
