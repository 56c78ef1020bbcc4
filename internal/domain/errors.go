package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationKind classifies recoverable validation failures. Every kind is
// looped back to the operator with a re-prompt; none of them end the run.
type ValidationKind string

const (
	SyntaxInvalid    ValidationKind = "SyntaxInvalid"
	ConnectionFailed ValidationKind = "ConnectionFailed"
	EntityNotFound   ValidationKind = "EntityNotFound"
	PathUnavailable  ValidationKind = "PathUnavailable"
	NameCollision    ValidationKind = "NameCollision"
)

// ValidationError is a recoverable rejection of a single operator input.
type ValidationError struct {
	Kind   ValidationKind
	Field  string
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// NewValidationError builds a ValidationError for the given field.
func NewValidationError(kind ValidationKind, field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Kind: kind, Field: field, Detail: fmt.Sprintf(format, args...)}
}

// NotFoundError reports the entities missing from the target, e.g.
// "EntityNotFound: DB2, DB5".
func NotFoundError(field string, missing []string) *ValidationError {
	return &ValidationError{Kind: EntityNotFound, Field: field, Detail: strings.Join(missing, ", ")}
}

// Fatal conditions. These abort the run with a non-zero exit; no retry and
// no guaranteed rollback of partially registered state.
var (
	ErrRegistrationFailed  = errors.New("artifact registration failed")
	ErrTriggerAttachFailed = errors.New("trigger attach failed")
	ErrStepWiringFailed    = errors.New("step wiring failed")
	ErrHistoryExportFailed = errors.New("history export setup failed")
	ErrAborted             = errors.New("aborted by operator")
)
