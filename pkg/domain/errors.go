package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrSessionExpired      = errors.New("session expired")
	ErrSessionClosed       = errors.New("session closed")
	ErrTooManySessions     = errors.New("too many active sessions")
	ErrMessageLimitReached = errors.New("session message limit reached")
	ErrForbidden           = errors.New("operation not allowed")
)

type notFoundError struct {
	EntityType string
	ID         string
}

func (e *notFoundError) Error() string {
	return fmt.Sprintf("%s with ID '%s' not found", e.EntityType, e.ID)
}

func NewNotFoundError(entityType string, id string) error {
	return &notFoundError{
		EntityType: entityType,
		ID:         id,
	}
}

func IsNotFoundError(err error) bool {
	var nf *notFoundError
	return errors.As(err, &nf)
}

type ValidationRule string

const (
	RuleEmpty                ValidationRule = "empty"
	RuleTooShort             ValidationRule = "too_short"
	RuleTooLong              ValidationRule = "too_long"
	RuleInappropriateContent ValidationRule = "inappropriate_content"
	RuleRatingOutOfRange     ValidationRule = "rating_out_of_range"
	RuleRequired             ValidationRule = "required"
)

// ValidationError names the rule a piece of input violated.
type ValidationError struct {
	Field   string
	Rule    ValidationRule
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed (%s): %s", e.Rule, e.Message)
	}
	return fmt.Sprintf("validation failed for %s (%s): %s", e.Field, e.Rule, e.Message)
}

func NewValidationError(field string, rule ValidationRule, message string) error {
	return &ValidationError{Field: field, Rule: rule, Message: message}
}

type RateLimitExceededError struct {
	RetryAfter time.Duration
}

func (e *RateLimitExceededError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry after %s", e.RetryAfter)
}

// RetryAfterSeconds rounds up so a rejection never advertises zero.
func (e *RateLimitExceededError) RetryAfterSeconds() int {
	secs := int((e.RetryAfter + time.Second - 1) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}

type ExternalServiceError struct {
	Op  string
	Err error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("external service %s failed: %v", e.Op, e.Err)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func NewPersistenceError(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}
