package service

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// ErrNotFound is wrapped by every resource specific not-found error.
var ErrNotFound = errors.New("not found")

var (
	ErrAICourseNotFound            = fmt.Errorf("ai course %w", ErrNotFound)
	ErrAILessonNotFound            = fmt.Errorf("ai lesson %w", ErrNotFound)
	ErrLevelNotFound               = fmt.Errorf("level %w", ErrNotFound)
	ErrCourseNotFound              = fmt.Errorf("course %w", ErrNotFound)
	ErrLessonNotFound              = fmt.Errorf("lesson %w", ErrNotFound)
	ErrChallengeNotFound           = fmt.Errorf("challenge %w", ErrNotFound)
	ErrChallengeDayNotFound        = fmt.Errorf("challenge day %w", ErrNotFound)
	ErrPromptNotFound              = fmt.Errorf("prompt %w", ErrNotFound)
	ErrPaymentNotFound             = fmt.Errorf("payment %w", ErrNotFound)
	ErrCertificateTemplateNotFound = fmt.Errorf("certificate template %w", ErrNotFound)
)

var (
	// ErrConflict is wrapped by errors describing a uniqueness violation.
	ErrConflict = errors.New("conflict")
	// ErrChallengeDayExists indicates the challenge already has content for that day.
	ErrChallengeDayExists = fmt.Errorf("challenge day already exists: %w", ErrConflict)
	// ErrIntegrationUnavailable indicates an optional integration is not configured.
	ErrIntegrationUnavailable = errors.New("integration not configured")
)

// ValidationError reports a payload that is well formed but semantically invalid.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func newValidationError(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err stems from payload validation.
func IsValidationError(err error) bool {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return true
	}
	var fieldErrs validator.ValidationErrors
	return errors.As(err, &fieldErrs)
}

// notFound swaps a missing-record error for the resource specific sentinel.
func notFound(err error, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

func ignoreNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}

func isMissing(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
