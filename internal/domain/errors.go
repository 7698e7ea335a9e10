package domain

import (
	"errors"
	"fmt"
)

// Error kinds returned by the service layer. Handlers map them to HTTP status
// codes with errors.Is.
var (
	ErrValidation    = errors.New("validation failed")
	ErrNotFound      = errors.New("resource not found")
	ErrTranslation   = errors.New("translation failed")
	ErrTranscription = errors.New("transcription failed")
	ErrSummary       = errors.New("summary generation failed")
	ErrSummaryFormat = errors.New("summary response malformed")
	ErrPersistence   = errors.New("persistence failed")
)

// DomainError carries a user-facing message next to the wrapped cause.
// Error() includes the cause for logs; UserMessage() never does.
type DomainError struct {
	Code    string
	Message string
	Kind    error
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// UserMessage returns the message safe to show to API callers
func (e *DomainError) UserMessage() string {
	return e.Message
}

// Unwrap exposes both the kind sentinel and the underlying cause
func (e *DomainError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, code, message string, cause error) error {
	return &DomainError{Code: code, Message: message, Kind: kind, Err: cause}
}

// NewValidationError reports a missing or malformed request field
func NewValidationError(message string) error {
	return newError(ErrValidation, "VALIDATION_ERROR", message, nil)
}

// NewNotFoundError reports a missing resource
func NewNotFoundError(resourceType, id string) error {
	return newError(ErrNotFound, "NOT_FOUND", fmt.Sprintf("%s '%s' not found", resourceType, id), nil)
}

// NewNotFoundMessage reports a not-found condition with a custom message
func NewNotFoundMessage(message string) error {
	return newError(ErrNotFound, "NOT_FOUND", message, nil)
}

func NewTranslationError(cause error) error {
	return newError(ErrTranslation, "TRANSLATION_ERROR", "failed to translate message", cause)
}

func NewTranscriptionError(cause error) error {
	return newError(ErrTranscription, "TRANSCRIPTION_ERROR", "failed to transcribe audio", cause)
}

func NewSummaryError(cause error) error {
	return newError(ErrSummary, "SUMMARY_ERROR", "failed to generate summary", cause)
}

func NewSummaryFormatError(cause error) error {
	return newError(ErrSummaryFormat, "SUMMARY_FORMAT_ERROR", "summary response could not be parsed", cause)
}

func NewPersistenceError(operation string, cause error) error {
	return newError(ErrPersistence, "PERSISTENCE_ERROR", "failed to "+operation, cause)
}

func IsValidation(err error) bool  { return errors.Is(err, ErrValidation) }
func IsNotFound(err error) bool    { return errors.Is(err, ErrNotFound) }
func IsPersistence(err error) bool { return errors.Is(err, ErrPersistence) }

// IsUpstream reports whether err came from the external language service
func IsUpstream(err error) bool {
	return errors.Is(err, ErrTranslation) ||
		errors.Is(err, ErrTranscription) ||
		errors.Is(err, ErrSummary) ||
		errors.Is(err, ErrSummaryFormat)
}

// CodeOf returns the error code of a DomainError, or INTERNAL_ERROR
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return "INTERNAL_ERROR"
}

// UserMessageOf returns a message safe to expose for any error
func UserMessageOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.UserMessage()
	}
	return "internal server error"
}
