// File: internal/services/ai/errors.go
package ai

import (
	"errors"
	"fmt"
)

type ErrorType string

const (
	ErrTypeConfig      ErrorType = "CONFIG"
	ErrTypeValidation  ErrorType = "VALIDATION"
	ErrTypeUnavailable ErrorType = "UNAVAILABLE"
	ErrTypeCompletion  ErrorType = "COMPLETION"
)

type AIError struct {
	Type      ErrorType
	Operation string
	Message   string
	Model     string
	Cause     error
}

func (e *AIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("AI %s error in %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("AI %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *AIError) Unwrap() error { return e.Cause }

func NewConfigError(msg string) *AIError {
	return &AIError{Type: ErrTypeConfig, Message: msg, Operation: "config"}
}

func NewValidationError(operation, msg string) *AIError {
	return &AIError{Type: ErrTypeValidation, Operation: operation, Message: msg}
}

// NewUnavailableError reports that the inference capability is not ready.
func NewUnavailableError(operation string) *AIError {
	return &AIError{Type: ErrTypeUnavailable, Operation: operation, Message: "on-device model unavailable"}
}

// NewCompletionError reports that a completion was attempted but failed.
func NewCompletionError(operation, msg string, cause error) *AIError {
	return &AIError{Type: ErrTypeCompletion, Operation: operation, Message: msg, Cause: cause}
}

// IsUnavailable reports whether err means the model was not ready.
func IsUnavailable(err error) bool {
	var ae *AIError
	return errors.As(err, &ae) && ae.Type == ErrTypeUnavailable
}

// IsCompletionFailed reports whether err is a failed completion call.
func IsCompletionFailed(err error) bool {
	var ae *AIError
	return errors.As(err, &ae) && ae.Type == ErrTypeCompletion
}
