// File: internal/services/conversation/errors.go
package conversation

import (
	"errors"
	"fmt"
)

type ErrorType string

const (
	ErrTypeValidation  ErrorType = "VALIDATION"
	ErrTypeNotFound    ErrorType = "NOT_FOUND"
	ErrTypePersistence ErrorType = "PERSISTENCE"
)

// ConversationError carries the failure class alongside the operation
// that produced it.
type ConversationError struct {
	Type      ErrorType
	Operation string
	Message   string
	ThreadID  uint
	Cause     error
}

func (e *ConversationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("Conversation %s error in %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("Conversation %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *ConversationError) Unwrap() error { return e.Cause }

func NewValidationError(operation, msg string) *ConversationError {
	return &ConversationError{Type: ErrTypeValidation, Operation: operation, Message: msg}
}

func NewNotFoundError(operation string, threadID uint) *ConversationError {
	return &ConversationError{
		Type:      ErrTypeNotFound,
		Operation: operation,
		Message:   "thread not found",
		ThreadID:  threadID,
	}
}

func NewPersistenceError(operation, msg string, cause error) *ConversationError {
	return &ConversationError{Type: ErrTypePersistence, Operation: operation, Message: msg, Cause: cause}
}

// IsNotFound reports whether err is a thread-not-found failure.
func IsNotFound(err error) bool {
	var ce *ConversationError
	return errors.As(err, &ce) && ce.Type == ErrTypeNotFound
}

// IsPersistence reports whether err is a durable-store failure.
func IsPersistence(err error) bool {
	var ce *ConversationError
	return errors.As(err, &ce) && ce.Type == ErrTypePersistence
}
