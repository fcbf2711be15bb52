// File: internal/domain/message.go
package domain

import "time"

// MessageRole tags a message as a user or assistant turn.
type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

// Valid reports whether the role is one of the two known tags.
func (r MessageRole) Valid() bool {
	return r == MessageRoleUser || r == MessageRoleAssistant
}

// Message represents a single turn within a thread.
//
// Display order within a thread is (CreatedAt, Seq): Seq is a per-thread
// monotonic counter assigned at insertion, so two messages created in the
// same clock tick still have a total order.
type Message struct {
	ID        uint        `gorm:"primarykey"`
	PublicID  string      `json:"public_id" gorm:"uniqueIndex;not null"` // Survives as a tombstone-safe identity
	ThreadID  uint        `json:"thread_id" gorm:"not null;index"`
	Role      MessageRole `json:"role" gorm:"not null"`
	Content   string      `json:"content" gorm:"not null"`
	Seq       uint64      `json:"seq" gorm:"not null"`
	CreatedAt time.Time
}
