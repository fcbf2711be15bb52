// File: internal/domain/thread.go
package domain

import "time"

// Thread represents a single conversation thread.
type Thread struct {
	ID        uint   `gorm:"primarykey"`
	PublicID  string `json:"public_id" gorm:"uniqueIndex;not null"` // Stable opaque identity, never reused
	Title     string `json:"title"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DefaultThreadTitle is used when a thread is created without a title.
const DefaultThreadTitle = "Keto Chat"
