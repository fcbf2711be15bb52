// File: internal/repository/message/interface.go
package message

import (
	"context"

	"github.com/ketolab/go-ketoplanner/internal/domain"
)

type MessageRepository interface {
	// CreateWithThreadTouch inserts the message and bumps the owning
	// thread's updated_at in a single transaction.
	CreateWithThreadTouch(ctx context.Context, message *domain.Message) (*domain.Message, error)
	FindByThreadID(ctx context.Context, threadID uint) ([]domain.Message, error)
	CountByThreadID(ctx context.Context, threadID uint) (int64, error)
	MaxSeqByThreadID(ctx context.Context, threadID uint) (uint64, error)
}
