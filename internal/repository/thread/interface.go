package thread

import (
	"context"

	"github.com/ketolab/go-ketoplanner/internal/domain"
)

// ThreadRepository handles thread data operations.
type ThreadRepository interface {
	Create(ctx context.Context, thread *domain.Thread) (*domain.Thread, error)
	FindByID(ctx context.Context, threadID uint) (*domain.Thread, error)
	FindAll(ctx context.Context) ([]domain.Thread, error)
	UpdateTitle(ctx context.Context, threadID uint, title string) error
	DeleteCascade(ctx context.Context, threadID uint) error
	ExistsByID(ctx context.Context, threadID uint) (bool, error)
}
