// File: internal/repository/message/message_repository.go

package message

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/ketolab/go-ketoplanner/internal/domain"
	"gorm.io/gorm"
)

// ErrThreadNotFound is returned when an append targets a thread that does
// not exist (or was deleted mid-flight).
var ErrThreadNotFound = errors.New("thread not found")

type gormMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &gormMessageRepository{db: db}
}

// CreateWithThreadTouch inserts the message and updates the owning thread's
// updated_at inside one transaction. A reader never observes the thread
// bumped without the message readable, or the reverse.
func (r *gormMessageRepository) CreateWithThreadTouch(ctx context.Context, message *domain.Message) (*domain.Message, error) {
	if err := r.validateMessageInput(message); err != nil {
		log.Printf("[MessageRepository] Validation failed: %v", err)
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&domain.Thread{}).
			Where("id = ?", message.ThreadID).
			Update("updated_at", gorm.Expr("CURRENT_TIMESTAMP"))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return tx.Create(message).Error
	})

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrThreadNotFound
		}
		log.Printf("[MessageRepository] Database error during message creation for thread ID %d: %v", message.ThreadID, err)
		return nil, errors.New("database error creating message")
	}

	log.Printf("[MessageRepository] Message created successfully with ID: %d for thread: %d", message.ID, message.ThreadID)
	return message, nil
}

// FindByThreadID returns the thread's messages in display order:
// created_at first, insertion sequence as the tie-breaker.
func (r *gormMessageRepository) FindByThreadID(ctx context.Context, threadID uint) ([]domain.Message, error) {
	if threadID == 0 {
		return nil, errors.New("invalid thread ID")
	}

	var messages []domain.Message
	err := r.db.WithContext(ctx).
		Where("thread_id = ?", threadID).
		Order("created_at ASC, seq ASC").
		Find(&messages).Error

	if err != nil {
		log.Printf("[MessageRepository] Database error finding messages for thread ID %d: %v", threadID, err)
		return nil, errors.New("database error fetching messages")
	}

	return messages, nil
}

func (r *gormMessageRepository) CountByThreadID(ctx context.Context, threadID uint) (int64, error) {
	if threadID == 0 {
		return 0, errors.New("invalid thread ID")
	}

	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Message{}).Where("thread_id = ?", threadID).Count(&count).Error
	if err != nil {
		log.Printf("[MessageRepository] Database error counting messages for thread ID %d: %v", threadID, err)
		return 0, errors.New("database error counting thread messages")
	}

	return count, nil
}

// MaxSeqByThreadID returns the highest insertion sequence stored for the
// thread, or zero if it has no messages. Used to re-seed the in-memory
// counter after a restart.
func (r *gormMessageRepository) MaxSeqByThreadID(ctx context.Context, threadID uint) (uint64, error) {
	if threadID == 0 {
		return 0, errors.New("invalid thread ID")
	}

	var maxSeq *uint64
	err := r.db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("thread_id = ?", threadID).
		Select("MAX(seq)").
		Scan(&maxSeq).Error

	if err != nil {
		log.Printf("[MessageRepository] Database error reading max seq for thread ID %d: %v", threadID, err)
		return 0, errors.New("database error reading message sequence")
	}

	if maxSeq == nil {
		return 0, nil
	}
	return *maxSeq, nil
}

// ===== VALIDATION HELPERS =====

func (r *gormMessageRepository) validateMessageInput(message *domain.Message) error {
	if message == nil {
		return errors.New("message cannot be nil")
	}
	if message.ThreadID == 0 {
		return errors.New("thread ID is required")
	}
	if message.PublicID == "" {
		return errors.New("message public ID is required")
	}
	if !message.Role.Valid() {
		return errors.New("invalid message role")
	}
	if err := r.validateMessageContent(message.Content); err != nil {
		return fmt.Errorf("content validation: %w", err)
	}
	return nil
}

func (r *gormMessageRepository) validateMessageContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return errors.New("message content cannot be empty")
	}
	if len(content) > 10000 {
		return errors.New("message content too long (max 10000 characters)")
	}
	return nil
}
