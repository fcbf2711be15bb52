// File: internal/repository/thread/thread_repository.go

package thread

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/ketolab/go-ketoplanner/internal/domain"
	"gorm.io/gorm"
)

var ErrThreadNotFound = errors.New("thread not found")

type gormThreadRepository struct {
	db *gorm.DB
}

func NewThreadRepository(db *gorm.DB) ThreadRepository {
	return &gormThreadRepository{db: db}
}

// Create persists a new thread.
func (r *gormThreadRepository) Create(ctx context.Context, thread *domain.Thread) (*domain.Thread, error) {
	if err := r.validateThreadInput(thread); err != nil {
		log.Printf("[ThreadRepository] Validation failed: %v", err)
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(thread).Error; err != nil {
		log.Printf("[ThreadRepository] Database error during thread creation: %v", err)
		return nil, errors.New("database error creating thread")
	}

	log.Printf("[ThreadRepository] Thread created successfully with ID: %d", thread.ID)
	return thread, nil
}

func (r *gormThreadRepository) FindByID(ctx context.Context, threadID uint) (*domain.Thread, error) {
	if threadID == 0 {
		return nil, errors.New("invalid thread ID")
	}

	var thread domain.Thread
	err := r.db.WithContext(ctx).First(&thread, threadID).Error
	return r.handleFindError(err, &thread, "FindByID")
}

// FindAll returns every thread, newest first.
func (r *gormThreadRepository) FindAll(ctx context.Context) ([]domain.Thread, error) {
	var threads []domain.Thread
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Find(&threads).Error

	if err != nil {
		log.Printf("[ThreadRepository] Database error fetching threads: %v", err)
		return nil, errors.New("database error fetching threads")
	}

	return threads, nil
}

func (r *gormThreadRepository) UpdateTitle(ctx context.Context, threadID uint, title string) error {
	if threadID == 0 {
		return errors.New("invalid thread ID")
	}
	if err := r.validateThreadTitle(title); err != nil {
		return fmt.Errorf("title validation: %w", err)
	}

	result := r.db.WithContext(ctx).
		Model(&domain.Thread{}).
		Where("id = ?", threadID).
		Update("title", title)

	if result.Error != nil {
		log.Printf("[ThreadRepository] Database error renaming thread ID %d: %v", threadID, result.Error)
		return errors.New("database error renaming thread")
	}

	if result.RowsAffected == 0 {
		return ErrThreadNotFound
	}

	return nil
}

// DeleteCascade removes a thread and all of its messages in one transaction.
// Either both deletions commit or neither does, so no partial cascade is
// ever observable.
func (r *gormThreadRepository) DeleteCascade(ctx context.Context, threadID uint) error {
	if threadID == 0 {
		return errors.New("invalid thread ID")
	}

	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("thread_id = ?", threadID).Delete(&domain.Message{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&domain.Thread{}, threadID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrThreadNotFound
		}
		deleted = result.RowsAffected
		return nil
	})

	if err != nil {
		if errors.Is(err, ErrThreadNotFound) {
			return ErrThreadNotFound
		}
		log.Printf("[ThreadRepository] Database error deleting thread ID %d: %v", threadID, err)
		return errors.New("database error deleting thread")
	}

	log.Printf("[ThreadRepository] Thread deleted successfully: ID %d (rows: %d)", threadID, deleted)
	return nil
}

// ExistsByID checks existence without loading the row.
func (r *gormThreadRepository) ExistsByID(ctx context.Context, threadID uint) (bool, error) {
	if threadID == 0 {
		return false, errors.New("invalid thread ID")
	}

	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Thread{}).Where("id = ?", threadID).Count(&count).Error
	if err != nil {
		log.Printf("[ThreadRepository] Database error checking thread existence for ID %d: %v", threadID, err)
		return false, errors.New("database error checking thread existence")
	}

	return count > 0, nil
}

// ===== VALIDATION HELPERS =====

func (r *gormThreadRepository) validateThreadInput(thread *domain.Thread) error {
	if thread == nil {
		return errors.New("thread cannot be nil")
	}
	if thread.PublicID == "" {
		return errors.New("thread public ID is required")
	}
	if err := r.validateThreadTitle(thread.Title); err != nil {
		return fmt.Errorf("title validation: %w", err)
	}
	return nil
}

func (r *gormThreadRepository) validateThreadTitle(title string) error {
	if len(title) > 200 {
		return errors.New("title must be 200 characters or less")
	}
	if strings.Contains(title, "<script") || strings.Contains(title, "javascript:") {
		return errors.New("invalid characters detected in title")
	}
	return nil
}

// ===== ERROR HANDLING HELPERS =====

// handleFindError maps gorm errors without leaking database details.
func (r *gormThreadRepository) handleFindError(err error, thread *domain.Thread, operation string) (*domain.Thread, error) {
	if err == nil {
		return thread, nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrThreadNotFound
	}

	log.Printf("[ThreadRepository] %s database error: %v", operation, err)
	return nil, errors.New("database query failed")
}
