// File: internal/services/conversation/service.go
package conversation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ketolab/go-ketoplanner/internal/domain"
	"github.com/ketolab/go-ketoplanner/internal/repository/message"
	"github.com/ketolab/go-ketoplanner/internal/repository/thread"
)

// Logger defines the logging interface used by the conversation service.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// Service owns threads and messages: creation, ordering, rename and
// cascade delete. Appends to the same thread are serialized by a
// per-thread sequence counter; independent threads append concurrently.
type Service struct {
	threadRepo  thread.ThreadRepository
	messageRepo message.MessageRepository
	logger      Logger

	mu       sync.Mutex
	counters map[uint]*seqCounter
}

// seqCounter hands out the per-thread insertion sequence. The counter
// seeds lazily from MAX(seq) in the store so restarts stay monotonic.
type seqCounter struct {
	mu     sync.Mutex
	next   uint64
	seeded bool
}

func NewService(threadRepo thread.ThreadRepository, messageRepo message.MessageRepository, logger Logger) (*Service, error) {
	if threadRepo == nil {
		return nil, NewValidationError("constructor", "thread repository is required")
	}
	if messageRepo == nil {
		return nil, NewValidationError("constructor", "message repository is required")
	}
	if logger == nil {
		return nil, NewValidationError("constructor", "logger is required")
	}

	return &Service{
		threadRepo:  threadRepo,
		messageRepo: messageRepo,
		logger:      logger,
		counters:    make(map[uint]*seqCounter),
	}, nil
}

// CreateThread creates and persists a new thread. An empty title falls
// back to the default.
func (s *Service) CreateThread(ctx context.Context, title string) (*domain.Thread, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = domain.DefaultThreadTitle
	}

	t := &domain.Thread{
		PublicID: uuid.NewString(),
		Title:    title,
	}

	created, err := s.threadRepo.Create(ctx, t)
	if err != nil {
		return nil, NewPersistenceError("create_thread", "could not persist thread", err)
	}

	s.logger.Info("thread created", "thread_id", created.ID, "title", created.Title)
	return created, nil
}

// AppendMessage validates the thread, assigns the next insertion
// sequence and persists the message atomically with the thread update.
func (s *Service) AppendMessage(ctx context.Context, threadID uint, content string, role domain.MessageRole) (*domain.Message, error) {
	if threadID == 0 {
		return nil, NewValidationError("append_message", "thread ID is required")
	}
	if strings.TrimSpace(content) == "" {
		return nil, NewValidationError("append_message", "message content cannot be empty")
	}
	if !role.Valid() {
		return nil, NewValidationError("append_message", "invalid message role")
	}

	counter := s.counter(threadID)
	counter.mu.Lock()
	defer counter.mu.Unlock()

	if !counter.seeded {
		maxSeq, err := s.messageRepo.MaxSeqByThreadID(ctx, threadID)
		if err != nil {
			return nil, NewPersistenceError("append_message", "could not seed message sequence", err)
		}
		counter.next = maxSeq
		counter.seeded = true
	}

	seq := counter.next + 1
	msg := &domain.Message{
		PublicID:  uuid.NewString(),
		ThreadID:  threadID,
		Role:      role,
		Content:   content,
		Seq:       seq,
		CreatedAt: time.Now().UTC(),
	}

	created, err := s.messageRepo.CreateWithThreadTouch(ctx, msg)
	if err != nil {
		if errors.Is(err, message.ErrThreadNotFound) {
			return nil, NewNotFoundError("append_message", threadID)
		}
		return nil, NewPersistenceError("append_message", "could not persist message", err)
	}

	counter.next = seq
	s.logger.Debug("message appended", "thread_id", threadID, "role", string(role), "seq", seq)
	return created, nil
}

// ListMessages returns the thread's messages in display order.
func (s *Service) ListMessages(ctx context.Context, threadID uint) ([]domain.Message, error) {
	if threadID == 0 {
		return nil, NewValidationError("list_messages", "thread ID is required")
	}

	exists, err := s.threadRepo.ExistsByID(ctx, threadID)
	if err != nil {
		return nil, NewPersistenceError("list_messages", "could not check thread existence", err)
	}
	if !exists {
		return nil, NewNotFoundError("list_messages", threadID)
	}

	messages, err := s.messageRepo.FindByThreadID(ctx, threadID)
	if err != nil {
		return nil, NewPersistenceError("list_messages", "could not fetch messages", err)
	}
	return messages, nil
}

// ListThreads returns all threads, newest first.
func (s *Service) ListThreads(ctx context.Context) ([]domain.Thread, error) {
	threads, err := s.threadRepo.FindAll(ctx)
	if err != nil {
		return nil, NewPersistenceError("list_threads", "could not fetch threads", err)
	}
	return threads, nil
}

// GetThread fetches a single thread by ID.
func (s *Service) GetThread(ctx context.Context, threadID uint) (*domain.Thread, error) {
	if threadID == 0 {
		return nil, NewValidationError("get_thread", "thread ID is required")
	}

	t, err := s.threadRepo.FindByID(ctx, threadID)
	if err != nil {
		if errors.Is(err, thread.ErrThreadNotFound) {
			return nil, NewNotFoundError("get_thread", threadID)
		}
		return nil, NewPersistenceError("get_thread", "could not fetch thread", err)
	}
	return t, nil
}

// RenameThread updates the thread title. An empty title falls back to a
// timestamp title.
func (s *Service) RenameThread(ctx context.Context, threadID uint, newTitle string) error {
	if threadID == 0 {
		return NewValidationError("rename_thread", "thread ID is required")
	}

	newTitle = strings.TrimSpace(newTitle)
	if newTitle == "" {
		newTitle = time.Now().Format("Jan 2, 2006 3:04 PM")
	}

	if err := s.threadRepo.UpdateTitle(ctx, threadID, newTitle); err != nil {
		if errors.Is(err, thread.ErrThreadNotFound) {
			return NewNotFoundError("rename_thread", threadID)
		}
		return NewPersistenceError("rename_thread", "could not rename thread", err)
	}

	s.logger.Info("thread renamed", "thread_id", threadID, "title", newTitle)
	return nil
}

// DeleteThread removes the thread and cascades to all of its messages.
func (s *Service) DeleteThread(ctx context.Context, threadID uint) error {
	if threadID == 0 {
		return NewValidationError("delete_thread", "thread ID is required")
	}

	if err := s.threadRepo.DeleteCascade(ctx, threadID); err != nil {
		if errors.Is(err, thread.ErrThreadNotFound) {
			return NewNotFoundError("delete_thread", threadID)
		}
		return NewPersistenceError("delete_thread", "could not delete thread", err)
	}

	s.mu.Lock()
	delete(s.counters, threadID)
	s.mu.Unlock()

	s.logger.Info("thread deleted", "thread_id", threadID)
	return nil
}

// ThreadExists reports whether the thread is still present.
func (s *Service) ThreadExists(ctx context.Context, threadID uint) (bool, error) {
	if threadID == 0 {
		return false, NewValidationError("thread_exists", "thread ID is required")
	}

	exists, err := s.threadRepo.ExistsByID(ctx, threadID)
	if err != nil {
		return false, NewPersistenceError("thread_exists", "could not check thread existence", err)
	}
	return exists, nil
}

func (s *Service) counter(threadID uint) *seqCounter {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.counters[threadID]
	if !ok {
		c = &seqCounter{}
		s.counters[threadID] = c
	}
	return c
}
