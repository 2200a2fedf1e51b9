package commentstore

import (
	"context"
	"sync"

	"wpmcp/internal/domain"
)

// MemoryStore keeps comments in process memory, keyed by ID.
type MemoryStore struct {
	mu       sync.RWMutex
	comments map[int64]domain.Comment
	closed   bool
}

func NewMemoryStore(seed ...domain.Comment) *MemoryStore {
	s := &MemoryStore{comments: make(map[int64]domain.Comment, len(seed))}
	for _, c := range seed {
		s.comments[c.ID] = c
	}
	return s
}

func (s *MemoryStore) Put(_ context.Context, comments []domain.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	for _, c := range comments {
		s.comments[c.ID] = c
	}
	return nil
}

func (s *MemoryStore) List(ctx context.Context, q domain.CommentQuery) (domain.CommentPage, error) {
	if err := ctx.Err(); err != nil {
		return domain.CommentPage{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return domain.CommentPage{}, ErrStoreClosed
	}
	all := make([]domain.Comment, 0, len(s.comments))
	for _, c := range s.comments {
		all = append(all, c)
	}
	return apply(all, q), nil
}

func (s *MemoryStore) Ping(context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	return nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

var (
	_ domain.CommentStore  = (*MemoryStore)(nil)
	_ domain.CommentWriter = (*MemoryStore)(nil)
)
