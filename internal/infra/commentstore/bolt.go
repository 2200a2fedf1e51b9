package commentstore

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"wpmcp/internal/domain"
)

var commentsBucket = []byte("comments")

// BoltStore persists comments in a local bbolt file, one JSON record per
// comment keyed by big-endian ID.
type BoltStore struct {
	mu     sync.RWMutex
	db     *bolt.DB
	path   string
	closed bool
}

func OpenBoltStore(path string) (*BoltStore, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, errors.New("comment store path is required")
	}
	if err := os.MkdirAll(filepath.Dir(trimmed), 0o755); err != nil {
		return nil, fmt.Errorf("ensure comment store dir: %w", err)
	}
	db, err := bolt.Open(trimmed, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open comment store: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(commentsBucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init comment store: %w", err)
	}
	return &BoltStore{db: db, path: trimmed}, nil
}

func (s *BoltStore) Path() string {
	return s.path
}

func (s *BoltStore) Put(ctx context.Context, comments []domain.Comment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(commentsBucket)
		for _, c := range comments {
			if c.ID <= 0 {
				return fmt.Errorf("comment id must be > 0, got %d", c.ID)
			}
			data, err := json.Marshal(c)
			if err != nil {
				return fmt.Errorf("encode comment %d: %w", c.ID, err)
			}
			if err := bucket.Put(commentKey(c.ID), data); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BoltStore) List(ctx context.Context, q domain.CommentQuery) (domain.CommentPage, error) {
	if err := ctx.Err(); err != nil {
		return domain.CommentPage{}, err
	}
	var all []domain.Comment
	err := s.view(func(tx *bolt.Tx) error {
		return tx.Bucket(commentsBucket).ForEach(func(key, value []byte) error {
			var c domain.Comment
			if err := json.Unmarshal(value, &c); err != nil {
				return fmt.Errorf("decode comment %d: %w", binary.BigEndian.Uint64(key), err)
			}
			all = append(all, c)
			return nil
		})
	})
	if err != nil {
		return domain.CommentPage{}, err
	}
	return apply(all, q), nil
}

func (s *BoltStore) Ping(context.Context) error {
	return s.view(func(tx *bolt.Tx) error {
		if tx.Bucket(commentsBucket) == nil {
			return errors.New("comments bucket missing")
		}
		return nil
	})
}

func (s *BoltStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func (s *BoltStore) view(fn func(*bolt.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	return s.db.View(fn)
}

func (s *BoltStore) update(fn func(*bolt.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	return s.db.Update(fn)
}

func commentKey(id int64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(id))
	return key
}

var (
	_ domain.CommentStore  = (*BoltStore)(nil)
	_ domain.CommentWriter = (*BoltStore)(nil)
)
