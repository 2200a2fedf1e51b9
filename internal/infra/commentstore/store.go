package commentstore

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"wpmcp/internal/domain"
)

// ErrStoreClosed is returned by every operation on a closed store.
var ErrStoreClosed = fmt.Errorf("comment store closed: %w", domain.ErrStoreUnavailable)

// Open builds the store selected by cfg.Backend.
func Open(ctx context.Context, cfg domain.CommentsConfig, logger *zap.Logger) (domain.CommentStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Backend {
	case "", domain.CommentBackendMemory:
		return NewMemoryStore(), nil
	case domain.CommentBackendBolt:
		return OpenBoltStore(cfg.BoltPath)
	case domain.CommentBackendMySQL:
		return OpenWordPressStore(ctx, cfg.DSN, cfg.TablePrefix, logger)
	default:
		return nil, fmt.Errorf("unknown comment backend %q", cfg.Backend)
	}
}
