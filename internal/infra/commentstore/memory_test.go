package commentstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wpmcp/internal/domain"
)

func TestMemoryStore_PutAndList(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(sampleComments(3, domain.CommentApproved)...)

	require.NoError(t, store.Put(ctx, []domain.Comment{
		{ID: 2, AuthorName: "replaced", Status: domain.CommentPending, Date: baseDate},
		{ID: 4, Status: domain.CommentApproved, Date: baseDate.Add(-time.Hour)},
	}))

	page, err := store.List(ctx, domain.CommentQuery{Status: domain.CommentAll, Order: domain.SortAsc})
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)
	assert.Equal(t, []int64{4, 2, 1, 3}, ids(page))
	assert.Equal(t, "replaced", page.Comments[1].AuthorName)
	require.NoError(t, store.Ping(ctx))
}

func TestMemoryStore_Closed(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Close())

	_, err := store.List(ctx, domain.CommentQuery{})
	assert.ErrorIs(t, err, ErrStoreClosed)
	assert.ErrorIs(t, store.Ping(ctx), domain.ErrStoreUnavailable)
	assert.ErrorIs(t, store.Put(ctx, nil), ErrStoreClosed)

	code, ok := domain.CodeFrom(err)
	require.True(t, ok)
	assert.Equal(t, domain.CodeUnavailable, code)
}

func TestMemoryStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMemoryStore().List(ctx, domain.CommentQuery{})
	assert.ErrorIs(t, err, context.Canceled)
}
