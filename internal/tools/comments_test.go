package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wpmcp/internal/domain"
	"wpmcp/internal/infra/commentstore"
)

type failingStore struct{}

func (failingStore) List(context.Context, domain.CommentQuery) (domain.CommentPage, error) {
	return domain.CommentPage{}, errors.New("connection refused")
}
func (failingStore) Ping(context.Context) error { return nil }
func (failingStore) Close() error               { return nil }

type capturingStore struct {
	query domain.CommentQuery
}

func (s *capturingStore) List(_ context.Context, q domain.CommentQuery) (domain.CommentPage, error) {
	s.query = q
	return domain.CommentPage{}, nil
}
func (s *capturingStore) Ping(context.Context) error { return nil }
func (s *capturingStore) Close() error               { return nil }

func commentIDs(t *testing.T, result map[string]any) []int64 {
	t.Helper()
	list, ok := result["comments"].([]any)
	require.True(t, ok, "comments must be a list")
	out := make([]int64, 0, len(list))
	for _, item := range list {
		out = append(out, item.(map[string]any)["id"].(int64))
	}
	return out
}

func TestCommentsToolSecondPage(t *testing.T) {
	tool := NewCommentsTool(commentstore.NewMemoryStore(approvedComments(12)...), nil)

	got := tool.Execute(asPrincipal(domain.CapModerateComments), map[string]any{
		"per_page": float64(5),
		"page":     float64(2),
	})
	require.False(t, domain.IsErrorResult(got), "%v", got)

	assert.Equal(t, true, got["success"])
	assert.Equal(t, []int64{7, 6, 5, 4, 3}, commentIDs(t, got))
	assert.Equal(t, map[string]any{
		"current_page":      2,
		"per_page":          5,
		"total_comments":    12,
		"total_pages":       3,
		"has_next_page":     true,
		"has_previous_page": true,
	}, got["pagination"])
	assert.Equal(t, map[string]any{
		"status":       "approved",
		"post_id":      nil,
		"author_email": nil,
		"search":       nil,
		"order":        "desc",
		"orderby":      "date",
	}, got["filters_applied"])

	first := got["comments"].([]any)[0].(map[string]any)
	assert.Equal(t, "comment body 7", first["content"])
	assert.Equal(t, domain.UnknownPostTitle, first["post_title"])
	assert.Equal(t, "2025-03-01 19:00:00", first["date"])
	assert.Equal(t, "approved", first["status"])
}

func TestCommentsToolPagesPastTheEnd(t *testing.T) {
	tool := NewCommentsTool(commentstore.NewMemoryStore(approvedComments(12)...), nil)

	cases := []map[string]any{
		{"per_page": float64(100), "page": float64(9e18)},
		{"per_page": float64(100), "page": float64(3e17)},
		{"per_page": float64(1e19), "page": float64(1e30)},
		{"page": float64(4)},
	}
	for _, args := range cases {
		got := tool.Execute(asPrincipal(domain.CapModerateComments), args)
		require.False(t, domain.IsErrorResult(got), "%v: %v", args, got)
		assert.Empty(t, got["comments"], "%v", args)

		pagination := got["pagination"].(map[string]any)
		assert.Equal(t, 12, pagination["total_comments"])
		assert.Equal(t, false, pagination["has_next_page"])
		assert.Equal(t, true, pagination["has_previous_page"])
	}

	got := tool.Execute(asPrincipal(domain.CapModerateComments), map[string]any{"per_page": float64(1e19)})
	assert.Equal(t, domain.MaxCommentsPerPage, got["pagination"].(map[string]any)["per_page"])
}

func TestCommentsToolClampsPaging(t *testing.T) {
	store := &capturingStore{}
	tool := NewCommentsTool(store, nil)

	got := tool.Execute(context.Background(), map[string]any{"per_page": 500, "page": -3})
	require.False(t, domain.IsErrorResult(got), "%v", got)
	assert.Equal(t, domain.MaxCommentsPerPage, store.query.PerPage)
	assert.Equal(t, 1, store.query.Page)

	pagination := got["pagination"].(map[string]any)
	assert.Equal(t, 0, pagination["total_pages"])
	assert.Equal(t, false, pagination["has_next_page"])
	assert.Equal(t, false, pagination["has_previous_page"])

	tool.Execute(context.Background(), map[string]any{"per_page": 0})
	assert.Equal(t, 1, store.query.PerPage)
}

func TestCommentsToolNormalizesFilters(t *testing.T) {
	store := &capturingStore{}
	tool := NewCommentsTool(store, nil)

	got := tool.Execute(context.Background(), map[string]any{
		"status":       "all",
		"post_id":      "42",
		"author_email": "  Someone@Example.COM ",
		"search":       " <em>great</em>   post ",
		"order":        "ASC",
		"orderby":      "author",
	})
	require.False(t, domain.IsErrorResult(got), "%v", got)

	assert.Equal(t, domain.CommentQuery{
		Status:      domain.CommentAll,
		PostID:      42,
		AuthorEmail: "someone@example.com",
		Search:      "great post",
		Order:       domain.SortAsc,
		OrderBy:     domain.OrderByAuthor,
		PerPage:     domain.DefaultCommentsPerPage,
		Page:        1,
	}, store.query)

	filters := got["filters_applied"].(map[string]any)
	assert.Equal(t, int64(42), filters["post_id"])
	assert.Equal(t, "someone@example.com", filters["author_email"])
	assert.Equal(t, "great post", filters["search"])
}

func TestCommentsToolRejectsInvalidArguments(t *testing.T) {
	tool := NewCommentsTool(commentstore.NewMemoryStore(), nil)

	cases := []struct {
		name string
		args map[string]any
		kind domain.ErrorCode
	}{
		{name: "status", args: map[string]any{"status": "deleted"}, kind: domain.CodeInvalidEnum},
		{name: "order", args: map[string]any{"order": "sideways"}, kind: domain.CodeInvalidEnum},
		{name: "orderby", args: map[string]any{"orderby": "karma"}, kind: domain.CodeInvalidEnum},
		{name: "per_page type", args: map[string]any{"per_page": "lots"}, kind: domain.CodeInvalidArgument},
		{name: "search type", args: map[string]any{"search": 12}, kind: domain.CodeInvalidArgument},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tool.Execute(context.Background(), tc.args)
			assert.Equal(t, tc.kind, domain.ErrorKind(got))
		})
	}
}

func TestCommentsToolStoreFailure(t *testing.T) {
	got := NewCommentsTool(failingStore{}, nil).Execute(context.Background(), nil)
	assert.Equal(t, domain.CodeUnavailable, domain.ErrorKind(got))
	assert.Equal(t, "failed to retrieve comments", got["message"])

	got = NewCommentsTool(nil, nil).Execute(context.Background(), nil)
	assert.Equal(t, domain.CodeUnavailable, domain.ErrorKind(got))
}

func TestCommentsToolPermission(t *testing.T) {
	tool := NewCommentsTool(commentstore.NewMemoryStore(), nil)
	assert.True(t, tool.Permission(asPrincipal(domain.CapModerateComments)))
	assert.False(t, tool.Permission(asPrincipal(domain.CapManageOptions)))
	assert.False(t, tool.Permission(context.Background()))
}

func TestCommentsToolSchema(t *testing.T) {
	schema := NewCommentsTool(nil, nil).InputSchema()
	props := schema["properties"].(map[string]any)
	assert.Len(t, props, 8)

	perPage := props["per_page"].(map[string]any)
	assert.Equal(t, domain.DefaultCommentsPerPage, perPage["default"])
	assert.Equal(t, domain.MaxCommentsPerPage, perPage["maximum"])

	status := props["status"].(map[string]any)
	assert.Equal(t, []any{"approved", "pending", "spam", "trash", "all"}, status["enum"])
}
