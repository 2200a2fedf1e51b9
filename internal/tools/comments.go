package tools

import (
	"context"
	"slices"
	"strings"

	"go.uber.org/zap"

	"wpmcp/internal/domain"
)

const commentDateLayout = "2006-01-02 15:04:05"

// CommentsTool lists site comments with filtering and pagination.
type CommentsTool struct {
	store  domain.CommentStore
	logger *zap.Logger
}

func NewCommentsTool(store domain.CommentStore, logger *zap.Logger) *CommentsTool {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommentsTool{store: store, logger: logger.Named("comments_tool")}
}

func (t *CommentsTool) Name() string { return domain.ToolNameComments }

func (t *CommentsTool) Description() string {
	return "Retrieve all WordPress comments and list them with pagination support"
}

func (t *CommentsTool) Type() domain.ToolType { return domain.ToolTypeRead }

func (t *CommentsTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"per_page": map[string]any{
				"type":        "integer",
				"description": "Number of comments per page (default: 10, max: 100)",
				"default":     domain.DefaultCommentsPerPage,
				"minimum":     1,
				"maximum":     domain.MaxCommentsPerPage,
			},
			"page": map[string]any{
				"type":        "integer",
				"description": "Page number for pagination (default: 1)",
				"default":     1,
				"minimum":     1,
			},
			"status": map[string]any{
				"type":        "string",
				"description": "Filter by comment status",
				"enum":        enumValues(domain.CommentStatuses),
				"default":     string(domain.CommentApproved),
			},
			"post_id": map[string]any{
				"type":        "integer",
				"description": "Filter comments by specific post ID (optional)",
				"minimum":     1,
			},
			"author_email": map[string]any{
				"type":        "string",
				"description": "Filter comments by author email (optional)",
			},
			"search": map[string]any{
				"type":        "string",
				"description": "Search term to filter comments by content (optional)",
			},
			"order": map[string]any{
				"type":        "string",
				"description": "Sort order",
				"enum":        []any{string(domain.SortAsc), string(domain.SortDesc)},
				"default":     string(domain.SortDesc),
			},
			"orderby": map[string]any{
				"type":        "string",
				"description": "Sort field",
				"enum":        enumValues(domain.CommentOrderBys),
				"default":     string(domain.OrderByDate),
			},
		},
	}
}

func (t *CommentsTool) Annotations() map[string]any {
	return map[string]any{
		"title":         "Get WordPress Comments",
		"readOnlyHint":  true,
		"openWorldHint": false,
	}
}

func (t *CommentsTool) Permission(ctx context.Context) bool {
	return domain.PrincipalFromContext(ctx).Can(domain.CapModerateComments)
}

func (t *CommentsTool) Execute(ctx context.Context, args map[string]any) map[string]any {
	const op = "tools.Comments"

	q, err := parseCommentQuery(args)
	if err != nil {
		return domain.ErrorResult(domain.Wrap(domain.CodeInvalidArgument, op, err))
	}
	if t.store == nil {
		return domain.ErrorResult(domain.E(domain.CodeUnavailable, op, "comment store is not configured", domain.ErrStoreUnavailable))
	}

	page, err := t.store.List(ctx, q)
	if err != nil {
		t.logger.Error("list comments failed", zap.Error(err))
		return domain.ErrorResult(domain.E(domain.CodeUnavailable, op, "failed to retrieve comments", err))
	}

	comments := make([]any, 0, len(page.Comments))
	for _, c := range page.Comments {
		comments = append(comments, formatComment(c))
	}

	totalPages := 0
	if page.Total > 0 {
		totalPages = (page.Total + q.PerPage - 1) / q.PerPage
	}

	return map[string]any{
		"success":  true,
		"comments": comments,
		"pagination": map[string]any{
			"current_page":      q.Page,
			"per_page":          q.PerPage,
			"total_comments":    page.Total,
			"total_pages":       totalPages,
			"has_next_page":     q.Page < totalPages,
			"has_previous_page": q.Page > 1,
		},
		"filters_applied": map[string]any{
			"status":       string(q.Status),
			"post_id":      nullIfZero(q.PostID),
			"author_email": nullIfEmpty(q.AuthorEmail),
			"search":       nullIfEmpty(q.Search),
			"order":        string(q.Order),
			"orderby":      string(q.OrderBy),
		},
	}
}

// parseCommentQuery applies defaults, clamps paging and checks enumerations.
func parseCommentQuery(args map[string]any) (domain.CommentQuery, error) {
	const op = "tools.Comments"

	q := domain.CommentQuery{
		Status:  domain.CommentApproved,
		Order:   domain.SortDesc,
		OrderBy: domain.OrderByDate,
		PerPage: domain.DefaultCommentsPerPage,
		Page:    1,
	}

	if perPage, ok, err := intArg(args, "per_page"); err != nil {
		return q, err
	} else if ok {
		q.PerPage = int(min(max(perPage, 1), domain.MaxCommentsPerPage))
	}
	if page, ok, err := intArg(args, "page"); err != nil {
		return q, err
	} else if ok {
		q.Page = int(max(page, 1))
	}
	if postID, ok, err := intArg(args, "post_id"); err != nil {
		return q, err
	} else if ok && postID > 0 {
		q.PostID = postID
	}

	if status, ok, err := stringArg(args, "status"); err != nil {
		return q, err
	} else if ok {
		q.Status = domain.CommentStatus(sanitizeText(status))
		if !slices.Contains(domain.CommentStatuses, q.Status) {
			return q, domain.InvalidEnumError(op, "status", string(q.Status), enumNames(domain.CommentStatuses))
		}
	}
	if order, ok, err := stringArg(args, "order"); err != nil {
		return q, err
	} else if ok {
		q.Order = domain.SortOrder(strings.ToLower(sanitizeText(order)))
		if q.Order != domain.SortAsc && q.Order != domain.SortDesc {
			return q, domain.InvalidEnumError(op, "order", string(q.Order), []string{string(domain.SortAsc), string(domain.SortDesc)})
		}
	}
	if orderBy, ok, err := stringArg(args, "orderby"); err != nil {
		return q, err
	} else if ok {
		q.OrderBy = domain.CommentOrderBy(sanitizeText(orderBy))
		if !slices.Contains(domain.CommentOrderBys, q.OrderBy) {
			return q, domain.InvalidEnumError(op, "orderby", string(q.OrderBy), enumNames(domain.CommentOrderBys))
		}
	}

	if email, ok, err := stringArg(args, "author_email"); err != nil {
		return q, err
	} else if ok {
		q.AuthorEmail = strings.ToLower(strings.TrimSpace(email))
	}
	if search, ok, err := stringArg(args, "search"); err != nil {
		return q, err
	} else if ok {
		q.Search = sanitizeText(search)
	}
	return q, nil
}

func formatComment(c domain.Comment) map[string]any {
	title := c.PostTitle
	if title == "" {
		title = domain.UnknownPostTitle
	}
	return map[string]any{
		"id":           c.ID,
		"post_id":      c.PostID,
		"post_title":   title,
		"author_name":  c.AuthorName,
		"author_email": c.AuthorEmail,
		"author_url":   c.AuthorURL,
		"author_ip":    c.AuthorIP,
		"content":      stripTags(c.Content),
		"status":       string(c.Status),
		"date":         c.Date.Format(commentDateLayout),
		"date_gmt":     c.DateGMT.UTC().Format(commentDateLayout),
		"parent_id":    c.ParentID,
		"user_agent":   c.UserAgent,
	}
}

func nullIfZero(v int64) any {
	if v == 0 {
		return nil
	}
	return v
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func enumValues[T ~string](values []T) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		out = append(out, string(v))
	}
	return out
}

func enumNames[T ~string](values []T) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, string(v))
	}
	return out
}

var _ domain.Tool = (*CommentsTool)(nil)
