package domain

import (
	"context"
	"math"
	"time"
)

// CommentStatus is the moderation state of a comment.
type CommentStatus string

const (
	CommentApproved CommentStatus = "approved"
	CommentPending  CommentStatus = "pending"
	CommentSpam     CommentStatus = "spam"
	CommentTrash    CommentStatus = "trash"
	// CommentAll matches approved and pending comments.
	CommentAll CommentStatus = "all"
)

var CommentStatuses = []CommentStatus{CommentApproved, CommentPending, CommentSpam, CommentTrash, CommentAll}

// Matches reports whether a stored comment status satisfies the filter.
func (s CommentStatus) Matches(stored CommentStatus) bool {
	if s == CommentAll {
		return stored == CommentApproved || stored == CommentPending
	}
	return s == stored
}

// CommentOrderBy is the sort field of a comment query.
type CommentOrderBy string

const (
	OrderByDate        CommentOrderBy = "date"
	OrderByDateGMT     CommentOrderBy = "date_gmt"
	OrderByAuthor      CommentOrderBy = "author"
	OrderByAuthorEmail CommentOrderBy = "author_email"
	OrderByAuthorURL   CommentOrderBy = "author_url"
	OrderByAuthorIP    CommentOrderBy = "author_IP"
	OrderByPost        CommentOrderBy = "post"
)

var CommentOrderBys = []CommentOrderBy{
	OrderByDate, OrderByDateGMT, OrderByAuthor, OrderByAuthorEmail, OrderByAuthorURL, OrderByAuthorIP, OrderByPost,
}

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Comment is a stored site comment. PostTitle is empty when the post is unknown.
type Comment struct {
	ID          int64         `json:"id"`
	PostID      int64         `json:"post_id"`
	PostTitle   string        `json:"post_title"`
	AuthorName  string        `json:"author_name"`
	AuthorEmail string        `json:"author_email"`
	AuthorURL   string        `json:"author_url"`
	AuthorIP    string        `json:"author_ip"`
	Content     string        `json:"content"`
	Status      CommentStatus `json:"status"`
	Date        time.Time     `json:"date"`
	DateGMT     time.Time     `json:"date_gmt"`
	ParentID    int64         `json:"parent_id"`
	UserAgent   string        `json:"user_agent"`
}

// CommentQuery is a normalized listing request. Zero PostID, empty
// AuthorEmail and empty Search mean no filter.
type CommentQuery struct {
	Status      CommentStatus
	PostID      int64
	AuthorEmail string
	Search      string
	Order       SortOrder
	OrderBy     CommentOrderBy
	PerPage     int
	Page        int
}

// Offset returns the number of records skipped before the requested page.
// Pages too far out to address report math.MaxInt, which is past the end of
// any listing.
func (q CommentQuery) Offset() int {
	if q.Page < 1 || q.PerPage < 1 {
		return 0
	}
	if q.Page-1 > math.MaxInt/q.PerPage {
		return math.MaxInt
	}
	return (q.Page - 1) * q.PerPage
}

// CommentPage is one page of a listing plus the unpaginated total.
type CommentPage struct {
	Comments []Comment
	Total    int
}

// CommentStore lists comments for the comment tool.
type CommentStore interface {
	List(ctx context.Context, query CommentQuery) (CommentPage, error)
	Ping(ctx context.Context) error
	Close() error
}

// CommentWriter is implemented by stores that accept imported comments.
type CommentWriter interface {
	Put(ctx context.Context, comments []Comment) error
}
