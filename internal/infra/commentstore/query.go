package commentstore

import (
	"cmp"
	"slices"
	"strings"

	"wpmcp/internal/domain"
)

// apply filters, sorts and paginates comments in memory. The input slice is
// not modified.
func apply(comments []domain.Comment, q domain.CommentQuery) domain.CommentPage {
	matched := make([]domain.Comment, 0, len(comments))
	for _, c := range comments {
		if matches(c, q) {
			matched = append(matched, c)
		}
	}

	slices.SortStableFunc(matched, func(a, b domain.Comment) int {
		order := compareBy(a, b, q.OrderBy)
		if order == 0 {
			order = cmp.Compare(a.ID, b.ID)
		}
		if q.Order == domain.SortAsc {
			return order
		}
		return -order
	})

	total := len(matched)
	start := min(q.Offset(), total)
	end := total
	if q.PerPage > 0 {
		end = min(start+q.PerPage, total)
	}
	return domain.CommentPage{
		Comments: slices.Clone(matched[start:end]),
		Total:    total,
	}
}

func matches(c domain.Comment, q domain.CommentQuery) bool {
	status := q.Status
	if status == "" {
		status = domain.CommentApproved
	}
	if !status.Matches(c.Status) {
		return false
	}
	if q.PostID > 0 && c.PostID != q.PostID {
		return false
	}
	if q.AuthorEmail != "" && !strings.EqualFold(c.AuthorEmail, q.AuthorEmail) {
		return false
	}
	if q.Search != "" {
		needle := strings.ToLower(q.Search)
		for _, field := range []string{c.AuthorName, c.AuthorEmail, c.AuthorURL, c.AuthorIP, c.Content} {
			if strings.Contains(strings.ToLower(field), needle) {
				return true
			}
		}
		return false
	}
	return true
}

func compareBy(a, b domain.Comment, orderBy domain.CommentOrderBy) int {
	switch orderBy {
	case domain.OrderByDateGMT:
		return a.DateGMT.Compare(b.DateGMT)
	case domain.OrderByAuthor:
		return strings.Compare(a.AuthorName, b.AuthorName)
	case domain.OrderByAuthorEmail:
		return strings.Compare(a.AuthorEmail, b.AuthorEmail)
	case domain.OrderByAuthorURL:
		return strings.Compare(a.AuthorURL, b.AuthorURL)
	case domain.OrderByAuthorIP:
		return strings.Compare(a.AuthorIP, b.AuthorIP)
	case domain.OrderByPost:
		return cmp.Compare(a.PostID, b.PostID)
	default:
		return a.Date.Compare(b.Date)
	}
}
