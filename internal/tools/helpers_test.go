package tools

import (
	"context"
	"fmt"
	"time"

	"wpmcp/internal/domain"
)

var baseDate = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func asPrincipal(capabilities ...string) context.Context {
	return domain.WithPrincipal(context.Background(), domain.Principal{ID: "tester", Capabilities: capabilities})
}

func approvedComments(n int) []domain.Comment {
	out := make([]domain.Comment, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, domain.Comment{
			ID:          int64(i),
			PostID:      int64(100 + i%2),
			AuthorName:  fmt.Sprintf("Author %02d", i),
			AuthorEmail: fmt.Sprintf("author%02d@example.com", i),
			AuthorIP:    "10.0.0.1",
			Content:     fmt.Sprintf("<p>comment <b>body</b> %d</p>", i),
			Status:      domain.CommentApproved,
			Date:        baseDate.Add(time.Duration(i) * time.Hour),
			DateGMT:     baseDate.Add(time.Duration(i) * time.Hour),
		})
	}
	return out
}

type sliceRegistry struct {
	regs []domain.Registration
}

func (r *sliceRegistry) Register(reg domain.Registration) error {
	for _, existing := range r.regs {
		if existing.Name == reg.Name {
			return domain.ErrToolRegistered
		}
	}
	r.regs = append(r.regs, reg)
	return nil
}

func (r *sliceRegistry) names() []string {
	out := make([]string, 0, len(r.regs))
	for _, reg := range r.regs {
		out = append(out, reg.Name)
	}
	return out
}
