package commentstore

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	sqldriver "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"wpmcp/internal/domain"
)

var tablePrefixPattern = regexp.MustCompile(`^[A-Za-z0-9_]*$`)

// wpComment mirrors the columns of a WordPress comments row joined with the
// title of its post.
type wpComment struct {
	ID          int64     `gorm:"column:comment_ID;primaryKey"`
	PostID      int64     `gorm:"column:comment_post_ID"`
	Author      string    `gorm:"column:comment_author"`
	AuthorEmail string    `gorm:"column:comment_author_email"`
	AuthorURL   string    `gorm:"column:comment_author_url"`
	AuthorIP    string    `gorm:"column:comment_author_IP"`
	Date        time.Time `gorm:"column:comment_date"`
	DateGMT     time.Time `gorm:"column:comment_date_gmt"`
	Content     string    `gorm:"column:comment_content"`
	Approved    string    `gorm:"column:comment_approved"`
	Agent       string    `gorm:"column:comment_agent"`
	Parent      int64     `gorm:"column:comment_parent"`
	PostTitle   *string   `gorm:"column:post_title;->"`
}

var wpCommentColumns = []string{
	"c.comment_ID", "c.comment_post_ID", "c.comment_author", "c.comment_author_email",
	"c.comment_author_url", "c.comment_author_IP", "c.comment_date", "c.comment_date_gmt",
	"c.comment_content", "c.comment_approved", "c.comment_agent", "c.comment_parent",
	"p.post_title",
}

var orderColumns = map[domain.CommentOrderBy]string{
	domain.OrderByDate:        "comment_date",
	domain.OrderByDateGMT:     "comment_date_gmt",
	domain.OrderByAuthor:      "comment_author",
	domain.OrderByAuthorEmail: "comment_author_email",
	domain.OrderByAuthorURL:   "comment_author_url",
	domain.OrderByAuthorIP:    "comment_author_IP",
	domain.OrderByPost:        "comment_post_ID",
}

// WordPressStore reads comments from a live WordPress MySQL database.
type WordPressStore struct {
	db     *gorm.DB
	prefix string
}

// OpenWordPressStore connects to the database behind dsn, retrying the
// initial ping. Time parsing is forced on so comment dates scan into
// time.Time.
func OpenWordPressStore(ctx context.Context, dsn, tablePrefix string, log *zap.Logger) (*WordPressStore, error) {
	if log == nil {
		log = zap.NewNop()
	}
	parsed, err := sqldriver.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse comments dsn: %w", err)
	}
	parsed.ParseTime = true

	gormLogger := logger.New(
		zap.NewStdLog(log.Named("gorm")),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(mysql.Open(parsed.FormatDSN()), &gorm.Config{Logger: gormLogger, DisableAutomaticPing: true})
	if err != nil {
		return nil, fmt.Errorf("open comments database: %w", err)
	}
	store, err := newWordPressStore(db, tablePrefix)
	if err != nil {
		return nil, err
	}
	if err := retry(ctx, connectAttempts, newBackoff(connectBaseDelay, connectMaxDelay), store.Ping); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

func newWordPressStore(db *gorm.DB, tablePrefix string) (*WordPressStore, error) {
	if !tablePrefixPattern.MatchString(tablePrefix) {
		return nil, fmt.Errorf("invalid table prefix %q", tablePrefix)
	}
	return &WordPressStore{db: db, prefix: tablePrefix}, nil
}

func (s *WordPressStore) List(ctx context.Context, q domain.CommentQuery) (domain.CommentPage, error) {
	var total int64
	if err := s.filtered(ctx, q).Count(&total).Error; err != nil {
		return domain.CommentPage{}, fmt.Errorf("count comments: %w", err)
	}
	if int64(q.Offset()) >= total {
		return domain.CommentPage{Comments: []domain.Comment{}, Total: int(total)}, nil
	}

	var rows []wpComment
	if err := s.page(ctx, q).Find(&rows).Error; err != nil {
		return domain.CommentPage{}, fmt.Errorf("list comments: %w", err)
	}

	comments := make([]domain.Comment, 0, len(rows))
	for _, row := range rows {
		comments = append(comments, row.toDomain())
	}
	return domain.CommentPage{Comments: comments, Total: int(total)}, nil
}

func (s *WordPressStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *WordPressStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *WordPressStore) filtered(ctx context.Context, q domain.CommentQuery) *gorm.DB {
	tx := s.db.WithContext(ctx).Table(s.prefix + "comments AS c")

	switch q.Status {
	case domain.CommentAll:
		tx = tx.Where("c.comment_approved IN ?", []string{"1", "0"})
	case "":
		tx = tx.Where("c.comment_approved = ?", approvedValue(domain.CommentApproved))
	default:
		tx = tx.Where("c.comment_approved = ?", approvedValue(q.Status))
	}
	if q.PostID > 0 {
		tx = tx.Where("c.comment_post_ID = ?", q.PostID)
	}
	if q.AuthorEmail != "" {
		tx = tx.Where("c.comment_author_email = ?", q.AuthorEmail)
	}
	if q.Search != "" {
		like := "%" + escapeLike(q.Search) + "%"
		tx = tx.Where(
			"(c.comment_author LIKE ? OR c.comment_author_email LIKE ? OR c.comment_author_url LIKE ? OR c.comment_author_IP LIKE ? OR c.comment_content LIKE ?)",
			like, like, like, like, like,
		)
	}
	return tx
}

func (s *WordPressStore) page(ctx context.Context, q domain.CommentQuery) *gorm.DB {
	column, ok := orderColumns[q.OrderBy]
	if !ok {
		column = orderColumns[domain.OrderByDate]
	}
	desc := q.Order != domain.SortAsc

	tx := s.filtered(ctx, q).
		Select(wpCommentColumns).
		Joins("LEFT JOIN " + s.prefix + "posts AS p ON p.ID = c.comment_post_ID").
		Order(clause.OrderByColumn{Column: clause.Column{Table: "c", Name: column}, Desc: desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Table: "c", Name: "comment_ID"}, Desc: desc}).
		Offset(q.Offset())
	if q.PerPage > 0 {
		tx = tx.Limit(q.PerPage)
	}
	return tx
}

func (row wpComment) toDomain() domain.Comment {
	c := domain.Comment{
		ID:          row.ID,
		PostID:      row.PostID,
		AuthorName:  row.Author,
		AuthorEmail: row.AuthorEmail,
		AuthorURL:   row.AuthorURL,
		AuthorIP:    row.AuthorIP,
		Content:     row.Content,
		Status:      statusFromApproved(row.Approved),
		Date:        row.Date,
		DateGMT:     row.DateGMT,
		ParentID:    row.Parent,
		UserAgent:   row.Agent,
	}
	if row.PostTitle != nil {
		c.PostTitle = *row.PostTitle
	}
	return c
}

// approvedValue maps a status onto the comment_approved column value.
func approvedValue(status domain.CommentStatus) string {
	switch status {
	case domain.CommentApproved:
		return "1"
	case domain.CommentPending:
		return "0"
	default:
		return string(status)
	}
}

func statusFromApproved(value string) domain.CommentStatus {
	switch value {
	case "1":
		return domain.CommentApproved
	case "0":
		return domain.CommentPending
	default:
		return domain.CommentStatus(value)
	}
}

func escapeLike(value string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(value)
}

var _ domain.CommentStore = (*WordPressStore)(nil)
