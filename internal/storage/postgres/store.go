package postgres

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/UkralStul/content-service/internal/domain"
	"github.com/UkralStul/content-service/internal/storage"
)

// Store реализует репозитории поверх PostgreSQL.
// Запись поста и его деталей выполняется в одной транзакции gorm,
// поисковый запрос собирается squirrel и читается через sqlx.
type Store struct {
	db  *gorm.DB
	sqx *sqlx.DB
	log *slog.Logger
}

// New создает новый экземпляр хранилища PostgreSQL.
func New(dsn string, log *slog.Logger, level logger.LogLevel) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(
		&postRecord{},
		&linkRecord{}, &photoRecord{}, &quoteRecord{}, &textRecord{}, &videoRecord{},
		&domain.Comment{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	return &Store{db: db, sqx: sqlx.NewDb(sqlDB, "pgx"), log: log}, nil
}

func (s *Store) Close() error {
	return s.sqx.Close()
}

// Repositories возвращает набор репозиториев поверх этого хранилища.
func (s *Store) Repositories() storage.Repositories {
	return storage.Repositories{
		Posts:    &postRepository{db: s.db},
		Links:    newTypedRepository(s.db, linkVariant),
		Photos:   newTypedRepository(s.db, photoVariant),
		Quotes:   newTypedRepository(s.db, quoteVariant),
		Texts:    newTypedRepository(s.db, textVariant),
		Videos:   newTypedRepository(s.db, videoVariant),
		Search:   &searchRepository{db: s.sqx, log: s.log},
		Comments: &commentRepository{db: s.db},
	}
}

// === Records ===

type postRecord struct {
	ID             string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Tags           pq.StringArray `gorm:"type:text[];not null;default:'{}'"`
	AuthorID       string         `gorm:"type:varchar(255);not null;index"`
	PostedAt       time.Time      `gorm:"not null;index"`
	CreatedAt      time.Time      `gorm:"not null;default:now()"`
	PostStatus     string         `gorm:"type:varchar(16);not null;index"`
	OriginalPostID string         `gorm:"type:varchar(36);not null;default:'';index"`
	PostType       string         `gorm:"type:varchar(16);not null;index"`
	UserLikeIDs    pq.StringArray `gorm:"type:text[];not null;default:'{}'"`
	LikeCount      int            `gorm:"not null;default:0"`
	CommentCount   int            `gorm:"not null;default:0"`
	RepostCount    int            `gorm:"not null;default:0"`

	LinkDetails  *linkRecord  `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	PhotoDetails *photoRecord `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	QuoteDetails *quoteRecord `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	TextDetails  *textRecord  `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	VideoDetails *videoRecord `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
}

func (postRecord) TableName() string { return "posts" }

type linkRecord struct {
	PostID      string `gorm:"type:uuid;primaryKey"`
	URL         string `gorm:"type:text;not null"`
	Description string `gorm:"type:text;not null"`
}

func (linkRecord) TableName() string { return "link_posts" }

type photoRecord struct {
	PostID string `gorm:"type:uuid;primaryKey"`
	URL    string `gorm:"type:text;not null"`
}

func (photoRecord) TableName() string { return "photo_posts" }

type quoteRecord struct {
	PostID string `gorm:"type:uuid;primaryKey"`
	Text   string `gorm:"type:text;not null"`
	Author string `gorm:"type:varchar(255);not null"`
}

func (quoteRecord) TableName() string { return "quote_posts" }

type textRecord struct {
	PostID       string `gorm:"type:uuid;primaryKey"`
	Title        string `gorm:"type:varchar(255);not null"`
	Announcement string `gorm:"type:text;not null"`
	Text         string `gorm:"type:text;not null"`
}

func (textRecord) TableName() string { return "text_posts" }

type videoRecord struct {
	PostID string `gorm:"type:uuid;primaryKey"`
	Title  string `gorm:"type:varchar(255);not null"`
	URL    string `gorm:"type:text;not null"`
}

func (videoRecord) TableName() string { return "video_posts" }

func newPostRecord(p *domain.PostCore) postRecord {
	likes := pq.StringArray(append([]string{}, p.UserLikeIDs...))
	status := p.PostStatus
	if status == "" {
		status = domain.PostStatusPublished
	}
	postedAt := p.PostedAt
	if postedAt.IsZero() {
		postedAt = time.Now().UTC()
	}
	return postRecord{
		Tags:           pq.StringArray(append([]string{}, p.Tags...)),
		AuthorID:       p.AuthorID,
		PostedAt:       postedAt,
		PostStatus:     string(status),
		OriginalPostID: p.OriginalPostID,
		PostType:       string(p.PostType),
		UserLikeIDs:    likes,
		LikeCount:      len(likes),
	}
}

func (r *postRecord) core() domain.PostCore {
	return domain.PostCore{
		ID:             r.ID,
		Tags:           append([]string{}, r.Tags...),
		AuthorID:       r.AuthorID,
		PostedAt:       r.PostedAt,
		CreatedAt:      r.CreatedAt,
		PostStatus:     domain.PostStatus(r.PostStatus),
		OriginalPostID: r.OriginalPostID,
		PostType:       domain.PostType(r.PostType),
		UserLikeIDs:    append([]string{}, r.UserLikeIDs...),
		LikeCount:      r.LikeCount,
		CommentCount:   r.CommentCount,
		RepostCount:    r.RepostCount,
	}
}

// row переводит запись с подгруженными ассоциациями в соединенную строку.
func (r *postRecord) row() *storage.PostRow {
	row := &storage.PostRow{PostCore: r.core()}
	if d := r.LinkDetails; d != nil {
		row.Link = &domain.LinkDetail{URL: d.URL, Description: d.Description}
	}
	if d := r.PhotoDetails; d != nil {
		row.Photo = &domain.PhotoDetail{URL: d.URL}
	}
	if d := r.QuoteDetails; d != nil {
		row.Quote = &domain.QuoteDetail{Text: d.Text, Author: d.Author}
	}
	if d := r.TextDetails; d != nil {
		row.Text = &domain.TextDetail{Title: d.Title, Announcement: d.Announcement, Text: d.Text}
	}
	if d := r.VideoDetails; d != nil {
		row.Video = &domain.VideoDetail{Title: d.Title, URL: d.URL}
	}
	return row
}
