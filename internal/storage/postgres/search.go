package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"github.com/UkralStul/content-service/internal/domain"
	"github.com/UkralStul/content-service/internal/storage"
)

var searchColumns = []string{
	"p.id", "p.tags", "p.author_id", "p.posted_at", "p.created_at", "p.post_status",
	"p.original_post_id", "p.post_type", "p.user_like_ids",
	"p.like_count", "p.comment_count", "p.repost_count",
	"lp.post_id AS link_id", "lp.url AS link_url", "lp.description AS link_description",
	"pp.post_id AS photo_id", "pp.url AS photo_url",
	"qp.post_id AS quote_id", "qp.text AS quote_text", "qp.author AS quote_author",
	"tp.post_id AS text_id", "tp.title AS text_title", "tp.announcement AS text_announcement", "tp.text AS text_text",
	"vp.post_id AS video_id", "vp.title AS video_title", "vp.url AS video_url",
}

var sortColumns = map[domain.SortType]string{
	domain.SortByDate:    "p.created_at",
	domain.SortByComment: "p.comment_count",
	domain.SortByLike:    "p.like_count",
}

// searchRow - плоская строка результата с nullable колонками деталей.
type searchRow struct {
	ID             string         `db:"id"`
	Tags           pq.StringArray `db:"tags"`
	AuthorID       string         `db:"author_id"`
	PostedAt       time.Time      `db:"posted_at"`
	CreatedAt      time.Time      `db:"created_at"`
	PostStatus     string         `db:"post_status"`
	OriginalPostID string         `db:"original_post_id"`
	PostType       string         `db:"post_type"`
	UserLikeIDs    pq.StringArray `db:"user_like_ids"`
	LikeCount      int            `db:"like_count"`
	CommentCount   int            `db:"comment_count"`
	RepostCount    int            `db:"repost_count"`

	LinkID           sql.NullString `db:"link_id"`
	LinkURL          sql.NullString `db:"link_url"`
	LinkDescription  sql.NullString `db:"link_description"`
	PhotoID          sql.NullString `db:"photo_id"`
	PhotoURL         sql.NullString `db:"photo_url"`
	QuoteID          sql.NullString `db:"quote_id"`
	QuoteText        sql.NullString `db:"quote_text"`
	QuoteAuthor      sql.NullString `db:"quote_author"`
	TextID           sql.NullString `db:"text_id"`
	TextTitle        sql.NullString `db:"text_title"`
	TextAnnouncement sql.NullString `db:"text_announcement"`
	TextText         sql.NullString `db:"text_text"`
	VideoID          sql.NullString `db:"video_id"`
	VideoTitle       sql.NullString `db:"video_title"`
	VideoURL         sql.NullString `db:"video_url"`
}

func (r *searchRow) row() *storage.PostRow {
	rec := postRecord{
		ID:             r.ID,
		Tags:           r.Tags,
		AuthorID:       r.AuthorID,
		PostedAt:       r.PostedAt,
		CreatedAt:      r.CreatedAt,
		PostStatus:     r.PostStatus,
		OriginalPostID: r.OriginalPostID,
		PostType:       r.PostType,
		UserLikeIDs:    r.UserLikeIDs,
		LikeCount:      r.LikeCount,
		CommentCount:   r.CommentCount,
		RepostCount:    r.RepostCount,
	}
	if r.LinkID.Valid {
		rec.LinkDetails = &linkRecord{PostID: r.ID, URL: r.LinkURL.String, Description: r.LinkDescription.String}
	}
	if r.PhotoID.Valid {
		rec.PhotoDetails = &photoRecord{PostID: r.ID, URL: r.PhotoURL.String}
	}
	if r.QuoteID.Valid {
		rec.QuoteDetails = &quoteRecord{PostID: r.ID, Text: r.QuoteText.String, Author: r.QuoteAuthor.String}
	}
	if r.TextID.Valid {
		rec.TextDetails = &textRecord{PostID: r.ID, Title: r.TextTitle.String, Announcement: r.TextAnnouncement.String, Text: r.TextText.String}
	}
	if r.VideoID.Valid {
		rec.VideoDetails = &videoRecord{PostID: r.ID, Title: r.VideoTitle.String, URL: r.VideoURL.String}
	}
	return rec.row()
}

type searchRepository struct {
	db  *sqlx.DB
	log *slog.Logger
}

func (r *searchRepository) SearchPosts(ctx context.Context, f domain.SearchFilter) ([]*storage.PostRow, int, error) {
	query, args, err := buildSearchQuery(f).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build search query: %w", err)
	}
	countQuery, countArgs, err := buildCountQuery(f).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count query: %w", err)
	}
	r.log.DebugContext(ctx, "executing search query", slog.String("query", query))

	var (
		rows  []searchRow
		total int
	)
	// Страница и общее количество читаются параллельно с одним и тем же фильтром
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.db.SelectContext(gctx, &rows, query, args...)
	})
	g.Go(func() error {
		return r.db.GetContext(gctx, &total, countQuery, countArgs...)
	})
	if err := g.Wait(); err != nil {
		return nil, 0, fmt.Errorf("search query failed: %w", err)
	}

	result := make([]*storage.PostRow, len(rows))
	for i := range rows {
		result[i] = rows[i].row()
	}
	return result, total, nil
}

func buildSearchQuery(f domain.SearchFilter) sq.SelectBuilder {
	direction := string(f.SortDirection)
	if !f.SortDirection.Valid() {
		direction = string(domain.SortDesc)
	}
	column, ok := sortColumns[f.SortType]
	if !ok {
		column = sortColumns[domain.SortByDate]
	}

	return withJoins(sq.Select(searchColumns...).From("posts p")).
		Where(searchConditions(f)).
		OrderBy(column+" "+direction, "p.id ASC").
		Limit(uint64(f.Limit)).
		Offset(uint64(domain.Offset(f.Page, f.Limit))).
		PlaceholderFormat(sq.Dollar)
}

func buildCountQuery(f domain.SearchFilter) sq.SelectBuilder {
	return withJoins(sq.Select("COUNT(*)").From("posts p")).
		Where(searchConditions(f)).
		PlaceholderFormat(sq.Dollar)
}

func withJoins(b sq.SelectBuilder) sq.SelectBuilder {
	return b.
		LeftJoin("link_posts lp ON lp.post_id = p.id").
		LeftJoin("photo_posts pp ON pp.post_id = p.id").
		LeftJoin("quote_posts qp ON qp.post_id = p.id").
		LeftJoin("text_posts tp ON tp.post_id = p.id").
		LeftJoin("video_posts vp ON vp.post_id = p.id")
}

func searchConditions(f domain.SearchFilter) sq.And {
	conds := sq.And{}
	if len(f.AuthorIDs) > 0 {
		conds = append(conds, sq.Eq{"p.author_id": f.AuthorIDs})
	}
	if f.PostStatus != "" {
		conds = append(conds, sq.Eq{"p.post_status": string(f.PostStatus)})
	}
	if f.PostType != "" {
		conds = append(conds, sq.Eq{"p.post_type": string(f.PostType)})
	}
	if len(f.Tags) > 0 {
		conds = append(conds, sq.Expr("p.tags && ?", pqArray(f.Tags)))
	}
	if f.Title != "" {
		// Заголовок есть только у видео и текстовых постов
		pattern := "%" + escapeLike(f.Title) + "%"
		conds = append(conds, sq.Or{
			sq.ILike{"vp.title": pattern},
			sq.ILike{"tp.title": pattern},
		})
	}
	if f.PostDate != nil {
		conds = append(conds, sq.Gt{"p.posted_at": *f.PostDate})
	}
	return conds
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func pqArray(values []string) pq.StringArray {
	if values == nil {
		return pq.StringArray{}
	}
	return pq.StringArray(values)
}
