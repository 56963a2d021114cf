// Package search собирает посты всех подтипов одним запросом и
// реализует производные ленты поверх него.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/UkralStul/content-service/internal/domain"
	"github.com/UkralStul/content-service/internal/storage"
)

type converter func(*storage.PostRow) domain.Post

// Engine выполняет поиск постов. Сырые строки превращаются в типизированные посты
// конвертерами репозиториев подтипов; повторных чтений не происходит.
type Engine struct {
	repo       storage.SearchRepository
	converters map[domain.PostType]converter
	log        *slog.Logger
	tracer     trace.Tracer
	metrics    *Metrics
}

func NewEngine(repos storage.Repositories, log *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		repo: repos.Search,
		converters: map[domain.PostType]converter{
			domain.PostTypeLink:  func(r *storage.PostRow) domain.Post { return repos.Links.Convert(r) },
			domain.PostTypePhoto: func(r *storage.PostRow) domain.Post { return repos.Photos.Convert(r) },
			domain.PostTypeQuote: func(r *storage.PostRow) domain.Post { return repos.Quotes.Convert(r) },
			domain.PostTypeText:  func(r *storage.PostRow) domain.Post { return repos.Texts.Convert(r) },
			domain.PostTypeVideo: func(r *storage.PostRow) domain.Post { return repos.Videos.Convert(r) },
		},
		log: log.With(slog.String("component", "search")),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SearchPosts ожидает уже нормализованный фильтр.
func (e *Engine) SearchPosts(ctx context.Context, f domain.SearchFilter) (page *domain.Page[domain.AggregatePost], err error) {
	start := time.Now()
	ctx, span := e.startSpan(ctx, "search.SearchPosts")
	defer span.End()
	span.SetAttributes(
		attribute.Int("search.page", f.Page),
		attribute.Int("search.limit", f.Limit),
		attribute.String("search.sort_type", string(f.SortType)),
		attribute.Int("search.authors", len(f.AuthorIDs)),
	)
	defer func() {
		e.record(ctx, string(f.SortType), time.Since(start), err)
		if err != nil {
			span.fail(err)
		}
	}()

	rows, total, err := e.repo.SearchPosts(ctx, f)
	if err != nil {
		e.log.ErrorContext(ctx, "search query failed", slog.Any("error", err))
		return nil, fmt.Errorf("failed to search posts: %w", err)
	}

	entities := make([]domain.AggregatePost, 0, len(rows))
	for _, row := range rows {
		convert, ok := e.converters[row.PostType]
		if !ok {
			e.log.ErrorContext(ctx, "unknown post type in search result",
				slog.String("postId", row.ID), slog.String("postType", string(row.PostType)))
			return nil, domain.Internal("unknown post type %q", row.PostType)
		}
		entities = append(entities, convert(row).Aggregate())
	}

	span.SetAttributes(attribute.Int("search.total", total))
	e.log.DebugContext(ctx, "search completed",
		slog.Int("found", len(entities)), slog.Int("total", total), slog.Duration("duration", time.Since(start)))
	return domain.NewPage(entities, total, f.Page, f.Limit), nil
}
