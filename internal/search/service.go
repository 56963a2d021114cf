package search

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/UkralStul/content-service/internal/domain"
)

const (
	MsgSubscriptionsNotFound = "Subscriptions not found"
	MsgPostDateRequired      = "postDate is required"
)

// SubscriptionSource возвращает авторов, на которых подписан пользователь.
// nil без ошибки означает, что список получить не удалось.
type SubscriptionSource interface {
	Subscriptions(ctx context.Context, userID string) ([]string, error)
}

// Service строит ленты поверх Engine, дополняя фильтр правилами видимости.
type Service struct {
	engine   *Engine
	subs     SubscriptionSource
	maxLimit int
	log      *slog.Logger
}

func NewService(engine *Engine, subs SubscriptionSource, maxLimit int, log *slog.Logger) *Service {
	return &Service{
		engine:   engine,
		subs:     subs,
		maxLimit: maxLimit,
		log:      log.With(slog.String("component", "search")),
	}
}

func (s *Service) SearchPosts(ctx context.Context, f domain.SearchFilter) (*domain.Page[domain.AggregatePost], error) {
	return s.engine.SearchPosts(ctx, f.Normalize(s.maxLimit))
}

// FindPublicPosts ищет среди опубликованных постов всех авторов.
func (s *Service) FindPublicPosts(ctx context.Context, f domain.SearchFilter) (*domain.Page[domain.AggregatePost], error) {
	f.AuthorIDs = []string{}
	f.PostStatus = domain.PostStatusPublished
	return s.SearchPosts(ctx, f)
}

// FindNewPostsByDate возвращает опубликованные посты новее f.PostDate.
func (s *Service) FindNewPostsByDate(ctx context.Context, f domain.SearchFilter) (*domain.Page[domain.AggregatePost], error) {
	if f.PostDate == nil {
		return nil, domain.BadRequest(MsgPostDateRequired)
	}
	f.AuthorIDs = []string{}
	f.PostStatus = domain.PostStatusPublished
	return s.SearchPosts(ctx, f)
}

// FindUserPosts - поиск от имени пользователя. Черновики видны только автору:
// если запрошены чужие посты, статус принудительно PUBLISHED.
func (s *Service) FindUserPosts(ctx context.Context, userID string, f domain.SearchFilter) (*domain.Page[domain.AggregatePost], error) {
	if len(f.AuthorIDs) == 0 {
		f.AuthorIDs = []string{userID}
	}
	if len(f.AuthorIDs) > 1 || f.AuthorIDs[0] != userID {
		f.PostStatus = domain.PostStatusPublished
	}
	return s.SearchPosts(ctx, f)
}

// FindPersonalFeed - опубликованные посты авторов из подписок пользователя.
func (s *Service) FindPersonalFeed(ctx context.Context, userID string, f domain.SearchFilter) (*domain.Page[domain.AggregatePost], error) {
	subs, err := s.subs.Subscriptions(ctx, userID)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to load subscriptions", slog.String("userId", userID), slog.Any("error", err))
		return nil, fmt.Errorf("failed to load subscriptions: %w", err)
	}
	if subs == nil {
		return nil, domain.NotFound(MsgSubscriptionsNotFound)
	}

	f = f.Normalize(s.maxLimit)
	// Пустой список авторов в фильтре значит "все авторы", поэтому без подписок лента пуста
	if len(subs) == 0 {
		return domain.NewPage([]domain.AggregatePost{}, 0, f.Page, f.Limit), nil
	}
	f.AuthorIDs = subs
	f.PostStatus = domain.PostStatusPublished
	return s.engine.SearchPosts(ctx, f)
}
