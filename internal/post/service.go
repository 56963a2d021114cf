// Package post содержит общий сервис постов и типизированные сервисы подтипов.
package post

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/UkralStul/content-service/internal/dataloader"
	"github.com/UkralStul/content-service/internal/domain"
	"github.com/UkralStul/content-service/internal/storage"
)

const (
	MsgPostNotFound         = "Post not found"
	MsgPostDeletePermission = "You do not have permission to delete this post"
	MsgPostAlreadyLiked     = "Post is already liked by this user"
	MsgPostAlreadyUnliked   = "Post is not liked by this user"
	MsgPostNotPublished     = "Post is not published"
)

// UserDirectory - счетчик постов в сервисе пользователей.
type UserDirectory interface {
	IncrementPostCount(ctx context.Context, userID string) (bool, error)
	DecrementPostCount(ctx context.Context, userID string) (bool, error)
}

// Service выполняет операции, общие для всех подтипов.
type Service struct {
	posts storage.PostRepository
	users UserDirectory
	log   *slog.Logger
}

func NewService(posts storage.PostRepository, users UserDirectory, log *slog.Logger) *Service {
	return &Service{posts: posts, users: users, log: log.With(slog.String("component", "post"))}
}

// FindPostByID ищет пост по id. Внутри HTTP-запроса чтение идет через дата-лоадер,
// поэтому повторные проверки одного поста не ходят в хранилище.
func (s *Service) FindPostByID(ctx context.Context, id string) (*domain.PostCore, error) {
	s.log.InfoContext(ctx, "searching for post", slog.String("postId", id))

	post, viaLoader, err := dataloader.LoadPost(ctx, id)
	if !viaLoader {
		post, err = s.posts.FindByID(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			post, err = nil, nil
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find post: %w", err)
	}
	if post == nil {
		s.log.WarnContext(ctx, "post not found", slog.String("postId", id))
		return nil, domain.NotFound(MsgPostNotFound)
	}
	return post, nil
}

// FindPublishedPostByID дополнительно требует статус PUBLISHED.
func (s *Service) FindPublishedPostByID(ctx context.Context, id string) (*domain.PostCore, error) {
	post, err := s.FindPostByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.PostStatus != domain.PostStatusPublished {
		s.log.WarnContext(ctx, "post is not published", slog.String("postId", id))
		return nil, domain.Conflict(MsgPostNotPublished)
	}
	return post, nil
}

func (s *Service) DeletePostByID(ctx context.Context, userID, id string) (*domain.PostCore, error) {
	s.log.InfoContext(ctx, "attempting to delete post", slog.String("postId", id), slog.String("userId", userID))
	post, err := s.FindPostByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != userID {
		s.log.WarnContext(ctx, "unauthorized delete attempt", slog.String("postId", id), slog.String("userId", userID))
		return nil, domain.Unauthorized(MsgPostDeletePermission)
	}

	deleted, err := s.posts.DeleteByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, domain.NotFound(MsgPostNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete post: %w", err)
	}
	dataloader.Forget(ctx, id)
	s.DecrementUserPostCount(ctx, userID)
	s.log.InfoContext(ctx, "post deleted", slog.String("postId", id))
	return deleted, nil
}

func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	return s.posts.Exists(ctx, id)
}

func (s *Service) ExistsRepostByUser(ctx context.Context, originalPostID, authorID string) (bool, error) {
	return s.posts.ExistsRepostByUser(ctx, originalPostID, authorID)
}

// Счетчики поддерживаются по возможности: ошибка логируется, а не возвращается.

func (s *Service) IncrementRepostCount(ctx context.Context, id string) bool {
	return s.counter(ctx, "repostCount", "increment", id, s.posts.IncrementRepostCount)
}

func (s *Service) IncrementCommentCount(ctx context.Context, id string) bool {
	return s.counter(ctx, "commentCount", "increment", id, s.posts.IncrementCommentCount)
}

func (s *Service) DecrementCommentCount(ctx context.Context, id string) bool {
	return s.counter(ctx, "commentCount", "decrement", id, s.posts.DecrementCommentCount)
}

func (s *Service) counter(ctx context.Context, field, op, id string, fn func(context.Context, string) (bool, error)) bool {
	ok, err := fn(ctx, id)
	if err != nil || !ok {
		s.log.ErrorContext(ctx, "failed to update counter",
			slog.String("field", field), slog.String("op", op), slog.String("postId", id), slog.Any("error", err))
		return false
	}
	dataloader.Forget(ctx, id)
	return true
}

// LikePostByID добавляет лайк. Повторный лайк того же пользователя - Conflict.
func (s *Service) LikePostByID(ctx context.Context, userID, id string) (*domain.PostCore, error) {
	s.log.InfoContext(ctx, "user attempting to like post", slog.String("postId", id), slog.String("userId", userID))
	post, err := s.FindPostByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.LikedBy(userID) {
		return nil, domain.Conflict(MsgPostAlreadyLiked)
	}

	// Хранилище повторяет проверку атомарно: проигравший гонку получит applied == false
	liked, applied, err := s.posts.AddLike(ctx, id, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, domain.NotFound(MsgPostNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to like post: %w", err)
	}
	dataloader.Forget(ctx, id)
	if !applied {
		return nil, domain.Conflict(MsgPostAlreadyLiked)
	}
	s.log.InfoContext(ctx, "post liked", slog.String("postId", id))
	return liked, nil
}

func (s *Service) UnlikePostByID(ctx context.Context, userID, id string) (*domain.PostCore, error) {
	s.log.InfoContext(ctx, "user attempting to unlike post", slog.String("postId", id), slog.String("userId", userID))
	post, err := s.FindPostByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !post.LikedBy(userID) {
		return nil, domain.Conflict(MsgPostAlreadyUnliked)
	}

	unliked, applied, err := s.posts.RemoveLike(ctx, id, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, domain.NotFound(MsgPostNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to unlike post: %w", err)
	}
	dataloader.Forget(ctx, id)
	if !applied {
		return nil, domain.Conflict(MsgPostAlreadyUnliked)
	}
	s.log.InfoContext(ctx, "post unliked", slog.String("postId", id))
	return unliked, nil
}

func (s *Service) IncrementUserPostCount(ctx context.Context, userID string) bool {
	return s.userCounter(ctx, "increment", userID, UserDirectory.IncrementPostCount)
}

func (s *Service) DecrementUserPostCount(ctx context.Context, userID string) bool {
	return s.userCounter(ctx, "decrement", userID, UserDirectory.DecrementPostCount)
}

// userCounter без справочника пользователей ничего не делает.
func (s *Service) userCounter(ctx context.Context, op, userID string, fn func(UserDirectory, context.Context, string) (bool, error)) bool {
	if s.users == nil {
		return false
	}
	ok, err := fn(s.users, ctx, userID)
	if err != nil || !ok {
		s.log.ErrorContext(ctx, "failed to update user post count",
			slog.String("op", op), slog.String("userId", userID), slog.Any("error", err))
		return false
	}
	return true
}
