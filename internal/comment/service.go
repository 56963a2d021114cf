// Package comment реализует хранилище комментариев к постам.
package comment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/UkralStul/content-service/internal/domain"
	"github.com/UkralStul/content-service/internal/storage"
)

const (
	MsgCommentNotFound         = "Comment not found"
	MsgPostNotFound            = "Post not found"
	MsgCommentUpdatePermission = "You do not have permission to update this comment"
	MsgCommentDeletePermission = "You do not have permission to delete this comment"
)

var msgCommentLength = fmt.Sprintf("Comment text must be between %d and %d characters",
	domain.CommentTextMin, domain.CommentTextMax)

// Posts - то, что комментариям нужно знать о постах.
type Posts interface {
	Exists(ctx context.Context, id string) (bool, error)
	IncrementCommentCount(ctx context.Context, id string) bool
	DecrementCommentCount(ctx context.Context, id string) bool
}

type Service struct {
	comments storage.CommentRepository
	posts    Posts
	observer *Observer
	maxLimit int
	log      *slog.Logger
}

// NewService создает сервис; при observer == nil заводит собственный.
func NewService(comments storage.CommentRepository, posts Posts, observer *Observer, maxLimit int, log *slog.Logger) *Service {
	if observer == nil {
		observer = NewObserver()
	}
	return &Service{
		comments: comments,
		posts:    posts,
		observer: observer,
		maxLimit: maxLimit,
		log:      log.With(slog.String("component", "comment")),
	}
}

func validateText(text string) error {
	n := utf8.RuneCountInString(text)
	if n < domain.CommentTextMin || n > domain.CommentTextMax {
		return domain.BadRequest(msgCommentLength)
	}
	return nil
}

func (s *Service) ensurePost(ctx context.Context, postID string) error {
	ok, err := s.posts.Exists(ctx, postID)
	if err != nil {
		return fmt.Errorf("failed to check post: %w", err)
	}
	if !ok {
		return domain.NotFound(MsgPostNotFound)
	}
	return nil
}

func (s *Service) CreateComment(ctx context.Context, userID, postID, text string) (*domain.Comment, error) {
	if err := validateText(text); err != nil {
		return nil, err
	}
	if err := s.ensurePost(ctx, postID); err != nil {
		return nil, err
	}

	created, err := s.comments.Save(ctx, &domain.Comment{PostID: postID, AuthorID: userID, Text: text})
	if err != nil {
		return nil, fmt.Errorf("failed to save comment: %w", err)
	}
	s.posts.IncrementCommentCount(ctx, postID)
	s.observer.Publish(created)
	s.log.InfoContext(ctx, "comment created", slog.String("commentId", created.ID), slog.String("postId", postID))
	return created, nil
}

func (s *Service) CommentExists(ctx context.Context, id string) (bool, error) {
	ok, err := s.comments.Exists(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to check comment: %w", err)
	}
	return ok, nil
}

func (s *Service) FindCommentByID(ctx context.Context, id string) (*domain.Comment, error) {
	c, err := s.comments.FindByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, domain.NotFound(MsgCommentNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find comment: %w", err)
	}
	return c, nil
}

// FindCommentsByPostID возвращает страницу комментариев; limit ограничен сверху.
func (s *Service) FindCommentsByPostID(ctx context.Context, postID string, q domain.CommentQuery) (*domain.Page[*domain.Comment], error) {
	if err := s.ensurePost(ctx, postID); err != nil {
		return nil, err
	}
	page, err := s.comments.FindAllByPostID(ctx, postID, q.Normalize(s.maxLimit))
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return page, nil
}

func (s *Service) UpdateCommentByID(ctx context.Context, userID, id, text string) (*domain.Comment, error) {
	if err := validateText(text); err != nil {
		return nil, err
	}
	c, err := s.FindCommentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.AuthorID != userID {
		s.log.WarnContext(ctx, "unauthorized comment update", slog.String("commentId", id), slog.String("userId", userID))
		return nil, domain.Unauthorized(MsgCommentUpdatePermission)
	}

	c.Text = text
	updated, err := s.comments.Update(ctx, id, c)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, domain.NotFound(MsgCommentNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}
	return updated, nil
}

func (s *Service) DeleteCommentByID(ctx context.Context, userID, id string) (*domain.Comment, error) {
	c, err := s.FindCommentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.AuthorID != userID {
		s.log.WarnContext(ctx, "unauthorized comment delete", slog.String("commentId", id), slog.String("userId", userID))
		return nil, domain.Unauthorized(MsgCommentDeletePermission)
	}

	deleted, err := s.comments.DeleteByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, domain.NotFound(MsgCommentNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete comment: %w", err)
	}
	s.posts.DecrementCommentCount(ctx, deleted.PostID)
	s.log.InfoContext(ctx, "comment deleted", slog.String("commentId", id))
	return deleted, nil
}

// Subscribe открывает поток новых комментариев существующего поста.
func (s *Service) Subscribe(ctx context.Context, postID string) (<-chan *domain.Comment, error) {
	if err := s.ensurePost(ctx, postID); err != nil {
		return nil, err
	}
	return s.observer.Subscribe(ctx, postID), nil
}
