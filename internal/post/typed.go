package post

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/UkralStul/content-service/internal/dataloader"
	"github.com/UkralStul/content-service/internal/domain"
	"github.com/UkralStul/content-service/internal/storage"
)

// messages - статические сообщения об ошибках одного подтипа.
type messages struct {
	notFound         string
	differentType    string
	updatePermission string
	deletePermission string
	selfRepost       string
	alreadyReposted  string
}

func newMessages(label string) messages {
	return messages{
		notFound:         strings.ToUpper(label[:1]) + label[1:] + " not found",
		differentType:    "Post is not a " + label,
		updatePermission: "You do not have permission to update this " + label,
		deletePermission: "You do not have permission to delete this " + label,
		selfRepost:       "You cannot repost your own " + label,
		alreadyReposted:  "You have already reposted this " + label,
	}
}

// TypedService - сервис одного подтипа: создание, чтение, изменение, удаление и репост.
type TypedService[T domain.Post, C Creator[T], U Updater[T]] struct {
	postType domain.PostType
	repo     storage.TypedPostRepository[T]
	posts    *Service
	repost   func(T) C
	msg      messages
	log      *slog.Logger
}

type (
	LinkService  = TypedService[*domain.LinkPost, CreateLinkPost, UpdateLinkPost]
	PhotoService = TypedService[*domain.PhotoPost, CreatePhotoPost, UpdatePhotoPost]
	QuoteService = TypedService[*domain.QuotePost, CreateQuotePost, UpdateQuotePost]
	TextService  = TypedService[*domain.TextPost, CreateTextPost, UpdateTextPost]
	VideoService = TypedService[*domain.VideoPost, CreateVideoPost, UpdateVideoPost]
)

func NewLinkService(repo storage.LinkPostRepository, posts *Service, log *slog.Logger) *LinkService {
	return newTypedService[*domain.LinkPost, CreateLinkPost, UpdateLinkPost](domain.PostTypeLink, "link post", repo, posts, linkRepost, log)
}

func NewPhotoService(repo storage.PhotoPostRepository, posts *Service, log *slog.Logger) *PhotoService {
	return newTypedService[*domain.PhotoPost, CreatePhotoPost, UpdatePhotoPost](domain.PostTypePhoto, "photo post", repo, posts, photoRepost, log)
}

func NewQuoteService(repo storage.QuotePostRepository, posts *Service, log *slog.Logger) *QuoteService {
	return newTypedService[*domain.QuotePost, CreateQuotePost, UpdateQuotePost](domain.PostTypeQuote, "quote post", repo, posts, quoteRepost, log)
}

func NewTextService(repo storage.TextPostRepository, posts *Service, log *slog.Logger) *TextService {
	return newTypedService[*domain.TextPost, CreateTextPost, UpdateTextPost](domain.PostTypeText, "text post", repo, posts, textRepost, log)
}

func NewVideoService(repo storage.VideoPostRepository, posts *Service, log *slog.Logger) *VideoService {
	return newTypedService[*domain.VideoPost, CreateVideoPost, UpdateVideoPost](domain.PostTypeVideo, "video post", repo, posts, videoRepost, log)
}

func newTypedService[T domain.Post, C Creator[T], U Updater[T]](
	postType domain.PostType,
	label string,
	repo storage.TypedPostRepository[T],
	posts *Service,
	repost func(T) C,
	log *slog.Logger,
) *TypedService[T, C, U] {
	return &TypedService[T, C, U]{
		postType: postType,
		repo:     repo,
		posts:    posts,
		repost:   repost,
		msg:      newMessages(label),
		log:      log.With(slog.String("component", "post"), slog.String("postType", string(postType))),
	}
}

func (s *TypedService[T, C, U]) PostType() domain.PostType { return s.postType }

// CreatePost проверяет и сохраняет новый пост от имени userID.
func (s *TypedService[T, C, U]) CreatePost(ctx context.Context, userID string, in C) (T, error) {
	var zero T
	if err := domain.ValidateTags(in.PostTags()); err != nil {
		return zero, err
	}
	if err := in.Validate(); err != nil {
		return zero, err
	}
	return s.create(ctx, userID, in, "")
}

func (s *TypedService[T, C, U]) create(ctx context.Context, userID string, in C, originalPostID string) (T, error) {
	var zero T
	s.log.InfoContext(ctx, "creating post", slog.String("userId", userID), slog.String("originalPostId", originalPostID))

	post := in.Build(domain.PostCore{
		Tags:           domain.NormalizeTags(in.PostTags()),
		AuthorID:       userID,
		OriginalPostID: originalPostID,
		PostType:       s.postType,
		UserLikeIDs:    []string{},
	})
	saved, err := s.repo.Save(ctx, post)
	if err != nil {
		return zero, fmt.Errorf("failed to save %s post: %w", s.postType, err)
	}

	s.posts.IncrementUserPostCount(ctx, userID)
	s.log.InfoContext(ctx, "post created", slog.String("postId", saved.Core().ID))
	return saved, nil
}

// FindPostByID возвращает пост, только если он этого подтипа.
func (s *TypedService[T, C, U]) FindPostByID(ctx context.Context, id string) (T, error) {
	var zero T
	post, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		s.log.WarnContext(ctx, "post not found", slog.String("postId", id))
		return zero, domain.NotFound(s.msg.notFound)
	}
	if err != nil {
		return zero, fmt.Errorf("failed to find %s post: %w", s.postType, err)
	}
	if post.Core().PostType != s.postType {
		s.log.WarnContext(ctx, "post has different type",
			slog.String("postId", id), slog.String("actual", string(post.Core().PostType)))
		return zero, domain.BadRequest(s.msg.differentType)
	}
	return post, nil
}

// Exists сообщает, есть ли пост этого подтипа.
func (s *TypedService[T, C, U]) Exists(ctx context.Context, id string) (bool, error) {
	ok, err := s.repo.Exists(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to check %s post: %w", s.postType, err)
	}
	return ok, nil
}

// UpdatePostByID применяет к посту только заданные поля.
func (s *TypedService[T, C, U]) UpdatePostByID(ctx context.Context, userID, id string, in U) (T, error) {
	var zero T
	if err := in.Validate(); err != nil {
		return zero, err
	}
	post, err := s.FindPostByID(ctx, id)
	if err != nil {
		return zero, err
	}
	if post.Core().AuthorID != userID {
		s.log.WarnContext(ctx, "unauthorized update attempt", slog.String("postId", id), slog.String("userId", userID))
		return zero, domain.Unauthorized(s.msg.updatePermission)
	}

	in.Apply(post)
	updated, err := s.repo.Update(ctx, id, post)
	if errors.Is(err, storage.ErrNotFound) {
		return zero, domain.NotFound(s.msg.notFound)
	}
	if err != nil {
		return zero, fmt.Errorf("failed to update %s post: %w", s.postType, err)
	}
	dataloader.Forget(ctx, id)
	s.log.InfoContext(ctx, "post updated", slog.String("postId", id))
	return updated, nil
}

func (s *TypedService[T, C, U]) DeletePostByID(ctx context.Context, userID, id string) (T, error) {
	var zero T
	post, err := s.FindPostByID(ctx, id)
	if err != nil {
		return zero, err
	}
	if post.Core().AuthorID != userID {
		s.log.WarnContext(ctx, "unauthorized delete attempt", slog.String("postId", id), slog.String("userId", userID))
		return zero, domain.Unauthorized(s.msg.deletePermission)
	}

	deleted, err := s.repo.DeleteByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return zero, domain.NotFound(s.msg.notFound)
	}
	if err != nil {
		return zero, fmt.Errorf("failed to delete %s post: %w", s.postType, err)
	}
	dataloader.Forget(ctx, id)
	s.posts.DecrementUserPostCount(ctx, userID)
	s.log.InfoContext(ctx, "post deleted", slog.String("postId", id))
	return deleted, nil
}

// RepostPostByID создает копию поста от имени userID со ссылкой на оригинал.
// Пользователь не может репостить свой пост и не может репостить один пост дважды.
func (s *TypedService[T, C, U]) RepostPostByID(ctx context.Context, userID, id string) (T, error) {
	var zero T
	original, err := s.FindPostByID(ctx, id)
	if err != nil {
		return zero, err
	}
	if original.Core().AuthorID == userID {
		return zero, domain.Unauthorized(s.msg.selfRepost)
	}

	exists, err := s.posts.ExistsRepostByUser(ctx, id, userID)
	if err != nil {
		return zero, fmt.Errorf("failed to check repost: %w", err)
	}
	if exists {
		return zero, domain.Conflict(s.msg.alreadyReposted)
	}

	repost, err := s.create(ctx, userID, s.repost(original), id)
	if err != nil {
		return zero, err
	}
	s.posts.IncrementRepostCount(ctx, id)
	return repost, nil
}
