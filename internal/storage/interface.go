package storage

import (
	"context"

	"github.com/UkralStul/content-service/internal/domain"
)

// ErrNotFound возвращается хранилищами, когда запись отсутствует.
var ErrNotFound = domain.NotFound("record not found")

// PostRepository работает с общей таблицей постов, не зная подтипов.
type PostRepository interface {
	FindByID(ctx context.Context, id string) (*domain.PostCore, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]*domain.PostCore, error)
	DeleteByID(ctx context.Context, id string) (*domain.PostCore, error)
	Exists(ctx context.Context, id string) (bool, error)
	ExistsRepostByUser(ctx context.Context, originalPostID, authorID string) (bool, error)

	// Атомарные изменения счетчиков. false - пост не найден.
	IncrementRepostCount(ctx context.Context, id string) (bool, error)
	IncrementCommentCount(ctx context.Context, id string) (bool, error)
	DecrementCommentCount(ctx context.Context, id string) (bool, error)

	// AddLike добавляет userID в UserLikeIDs и увеличивает LikeCount одной атомарной операцией.
	// applied == false, если пользователь уже в множестве.
	AddLike(ctx context.Context, id, userID string) (post *domain.PostCore, applied bool, err error)
	// RemoveLike - обратная операция; applied == false, если пользователя нет в множестве.
	RemoveLike(ctx context.Context, id, userID string) (post *domain.PostCore, applied bool, err error)
}

// TypedPostRepository хранит агрегат "пост + детали" одного подтипа.
type TypedPostRepository[T domain.Post] interface {
	// Save записывает пост и его детали как единое целое.
	Save(ctx context.Context, post T) (T, error)
	// FindByID соединяет пост с деталями подтипа; тип поста не проверяется.
	FindByID(ctx context.Context, id string) (T, error)
	// Update меняет tags, postStatus, postedAt и поля деталей атомарно.
	Update(ctx context.Context, id string, post T) (T, error)
	DeleteByID(ctx context.Context, id string) (T, error)
	// Exists истинно только при наличии записи деталей этого подтипа.
	Exists(ctx context.Context, id string) (bool, error)
	// Convert - чистое преобразование соединенной строки в типизированный пост.
	Convert(row *PostRow) T
}

type (
	LinkPostRepository  = TypedPostRepository[*domain.LinkPost]
	PhotoPostRepository = TypedPostRepository[*domain.PhotoPost]
	QuotePostRepository = TypedPostRepository[*domain.QuotePost]
	TextPostRepository  = TypedPostRepository[*domain.TextPost]
	VideoPostRepository = TypedPostRepository[*domain.VideoPost]
)

// SearchRepository выполняет один отфильтрованный и отсортированный запрос
// по всем подтипам и возвращает сырые соединенные строки.
type SearchRepository interface {
	SearchPosts(ctx context.Context, filter domain.SearchFilter) (rows []*PostRow, total int, err error)
}

// CommentRepository - хранилище комментариев.
type CommentRepository interface {
	Save(ctx context.Context, comment *domain.Comment) (*domain.Comment, error)
	FindByID(ctx context.Context, id string) (*domain.Comment, error)
	FindAllByPostID(ctx context.Context, postID string, q domain.CommentQuery) (*domain.Page[*domain.Comment], error)
	Update(ctx context.Context, id string, comment *domain.Comment) (*domain.Comment, error)
	DeleteByID(ctx context.Context, id string) (*domain.Comment, error)
	Exists(ctx context.Context, id string) (bool, error)
}

// Repositories собирает все репозитории одного бэкенда.
type Repositories struct {
	Posts    PostRepository
	Links    LinkPostRepository
	Photos   PhotoPostRepository
	Quotes   QuotePostRepository
	Texts    TextPostRepository
	Videos   VideoPostRepository
	Search   SearchRepository
	Comments CommentRepository
}
