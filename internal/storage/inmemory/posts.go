package inmemory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/UkralStul/content-service/internal/domain"
	"github.com/UkralStul/content-service/internal/storage"
)

// === Cross-type Post Methods ===

type postRepository struct {
	s *Store
}

func (r *postRepository) FindByID(ctx context.Context, id string) (*domain.PostCore, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	post, ok := r.s.posts[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	c := post.Clone()
	return &c, nil
}

func (r *postRepository) FindByIDs(ctx context.Context, ids []string) (map[string]*domain.PostCore, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make(map[string]*domain.PostCore, len(ids))
	for _, id := range ids {
		if post, ok := r.s.posts[id]; ok {
			c := post.Clone()
			result[id] = &c
		}
	}
	return result, nil
}

func (r *postRepository) DeleteByID(ctx context.Context, id string) (*domain.PostCore, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	post, ok := r.s.posts[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	r.s.deleteLocked(id)
	c := post.Clone()
	return &c, nil
}

func (r *postRepository) Exists(ctx context.Context, id string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.posts[id]
	return ok, nil
}

func (r *postRepository) ExistsRepostByUser(ctx context.Context, originalPostID, authorID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, p := range r.s.posts {
		if p.OriginalPostID == originalPostID && p.AuthorID == authorID {
			return true, nil
		}
	}
	return false, nil
}

func (r *postRepository) IncrementRepostCount(ctx context.Context, id string) (bool, error) {
	return r.s.adjust(id, func(p *domain.PostCore) bool { p.RepostCount++; return true }), nil
}

func (r *postRepository) IncrementCommentCount(ctx context.Context, id string) (bool, error) {
	return r.s.adjust(id, func(p *domain.PostCore) bool { p.CommentCount++; return true }), nil
}

func (r *postRepository) DecrementCommentCount(ctx context.Context, id string) (bool, error) {
	return r.s.adjust(id, func(p *domain.PostCore) bool {
		if p.CommentCount == 0 {
			return false
		}
		p.CommentCount--
		return true
	}), nil
}

func (r *postRepository) AddLike(ctx context.Context, id, userID string) (*domain.PostCore, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	post, ok := r.s.posts[id]
	if !ok {
		return nil, false, storage.ErrNotFound
	}
	applied := false
	if !post.LikedBy(userID) {
		post.UserLikeIDs = append(post.UserLikeIDs, userID)
		post.LikeCount = len(post.UserLikeIDs)
		applied = true
	}
	c := post.Clone()
	return &c, applied, nil
}

func (r *postRepository) RemoveLike(ctx context.Context, id, userID string) (*domain.PostCore, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	post, ok := r.s.posts[id]
	if !ok {
		return nil, false, storage.ErrNotFound
	}
	applied := false
	if post.LikedBy(userID) {
		kept := make([]string, 0, len(post.UserLikeIDs)-1)
		for _, uid := range post.UserLikeIDs {
			if uid != userID {
				kept = append(kept, uid)
			}
		}
		post.UserLikeIDs = kept
		post.LikeCount = len(kept)
		applied = true
	}
	c := post.Clone()
	return &c, applied, nil
}

func (s *Store) adjust(id string, fn func(p *domain.PostCore) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[id]
	if !ok {
		return false
	}
	return fn(post)
}

func (s *Store) deleteLocked(id string) {
	delete(s.posts, id)
	for _, t := range domain.PostTypes {
		delete(s.details[t], id)
	}
}

// === Typed Post Methods ===

type typedRepository[T domain.Post] struct {
	s        *Store
	postType domain.PostType
	convert  func(*storage.PostRow) T
}

func newTypedRepository[T domain.Post](s *Store, postType domain.PostType, convert func(*storage.PostRow) T) *typedRepository[T] {
	return &typedRepository[T]{s: s, postType: postType, convert: convert}
}

func (r *typedRepository[T]) Save(ctx context.Context, post T) (T, error) {
	var zero T
	core := post.Core()
	if core.PostType != r.postType {
		return zero, fmt.Errorf("cannot save %s post with %s repository", core.PostType, r.postType)
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c := core.Clone()
	c.ID = uuid.NewString()
	c.CreatedAt = r.s.tick()
	if c.PostedAt.IsZero() {
		c.PostedAt = c.CreatedAt
	}
	if c.PostStatus == "" {
		c.PostStatus = domain.PostStatusPublished
	}
	c.LikeCount = len(c.UserLikeIDs)

	r.s.posts[c.ID] = &c
	r.s.details[r.postType][c.ID] = storage.DetailOf(post)
	return r.convert(r.s.rowLocked(c.ID)), nil
}

func (r *typedRepository[T]) FindByID(ctx context.Context, id string) (T, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row := r.s.rowLocked(id)
	if row == nil {
		var zero T
		return zero, storage.ErrNotFound
	}
	return r.convert(row), nil
}

func (r *typedRepository[T]) Update(ctx context.Context, id string, post T) (T, error) {
	var zero T
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.posts[id]
	if !ok {
		return zero, storage.ErrNotFound
	}
	core := post.Core()
	existing.Tags = append([]string{}, core.Tags...)
	existing.PostStatus = core.PostStatus
	existing.PostedAt = core.PostedAt
	r.s.details[r.postType][id] = storage.DetailOf(post)
	return r.convert(r.s.rowLocked(id)), nil
}

func (r *typedRepository[T]) DeleteByID(ctx context.Context, id string) (T, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row := r.s.rowLocked(id)
	if row == nil {
		var zero T
		return zero, storage.ErrNotFound
	}
	r.s.deleteLocked(id)
	return r.convert(row), nil
}

func (r *typedRepository[T]) Exists(ctx context.Context, id string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.details[r.postType][id]
	return ok, nil
}

func (r *typedRepository[T]) Convert(row *storage.PostRow) T {
	return r.convert(row)
}
