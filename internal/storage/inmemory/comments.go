package inmemory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/UkralStul/content-service/internal/domain"
	"github.com/UkralStul/content-service/internal/storage"
)

// === Comment Methods ===

type commentRepository struct {
	s *Store
}

func (r *commentRepository) Save(ctx context.Context, comment *domain.Comment) (*domain.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c := *comment
	c.ID = uuid.NewString()
	c.CreatedAt = r.s.tick()
	r.s.comments[c.ID] = &c
	r.s.commentsByPost[c.PostID] = append(r.s.commentsByPost[c.PostID], c.ID)

	out := c
	return &out, nil
}

func (r *commentRepository) FindByID(ctx context.Context, id string) (*domain.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	comment, ok := r.s.comments[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := *comment
	return &out, nil
}

func (r *commentRepository) FindAllByPostID(ctx context.Context, postID string, q domain.CommentQuery) (*domain.Page[*domain.Comment], error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ids := r.s.commentsByPost[postID]
	all := make([]*domain.Comment, 0, len(ids))
	for _, id := range ids {
		if c, ok := r.s.comments[id]; ok {
			out := *c
			all = append(all, &out)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if q.SortDirection == domain.SortAsc {
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	total := len(all)
	start := domain.Offset(q.Page, q.Limit)
	if start < 0 || start >= total {
		return domain.NewPage([]*domain.Comment{}, total, q.Page, q.Limit), nil
	}
	end := start + q.Limit
	if end > total || end < start {
		end = total
	}
	return domain.NewPage(all[start:end], total, q.Page, q.Limit), nil
}

func (r *commentRepository) Update(ctx context.Context, id string, comment *domain.Comment) (*domain.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.comments[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	existing.Text = comment.Text
	out := *existing
	return &out, nil
}

func (r *commentRepository) DeleteByID(ctx context.Context, id string) (*domain.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	comment, ok := r.s.comments[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	delete(r.s.comments, id)
	ids := r.s.commentsByPost[comment.PostID]
	for i, cid := range ids {
		if cid == id {
			r.s.commentsByPost[comment.PostID] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	return comment, nil
}

func (r *commentRepository) Exists(ctx context.Context, id string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.comments[id]
	return ok, nil
}
