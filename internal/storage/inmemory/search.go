package inmemory

import (
	"context"
	"sort"
	"strings"

	"github.com/UkralStul/content-service/internal/domain"
	"github.com/UkralStul/content-service/internal/storage"
)

type searchRepository struct {
	s *Store
}

func (r *searchRepository) SearchPosts(ctx context.Context, f domain.SearchFilter) ([]*storage.PostRow, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := make([]*storage.PostRow, 0)
	for id := range r.s.posts {
		row := r.s.rowLocked(id)
		if matches(row, f) {
			matched = append(matched, row)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		ka, kb := sortKey(a, f.SortType), sortKey(b, f.SortType)
		if ka != kb {
			if f.SortDirection == domain.SortAsc {
				return ka < kb
			}
			return ka > kb
		}
		// Одинаковые ключи упорядочиваем по id, чтобы страницы не пересекались
		return a.ID < b.ID
	})

	total := len(matched)
	start := domain.Offset(f.Page, f.Limit)
	if start < 0 || start >= total {
		return []*storage.PostRow{}, total, nil
	}
	end := start + f.Limit
	if end > total || end < start {
		end = total
	}
	return matched[start:end], total, nil
}

func matches(row *storage.PostRow, f domain.SearchFilter) bool {
	if len(f.AuthorIDs) > 0 && !contains(f.AuthorIDs, row.AuthorID) {
		return false
	}
	if f.PostStatus != "" && row.PostStatus != f.PostStatus {
		return false
	}
	if f.PostType != "" && row.PostType != f.PostType {
		return false
	}
	if len(f.Tags) > 0 && !hasSome(row.Tags, f.Tags) {
		return false
	}
	if f.Title != "" {
		// Заголовок есть только у текстовых постов и видео
		title := strings.ToLower(f.Title)
		videoMatch := row.Video != nil && strings.Contains(strings.ToLower(row.Video.Title), title)
		textMatch := row.Text != nil && strings.Contains(strings.ToLower(row.Text.Title), title)
		if !videoMatch && !textMatch {
			return false
		}
	}
	if f.PostDate != nil && !row.PostedAt.After(*f.PostDate) {
		return false
	}
	return true
}

func sortKey(row *storage.PostRow, t domain.SortType) int64 {
	switch t {
	case domain.SortByComment:
		return int64(row.CommentCount)
	case domain.SortByLike:
		return int64(row.LikeCount)
	default:
		return row.CreatedAt.UnixNano()
	}
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func hasSome(have, want []string) bool {
	for _, w := range want {
		if contains(have, w) {
			return true
		}
	}
	return false
}
