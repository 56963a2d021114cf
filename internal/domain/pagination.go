package domain

import (
	"math"
	"strings"
	"time"
)

type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

func (d SortDirection) Valid() bool { return d == SortAsc || d == SortDesc }

type SortType string

const (
	SortByDate    SortType = "BY_DATE"
	SortByComment SortType = "BY_COMMENT"
	SortByLike    SortType = "BY_LIKE"
)

func (t SortType) Valid() bool {
	return t == SortByDate || t == SortByComment || t == SortByLike
}

// Page - результат постраничной выборки.
// TotalPages всегда равен ceil(TotalItems / ItemsPerPage); CurrentPage не ограничивается.
type Page[T any] struct {
	Entities     []T `json:"entities"`
	TotalPages   int `json:"totalPages"`
	CurrentPage  int `json:"currentPage"`
	TotalItems   int `json:"totalItems"`
	ItemsPerPage int `json:"itemsPerPage"`
}

func NewPage[T any](entities []T, totalItems, page, limit int) *Page[T] {
	if entities == nil {
		entities = []T{}
	}
	return &Page[T]{
		Entities:     entities,
		TotalPages:   TotalPages(totalItems, limit),
		CurrentPage:  page,
		TotalItems:   totalItems,
		ItemsPerPage: limit,
	}
}

func TotalPages(totalItems, limit int) int {
	if limit <= 0 {
		return 0
	}
	return (totalItems + limit - 1) / limit
}

// Offset переводит 1-based номер страницы в смещение.
// При переполнении возвращает math.MaxInt: такая страница всегда пустая.
func Offset(page, limit int) int {
	if page < 1 || limit < 1 {
		return 0
	}
	if page-1 > math.MaxInt/limit {
		return math.MaxInt
	}
	return (page - 1) * limit
}

// SearchFilter - логический запрос к поиску постов. Пустые значения означают "не задано".
type SearchFilter struct {
	Page          int
	Limit         int
	Title         string
	AuthorIDs     []string
	PostType      PostType
	PostStatus    PostStatus
	Tags          []string
	SortDirection SortDirection
	SortType      SortType
	PostDate      *time.Time
}

// Normalize приводит фильтр к каноническому виду: значения по умолчанию,
// limit не больше maxLimit, теги и заголовок в нижнем регистре.
func (f SearchFilter) Normalize(maxLimit int) SearchFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > maxLimit {
		f.Limit = maxLimit
	}
	if !f.SortDirection.Valid() {
		f.SortDirection = SortDesc
	}
	if !f.SortType.Valid() {
		f.SortType = SortByDate
	}
	if f.AuthorIDs == nil {
		f.AuthorIDs = []string{}
	}
	tags := make([]string, 0, len(f.Tags))
	for _, t := range f.Tags {
		tags = append(tags, strings.ToLower(t))
	}
	f.Tags = tags
	f.Title = strings.ToLower(f.Title)
	return f
}

// CommentQuery - параметры постраничной выборки комментариев.
type CommentQuery struct {
	Page          int
	Limit         int
	SortDirection SortDirection
}

func (q CommentQuery) Normalize(maxLimit int) CommentQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 || q.Limit > maxLimit {
		q.Limit = maxLimit
	}
	if !q.SortDirection.Valid() {
		q.SortDirection = SortDesc
	}
	return q
}
