package domain

import "time"

// PostType - подтип поста. Неизменяем после создания.
type PostType string

const (
	PostTypeLink  PostType = "LINK"
	PostTypePhoto PostType = "PHOTO"
	PostTypeQuote PostType = "QUOTE"
	PostTypeText  PostType = "TEXT"
	PostTypeVideo PostType = "VIDEO"
)

// PostTypes перечисляет все подтипы в стабильном порядке.
var PostTypes = []PostType{PostTypeLink, PostTypePhoto, PostTypeQuote, PostTypeText, PostTypeVideo}

func (t PostType) Valid() bool {
	switch t {
	case PostTypeLink, PostTypePhoto, PostTypeQuote, PostTypeText, PostTypeVideo:
		return true
	}
	return false
}

// PostStatus - статус публикации.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "DRAFT"
	PostStatusPublished PostStatus = "PUBLISHED"
)

func (s PostStatus) Valid() bool {
	return s == PostStatusDraft || s == PostStatusPublished
}

// PostCore содержит общие для всех подтипов поля поста.
// Счетчики денормализованы: LikeCount всегда равен len(UserLikeIDs).
type PostCore struct {
	ID             string     `json:"id"`
	Tags           []string   `json:"tags"`
	AuthorID       string     `json:"authorId"`
	PostedAt       time.Time  `json:"postedAt"`
	CreatedAt      time.Time  `json:"createdAt"`
	PostStatus     PostStatus `json:"postStatus"`
	OriginalPostID string     `json:"originalPostId"` // пустая строка - не репост
	PostType       PostType   `json:"postType"`
	UserLikeIDs    []string   `json:"userLikeIds"`
	LikeCount      int        `json:"likeCount"`
	CommentCount   int        `json:"commentCount"`
	RepostCount    int        `json:"repostCount"`
}

// IsRepost сообщает, ссылается ли пост на оригинал.
func (p *PostCore) IsRepost() bool { return p.OriginalPostID != "" }

// LikedBy проверяет, лайкал ли пользователь пост.
func (p *PostCore) LikedBy(userID string) bool {
	for _, id := range p.UserLikeIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Clone возвращает копию без общих срезов.
func (p PostCore) Clone() PostCore {
	p.Tags = append([]string(nil), p.Tags...)
	p.UserLikeIDs = append([]string(nil), p.UserLikeIDs...)
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.UserLikeIDs == nil {
		p.UserLikeIDs = []string{}
	}
	return p
}

// Детали подтипов. Каждая запись живет 1:1 с PostCore по id.

type LinkDetail struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

type PhotoDetail struct {
	URL string `json:"url"`
}

type QuoteDetail struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}

type TextDetail struct {
	Title        string `json:"title"`
	Announcement string `json:"announcement"`
	Text         string `json:"text"`
}

type VideoDetail struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Post - общий интерфейс типизированных постов (tagged union по PostType).
type Post interface {
	Core() *PostCore
	Aggregate() AggregatePost
}

type LinkPost struct {
	PostCore
	LinkDetail
}

type PhotoPost struct {
	PostCore
	PhotoDetail
}

type QuotePost struct {
	PostCore
	QuoteDetail
}

type TextPost struct {
	PostCore
	TextDetail
}

type VideoPost struct {
	PostCore
	VideoDetail
}

func (p *LinkPost) Core() *PostCore  { return &p.PostCore }
func (p *PhotoPost) Core() *PostCore { return &p.PostCore }
func (p *QuotePost) Core() *PostCore { return &p.PostCore }
func (p *TextPost) Core() *PostCore  { return &p.PostCore }
func (p *VideoPost) Core() *PostCore { return &p.PostCore }

// AggregatePost - проекция для поиска и лент: общие поля плюс объединение
// необязательных полей всех подтипов. Никогда не сохраняется.
type AggregatePost struct {
	PostCore
	URL          *string `json:"url,omitempty"`
	Description  *string `json:"description,omitempty"`
	Text         *string `json:"text,omitempty"`
	Author       *string `json:"author,omitempty"`
	Title        *string `json:"title,omitempty"`
	Announcement *string `json:"announcement,omitempty"`
}

func (p *LinkPost) Aggregate() AggregatePost {
	return AggregatePost{PostCore: p.PostCore, URL: ptr(p.URL), Description: ptr(p.Description)}
}

func (p *PhotoPost) Aggregate() AggregatePost {
	return AggregatePost{PostCore: p.PostCore, URL: ptr(p.URL)}
}

func (p *QuotePost) Aggregate() AggregatePost {
	return AggregatePost{PostCore: p.PostCore, Text: ptr(p.QuoteDetail.Text), Author: ptr(p.Author)}
}

func (p *TextPost) Aggregate() AggregatePost {
	return AggregatePost{
		PostCore:     p.PostCore,
		Title:        ptr(p.Title),
		Announcement: ptr(p.Announcement),
		Text:         ptr(p.TextDetail.Text),
	}
}

func (p *VideoPost) Aggregate() AggregatePost {
	return AggregatePost{PostCore: p.PostCore, Title: ptr(p.Title), URL: ptr(p.URL)}
}

func ptr(s string) *string { return &s }
