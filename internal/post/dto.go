package post

import (
	"strings"
	"time"

	"github.com/UkralStul/content-service/internal/domain"
)

// Creator - входные данные создания поста подтипа T.
type Creator[T domain.Post] interface {
	PostTags() []string
	Validate() error
	Build(core domain.PostCore) T
}

// Updater - частичное обновление поста подтипа T. Nil-поля не меняются.
type Updater[T domain.Post] interface {
	Validate() error
	Apply(post T)
}

// PostUpdate - общие для всех подтипов изменяемые поля.
type PostUpdate struct {
	Tags       *[]string          `json:"tags,omitempty"`
	PostStatus *domain.PostStatus `json:"postStatus,omitempty"`
	PostedAt   *time.Time         `json:"postedAt,omitempty"`
}

func (u PostUpdate) Validate() error {
	if u.Tags != nil {
		if err := domain.ValidateTags(*u.Tags); err != nil {
			return err
		}
	}
	if u.PostStatus != nil && !u.PostStatus.Valid() {
		return domain.BadRequest("Invalid post status")
	}
	return nil
}

func (u PostUpdate) apply(c *domain.PostCore) {
	if u.Tags != nil {
		c.Tags = domain.NormalizeTags(*u.Tags)
	}
	if u.PostStatus != nil {
		c.PostStatus = *u.PostStatus
	}
	if u.PostedAt != nil {
		c.PostedAt = *u.PostedAt
	}
}

func required(value, field string) error {
	if strings.TrimSpace(value) == "" {
		return domain.BadRequest(field + " must not be empty")
	}
	return nil
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func set(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// === Link ===

type CreateLinkPost struct {
	Tags        []string `json:"tags"`
	URL         string   `json:"url"`
	Description string   `json:"description"`
}

func (in CreateLinkPost) PostTags() []string { return in.Tags }

func (in CreateLinkPost) Validate() error {
	return required(in.URL, "url")
}

func (in CreateLinkPost) Build(core domain.PostCore) *domain.LinkPost {
	return &domain.LinkPost{PostCore: core, LinkDetail: domain.LinkDetail{URL: in.URL, Description: in.Description}}
}

type UpdateLinkPost struct {
	PostUpdate
	URL         *string `json:"url,omitempty"`
	Description *string `json:"description,omitempty"`
}

func (in UpdateLinkPost) Apply(p *domain.LinkPost) {
	in.PostUpdate.apply(&p.PostCore)
	set(&p.URL, in.URL)
	set(&p.Description, in.Description)
}

func linkRepost(p *domain.LinkPost) CreateLinkPost {
	return CreateLinkPost{Tags: p.Tags, URL: p.URL, Description: p.Description}
}

// === Photo ===

type CreatePhotoPost struct {
	Tags []string `json:"tags"`
	URL  string   `json:"url"`
}

func (in CreatePhotoPost) PostTags() []string { return in.Tags }

func (in CreatePhotoPost) Validate() error {
	return required(in.URL, "url")
}

func (in CreatePhotoPost) Build(core domain.PostCore) *domain.PhotoPost {
	return &domain.PhotoPost{PostCore: core, PhotoDetail: domain.PhotoDetail{URL: in.URL}}
}

type UpdatePhotoPost struct {
	PostUpdate
	URL *string `json:"url,omitempty"`
}

func (in UpdatePhotoPost) Apply(p *domain.PhotoPost) {
	in.PostUpdate.apply(&p.PostCore)
	set(&p.URL, in.URL)
}

func photoRepost(p *domain.PhotoPost) CreatePhotoPost {
	return CreatePhotoPost{Tags: p.Tags, URL: p.URL}
}

// === Quote ===

type CreateQuotePost struct {
	Tags   []string `json:"tags"`
	Text   string   `json:"text"`
	Author string   `json:"author"`
}

func (in CreateQuotePost) PostTags() []string { return in.Tags }

func (in CreateQuotePost) Validate() error {
	return firstError(required(in.Text, "text"), required(in.Author, "author"))
}

func (in CreateQuotePost) Build(core domain.PostCore) *domain.QuotePost {
	return &domain.QuotePost{PostCore: core, QuoteDetail: domain.QuoteDetail{Text: in.Text, Author: in.Author}}
}

type UpdateQuotePost struct {
	PostUpdate
	Text   *string `json:"text,omitempty"`
	Author *string `json:"author,omitempty"`
}

func (in UpdateQuotePost) Apply(p *domain.QuotePost) {
	in.PostUpdate.apply(&p.PostCore)
	set(&p.QuoteDetail.Text, in.Text)
	set(&p.Author, in.Author)
}

func quoteRepost(p *domain.QuotePost) CreateQuotePost {
	return CreateQuotePost{Tags: p.Tags, Text: p.QuoteDetail.Text, Author: p.Author}
}

// === Text ===

type CreateTextPost struct {
	Tags         []string `json:"tags"`
	Title        string   `json:"title"`
	Announcement string   `json:"announcement"`
	Text         string   `json:"text"`
}

func (in CreateTextPost) PostTags() []string { return in.Tags }

func (in CreateTextPost) Validate() error {
	return firstError(required(in.Title, "title"), required(in.Text, "text"))
}

func (in CreateTextPost) Build(core domain.PostCore) *domain.TextPost {
	return &domain.TextPost{PostCore: core, TextDetail: domain.TextDetail{
		Title:        in.Title,
		Announcement: in.Announcement,
		Text:         in.Text,
	}}
}

type UpdateTextPost struct {
	PostUpdate
	Title        *string `json:"title,omitempty"`
	Announcement *string `json:"announcement,omitempty"`
	Text         *string `json:"text,omitempty"`
}

func (in UpdateTextPost) Apply(p *domain.TextPost) {
	in.PostUpdate.apply(&p.PostCore)
	set(&p.Title, in.Title)
	set(&p.Announcement, in.Announcement)
	set(&p.TextDetail.Text, in.Text)
}

func textRepost(p *domain.TextPost) CreateTextPost {
	return CreateTextPost{Tags: p.Tags, Title: p.Title, Announcement: p.Announcement, Text: p.TextDetail.Text}
}

// === Video ===

type CreateVideoPost struct {
	Tags  []string `json:"tags"`
	Title string   `json:"title"`
	URL   string   `json:"url"`
}

func (in CreateVideoPost) PostTags() []string { return in.Tags }

func (in CreateVideoPost) Validate() error {
	return firstError(required(in.Title, "title"), required(in.URL, "url"))
}

func (in CreateVideoPost) Build(core domain.PostCore) *domain.VideoPost {
	return &domain.VideoPost{PostCore: core, VideoDetail: domain.VideoDetail{Title: in.Title, URL: in.URL}}
}

type UpdateVideoPost struct {
	PostUpdate
	Title *string `json:"title,omitempty"`
	URL   *string `json:"url,omitempty"`
}

func (in UpdateVideoPost) Apply(p *domain.VideoPost) {
	in.PostUpdate.apply(&p.PostCore)
	set(&p.Title, in.Title)
	set(&p.URL, in.URL)
}

func videoRepost(p *domain.VideoPost) CreateVideoPost {
	return CreateVideoPost{Tags: p.Tags, Title: p.Title, URL: p.URL}
}
