package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/UkralStul/content-service/internal/domain"
	"github.com/UkralStul/content-service/internal/storage"
)

// variant описывает, как подтип раскладывается на таблицу деталей.
type variant[T domain.Post] struct {
	postType    domain.PostType
	association string
	empty       func() any
	record      func(postID string, post T) any
	convert     func(*storage.PostRow) T
}

var linkVariant = variant[*domain.LinkPost]{
	postType:    domain.PostTypeLink,
	association: "LinkDetails",
	empty:       func() any { return &linkRecord{} },
	record: func(id string, p *domain.LinkPost) any {
		return &linkRecord{PostID: id, URL: p.URL, Description: p.Description}
	},
	convert: storage.ConvertToLinkPost,
}

var photoVariant = variant[*domain.PhotoPost]{
	postType:    domain.PostTypePhoto,
	association: "PhotoDetails",
	empty:       func() any { return &photoRecord{} },
	record: func(id string, p *domain.PhotoPost) any {
		return &photoRecord{PostID: id, URL: p.URL}
	},
	convert: storage.ConvertToPhotoPost,
}

var quoteVariant = variant[*domain.QuotePost]{
	postType:    domain.PostTypeQuote,
	association: "QuoteDetails",
	empty:       func() any { return &quoteRecord{} },
	record: func(id string, p *domain.QuotePost) any {
		return &quoteRecord{PostID: id, Text: p.QuoteDetail.Text, Author: p.Author}
	},
	convert: storage.ConvertToQuotePost,
}

var textVariant = variant[*domain.TextPost]{
	postType:    domain.PostTypeText,
	association: "TextDetails",
	empty:       func() any { return &textRecord{} },
	record: func(id string, p *domain.TextPost) any {
		return &textRecord{PostID: id, Title: p.Title, Announcement: p.Announcement, Text: p.TextDetail.Text}
	},
	convert: storage.ConvertToTextPost,
}

var videoVariant = variant[*domain.VideoPost]{
	postType:    domain.PostTypeVideo,
	association: "VideoDetails",
	empty:       func() any { return &videoRecord{} },
	record: func(id string, p *domain.VideoPost) any {
		return &videoRecord{PostID: id, Title: p.Title, URL: p.URL}
	},
	convert: storage.ConvertToVideoPost,
}

// === Typed Post Methods ===

type typedRepository[T domain.Post] struct {
	db *gorm.DB
	v  variant[T]
}

func newTypedRepository[T domain.Post](db *gorm.DB, v variant[T]) *typedRepository[T] {
	return &typedRepository[T]{db: db, v: v}
}

func (r *typedRepository[T]) Save(ctx context.Context, post T) (T, error) {
	var zero T
	core := post.Core()
	if core.PostType != r.v.postType {
		return zero, fmt.Errorf("cannot save %s post with %s repository", core.PostType, r.v.postType)
	}

	rec := newPostRecord(core)
	var saved postRecord
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&rec).Error; err != nil {
			return err
		}
		if err := tx.Create(r.v.record(rec.ID, post)).Error; err != nil {
			return err
		}
		return tx.Preload(r.v.association).First(&saved, "id = ?", rec.ID).Error
	})
	if err != nil {
		return zero, fmt.Errorf("failed to save %s post: %w", r.v.postType, err)
	}
	return r.v.convert(saved.row()), nil
}

func (r *typedRepository[T]) FindByID(ctx context.Context, id string) (T, error) {
	var rec postRecord
	if err := r.db.WithContext(ctx).Preload(r.v.association).First(&rec, "id = ?", id).Error; err != nil {
		var zero T
		return zero, notFound(err)
	}
	return r.v.convert(rec.row()), nil
}

func (r *typedRepository[T]) Update(ctx context.Context, id string, post T) (T, error) {
	var zero T
	core := post.Core()
	var updated postRecord
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&postRecord{}).Where("id = ?", id).UpdateColumns(map[string]any{
			"tags":        pqArray(core.Tags),
			"post_status": string(core.PostStatus),
			"posted_at":   core.PostedAt,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Save(r.v.record(id, post)).Error; err != nil {
			return err
		}
		return tx.Preload(r.v.association).First(&updated, "id = ?", id).Error
	})
	if err != nil {
		return zero, notFound(err)
	}
	return r.v.convert(updated.row()), nil
}

func (r *typedRepository[T]) DeleteByID(ctx context.Context, id string) (T, error) {
	var zero T
	var rec postRecord
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload(r.v.association).First(&rec, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(r.v.empty()).Error; err != nil {
			return err
		}
		return tx.Delete(&postRecord{}, "id = ?", id).Error
	})
	if err != nil {
		return zero, notFound(err)
	}
	return r.v.convert(rec.row()), nil
}

func (r *typedRepository[T]) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(r.v.empty()).Where("post_id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *typedRepository[T]) Convert(row *storage.PostRow) T {
	return r.v.convert(row)
}
