package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/UkralStul/content-service/internal/domain"
)

// === Comment Methods ===

type commentRepository struct {
	db *gorm.DB
}

func (r *commentRepository) Save(ctx context.Context, comment *domain.Comment) (*domain.Comment, error) {
	c := *comment
	c.ID = ""
	if err := r.db.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, err
	}
	// GORM заполнит ID и CreatedAt после создания
	return &c, nil
}

func (r *commentRepository) FindByID(ctx context.Context, id string) (*domain.Comment, error) {
	var comment domain.Comment
	if err := r.db.WithContext(ctx).First(&comment, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &comment, nil
}

func (r *commentRepository) FindAllByPostID(ctx context.Context, postID string, q domain.CommentQuery) (*domain.Page[*domain.Comment], error) {
	var (
		comments []*domain.Comment
		total    int64
	)
	if err := r.db.WithContext(ctx).Model(&domain.Comment{}).Where("post_id = ?", postID).Count(&total).Error; err != nil {
		return nil, err
	}
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at " + string(q.SortDirection)).
		Order("id ASC").
		Offset(domain.Offset(q.Page, q.Limit)).
		Limit(q.Limit).
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return domain.NewPage(comments, int(total), q.Page, q.Limit), nil
}

func (r *commentRepository) Update(ctx context.Context, id string, comment *domain.Comment) (*domain.Comment, error) {
	var updated domain.Comment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Comment{}).Where("id = ?", id).Update("text", comment.Text)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.First(&updated, "id = ?", id).Error
	})
	if err != nil {
		return nil, notFound(err)
	}
	return &updated, nil
}

func (r *commentRepository) DeleteByID(ctx context.Context, id string) (*domain.Comment, error) {
	var comment domain.Comment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&comment, "id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Comment{}, "id = ?", id).Error
	})
	if err != nil {
		return nil, notFound(err)
	}
	return &comment, nil
}

func (r *commentRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Comment{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}
