package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/UkralStul/content-service/internal/domain"
	"github.com/UkralStul/content-service/internal/storage"
)

// === Cross-type Post Methods ===

type postRepository struct {
	db *gorm.DB
}

func (r *postRepository) FindByID(ctx context.Context, id string) (*domain.PostCore, error) {
	var rec postRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	core := rec.core()
	return &core, nil
}

func (r *postRepository) FindByIDs(ctx context.Context, ids []string) (map[string]*domain.PostCore, error) {
	var recs []postRecord
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&recs).Error; err != nil {
		return nil, err
	}
	result := make(map[string]*domain.PostCore, len(recs))
	for i := range recs {
		core := recs[i].core()
		result[core.ID] = &core
	}
	return result, nil
}

func (r *postRepository) DeleteByID(ctx context.Context, id string) (*domain.PostCore, error) {
	var rec postRecord
	// Детали удаляются каскадом по внешнему ключу
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&rec, "id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&postRecord{}, "id = ?", id).Error
	})
	if err != nil {
		return nil, notFound(err)
	}
	core := rec.core()
	return &core, nil
}

func (r *postRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&postRecord{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *postRepository) ExistsRepostByUser(ctx context.Context, originalPostID, authorID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&postRecord{}).
		Where("original_post_id = ? AND author_id = ?", originalPostID, authorID).
		Count(&count).Error
	return count > 0, err
}

func (r *postRepository) IncrementRepostCount(ctx context.Context, id string) (bool, error) {
	return r.shift(ctx, r.db.Where("id = ?", id), "repost_count", 1)
}

func (r *postRepository) IncrementCommentCount(ctx context.Context, id string) (bool, error) {
	return r.shift(ctx, r.db.Where("id = ?", id), "comment_count", 1)
}

func (r *postRepository) DecrementCommentCount(ctx context.Context, id string) (bool, error) {
	return r.shift(ctx, r.db.Where("id = ? AND comment_count > 0", id), "comment_count", -1)
}

// shift атомарно сдвигает счетчик на уровне одного UPDATE.
func (r *postRepository) shift(ctx context.Context, scope *gorm.DB, column string, delta int) (bool, error) {
	res := scope.WithContext(ctx).Model(&postRecord{}).
		UpdateColumn(column, gorm.Expr(column+" + ?", delta))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *postRepository) AddLike(ctx context.Context, id, userID string) (*domain.PostCore, bool, error) {
	// Проверка членства и запись выполняются одним условным UPDATE
	res := r.db.WithContext(ctx).Model(&postRecord{}).
		Where("id = ? AND NOT (? = ANY(user_like_ids))", id, userID).
		UpdateColumns(map[string]any{
			"user_like_ids": gorm.Expr("array_append(user_like_ids, ?)", userID),
			"like_count":    gorm.Expr("like_count + 1"),
		})
	if res.Error != nil {
		return nil, false, res.Error
	}
	post, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return post, res.RowsAffected > 0, nil
}

func (r *postRepository) RemoveLike(ctx context.Context, id, userID string) (*domain.PostCore, bool, error) {
	res := r.db.WithContext(ctx).Model(&postRecord{}).
		Where("id = ? AND ? = ANY(user_like_ids)", id, userID).
		UpdateColumns(map[string]any{
			"user_like_ids": gorm.Expr("array_remove(user_like_ids, ?)", userID),
			"like_count":    gorm.Expr("like_count - 1"),
		})
	if res.Error != nil {
		return nil, false, res.Error
	}
	post, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return post, res.RowsAffected > 0, nil
}

// notFound переводит gorm.ErrRecordNotFound в storage.ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return storage.ErrNotFound
	}
	return err
}
