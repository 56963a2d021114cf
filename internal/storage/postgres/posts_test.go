package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/UkralStul/content-service/internal/domain"
	"github.com/UkralStul/content-service/internal/storage"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return db, mock
}

func postRows(id string, likes int, likedBy string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "author_id", "post_status", "post_type", "user_like_ids", "like_count"}).
		AddRow(id, "u1", "PUBLISHED", "TEXT", likedBy, likes)
}

const (
	addLikeSQL    = `UPDATE "posts" SET .*array_append\(user_like_ids, \$\d+\).* WHERE id = \$\d+ AND NOT \(\$\d+ = ANY\(user_like_ids\)\)`
	removeLikeSQL = `UPDATE "posts" SET .*array_remove\(user_like_ids, \$\d+\).* WHERE id = \$\d+ AND \$\d+ = ANY\(user_like_ids\)`
	selectPostSQL = `SELECT \* FROM "posts" WHERE id = \$1`
)

func TestPostRepository_AddLike(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &postRepository{db: db}

	mock.ExpectExec(addLikeSQL).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(selectPostSQL).WillReturnRows(postRows("p1", 1, "{u2}"))

	post, applied, err := repo.AddLike(context.Background(), "p1", "u2")
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, 1, post.LikeCount)
	assert.Equal(t, []string{"u2"}, post.UserLikeIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_AddLike_AlreadyLiked(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &postRepository{db: db}

	// Условие NOT ANY не выполнилось: строка не изменена, счетчик не тронут
	mock.ExpectExec(addLikeSQL).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(selectPostSQL).WillReturnRows(postRows("p1", 1, "{u2}"))

	post, applied, err := repo.AddLike(context.Background(), "p1", "u2")
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, 1, post.LikeCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_RemoveLike_NotLiked(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &postRepository{db: db}

	mock.ExpectExec(removeLikeSQL).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(selectPostSQL).WillReturnRows(postRows("p1", 0, "{}"))

	post, applied, err := repo.RemoveLike(context.Background(), "p1", "u2")
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, 0, post.LikeCount)
	assert.Empty(t, post.UserLikeIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_AddLike_MissingPost(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &postRepository{db: db}

	mock.ExpectExec(addLikeSQL).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(selectPostSQL).WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, _, err := repo.AddLike(context.Background(), "missing", "u2")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func newTextPost() *domain.TextPost {
	return &domain.TextPost{
		PostCore:   domain.PostCore{PostType: domain.PostTypeText, AuthorID: "u1", Tags: []string{"golang"}},
		TextDetail: domain.TextDetail{Title: "Hello", Text: "World"},
	}
}

func TestTypedRepository_Save(t *testing.T) {
	db, mock := newMockDB(t)
	repo := newTypedRepository(db, textVariant)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "posts"`).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("p1"))
	mock.ExpectExec(`INSERT INTO "text_posts"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(selectPostSQL).WillReturnRows(postRows("p1", 0, "{}"))
	mock.ExpectQuery(`SELECT \* FROM "text_posts"`).WillReturnRows(
		sqlmock.NewRows([]string{"post_id", "title", "announcement", "text"}).AddRow("p1", "Hello", "", "World"))
	mock.ExpectCommit()

	saved, err := repo.Save(context.Background(), newTextPost())
	require.NoError(t, err)
	assert.Equal(t, "p1", saved.ID)
	assert.Equal(t, "Hello", saved.Title)
	assert.Equal(t, "World", saved.TextDetail.Text)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTypedRepository_Save_DetailFailureRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	repo := newTypedRepository(db, textVariant)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "posts"`).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("p1"))
	mock.ExpectExec(`INSERT INTO "text_posts"`).WillReturnError(errors.New("value too long for type character varying(255)"))
	mock.ExpectRollback()

	_, err := repo.Save(context.Background(), newTextPost())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save TEXT post")
	assert.NoError(t, mock.ExpectationsWereMet(), "base row must be rolled back with the detail row")
}

func TestTypedRepository_Save_WrongType(t *testing.T) {
	db, mock := newMockDB(t)
	repo := newTypedRepository(db, linkVariant)

	_, err := repo.Save(context.Background(), &domain.LinkPost{PostCore: domain.PostCore{PostType: domain.PostTypeText}})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet(), "nothing is written")
}

func TestTypedRepository_Update_MissingPostRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	repo := newTypedRepository(db, textVariant)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "posts" SET`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.Update(context.Background(), "missing", newTextPost())
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
