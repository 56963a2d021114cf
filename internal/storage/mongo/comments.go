// Package mongo хранит комментарии в MongoDB. Посты остаются в основном хранилище.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/UkralStul/content-service/internal/domain"
	"github.com/UkralStul/content-service/internal/storage"
)

const commentsCollection = "comments"

// Connect открывает клиент и проверяет соединение.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	return client, nil
}

// CommentRepository реализует storage.CommentRepository поверх коллекции comments.
type CommentRepository struct {
	col *mongo.Collection
}

func NewCommentRepository(ctx context.Context, client *mongo.Client, database string) (*CommentRepository, error) {
	col := client.Database(database).Collection(commentsCollection)
	_, err := col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "postId", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create comments index: %w", err)
	}
	return &CommentRepository{col: col}, nil
}

func (r *CommentRepository) Save(ctx context.Context, comment *domain.Comment) (*domain.Comment, error) {
	c := *comment
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	if _, err := r.col.InsertOne(ctx, c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CommentRepository) FindByID(ctx context.Context, id string) (*domain.Comment, error) {
	var c domain.Comment
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *CommentRepository) FindAllByPostID(ctx context.Context, postID string, q domain.CommentQuery) (*domain.Page[*domain.Comment], error) {
	filter := bson.M{"postId": postID}
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, err
	}

	dir := -1
	if q.SortDirection == domain.SortAsc {
		dir = 1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: dir}, {Key: "_id", Value: 1}}).
		SetSkip(int64(domain.Offset(q.Page, q.Limit))).
		SetLimit(int64(q.Limit))

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	comments := make([]*domain.Comment, 0, q.Limit)
	for cur.Next(ctx) {
		var c domain.Comment
		if err := cur.Decode(&c); err != nil {
			return nil, err
		}
		comments = append(comments, &c)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return domain.NewPage(comments, int(total), q.Page, q.Limit), nil
}

func (r *CommentRepository) Update(ctx context.Context, id string, comment *domain.Comment) (*domain.Comment, error) {
	var c domain.Comment
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"text": comment.Text}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&c)
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *CommentRepository) DeleteByID(ctx context.Context, id string) (*domain.Comment, error) {
	var c domain.Comment
	if err := r.col.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *CommentRepository) Exists(ctx context.Context, id string) (bool, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	return n > 0, err
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return storage.ErrNotFound
	}
	return err
}
