package domain

import "time"

// Comment представляет комментарий к посту.
// PostID не является внешним ключом: комментарии переживают удаление поста.
type Comment struct {
	ID        string    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()" bson:"_id"`
	Text      string    `json:"text" gorm:"type:varchar(300);not null" bson:"text"`
	PostID    string    `json:"postId" gorm:"type:uuid;not null;index" bson:"postId"`
	AuthorID  string    `json:"authorId" gorm:"type:varchar(255);not null" bson:"authorId"`
	CreatedAt time.Time `json:"createdAt" gorm:"not null;default:now()" bson:"createdAt"`
}

const (
	CommentTextMin = 10
	CommentTextMax = 300
)
