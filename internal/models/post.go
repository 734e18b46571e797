package models

import (
	"time"
)

// Post represents a piece of content authored by a user
type Post struct {
	ID       int64  `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	UserID   int64  `gorm:"not null;index:posts_user_created_ix,priority:1;column:user_id" json:"userId"`
	Content  string `gorm:"type:text;not null;column:content" json:"content"`
	ImageURL string `gorm:"type:varchar(1024);not null;default:'';column:image_url" json:"imageUrl"`

	// Denormalized counters, only adjusted by the engagement component
	LikesCount    int64 `gorm:"not null;default:0;column:likes_count" json:"likesCount"`
	CommentsCount int64 `gorm:"not null;default:0;column:comments_count" json:"commentsCount"`
	SharesCount   int64 `gorm:"not null;default:0;column:shares_count" json:"sharesCount"`

	CreatedAt time.Time `gorm:"not null;index:posts_user_created_ix,priority:2;index:posts_created_ix;column:created_at" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;column:updated_at" json:"updatedAt"`

	// Relationships
	Author *User `gorm:"foreignKey:UserID;references:ID" json:"author,omitempty"`
}

// TableName specifies the table name for Post
func (Post) TableName() string {
	return "posts"
}

// Like represents one user's like on a post. The (post, user) pair is unique
// and that index is the guard against concurrent double likes.
type Like struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	PostID    int64     `gorm:"not null;uniqueIndex:likes_post_user_ux,priority:1;column:post_id" json:"postId"`
	UserID    int64     `gorm:"not null;uniqueIndex:likes_post_user_ux,priority:2;index:likes_user_ix;column:user_id" json:"userId"`
	CreatedAt time.Time `gorm:"not null;column:created_at" json:"createdAt"`
}

// TableName specifies the table name for Like
func (Like) TableName() string {
	return "likes"
}

// Comment represents a comment on a post
type Comment struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	PostID    int64     `gorm:"not null;index:comments_post_ix;column:post_id" json:"postId"`
	UserID    int64     `gorm:"not null;index:comments_user_created_ix,priority:1;column:user_id" json:"userId"`
	Content   string    `gorm:"type:text;not null;column:content" json:"content"`
	CreatedAt time.Time `gorm:"not null;index:comments_user_created_ix,priority:2;column:created_at" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;column:updated_at" json:"updatedAt"`
}

// TableName specifies the table name for Comment
func (Comment) TableName() string {
	return "comments"
}
