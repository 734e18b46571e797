package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bizmesh/bizmesh/internal/models"
)

// PostRepository provides post-related database operations
type PostRepository struct {
	*Repository
}

// NewPostRepository creates a new post repository
func NewPostRepository(repo *Repository) *PostRepository {
	return &PostRepository{Repository: repo}
}

// GetByID retrieves a post by ID
func (r *PostRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// Create creates a new post
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

// ListByUser returns the newest posts authored by userID
func (r *PostRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*models.Post, error) {
	var posts []*models.Post
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// StreamContentBetween calls fn with the content of every post created in [from, to)
func (r *PostRepository) StreamContentBetween(ctx context.Context, from, to time.Time, fn func(content string) error) error {
	rows, err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Select("content").
		Where("created_at >= ? AND created_at < ?", from, to).
		Rows()
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var content string
		if err := rows.Scan(&content); err != nil {
			return err
		}
		if err := fn(content); err != nil {
			return err
		}
	}
	return rows.Err()
}

// AdjustLikes adds delta to the post's likes counter
func (r *PostRepository) AdjustLikes(ctx context.Context, postID, delta int64) error {
	_, err := adjustCounter(ctx, r.db, &models.Post{}, "likes_count", delta, "id = ?", postID)
	return err
}

// AdjustComments adds delta to the post's comments counter
func (r *PostRepository) AdjustComments(ctx context.Context, postID, delta int64) error {
	_, err := adjustCounter(ctx, r.db, &models.Post{}, "comments_count", delta, "id = ?", postID)
	return err
}

// AdjustShares adds delta to the post's shares counter
func (r *PostRepository) AdjustShares(ctx context.Context, postID, delta int64) error {
	_, err := adjustCounter(ctx, r.db, &models.Post{}, "shares_count", delta, "id = ?", postID)
	return err
}

// EngagementTotals sums the engagement counters over every post by userID
type EngagementTotals struct {
	Posts    int64
	Likes    int64
	Comments int64
	Shares   int64
}

// TotalsForUser aggregates engagement across the user's posts
func (r *PostRepository) TotalsForUser(ctx context.Context, userID int64) (*EngagementTotals, error) {
	var totals EngagementTotals
	if err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Select("COUNT(*) AS posts, COALESCE(SUM(likes_count), 0) AS likes, COALESCE(SUM(comments_count), 0) AS comments, COALESCE(SUM(shares_count), 0) AS shares").
		Where("user_id = ?", userID).
		Scan(&totals).Error; err != nil {
		return nil, err
	}
	return &totals, nil
}

// LikeRepository provides like-related database operations
type LikeRepository struct {
	*Repository
}

// NewLikeRepository creates a new like repository
func NewLikeRepository(repo *Repository) *LikeRepository {
	return &LikeRepository{Repository: repo}
}

// Insert stores the like unless the (post, user) pair already exists. The
// unique index decides, so two racing inserts cannot both report true.
func (r *LikeRepository) Insert(ctx context.Context, like *models.Like) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(like)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Delete removes the like for the pair, reporting whether one existed
func (r *LikeRepository) Delete(ctx context.Context, postID, userID int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&models.Like{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Exists checks whether userID liked postID
func (r *LikeRepository) Exists(ctx context.Context, postID, userID int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountByPost counts like rows for a post
func (r *LikeRepository) CountByPost(ctx context.Context, postID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}

// CommentRepository provides comment-related database operations
type CommentRepository struct {
	*Repository
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(repo *Repository) *CommentRepository {
	return &CommentRepository{Repository: repo}
}

// GetByID retrieves a comment by ID
func (r *CommentRepository) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &comment, nil
}

// Create creates a new comment
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

// Delete removes a comment, reporting whether it existed
func (r *CommentRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&models.Comment{}, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListByPost returns the newest comments on a post
func (r *CommentRepository) ListByPost(ctx context.Context, postID int64, limit int) ([]*models.Comment, error) {
	var comments []*models.Comment
	if err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

// ListByUser returns the newest comments authored by userID
func (r *CommentRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*models.Comment, error) {
	var comments []*models.Comment
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

// CountByPost counts comment rows for a post
func (r *CommentRepository) CountByPost(ctx context.Context, postID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Comment{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}
