package db

import (
	"context"

	"github.com/bizmesh/bizmesh/internal/models"
)

// NotificationRepository provides notification-related database operations
type NotificationRepository struct {
	*Repository
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(repo *Repository) *NotificationRepository {
	return &NotificationRepository{Repository: repo}
}

// Create creates a new notification
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

// ListForUser returns notifications addressed to userID, newest first, with
// the acting user preloaded. A nil read matches both states.
func (r *NotificationRepository) ListForUser(ctx context.Context, userID int64, read *bool, limit int) ([]*models.Notification, error) {
	q := r.db.WithContext(ctx).
		Preload("Actor").
		Where("user_id = ?", userID)
	if read != nil {
		q = q.Where("read = ?", *read)
	}

	var notifications []*models.Notification
	if err := q.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkRead marks one notification read when it belongs to userID. It reports
// whether a row matched, whatever its previous state.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		UpdateColumn("read", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// MarkAllRead marks every unread notification of userID read and returns how many changed
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		UpdateColumn("read", true)
	return res.RowsAffected, res.Error
}

// CountUnread counts unread notifications of userID
func (r *NotificationRepository) CountUnread(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error
	return count, err
}
