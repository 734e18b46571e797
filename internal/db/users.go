package db

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/bizmesh/bizmesh/internal/models"
)

// UserRepository provides user-related database operations
type UserRepository struct {
	*Repository
}

// NewUserRepository creates a new user repository
func NewUserRepository(repo *Repository) *UserRepository {
	return &UserRepository{Repository: repo}
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// AdjustConnections adds delta to the accepted-connection count of every user in ids
func (r *UserRepository) AdjustConnections(ctx context.Context, ids []int64, delta int64) error {
	_, err := adjustCounter(ctx, r.db, &models.User{}, "connections", delta, "id IN ?", ids)
	return err
}

// ListUnrelated returns users that share no connection row of any status with
// userID, best business score first
func (r *UserRepository) ListUnrelated(ctx context.Context, userID int64, limit int) ([]*models.User, error) {
	sent := r.db.Model(&models.Connection{}).Select("receiver_id").Where("requester_id = ?", userID)
	received := r.db.Model(&models.Connection{}).Select("requester_id").Where("receiver_id = ?", userID)

	var users []*models.User
	if err := r.db.WithContext(ctx).
		Where("id <> ?", userID).
		Where("id NOT IN (?)", sent).
		Where("id NOT IN (?)", received).
		Order("business_score DESC").
		Order("id ASC").
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
