package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bizmesh/bizmesh/internal/models"
)

// ConnectionRepository provides connection-related database operations
type ConnectionRepository struct {
	*Repository
}

// NewConnectionRepository creates a new connection repository
func NewConnectionRepository(repo *Repository) *ConnectionRepository {
	return &ConnectionRepository{Repository: repo}
}

// GetByID retrieves a connection by ID
func (r *ConnectionRepository) GetByID(ctx context.Context, id int64) (*models.Connection, error) {
	var conn models.Connection
	if err := r.db.WithContext(ctx).First(&conn, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conn, nil
}

// GetBetween retrieves the connection between two users in either direction
func (r *ConnectionRepository) GetBetween(ctx context.Context, a, b int64) (*models.Connection, error) {
	low, high := models.OrderedPair(a, b)
	var conn models.Connection
	if err := r.db.WithContext(ctx).
		Where("pair_low = ? AND pair_high = ?", low, high).
		First(&conn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conn, nil
}

// Insert stores a new connection unless one already exists for the unordered
// pair. It reports false when the pair index rejected the row.
func (r *ConnectionRepository) Insert(ctx context.Context, conn *models.Connection) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(conn)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// TransitionFromPending moves a pending connection to status. The WHERE guard
// makes the transition a compare-and-set: it reports false when the row was
// not pending anymore.
func (r *ConnectionRepository) TransitionFromPending(ctx context.Context, id int64, status models.ConnectionStatus, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Connection{}).
		Where("id = ? AND status = ?", id, models.ConnectionPending).
		UpdateColumns(map[string]interface{}{
			"status":     status,
			"updated_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Delete removes a connection, reporting whether it existed
func (r *ConnectionRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&models.Connection{}, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListForUser lists connections where userID is either participant. An empty
// status matches every status. Newest state change first.
func (r *ConnectionRepository) ListForUser(ctx context.Context, userID int64, status models.ConnectionStatus, limit int) ([]*models.Connection, error) {
	q := r.db.WithContext(ctx).
		Where("(requester_id = ? OR receiver_id = ?)", userID, userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var conns []*models.Connection
	if err := q.
		Order("COALESCE(updated_at, created_at) DESC").
		Order("id DESC").
		Limit(limit).
		Find(&conns).Error; err != nil {
		return nil, err
	}
	return conns, nil
}

// CountPendingIncoming counts pending requests addressed to userID
func (r *ConnectionRepository) CountPendingIncoming(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Connection{}).
		Where("receiver_id = ? AND status = ?", userID, models.ConnectionPending).
		Count(&count).Error
	return count, err
}
