package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bizmesh/bizmesh/internal/models"
)

// AnalyticsRepository appends to and reads the analytics event log
type AnalyticsRepository struct {
	*Repository
}

// NewAnalyticsRepository creates a new analytics repository
func NewAnalyticsRepository(repo *Repository) *AnalyticsRepository {
	return &AnalyticsRepository{Repository: repo}
}

// Append writes an event. Events are never updated.
func (r *AnalyticsRepository) Append(ctx context.Context, event *models.AnalyticsEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// CountSince counts events of eventType for userID created at or after since
func (r *AnalyticsRepository) CountSince(ctx context.Context, userID int64, eventType string, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.AnalyticsEvent{}).
		Where("user_id = ? AND event_type = ? AND created_at >= ?", userID, eventType, since).
		Count(&count).Error
	return count, err
}

// TrendingRepository provides trending-topic database operations
type TrendingRepository struct {
	*Repository
}

// NewTrendingRepository creates a new trending repository
func NewTrendingRepository(repo *Repository) *TrendingRepository {
	return &TrendingRepository{Repository: repo}
}

// Upsert inserts the topic or overwrites count, growth and timestamp of the
// existing row with the same tag, then returns the stored row
func (r *TrendingRepository) Upsert(ctx context.Context, topic *models.TrendingTopic) (*models.TrendingTopic, error) {
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tag"}},
			DoUpdates: clause.AssignmentColumns([]string{"count", "growth_rate", "last_updated"}),
		}).
		Create(topic).Error; err != nil {
		return nil, err
	}
	return r.GetByTag(ctx, topic.Tag)
}

// GetByTag retrieves a topic by its tag
func (r *TrendingRepository) GetByTag(ctx context.Context, tag string) (*models.TrendingTopic, error) {
	var topic models.TrendingTopic
	if err := r.db.WithContext(ctx).Where("tag = ?", tag).First(&topic).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &topic, nil
}

// List returns topics by growth rate, then count, both descending
func (r *TrendingRepository) List(ctx context.Context, limit int) ([]*models.TrendingTopic, error) {
	var topics []*models.TrendingTopic
	if err := r.db.WithContext(ctx).
		Order("growth_rate DESC").
		Order("count DESC").
		Order("tag ASC").
		Limit(limit).
		Find(&topics).Error; err != nil {
		return nil, err
	}
	return topics, nil
}

// MetricRepository provides business-metric database operations
type MetricRepository struct {
	*Repository
}

// NewMetricRepository creates a new metric repository
func NewMetricRepository(repo *Repository) *MetricRepository {
	return &MetricRepository{Repository: repo}
}

// GetOrCreate returns the metrics row for userID, creating a zeroed one first
// if none exists
func (r *MetricRepository) GetOrCreate(ctx context.Context, userID int64, now time.Time) (*models.BusinessMetric, error) {
	seed := &models.BusinessMetric{UserID: userID, LastUpdated: now}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(seed).Error; err != nil {
		return nil, err
	}

	var metric models.BusinessMetric
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&metric).Error; err != nil {
		return nil, err
	}
	return &metric, nil
}

// IncrementProfileViews bumps the profile view counter of userID
func (r *MetricRepository) IncrementProfileViews(ctx context.Context, userID int64) error {
	_, err := adjustCounter(ctx, r.db, &models.BusinessMetric{}, "profile_views", 1, "user_id = ?", userID)
	return err
}

// SaveComputed overwrites the derived fields of the metrics row of userID
func (r *MetricRepository) SaveComputed(ctx context.Context, m *models.BusinessMetric) error {
	return r.db.WithContext(ctx).
		Model(&models.BusinessMetric{}).
		Where("user_id = ?", m.UserID).
		UpdateColumns(map[string]interface{}{
			"network_growth":   m.NetworkGrowth,
			"opportunities":    m.Opportunities,
			"engagement_score": m.EngagementScore,
			"last_updated":     m.LastUpdated,
		}).Error
}
