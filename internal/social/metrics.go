package social

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bizmesh/bizmesh/internal/db"
	"github.com/bizmesh/bizmesh/internal/models"
	"github.com/bizmesh/bizmesh/pkg/logging"
	"github.com/bizmesh/bizmesh/pkg/telemetry"
)

// NetworkGrowthWindow is how far back Refresh counts new connections
const NetworkGrowthWindow = 30 * 24 * time.Hour

// BusinessMetrics maintains the per-user dashboard row
type BusinessMetrics struct {
	repo   *db.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewBusinessMetrics creates the metrics component
func NewBusinessMetrics(repo *db.Repository) *BusinessMetrics {
	return &BusinessMetrics{
		repo:   repo,
		logger: logging.WithComponent("business-metrics"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (m *BusinessMetrics) requireUser(ctx context.Context, repo *db.Repository, op string, userID int64) error {
	user, err := db.NewUserRepository(repo).GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load user %d: %w", userID, err)
	}
	if user == nil {
		return notFound(op, "user %d not found", userID)
	}
	return nil
}

// Get returns the metrics row of userID, creating it on first read
func (m *BusinessMetrics) Get(ctx context.Context, userID int64) (*models.BusinessMetric, error) {
	ctx, span := telemetry.StartSpan(ctx, "social.metrics.get")
	defer span.End()

	if err := m.requireUser(ctx, m.repo, "get business metrics", userID); err != nil {
		return nil, err
	}
	metric, err := db.NewMetricRepository(m.repo).GetOrCreate(ctx, userID, m.now())
	if err != nil {
		return nil, fmt.Errorf("failed to load business metrics: %w", err)
	}
	return metric, nil
}

// RecordProfileView counts viewerID looking at userID's profile. Users viewing
// their own profile are not counted and false is returned.
func (m *BusinessMetrics) RecordProfileView(ctx context.Context, viewerID, userID int64) (bool, error) {
	const op = "record profile view"
	ctx, span := telemetry.StartSpan(ctx, "social.metrics.profile_view")
	defer span.End()

	if viewerID == userID {
		return false, nil
	}

	err := m.repo.Transaction(ctx, func(tx *db.Repository) error {
		if err := m.requireUser(ctx, tx, op, userID); err != nil {
			return err
		}
		metrics := db.NewMetricRepository(tx)
		if _, err := metrics.GetOrCreate(ctx, userID, m.now()); err != nil {
			return fmt.Errorf("failed to load business metrics: %w", err)
		}
		if err := metrics.IncrementProfileViews(ctx, userID); err != nil {
			return err
		}

		event, err := models.NewAnalyticsEvent(userID, models.EventProfileView, models.EventData{ViewerID: viewerID})
		if err != nil {
			return err
		}
		if err := db.NewAnalyticsRepository(tx).Append(ctx, event); err != nil {
			return fmt.Errorf("failed to record profile view: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// Refresh recomputes the derived fields: network growth is connections made
// in the last 30 days, opportunities are pending incoming requests and the
// engagement score is average likes, comments and shares per post.
func (m *BusinessMetrics) Refresh(ctx context.Context, userID int64) (*models.BusinessMetric, error) {
	const op = "refresh business metrics"
	ctx, span := telemetry.StartSpan(ctx, "social.metrics.refresh")
	defer span.End()

	var metric *models.BusinessMetric
	err := m.repo.Transaction(ctx, func(tx *db.Repository) error {
		if err := m.requireUser(ctx, tx, op, userID); err != nil {
			return err
		}
		now := m.now()

		var err error
		metric, err = db.NewMetricRepository(tx).GetOrCreate(ctx, userID, now)
		if err != nil {
			return fmt.Errorf("failed to load business metrics: %w", err)
		}

		metric.NetworkGrowth, err = db.NewAnalyticsRepository(tx).CountSince(ctx, userID, models.EventConnectionMade, now.Add(-NetworkGrowthWindow))
		if err != nil {
			return fmt.Errorf("failed to count new connections: %w", err)
		}
		metric.Opportunities, err = db.NewConnectionRepository(tx).CountPendingIncoming(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to count pending requests: %w", err)
		}

		totals, err := db.NewPostRepository(tx).TotalsForUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to total engagement: %w", err)
		}
		metric.EngagementScore = EngagementScore(totals)
		metric.LastUpdated = now

		return db.NewMetricRepository(tx).SaveComputed(ctx, metric)
	})
	if err != nil {
		return nil, err
	}

	m.logger.Debug("Business metrics refreshed", zap.Int64("user_id", userID))
	return metric, nil
}

// EngagementScore is (likes + comments + shares) per post, zero without posts
func EngagementScore(t *db.EngagementTotals) float64 {
	if t == nil || t.Posts == 0 {
		return 0
	}
	return float64(t.Likes+t.Comments+t.Shares) / float64(t.Posts)
}
