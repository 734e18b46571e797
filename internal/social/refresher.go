package social

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bizmesh/bizmesh/internal/db"
	"github.com/bizmesh/bizmesh/pkg/logging"
	"github.com/bizmesh/bizmesh/pkg/telemetry"
)

// TrendingRefresher recomputes trending topics from post hashtags. The current
// window is the last `window` of posts; growth compares it with the window
// right before it.
type TrendingRefresher struct {
	repo     *db.Repository
	trending *Trending
	window   time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewTrendingRefresher creates a refresher over window-sized periods
func NewTrendingRefresher(repo *db.Repository, trending *Trending, window time.Duration) *TrendingRefresher {
	return &TrendingRefresher{
		repo:     repo,
		trending: trending,
		window:   window,
		logger:   logging.WithComponent("trending-refresher"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// GrowthRate is the percentage change from previous to current. A tag that is
// new in the current window grows relative to a baseline of one.
func GrowthRate(current, previous int64) float64 {
	base := previous
	if base < 1 {
		base = 1
	}
	return float64(current-previous) / float64(base) * 100
}

// countTags counts, per tag, the posts created in [from, to) mentioning it
func (r *TrendingRefresher) countTags(ctx context.Context, from, to time.Time) (map[string]int64, error) {
	counts := make(map[string]int64)
	err := db.NewPostRepository(r.repo).StreamContentBetween(ctx, from, to, func(content string) error {
		for _, tag := range ExtractHashtags(content) {
			counts[tag]++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan posts: %w", err)
	}
	return counts, nil
}

// Refresh runs one pass and returns how many topics were written. Tags seen
// only in the previous window are written with a zero count so they sink.
func (r *TrendingRefresher) Refresh(ctx context.Context) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "social.trending.refresh")
	defer span.End()

	now := r.now()
	current, err := r.countTags(ctx, now.Add(-r.window), now)
	if err != nil {
		return 0, err
	}
	previous, err := r.countTags(ctx, now.Add(-2*r.window), now.Add(-r.window))
	if err != nil {
		return 0, err
	}

	for tag := range previous {
		if _, ok := current[tag]; !ok {
			current[tag] = 0
		}
	}

	written := 0
	for tag, count := range current {
		if _, err := r.trending.Upsert(ctx, tag, count, GrowthRate(count, previous[tag])); err != nil {
			return written, err
		}
		written++
	}

	r.logger.Info("Trending topics refreshed",
		zap.Int("topics", written),
		zap.Duration("window", r.window))
	return written, nil
}

// Run refreshes every interval until ctx is cancelled. Failed passes are
// logged and retried on the next tick.
func (r *TrendingRefresher) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("refresh interval must be positive, got %s", interval)
	}
	r.logger.Info("Starting trending refresher", zap.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := r.Refresh(ctx); err != nil {
			r.logger.Error("Trending refresh failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
