package social

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/bizmesh/bizmesh/internal/cache"
	"github.com/bizmesh/bizmesh/internal/db"
	"github.com/bizmesh/bizmesh/internal/models"
	"github.com/bizmesh/bizmesh/pkg/logging"
	"github.com/bizmesh/bizmesh/pkg/telemetry"
)

const trendingScope = "trending"

// Trending maintains one ranked row per tag
type Trending struct {
	repo  *db.Repository
	cache listCache
	now   func() time.Time
}

// NewTrending creates the trending ranker. A nil cache disables caching.
func NewTrending(repo *db.Repository, c *cache.Cache, ttl time.Duration) *Trending {
	return &Trending{
		repo:  repo,
		cache: listCache{cache: c, ttl: ttl, logger: logging.WithComponent("trending")},
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Upsert creates the row for tag or overwrites its count and growth rate.
// The tag is normalized first, so "#GoLang" and "golang" are the same row.
func (t *Trending) Upsert(ctx context.Context, tag string, count int64, growthRate float64) (*models.TrendingTopic, error) {
	const op = "upsert trending topic"
	ctx, span := telemetry.StartSpan(ctx, "social.trending.upsert")
	defer span.End()

	normalized := NormalizeTag(tag)
	if normalized == "" {
		return nil, invalidOperation(op, "tag %q is empty after normalization", tag)
	}
	if !ValidTagLength(normalized) {
		return nil, invalidOperation(op, "tag %q is longer than %d characters", normalized, MaxTagLength)
	}
	if count < 0 {
		return nil, invalidOperation(op, "count must not be negative")
	}
	if math.IsNaN(growthRate) || math.IsInf(growthRate, 0) {
		return nil, invalidOperation(op, "growth rate must be finite")
	}

	topic, err := db.NewTrendingRepository(t.repo).Upsert(ctx, &models.TrendingTopic{
		Tag:         normalized,
		Count:       count,
		GrowthRate:  growthRate,
		LastUpdated: t.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert trending topic %q: %w", normalized, err)
	}

	t.cache.invalidate(ctx, trendingScope)
	return topic, nil
}

// List returns up to limit topics by growth rate then count, both descending
func (t *Trending) List(ctx context.Context, limit int) ([]*models.TrendingTopic, error) {
	ctx, span := telemetry.StartSpan(ctx, "social.trending.list")
	defer span.End()

	key, cacheable := t.cache.key(ctx, trendingScope, strconv.Itoa(limit))
	if cacheable {
		var cached []*models.TrendingTopic
		if t.cache.load(ctx, key, &cached) {
			return cached, nil
		}
	}

	topics, err := db.NewTrendingRepository(t.repo).List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list trending topics: %w", err)
	}

	if cacheable {
		t.cache.store(ctx, key, topics)
	}
	return topics, nil
}
