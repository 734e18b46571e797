package social

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/bizmesh/bizmesh/internal/cache"
	"github.com/bizmesh/bizmesh/internal/db"
	"github.com/bizmesh/bizmesh/internal/models"
	"github.com/bizmesh/bizmesh/pkg/logging"
	"github.com/bizmesh/bizmesh/pkg/telemetry"
)

// Suggestions recommends users to connect with
type Suggestions struct {
	repo  *db.Repository
	cache listCache
}

// NewSuggestions creates a suggestion engine. A nil cache disables caching.
func NewSuggestions(repo *db.Repository, c *cache.Cache, ttl time.Duration) *Suggestions {
	return &Suggestions{
		repo:  repo,
		cache: listCache{cache: c, ttl: ttl, logger: logging.WithComponent("suggestions")},
	}
}

func suggestionScope(userID int64) string {
	return fmt.Sprintf("suggestions:%d", userID)
}

// Suggest returns up to limit users ordered by business score. userID itself
// and every user sharing a connection row with it are excluded, whatever the
// status: a rejected or blocked request keeps the pair out of suggestions.
func (s *Suggestions) Suggest(ctx context.Context, userID int64, limit int) ([]*models.User, error) {
	ctx, span := telemetry.StartSpan(ctx, "social.suggest")
	defer span.End()

	// The key is resolved before the query so an invalidation racing it
	// retires whatever this call writes.
	key, cacheable := s.cache.key(ctx, suggestionScope(userID), strconv.Itoa(limit))
	if cacheable {
		var cached []*models.User
		if s.cache.load(ctx, key, &cached) {
			return cached, nil
		}
	}

	users, err := db.NewUserRepository(s.repo).ListUnrelated(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list suggestions for user %d: %w", userID, err)
	}

	if cacheable {
		s.cache.store(ctx, key, users)
	}
	return users, nil
}

// Invalidate drops cached suggestions of every given user
func (s *Suggestions) Invalidate(ctx context.Context, userIDs ...int64) {
	if s == nil {
		return
	}
	for _, id := range userIDs {
		s.cache.invalidate(ctx, suggestionScope(id))
	}
}
