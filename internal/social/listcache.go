package social

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bizmesh/bizmesh/internal/cache"
)

// listCache is a cache-aside store for query results. Every key embeds the
// generation counter of its scope; invalidating a scope bumps the counter,
// so a reader that queried the database before the bump writes under a key
// nobody reads again.
type listCache struct {
	cache  *cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// key resolves the entry name for suffix within scope. ok is false when the
// cache is disabled or unreachable and the caller must not use it.
func (l listCache) key(ctx context.Context, scope, suffix string) (key string, ok bool) {
	gen, err := l.cache.Generation(ctx, scope)
	if err != nil {
		if !isCacheSkip(err) {
			l.logger.Warn("Failed to read cache generation", zap.String("scope", scope), zap.Error(err))
		}
		return "", false
	}
	return fmt.Sprintf("%s:%d:%s", scope, gen, suffix), true
}

func (l listCache) load(ctx context.Context, key string, dest interface{}) bool {
	err := l.cache.GetJSON(ctx, key, dest)
	if err != nil && !isCacheSkip(err) {
		l.logger.Warn("Failed to read cache", zap.String("key", key), zap.Error(err))
	}
	return err == nil
}

func (l listCache) store(ctx context.Context, key string, value interface{}) {
	if err := l.cache.SetJSON(ctx, key, value, l.ttl); err != nil && !isCacheSkip(err) {
		l.logger.Warn("Failed to write cache", zap.String("key", key), zap.Error(err))
	}
}

func (l listCache) invalidate(ctx context.Context, scope string) {
	if _, err := l.cache.Bump(ctx, scope); err != nil && !isCacheSkip(err) {
		l.logger.Warn("Failed to invalidate cache", zap.String("scope", scope), zap.Error(err))
	}
}

// isCacheSkip reports errors that just mean "go to the database"
func isCacheSkip(err error) bool {
	return errors.Is(err, cache.ErrCacheDisabled) || errors.Is(err, cache.ErrMiss)
}
