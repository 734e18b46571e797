package social

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"

	"github.com/bizmesh/bizmesh/internal/cache"
	"github.com/bizmesh/bizmesh/internal/db"
	"github.com/bizmesh/bizmesh/internal/db/dbtest"
	"github.com/bizmesh/bizmesh/internal/models"
	"github.com/bizmesh/bizmesh/pkg/config"
)

var testSocialConfig = config.SocialConfig{
	DefaultLimit:   20,
	MaxLimit:       100,
	TrendingWindow: time.Hour,
}

func newTestServices(t *testing.T) (*Services, *db.Repository) {
	t.Helper()
	repo := dbtest.Repo(t)
	return NewServices(repo, nil, testSocialConfig), repo
}

// newCachedTestServices backs the services with an in-process Redis
func newCachedTestServices(t *testing.T) (*Services, *db.Repository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := cache.NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = c.Close() })

	cfg := testSocialConfig
	cfg.TrendingCacheTTL = time.Minute
	cfg.SuggestionCacheTTL = time.Minute
	repo := dbtest.Repo(t)
	return NewServices(repo, c, cfg), repo, mr
}

func reloadUser(t *testing.T, repo *db.Repository, id int64) *models.User {
	t.Helper()
	user, err := db.NewUserRepository(repo).GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, user)
	return user
}

func reloadPost(t *testing.T, repo *db.Repository, id int64) *models.Post {
	t.Helper()
	post, err := db.NewPostRepository(repo).GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, post)
	return post
}

func countRows(t *testing.T, repo *db.Repository, model interface{}, where string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, repo.Gorm().Model(model).Where(where, args...).Count(&n).Error)
	return n
}
