package db_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bizmesh/bizmesh/internal/db"
	"github.com/bizmesh/bizmesh/internal/db/dbtest"
	"github.com/bizmesh/bizmesh/internal/models"
)

func TestUserRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	repo := dbtest.Repo(t)
	users := db.NewUserRepository(repo)

	alice := dbtest.SeedUser(t, repo, "alice", 1)

	got, err := users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, alice.Username, got.Username)

	missing, err := users.GetByID(ctx, alice.ID+100)
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestAdjustConnectionsFloorsAtZero(t *testing.T) {
	ctx := context.Background()
	repo := dbtest.Repo(t)
	users := db.NewUserRepository(repo)

	a := dbtest.SeedUser(t, repo, "a", 0)
	b := dbtest.SeedUser(t, repo, "b", 0)

	require.NoError(t, users.AdjustConnections(ctx, []int64{a.ID, b.ID}, 1))
	require.NoError(t, users.AdjustConnections(ctx, []int64{a.ID}, -1))
	require.NoError(t, users.AdjustConnections(ctx, []int64{a.ID}, -1))

	gotA, err := users.GetByID(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, int64(0), gotA.Connections)

	gotB, err := users.GetByID(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), gotB.Connections)
}

func TestLikeRepository_InsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := dbtest.Repo(t)
	likes := db.NewLikeRepository(repo)

	u := dbtest.SeedUser(t, repo, "liker", 0)
	p := dbtest.SeedPost(t, repo, u.ID, "hello", time.Time{})

	inserted, err := likes.Insert(ctx, &models.Like{PostID: p.ID, UserID: u.ID})
	require.NoError(t, err)
	require.True(t, inserted)

	inserted, err = likes.Insert(ctx, &models.Like{PostID: p.ID, UserID: u.ID})
	require.NoError(t, err)
	require.False(t, inserted)

	count, err := likes.CountByPost(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	removed, err := likes.Delete(ctx, p.ID, u.ID)
	require.NoError(t, err)
	require.True(t, removed)

	removed, err = likes.Delete(ctx, p.ID, u.ID)
	require.NoError(t, err)
	require.False(t, removed)
}

func TestConnectionRepository_PairIsUnordered(t *testing.T) {
	ctx := context.Background()
	repo := dbtest.Repo(t)
	conns := db.NewConnectionRepository(repo)

	a := dbtest.SeedUser(t, repo, "a", 0)
	b := dbtest.SeedUser(t, repo, "b", 0)

	inserted, err := conns.Insert(ctx, &models.Connection{RequesterID: a.ID, ReceiverID: b.ID})
	require.NoError(t, err)
	require.True(t, inserted)

	inserted, err = conns.Insert(ctx, &models.Connection{RequesterID: b.ID, ReceiverID: a.ID})
	require.NoError(t, err)
	require.False(t, inserted)

	found, err := conns.GetBetween(ctx, b.ID, a.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, a.ID, found.RequesterID)
	require.Equal(t, models.ConnectionPending, found.Status)
	require.Nil(t, found.UpdatedAt)
}

func TestConnectionRepository_TransitionFromPending(t *testing.T) {
	ctx := context.Background()
	repo := dbtest.Repo(t)
	conns := db.NewConnectionRepository(repo)

	a := dbtest.SeedUser(t, repo, "a", 0)
	b := dbtest.SeedUser(t, repo, "b", 0)
	conn := dbtest.SeedConnection(t, repo, a.ID, b.ID, models.ConnectionPending, time.Now().Add(-time.Hour), nil)

	at := time.Now().UTC()
	moved, err := conns.TransitionFromPending(ctx, conn.ID, models.ConnectionAccepted, at)
	require.NoError(t, err)
	require.True(t, moved)

	moved, err = conns.TransitionFromPending(ctx, conn.ID, models.ConnectionRejected, at)
	require.NoError(t, err)
	require.False(t, moved)

	got, err := conns.GetByID(ctx, conn.ID)
	require.NoError(t, err)
	require.Equal(t, models.ConnectionAccepted, got.Status)
	require.NotNil(t, got.UpdatedAt)
}

func TestNotificationRepository_ReadState(t *testing.T) {
	ctx := context.Background()
	repo := dbtest.Repo(t)
	notifications := db.NewNotificationRepository(repo)

	owner := dbtest.SeedUser(t, repo, "owner", 0)
	actor := dbtest.SeedUser(t, repo, "actor", 0)

	for i := 0; i < 3; i++ {
		require.NoError(t, notifications.Create(ctx, &models.Notification{
			UserID:  owner.ID,
			ActorID: actor.ID,
			Type:    models.NotifyTypeLike,
			Message: "liked your post",
		}))
	}

	unread, err := notifications.CountUnread(ctx, owner.ID)
	require.NoError(t, err)
	require.Equal(t, int64(3), unread)

	list, err := notifications.ListForUser(ctx, owner.ID, nil, 10)
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.NotNil(t, list[0].Actor)
	require.Equal(t, actor.ID, list[0].Actor.ID)

	ok, err := notifications.MarkRead(ctx, list[0].ID, actor.ID)
	require.NoError(t, err)
	require.False(t, ok, "only the recipient may mark a notification read")

	changed, err := notifications.MarkAllRead(ctx, owner.ID)
	require.NoError(t, err)
	require.Equal(t, int64(3), changed)

	unread, err = notifications.CountUnread(ctx, owner.ID)
	require.NoError(t, err)
	require.Zero(t, unread)
}

func TestTrendingRepository_UpsertOverwrites(t *testing.T) {
	ctx := context.Background()
	trending := db.NewTrendingRepository(dbtest.Repo(t))

	now := time.Now().UTC()
	first, err := trending.Upsert(ctx, &models.TrendingTopic{Tag: "golang", Count: 3, GrowthRate: 10, LastUpdated: now})
	require.NoError(t, err)

	second, err := trending.Upsert(ctx, &models.TrendingTopic{Tag: "golang", Count: 7, GrowthRate: 2, LastUpdated: now.Add(time.Minute)})
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, int64(7), second.Count)
	require.Equal(t, 2.0, second.GrowthRate)

	topics, err := trending.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, topics, 1)
}

func TestMetricRepository_GetOrCreate(t *testing.T) {
	ctx := context.Background()
	repo := dbtest.Repo(t)
	metrics := db.NewMetricRepository(repo)
	u := dbtest.SeedUser(t, repo, "biz", 0)

	first, err := metrics.GetOrCreate(ctx, u.ID, time.Now())
	require.NoError(t, err)
	require.Zero(t, first.ProfileViews)

	require.NoError(t, metrics.IncrementProfileViews(ctx, u.ID))

	second, err := metrics.GetOrCreate(ctx, u.ID, time.Now())
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, int64(1), second.ProfileViews)
}

func TestTransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := dbtest.Repo(t)
	u := dbtest.SeedUser(t, repo, "tx", 0)
	boom := errors.New("boom")

	err := repo.Transaction(ctx, func(tx *db.Repository) error {
		if err := db.NewUserRepository(tx).AdjustConnections(ctx, []int64{u.ID}, 5); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := db.NewUserRepository(repo).GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.Zero(t, got.Connections)
}

func TestPostRepository_TotalsForUser(t *testing.T) {
	ctx := context.Background()
	repo := dbtest.Repo(t)
	posts := db.NewPostRepository(repo)
	u := dbtest.SeedUser(t, repo, "author", 0)

	p1 := dbtest.SeedPost(t, repo, u.ID, "one", time.Time{})
	p2 := dbtest.SeedPost(t, repo, u.ID, "two", time.Time{})
	require.NoError(t, posts.AdjustLikes(ctx, p1.ID, 1))
	require.NoError(t, posts.AdjustLikes(ctx, p2.ID, 1))
	require.NoError(t, posts.AdjustComments(ctx, p2.ID, 1))
	require.NoError(t, posts.AdjustShares(ctx, p1.ID, 1))
	require.NoError(t, posts.AdjustComments(ctx, p1.ID, -1))

	totals, err := posts.TotalsForUser(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), totals.Posts)
	require.Equal(t, int64(2), totals.Likes)
	require.Equal(t, int64(1), totals.Comments)
	require.Equal(t, int64(1), totals.Shares)
}
