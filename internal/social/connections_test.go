package social

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bizmesh/bizmesh/internal/db/dbtest"
	"github.com/bizmesh/bizmesh/internal/models"
)

func TestCreateConnection_Self(t *testing.T) {
	svc, repo := newTestServices(t)
	a := dbtest.SeedUser(t, repo, "a", 0)

	_, err := svc.Connections.Create(context.Background(), a.ID, a.ID)
	require.ErrorIs(t, err, ErrInvalidOperation)
}

func TestCreateConnection_ReverseIsConflict(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestServices(t)
	a := dbtest.SeedUser(t, repo, "a", 0)
	b := dbtest.SeedUser(t, repo, "b", 0)

	conn, err := svc.Connections.Create(ctx, a.ID, b.ID)
	require.NoError(t, err)
	require.Equal(t, models.ConnectionPending, conn.Status)

	_, err = svc.Connections.Create(ctx, b.ID, a.ID)
	require.ErrorIs(t, err, ErrConflict)

	_, err = svc.Connections.Create(ctx, a.ID, b.ID)
	require.ErrorIs(t, err, ErrConflict)

	require.Equal(t, int64(1), countRows(t, repo, &models.Connection{},
		"(requester_id = ? AND receiver_id = ?) OR (requester_id = ? AND receiver_id = ?)", a.ID, b.ID, b.ID, a.ID))

	exists, err := svc.Connections.Exists(ctx, b.ID, a.ID)
	require.NoError(t, err)
	require.True(t, exists)
}

func TestCreateConnection_UnknownUser(t *testing.T) {
	svc, repo := newTestServices(t)
	a := dbtest.SeedUser(t, repo, "a", 0)

	_, err := svc.Connections.Create(context.Background(), a.ID, a.ID+1000)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCreateConnection_NotifiesReceiver(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestServices(t)
	a := dbtest.SeedUser(t, repo, "alice", 0)
	b := dbtest.SeedUser(t, repo, "bob", 0)

	conn, err := svc.Connections.Create(ctx, a.ID, b.ID)
	require.NoError(t, err)

	list, err := svc.Notifier.List(ctx, b.ID, nil, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, models.NotifyTypeConnection, list[0].Type)
	require.Equal(t, a.ID, list[0].ActorID)
	require.Equal(t, "alice wants to connect with you", list[0].Message)
	require.NotNil(t, list[0].TargetID)
	require.Equal(t, conn.ID, *list[0].TargetID)
	require.Equal(t, models.TargetTypeConnection, list[0].TargetType)
}

func TestAcceptThenDelete_NetZero(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestServices(t)
	a := dbtest.SeedUser(t, repo, "a", 0)
	b := dbtest.SeedUser(t, repo, "b", 0)

	conn, err := svc.Connections.Create(ctx, a.ID, b.ID)
	require.NoError(t, err)

	accepted, err := svc.Connections.UpdateStatus(ctx, conn.ID, models.ConnectionAccepted)
	require.NoError(t, err)
	require.Equal(t, models.ConnectionAccepted, accepted.Status)
	require.NotNil(t, accepted.UpdatedAt)

	require.Equal(t, int64(1), reloadUser(t, repo, a.ID).Connections)
	require.Equal(t, int64(1), reloadUser(t, repo, b.ID).Connections)

	// One notification on create, one on accept
	require.Equal(t, int64(2), countRows(t, repo, &models.Notification{}, "1 = 1"))
	unread, err := svc.Notifier.UnreadCount(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), unread)

	require.Equal(t, int64(1), countRows(t, repo, &models.AnalyticsEvent{}, "user_id = ? AND event_type = ?", a.ID, models.EventConnectionMade))
	require.Equal(t, int64(1), countRows(t, repo, &models.AnalyticsEvent{}, "user_id = ? AND event_type = ?", b.ID, models.EventConnectionMade))

	deleted, err := svc.Connections.Delete(ctx, conn.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	require.Zero(t, reloadUser(t, repo, a.ID).Connections)
	require.Zero(t, reloadUser(t, repo, b.ID).Connections)
}

func TestAcceptRecordsOtherParticipant(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestServices(t)
	a := dbtest.SeedUser(t, repo, "a", 0)
	b := dbtest.SeedUser(t, repo, "b", 0)

	conn, err := svc.Connections.Create(ctx, a.ID, b.ID)
	require.NoError(t, err)
	_, err = svc.Connections.UpdateStatus(ctx, conn.ID, models.ConnectionAccepted)
	require.NoError(t, err)

	var events []models.AnalyticsEvent
	require.NoError(t, repo.Gorm().Where("user_id = ?", a.ID).Find(&events).Error)
	require.Len(t, events, 1)
	require.Equal(t, b.ID, events[0].Data.Data().OtherUserID)
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestServices(t)
	a := dbtest.SeedUser(t, repo, "a", 0)
	b := dbtest.SeedUser(t, repo, "b", 0)
	c := dbtest.SeedUser(t, repo, "c", 0)

	conn, err := svc.Connections.Create(ctx, a.ID, b.ID)
	require.NoError(t, err)

	_, err = svc.Connections.UpdateStatus(ctx, conn.ID+1000, models.ConnectionAccepted)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Connections.UpdateStatus(ctx, conn.ID, models.ConnectionPending)
	require.ErrorIs(t, err, ErrInvalidOperation)

	_, err = svc.Connections.UpdateStatus(ctx, conn.ID, models.ConnectionStatus("friends"))
	require.ErrorIs(t, err, ErrInvalidOperation)

	rejected, err := svc.Connections.UpdateStatus(ctx, conn.ID, models.ConnectionRejected)
	require.NoError(t, err)
	require.Equal(t, models.ConnectionRejected, rejected.Status)
	require.Zero(t, reloadUser(t, repo, a.ID).Connections)

	// Terminal states do not move
	_, err = svc.Connections.UpdateStatus(ctx, conn.ID, models.ConnectionAccepted)
	require.ErrorIs(t, err, ErrInvalidOperation)

	blocked, err := svc.Connections.Create(ctx, c.ID, a.ID)
	require.NoError(t, err)
	_, err = svc.Connections.UpdateStatus(ctx, blocked.ID, models.ConnectionBlocked)
	require.NoError(t, err)

	// Only the create notification for the rejected/blocked requests
	require.Equal(t, int64(2), countRows(t, repo, &models.Notification{}, "1 = 1"))
}

func TestDeleteConnection(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestServices(t)
	a := dbtest.SeedUser(t, repo, "a", 0)
	b := dbtest.SeedUser(t, repo, "b", 0)

	deleted, err := svc.Connections.Delete(ctx, 12345)
	require.NoError(t, err)
	require.False(t, deleted)

	conn := dbtest.SeedConnection(t, repo, a.ID, b.ID, models.ConnectionRejected, time.Now(), nil)
	deleted, err = svc.Connections.Delete(ctx, conn.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	// Counters never go negative, even for rows seeded without a matching increment
	accepted := dbtest.SeedConnection(t, repo, a.ID, b.ID, models.ConnectionAccepted, time.Now(), nil)
	deleted, err = svc.Connections.Delete(ctx, accepted.ID)
	require.NoError(t, err)
	require.True(t, deleted)
	require.Zero(t, reloadUser(t, repo, a.ID).Connections)
	require.Zero(t, reloadUser(t, repo, b.ID).Connections)

	exists, err := svc.Connections.Exists(ctx, a.ID, b.ID)
	require.NoError(t, err)
	require.False(t, exists)
}

func TestListConnections(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestServices(t)
	a := dbtest.SeedUser(t, repo, "a", 0)
	b := dbtest.SeedUser(t, repo, "b", 0)
	c := dbtest.SeedUser(t, repo, "c", 0)

	base := time.Now().UTC().Add(-time.Hour)
	dbtest.SeedConnection(t, repo, a.ID, b.ID, models.ConnectionPending, base, nil)
	dbtest.SeedConnection(t, repo, c.ID, a.ID, models.ConnectionAccepted, base.Add(time.Minute), nil)

	all, err := svc.Connections.List(ctx, a.ID, "", 10)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, c.ID, all[0].RequesterID)

	pending, err := svc.Connections.List(ctx, a.ID, models.ConnectionPending, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, b.ID, pending[0].ReceiverID)

	_, err = svc.Connections.List(ctx, a.ID, "bogus", 10)
	require.ErrorIs(t, err, ErrInvalidOperation)
}
