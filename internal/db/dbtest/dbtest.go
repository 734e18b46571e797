// Package dbtest opens throwaway SQLite databases with the production schema
// and seeds them for package tests.
package dbtest

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"

	"github.com/bizmesh/bizmesh/internal/db"
	"github.com/bizmesh/bizmesh/internal/models"
	"github.com/bizmesh/bizmesh/pkg/config"
)

var seq int64

// New returns a migrated in-memory database closed when the test ends. The
// pool holds one connection so every query sees the same memory database;
// inside Repository.Transaction only the tx-bound repository may be used.
func New(t testing.TB) *db.DB {
	t.Helper()

	cfg := &config.DatabaseConfig{MaxOpenConns: 1, MaxIdleConns: 1}
	database, err := db.Open(sqlite.Open("file::memory:?_foreign_keys=off"), cfg, "ERROR")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(context.Background()))

	t.Cleanup(func() {
		_ = database.Close()
	})
	return database
}

// Repo returns a pool-bound repository over a fresh database
func Repo(t testing.TB) *db.Repository {
	t.Helper()
	return db.NewRepository(New(t).DB)
}

// SeedUser creates a user with a unique username and the given business score
func SeedUser(t testing.TB, repo *db.Repository, name string, score float64) *models.User {
	t.Helper()
	n := atomic.AddInt64(&seq, 1)
	user := &models.User{
		Username:      fmt.Sprintf("%s%d", name, n),
		Email:         fmt.Sprintf("%s%d@example.com", name, n),
		DisplayName:   name,
		BusinessScore: score,
	}
	require.NoError(t, db.NewUserRepository(repo).Create(context.Background(), user))
	return user
}

// SeedPost creates a post by userID. A zero createdAt means now. Timestamps
// are stored in UTC so SQLite's text ordering matches time ordering.
func SeedPost(t testing.TB, repo *db.Repository, userID int64, content string, createdAt time.Time) *models.Post {
	t.Helper()
	createdAt = createdAt.UTC()
	post := &models.Post{UserID: userID, Content: content, CreatedAt: createdAt, UpdatedAt: createdAt}
	require.NoError(t, db.NewPostRepository(repo).Create(context.Background(), post))
	return post
}

// SeedComment creates a comment without touching post counters
func SeedComment(t testing.TB, repo *db.Repository, postID, userID int64, content string, createdAt time.Time) *models.Comment {
	t.Helper()
	createdAt = createdAt.UTC()
	comment := &models.Comment{PostID: postID, UserID: userID, Content: content, CreatedAt: createdAt, UpdatedAt: createdAt}
	require.NoError(t, db.NewCommentRepository(repo).Create(context.Background(), comment))
	return comment
}

// SeedConnection creates a connection row directly. A non-nil updatedAt marks
// a state change at that time.
func SeedConnection(t testing.TB, repo *db.Repository, requesterID, receiverID int64, status models.ConnectionStatus, createdAt time.Time, updatedAt *time.Time) *models.Connection {
	t.Helper()
	if updatedAt != nil {
		at := updatedAt.UTC()
		updatedAt = &at
	}
	conn := &models.Connection{
		RequesterID: requesterID,
		ReceiverID:  receiverID,
		Status:      status,
		CreatedAt:   createdAt.UTC(),
		UpdatedAt:   updatedAt,
	}
	inserted, err := db.NewConnectionRepository(repo).Insert(context.Background(), conn)
	require.NoError(t, err)
	require.True(t, inserted, "connection pair already exists")
	return conn
}
