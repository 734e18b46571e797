package social

import (
	"context"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bizmesh/bizmesh/internal/db"
	"github.com/bizmesh/bizmesh/internal/models"
	"github.com/bizmesh/bizmesh/pkg/telemetry"
)

// FeedItemType tags the origin stream of a feed item
type FeedItemType string

// Feed item types
const (
	FeedItemPost       FeedItemType = "post"
	FeedItemComment    FeedItemType = "comment"
	FeedItemConnection FeedItemType = "connection"
)

// FeedItem is one entry of the activity feed. Exactly one of Post, Comment
// and Connection is set, matching Type.
type FeedItem struct {
	Type       FeedItemType       `json:"type"`
	Timestamp  time.Time          `json:"timestamp"`
	Post       *models.Post       `json:"post,omitempty"`
	Comment    *models.Comment    `json:"comment,omitempty"`
	Connection *models.Connection `json:"connection,omitempty"`
}

// Feed merges a user's posts, comments and accepted connections
type Feed struct {
	repo *db.Repository
}

// NewFeed creates the activity feed aggregator
func NewFeed(repo *db.Repository) *Feed {
	return &Feed{repo: repo}
}

// ActivityFeed returns up to limit items newest first. Each stream is capped
// at limit before merging, so one busy stream can push the others out
// entirely; the result is not a global top-limit across streams.
func (f *Feed) ActivityFeed(ctx context.Context, userID int64, limit int) ([]FeedItem, error) {
	ctx, span := telemetry.StartSpan(ctx, "social.feed.activity")
	defer span.End()

	var (
		posts    []*models.Post
		comments []*models.Comment
		conns    []*models.Connection
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		posts, err = db.NewPostRepository(f.repo).ListByUser(gctx, userID, limit)
		if err != nil {
			return fmt.Errorf("failed to load posts: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		comments, err = db.NewCommentRepository(f.repo).ListByUser(gctx, userID, limit)
		if err != nil {
			return fmt.Errorf("failed to load comments: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		conns, err = db.NewConnectionRepository(f.repo).ListForUser(gctx, userID, models.ConnectionAccepted, limit)
		if err != nil {
			return fmt.Errorf("failed to load connections: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	items := make([]FeedItem, 0, len(posts)+len(comments)+len(conns))
	for _, p := range posts {
		items = append(items, FeedItem{Type: FeedItemPost, Timestamp: p.CreatedAt, Post: p})
	}
	for _, c := range comments {
		items = append(items, FeedItem{Type: FeedItemComment, Timestamp: c.CreatedAt, Comment: c})
	}
	for _, c := range conns {
		items = append(items, FeedItem{Type: FeedItemConnection, Timestamp: c.EffectiveAt(), Connection: c})
	}

	return mergeFeed(items, limit), nil
}

// mergeFeed sorts items newest first and truncates to limit. Equal timestamps
// keep their input order.
func mergeFeed(items []FeedItem, limit int) []FeedItem {
	slices.SortStableFunc(items, func(a, b FeedItem) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	if limit >= 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
