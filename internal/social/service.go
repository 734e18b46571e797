// Package social implements the engagement and social-graph core: connection
// lifecycle, like and comment counters, notifications, trending topics,
// connection suggestions, the activity feed and business metrics.
package social

import (
	"github.com/bizmesh/bizmesh/internal/cache"
	"github.com/bizmesh/bizmesh/internal/db"
	"github.com/bizmesh/bizmesh/pkg/config"
)

// Services bundles the core components sharing one repository and cache
type Services struct {
	Connections *ConnectionManager
	Engagement  *Engagement
	Notifier    *Notifier
	Trending    *Trending
	Refresher   *TrendingRefresher
	Suggestions *Suggestions
	Feed        *Feed
	Metrics     *BusinessMetrics
}

// NewServices wires every component. c may be nil.
func NewServices(repo *db.Repository, c *cache.Cache, cfg config.SocialConfig) *Services {
	notifier := NewNotifier(repo)
	suggestions := NewSuggestions(repo, c, cfg.SuggestionCacheTTL)
	trending := NewTrending(repo, c, cfg.TrendingCacheTTL)

	return &Services{
		Connections: NewConnectionManager(repo, notifier, suggestions),
		Engagement:  NewEngagement(repo, notifier),
		Notifier:    notifier,
		Trending:    trending,
		Refresher:   NewTrendingRefresher(repo, trending, cfg.TrendingWindow),
		Suggestions: suggestions,
		Feed:        NewFeed(repo),
		Metrics:     NewBusinessMetrics(repo),
	}
}
