package social

import (
	"encoding/json"

	"github.com/gin-gonic/gin"

	core "github.com/bizmesh/bizmesh/internal/social"
	"github.com/bizmesh/bizmesh/pkg/config"
)

// DiscoveryAPI provides trending topics, suggestions, the activity feed and
// business metrics
type DiscoveryAPI struct {
	services *core.Services
	cfg      config.SocialConfig
}

// NewDiscoveryAPI creates a new discovery API
func NewDiscoveryAPI(services *core.Services, cfg config.SocialConfig) *DiscoveryAPI {
	return &DiscoveryAPI{services: services, cfg: cfg}
}

type limitParams struct {
	UserID int64 `json:"user_id"`
	Limit  int   `json:"limit"`
}

// GetTrendingTopics handles social.get_trending_topics
func (a *DiscoveryAPI) GetTrendingTopics(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p limitParams
	if err := bind(params, &p); err != nil {
		return nil, err
	}
	return a.services.Trending.List(c.Request.Context(), a.cfg.ClampLimit(p.Limit))
}

// UpsertTrendingTopic handles social.upsert_trending_topic
func (a *DiscoveryAPI) UpsertTrendingTopic(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		Tag        string  `json:"tag"`
		Count      int64   `json:"count"`
		GrowthRate float64 `json:"growth_rate"`
	}
	if err := bind(params, &p); err != nil {
		return nil, err
	}
	return a.services.Trending.Upsert(c.Request.Context(), p.Tag, p.Count, p.GrowthRate)
}

// GetSuggestions handles social.get_suggestions
func (a *DiscoveryAPI) GetSuggestions(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p limitParams
	if err := bind(params, &p); err != nil {
		return nil, err
	}
	viewer, err := Viewer(c)
	if err != nil {
		return nil, err
	}
	return a.services.Suggestions.Suggest(c.Request.Context(), viewer, a.cfg.ClampLimit(p.Limit))
}

// GetActivityFeed handles social.get_activity_feed
func (a *DiscoveryAPI) GetActivityFeed(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p limitParams
	if err := bind(params, &p); err != nil {
		return nil, err
	}
	userID, err := userOrViewer(c, p.UserID)
	if err != nil {
		return nil, err
	}
	return a.services.Feed.ActivityFeed(c.Request.Context(), userID, a.cfg.ClampLimit(p.Limit))
}

// GetBusinessMetrics handles social.get_business_metrics. With refresh set
// the derived fields are recomputed first.
func (a *DiscoveryAPI) GetBusinessMetrics(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		Refresh bool `json:"refresh"`
	}
	if err := bind(params, &p); err != nil {
		return nil, err
	}
	viewer, err := Viewer(c)
	if err != nil {
		return nil, err
	}

	if p.Refresh {
		return a.services.Metrics.Refresh(c.Request.Context(), viewer)
	}
	return a.services.Metrics.Get(c.Request.Context(), viewer)
}

// RecordProfileView handles social.record_profile_view
func (a *DiscoveryAPI) RecordProfileView(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		UserID int64 `json:"user_id"`
	}
	if err := bind(params, &p); err != nil {
		return nil, err
	}
	if err := requireID("user_id", p.UserID); err != nil {
		return nil, err
	}
	viewer, err := Viewer(c)
	if err != nil {
		return nil, err
	}

	counted, err := a.services.Metrics.RecordProfileView(c.Request.Context(), viewer, p.UserID)
	if err != nil {
		return nil, err
	}
	return gin.H{"counted": counted}, nil
}
