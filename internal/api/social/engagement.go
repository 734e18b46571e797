package social

import (
	"encoding/json"

	"github.com/gin-gonic/gin"

	"github.com/bizmesh/bizmesh/internal/models"
	core "github.com/bizmesh/bizmesh/internal/social"
	"github.com/bizmesh/bizmesh/pkg/config"
)

// EngagementAPI provides like, comment and share methods
type EngagementAPI struct {
	engagement *core.Engagement
	cfg        config.SocialConfig
}

// NewEngagementAPI creates a new engagement API
func NewEngagementAPI(services *core.Services, cfg config.SocialConfig) *EngagementAPI {
	return &EngagementAPI{engagement: services.Engagement, cfg: cfg}
}

type postParams struct {
	PostID int64 `json:"post_id"`
	UserID int64 `json:"user_id"`
}

func (a *EngagementAPI) postAndViewer(c *gin.Context, params json.RawMessage) (int64, int64, error) {
	var p postParams
	if err := bind(params, &p); err != nil {
		return 0, 0, err
	}
	if err := requireID("post_id", p.PostID); err != nil {
		return 0, 0, err
	}
	viewer, err := Viewer(c)
	if err != nil {
		return 0, 0, err
	}
	return p.PostID, viewer, nil
}

// Like handles social.like
func (a *EngagementAPI) Like(c *gin.Context, params json.RawMessage) (interface{}, error) {
	postID, viewer, err := a.postAndViewer(c, params)
	if err != nil {
		return nil, err
	}
	liked, err := a.engagement.Like(c.Request.Context(), postID, viewer)
	if err != nil {
		return nil, err
	}
	return gin.H{"liked": liked}, nil
}

// Unlike handles social.unlike
func (a *EngagementAPI) Unlike(c *gin.Context, params json.RawMessage) (interface{}, error) {
	postID, viewer, err := a.postAndViewer(c, params)
	if err != nil {
		return nil, err
	}
	unliked, err := a.engagement.Unlike(c.Request.Context(), postID, viewer)
	if err != nil {
		return nil, err
	}
	return gin.H{"unliked": unliked}, nil
}

// IsLiked handles social.is_liked
func (a *EngagementAPI) IsLiked(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p postParams
	if err := bind(params, &p); err != nil {
		return nil, err
	}
	if err := requireID("post_id", p.PostID); err != nil {
		return nil, err
	}
	userID, err := userOrViewer(c, p.UserID)
	if err != nil {
		return nil, err
	}

	liked, err := a.engagement.IsLiked(c.Request.Context(), p.PostID, userID)
	if err != nil {
		return nil, err
	}
	return gin.H{"liked": liked}, nil
}

// Share handles social.share
func (a *EngagementAPI) Share(c *gin.Context, params json.RawMessage) (interface{}, error) {
	postID, viewer, err := a.postAndViewer(c, params)
	if err != nil {
		return nil, err
	}
	if err := a.engagement.Share(c.Request.Context(), postID, viewer); err != nil {
		return nil, err
	}
	return gin.H{"shared": true}, nil
}

// AddComment handles social.add_comment
func (a *EngagementAPI) AddComment(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		PostID  int64  `json:"post_id"`
		Content string `json:"content"`
	}
	if err := bind(params, &p); err != nil {
		return nil, err
	}
	if err := requireID("post_id", p.PostID); err != nil {
		return nil, err
	}
	viewer, err := Viewer(c)
	if err != nil {
		return nil, err
	}

	return a.engagement.AddComment(c.Request.Context(), &models.Comment{
		PostID:  p.PostID,
		UserID:  viewer,
		Content: p.Content,
	})
}

// DeleteComment handles social.delete_comment
func (a *EngagementAPI) DeleteComment(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		CommentID int64 `json:"comment_id"`
	}
	if err := bind(params, &p); err != nil {
		return nil, err
	}
	if err := requireID("comment_id", p.CommentID); err != nil {
		return nil, err
	}

	deleted, err := a.engagement.DeleteComment(c.Request.Context(), p.CommentID)
	if err != nil {
		return nil, err
	}
	return gin.H{"deleted": deleted}, nil
}

// ListComments handles social.list_comments
func (a *EngagementAPI) ListComments(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		PostID int64 `json:"post_id"`
		Limit  int   `json:"limit"`
	}
	if err := bind(params, &p); err != nil {
		return nil, err
	}
	if err := requireID("post_id", p.PostID); err != nil {
		return nil, err
	}

	return a.engagement.ListComments(c.Request.Context(), p.PostID, a.cfg.ClampLimit(p.Limit))
}
