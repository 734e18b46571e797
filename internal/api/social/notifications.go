package social

import (
	"encoding/json"

	"github.com/gin-gonic/gin"

	core "github.com/bizmesh/bizmesh/internal/social"
	"github.com/bizmesh/bizmesh/pkg/config"
)

// NotificationAPI provides the viewer's notification methods
type NotificationAPI struct {
	notifier *core.Notifier
	cfg      config.SocialConfig
}

// NewNotificationAPI creates a new notification API
func NewNotificationAPI(services *core.Services, cfg config.SocialConfig) *NotificationAPI {
	return &NotificationAPI{notifier: services.Notifier, cfg: cfg}
}

// ListNotifications handles social.list_notifications
func (a *NotificationAPI) ListNotifications(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		Read  *bool `json:"read"`
		Limit int   `json:"limit"`
	}
	if err := bind(params, &p); err != nil {
		return nil, err
	}
	viewer, err := Viewer(c)
	if err != nil {
		return nil, err
	}

	return a.notifier.List(c.Request.Context(), viewer, p.Read, a.cfg.ClampLimit(p.Limit))
}

// MarkNotificationRead handles social.mark_notification_read
func (a *NotificationAPI) MarkNotificationRead(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		NotificationID int64 `json:"notification_id"`
	}
	if err := bind(params, &p); err != nil {
		return nil, err
	}
	if err := requireID("notification_id", p.NotificationID); err != nil {
		return nil, err
	}
	viewer, err := Viewer(c)
	if err != nil {
		return nil, err
	}

	updated, err := a.notifier.MarkRead(c.Request.Context(), viewer, p.NotificationID)
	if err != nil {
		return nil, err
	}
	return gin.H{"updated": updated}, nil
}

// MarkAllNotificationsRead handles social.mark_all_notifications_read
func (a *NotificationAPI) MarkAllNotificationsRead(c *gin.Context, params json.RawMessage) (interface{}, error) {
	viewer, err := Viewer(c)
	if err != nil {
		return nil, err
	}
	updated, err := a.notifier.MarkAllRead(c.Request.Context(), viewer)
	if err != nil {
		return nil, err
	}
	return gin.H{"updated": updated}, nil
}

// UnreadNotifications handles social.unread_notifications
func (a *NotificationAPI) UnreadNotifications(c *gin.Context, params json.RawMessage) (interface{}, error) {
	viewer, err := Viewer(c)
	if err != nil {
		return nil, err
	}
	count, err := a.notifier.UnreadCount(c.Request.Context(), viewer)
	if err != nil {
		return nil, err
	}
	return gin.H{"unread": count}, nil
}
