package social

import (
	"encoding/json"

	"github.com/gin-gonic/gin"

	"github.com/bizmesh/bizmesh/internal/models"
	core "github.com/bizmesh/bizmesh/internal/social"
	"github.com/bizmesh/bizmesh/pkg/config"
)

// ConnectionAPI provides connection methods
type ConnectionAPI struct {
	connections *core.ConnectionManager
	cfg         config.SocialConfig
}

// NewConnectionAPI creates a new connection API
func NewConnectionAPI(services *core.Services, cfg config.SocialConfig) *ConnectionAPI {
	return &ConnectionAPI{
		connections: services.Connections,
		cfg:         cfg,
	}
}

// CreateConnection handles social.create_connection
func (a *ConnectionAPI) CreateConnection(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		ReceiverID int64 `json:"receiver_id"`
	}
	if err := bind(params, &p); err != nil {
		return nil, err
	}
	if err := requireID("receiver_id", p.ReceiverID); err != nil {
		return nil, err
	}
	viewer, err := Viewer(c)
	if err != nil {
		return nil, err
	}

	return a.connections.Create(c.Request.Context(), viewer, p.ReceiverID)
}

// UpdateConnectionStatus handles social.update_connection_status
func (a *ConnectionAPI) UpdateConnectionStatus(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		ConnectionID int64  `json:"connection_id"`
		Status       string `json:"status"`
	}
	if err := bind(params, &p); err != nil {
		return nil, err
	}
	if err := requireID("connection_id", p.ConnectionID); err != nil {
		return nil, err
	}

	return a.connections.UpdateStatus(c.Request.Context(), p.ConnectionID, models.ConnectionStatus(p.Status))
}

// DeleteConnection handles social.delete_connection
func (a *ConnectionAPI) DeleteConnection(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		ConnectionID int64 `json:"connection_id"`
	}
	if err := bind(params, &p); err != nil {
		return nil, err
	}
	if err := requireID("connection_id", p.ConnectionID); err != nil {
		return nil, err
	}

	deleted, err := a.connections.Delete(c.Request.Context(), p.ConnectionID)
	if err != nil {
		return nil, err
	}
	return gin.H{"deleted": deleted}, nil
}

// ListConnections handles social.list_connections
func (a *ConnectionAPI) ListConnections(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		UserID int64  `json:"user_id"`
		Status string `json:"status"`
		Limit  int    `json:"limit"`
	}
	if err := bind(params, &p); err != nil {
		return nil, err
	}
	userID, err := userOrViewer(c, p.UserID)
	if err != nil {
		return nil, err
	}

	return a.connections.List(c.Request.Context(), userID, models.ConnectionStatus(p.Status), a.cfg.ClampLimit(p.Limit))
}
