package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apisocial "github.com/bizmesh/bizmesh/internal/api/social"
	"github.com/bizmesh/bizmesh/internal/cache"
	"github.com/bizmesh/bizmesh/internal/db"
	"github.com/bizmesh/bizmesh/internal/social"
	"github.com/bizmesh/bizmesh/pkg/config"
	"github.com/bizmesh/bizmesh/pkg/logging"
)

// RequestIDKey is the gin context key holding the request id
const RequestIDKey = "request_id"

// RequestIDHeader carries the request id in and out
const RequestIDHeader = "X-Request-ID"

// Router sets up API routes
type Router struct {
	handler  *JSONRPCHandler
	db       *db.DB
	cache    *cache.Cache
	services *social.Services
	cfg      *config.Config
	logger   *zap.Logger
}

// NewRouter creates a new API router
func NewRouter(cfg *config.Config, database *db.DB, redisCache *cache.Cache, services *social.Services) *Router {
	router := &Router{
		handler:  NewJSONRPCHandler(),
		db:       database,
		cache:    redisCache,
		services: services,
		cfg:      cfg,
		logger:   logging.WithComponent("api-router"),
	}

	router.registerMethods()

	return router
}

// SetupRoutes sets up all API routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	engine.Use(requestID(), cors.New(r.corsConfig()), viewer())

	engine.GET("/health", r.healthHandler)
	engine.GET("/.well-known/healthcheck.json", r.healthHandler)

	engine.POST("/", r.handler.Handle)
}

func (r *Router) corsConfig() cors.Config {
	cfg := cors.DefaultConfig()
	origins := r.cfg.Server.CORSOrigins
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AllowHeaders = append(cfg.AllowHeaders, apisocial.ViewerHeader, RequestIDHeader)
	cfg.ExposeHeaders = []string{RequestIDHeader}
	return cfg
}

// registerMethods registers all API methods
func (r *Router) registerMethods() {
	socialCfg := r.cfg.Social

	connections := apisocial.NewConnectionAPI(r.services, socialCfg)
	r.handler.RegisterMethod("social.create_connection", connections.CreateConnection)
	r.handler.RegisterMethod("social.update_connection_status", connections.UpdateConnectionStatus)
	r.handler.RegisterMethod("social.delete_connection", connections.DeleteConnection)
	r.handler.RegisterMethod("social.list_connections", connections.ListConnections)

	engagement := apisocial.NewEngagementAPI(r.services, socialCfg)
	r.handler.RegisterMethod("social.like", engagement.Like)
	r.handler.RegisterMethod("social.unlike", engagement.Unlike)
	r.handler.RegisterMethod("social.is_liked", engagement.IsLiked)
	r.handler.RegisterMethod("social.share", engagement.Share)
	r.handler.RegisterMethod("social.add_comment", engagement.AddComment)
	r.handler.RegisterMethod("social.delete_comment", engagement.DeleteComment)
	r.handler.RegisterMethod("social.list_comments", engagement.ListComments)

	notifications := apisocial.NewNotificationAPI(r.services, socialCfg)
	r.handler.RegisterMethod("social.list_notifications", notifications.ListNotifications)
	r.handler.RegisterMethod("social.mark_notification_read", notifications.MarkNotificationRead)
	r.handler.RegisterMethod("social.mark_all_notifications_read", notifications.MarkAllNotificationsRead)
	r.handler.RegisterMethod("social.unread_notifications", notifications.UnreadNotifications)

	discovery := apisocial.NewDiscoveryAPI(r.services, socialCfg)
	r.handler.RegisterMethod("social.get_trending_topics", discovery.GetTrendingTopics)
	r.handler.RegisterMethod("social.upsert_trending_topic", discovery.UpsertTrendingTopic)
	r.handler.RegisterMethod("social.get_suggestions", discovery.GetSuggestions)
	r.handler.RegisterMethod("social.get_activity_feed", discovery.GetActivityFeed)
	r.handler.RegisterMethod("social.get_business_metrics", discovery.GetBusinessMetrics)
	r.handler.RegisterMethod("social.record_profile_view", discovery.RecordProfileView)
}

// requestID tags each request with an id, reusing the caller's when present
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// viewer resolves the acting user for this request only
func viewer() gin.HandlerFunc {
	return func(c *gin.Context) {
		apisocial.ParseViewer(c)
		c.Next()
	}
}

// healthHandler handles health check requests
func (r *Router) healthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := gin.H{}

	if err := r.db.Health(ctx); err != nil {
		r.logger.Error("Database health check failed", zap.Error(err))
		checks["database"] = err.Error()
		status = http.StatusServiceUnavailable
	} else {
		checks["database"] = "ok"
	}

	switch err := r.cache.Health(ctx); {
	case err == nil:
		checks["cache"] = "ok"
	case errors.Is(err, cache.ErrCacheDisabled):
		checks["cache"] = "disabled"
	default:
		r.logger.Warn("Cache health check failed", zap.Error(err))
		checks["cache"] = err.Error()
	}

	body := gin.H{
		"status":  "OK",
		"service": "bizmesh-api",
		"checks":  checks,
	}
	if status != http.StatusOK {
		body["status"] = "DEGRADED"
	}
	c.JSON(status, body)
}
