package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/bizmesh/bizmesh/internal/db"
	"github.com/bizmesh/bizmesh/internal/db/dbtest"
	"github.com/bizmesh/bizmesh/internal/models"
	"github.com/bizmesh/bizmesh/internal/social"
	"github.com/bizmesh/bizmesh/pkg/config"
)

type rpcResult struct {
	Result json.RawMessage `json:"result"`
	Error  *JSONRPCError   `json:"error"`
}

type testServer struct {
	engine *gin.Engine
	repo   *db.Repository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	database := dbtest.New(t)
	repo := db.NewRepository(database.DB)
	cfg := &config.Config{
		Server: config.ServerConfig{CORSOrigins: []string{"*"}},
		Social: config.SocialConfig{
			DefaultLimit:   20,
			MaxLimit:       100,
			TrendingWindow: time.Hour,
		},
	}

	engine := gin.New()
	NewRouter(cfg, database, nil, social.NewServices(repo, nil, cfg.Social)).SetupRoutes(engine)
	return &testServer{engine: engine, repo: repo}
}

func (s *testServer) call(t *testing.T, viewer int64, method string, params interface{}) rpcResult {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
		"params":  params,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if viewer > 0 {
		req.Header.Set("X-User-ID", strconv.FormatInt(viewer, 10))
	}
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	var out rpcResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestJSONRPC_Protocol(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{not json`))
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	var out rpcResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Equal(t, ErrParseError, out.Error.Code)

	res := s.call(t, 0, "social.nope", nil)
	require.Equal(t, ErrMethodNotFound, res.Error.Code)
}

func TestConnectionFlow(t *testing.T) {
	s := newTestServer(t)
	a := dbtest.SeedUser(t, s.repo, "a", 0)
	b := dbtest.SeedUser(t, s.repo, "b", 0)

	res := s.call(t, 0, "social.create_connection", map[string]int64{"receiver_id": b.ID})
	require.Equal(t, ErrUnauthorized, res.Error.Code)

	res = s.call(t, a.ID, "social.create_connection", map[string]int64{"receiver_id": a.ID})
	require.Equal(t, ErrInvalidParams, res.Error.Code)

	res = s.call(t, a.ID, "social.create_connection", map[string]int64{"receiver_id": b.ID})
	require.Nil(t, res.Error)
	var conn models.Connection
	require.NoError(t, json.Unmarshal(res.Result, &conn))
	require.Equal(t, models.ConnectionPending, conn.Status)

	res = s.call(t, b.ID, "social.create_connection", map[string]int64{"receiver_id": a.ID})
	require.Equal(t, ErrConflict, res.Error.Code)

	res = s.call(t, b.ID, "social.update_connection_status", map[string]interface{}{"connection_id": conn.ID, "status": "accepted"})
	require.Nil(t, res.Error)

	res = s.call(t, b.ID, "social.update_connection_status", map[string]interface{}{"connection_id": conn.ID + 50, "status": "accepted"})
	require.Equal(t, ErrNotFound, res.Error.Code)

	res = s.call(t, a.ID, "social.unread_notifications", nil)
	require.Nil(t, res.Error)
	require.JSONEq(t, `{"unread":1}`, string(res.Result))

	res = s.call(t, a.ID, "social.delete_connection", map[string]int64{"connection_id": conn.ID})
	require.Nil(t, res.Error)
	require.JSONEq(t, `{"deleted":true}`, string(res.Result))

	res = s.call(t, a.ID, "social.delete_connection", map[string]int64{"connection_id": conn.ID})
	require.Nil(t, res.Error)
	require.JSONEq(t, `{"deleted":false}`, string(res.Result))
}

func TestEngagementFlow(t *testing.T) {
	s := newTestServer(t)
	owner := dbtest.SeedUser(t, s.repo, "owner", 0)
	fan := dbtest.SeedUser(t, s.repo, "fan", 0)
	post := dbtest.SeedPost(t, s.repo, owner.ID, "hello #smallbiz", time.Time{})

	res := s.call(t, fan.ID, "social.like", map[string]int64{"post_id": post.ID})
	require.Nil(t, res.Error)
	require.JSONEq(t, `{"liked":true}`, string(res.Result))

	res = s.call(t, fan.ID, "social.like", map[string]int64{"post_id": post.ID})
	require.Nil(t, res.Error)
	require.JSONEq(t, `{"liked":false}`, string(res.Result))

	res = s.call(t, fan.ID, "social.like", map[string]int64{"post_id": post.ID + 10})
	require.Equal(t, ErrNotFound, res.Error.Code)

	res = s.call(t, 0, "social.is_liked", map[string]int64{"post_id": post.ID, "user_id": fan.ID})
	require.Nil(t, res.Error)
	require.JSONEq(t, `{"liked":true}`, string(res.Result))

	res = s.call(t, fan.ID, "social.add_comment", map[string]interface{}{"post_id": post.ID, "content": "nice"})
	require.Nil(t, res.Error)

	res = s.call(t, fan.ID, "social.add_comment", map[string]interface{}{"post_id": post.ID})
	require.Equal(t, ErrInvalidParams, res.Error.Code)

	res = s.call(t, owner.ID, "social.list_notifications", map[string]interface{}{"read": false})
	require.Nil(t, res.Error)
	var notifications []map[string]interface{}
	require.NoError(t, json.Unmarshal(res.Result, &notifications))
	require.Len(t, notifications, 2)
	require.Equal(t, "comment", notifications[0]["type"])
	actor := notifications[0]["actor"].(map[string]interface{})
	require.Equal(t, fan.Username, actor["username"])

	res = s.call(t, owner.ID, "social.mark_all_notifications_read", nil)
	require.Nil(t, res.Error)
	require.JSONEq(t, `{"updated":2}`, string(res.Result))

	res = s.call(t, 0, "social.list_comments", map[string]int64{"post_id": post.ID})
	require.Nil(t, res.Error)
	var comments []models.Comment
	require.NoError(t, json.Unmarshal(res.Result, &comments))
	require.Len(t, comments, 1)
}

func TestDiscoveryMethods(t *testing.T) {
	s := newTestServer(t)
	me := dbtest.SeedUser(t, s.repo, "me", 1)
	other := dbtest.SeedUser(t, s.repo, "other", 9)

	for _, topic := range []map[string]interface{}{
		{"tag": "a", "count": 10, "growth_rate": 5},
		{"tag": "b", "count": 20, "growth_rate": 5},
		{"tag": "c", "count": 100, "growth_rate": 3},
	} {
		res := s.call(t, me.ID, "social.upsert_trending_topic", topic)
		require.Nil(t, res.Error)
	}

	res := s.call(t, 0, "social.get_trending_topics", map[string]int{"limit": 2})
	require.Nil(t, res.Error)
	var topics []models.TrendingTopic
	require.NoError(t, json.Unmarshal(res.Result, &topics))
	require.Len(t, topics, 2)
	require.Equal(t, "b", topics[0].Tag)
	require.Equal(t, "a", topics[1].Tag)

	res = s.call(t, me.ID, "social.get_suggestions", nil)
	require.Nil(t, res.Error)
	var users []models.User
	require.NoError(t, json.Unmarshal(res.Result, &users))
	require.Len(t, users, 1)
	require.Equal(t, other.ID, users[0].ID)

	res = s.call(t, other.ID, "social.record_profile_view", map[string]int64{"user_id": me.ID})
	require.Nil(t, res.Error)
	require.JSONEq(t, `{"counted":true}`, string(res.Result))

	res = s.call(t, me.ID, "social.get_business_metrics", map[string]bool{"refresh": true})
	require.Nil(t, res.Error)
	var metric models.BusinessMetric
	require.NoError(t, json.Unmarshal(res.Result, &metric))
	require.Equal(t, int64(1), metric.ProfileViews)

	res = s.call(t, me.ID, "social.get_activity_feed", map[string]int{"limit": 5})
	require.Nil(t, res.Error)
	require.JSONEq(t, `[]`, string(res.Result))
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	checks := body["checks"].(map[string]interface{})
	require.Equal(t, "ok", checks["database"])
	require.Equal(t, "disabled", checks["cache"])
}

func TestToAPIError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"not found", social.ErrNotFound, ErrNotFound},
		{"conflict", social.ErrConflict, ErrConflict},
		{"invalid", social.ErrInvalidOperation, ErrInvalidParams},
		{"api error", NewError(ErrInternalError, "x"), ErrInternalError},
		{"unexpected", json.Unmarshal([]byte("{"), &struct{}{}), ErrServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := toAPIError(tt.err).Code; got != tt.expected {
				t.Errorf("toAPIError() code = %d, want %d", got, tt.expected)
			}
		})
	}
}
