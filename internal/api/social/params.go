// Package social exposes the engagement and social-graph core as JSON-RPC
// methods. Params are JSON objects; the acting user comes from the request.
package social

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	core "github.com/bizmesh/bizmesh/internal/social"
)

// ViewerKey is the gin context key holding the acting user's id
const ViewerKey = "viewer_id"

// ViewerHeader carries the acting user's id on each request
const ViewerHeader = "X-User-ID"

// ErrNoViewer is returned by methods that act on behalf of a user when the
// request did not identify one
var ErrNoViewer = errors.New("missing or invalid " + ViewerHeader + " header")

// ParseViewer reads the acting user from the request header into the context.
// Requests without the header stay anonymous.
func ParseViewer(c *gin.Context) {
	raw := c.GetHeader(ViewerHeader)
	if raw == "" {
		return
	}
	if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
		c.Set(ViewerKey, id)
	}
}

// Viewer returns the acting user of the request
func Viewer(c *gin.Context) (int64, error) {
	if v, ok := c.Get(ViewerKey); ok {
		if id, ok := v.(int64); ok {
			return id, nil
		}
	}
	return 0, ErrNoViewer
}

func invalidParams(format string, args ...interface{}) error {
	return &core.Error{Code: core.CodeInvalidOperation, Op: "params", Message: fmt.Sprintf(format, args...)}
}

// bind decodes object params into dest. Missing params leave dest untouched.
func bind(params json.RawMessage, dest interface{}) error {
	if len(params) == 0 || string(params) == "null" {
		return nil
	}
	if err := json.Unmarshal(params, dest); err != nil {
		return invalidParams("invalid parameters: %v", err)
	}
	return nil
}

func requireID(name string, id int64) error {
	if id <= 0 {
		return invalidParams("missing required parameter: %s", name)
	}
	return nil
}

// userOrViewer falls back to the acting user when no user id was passed
func userOrViewer(c *gin.Context, userID int64) (int64, error) {
	if userID > 0 {
		return userID, nil
	}
	return Viewer(c)
}
