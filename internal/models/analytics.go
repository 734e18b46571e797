package models

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// Analytics event type constants
const (
	EventConnectionMade = "connection_made"
	EventProfileView    = "profile_view"
	EventPostShared     = "post_shared"
)

// EventData is the payload of an analytics event. Which fields are set depends
// on the event type; Validate enforces the shape per type.
type EventData struct {
	OtherUserID int64 `json:"otherUserId,omitempty"`
	ViewerID    int64 `json:"viewerId,omitempty"`
	PostID      int64 `json:"postId,omitempty"`
}

// Validate checks that data carries the fields required by eventType
func (d EventData) Validate(eventType string) error {
	switch eventType {
	case EventConnectionMade:
		if d.OtherUserID == 0 {
			return fmt.Errorf("%s event requires otherUserId", eventType)
		}
	case EventProfileView:
		if d.ViewerID == 0 {
			return fmt.Errorf("%s event requires viewerId", eventType)
		}
	case EventPostShared:
		if d.PostID == 0 {
			return fmt.Errorf("%s event requires postId", eventType)
		}
	default:
		return fmt.Errorf("unknown analytics event type %q", eventType)
	}
	return nil
}

// AnalyticsEvent is an append-only log entry
type AnalyticsEvent struct {
	ID        int64                         `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	UserID    int64                         `gorm:"not null;index:analytics_user_type_ix,priority:1;column:user_id" json:"userId"`
	EventType string                        `gorm:"type:varchar(32);not null;index:analytics_user_type_ix,priority:2;column:event_type" json:"eventType"`
	Data      datatypes.JSONType[EventData] `gorm:"column:data" json:"data"`
	CreatedAt time.Time                     `gorm:"not null;column:created_at" json:"createdAt"`
}

// TableName specifies the table name for AnalyticsEvent
func (AnalyticsEvent) TableName() string {
	return "analytics_events"
}

// NewAnalyticsEvent builds a validated event
func NewAnalyticsEvent(userID int64, eventType string, data EventData) (*AnalyticsEvent, error) {
	if err := data.Validate(eventType); err != nil {
		return nil, err
	}
	return &AnalyticsEvent{
		UserID:    userID,
		EventType: eventType,
		Data:      datatypes.NewJSONType(data),
	}, nil
}
