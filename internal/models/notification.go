package models

import (
	"database/sql"
	"time"
)

// Notification represents a notification delivered to UserID because ActorID did something
type Notification struct {
	ID         int64          `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	UserID     int64          `gorm:"not null;index:notifications_user_read_ix,priority:1;column:user_id" json:"userId"`
	ActorID    int64          `gorm:"not null;column:actor_id" json:"actorId"`
	Type       string         `gorm:"type:varchar(32);not null;column:type" json:"type"`
	Message    string         `gorm:"type:varchar(512);not null;default:'';column:message" json:"message"`
	TargetID   sql.NullInt64  `gorm:"column:target_id" json:"-"`
	TargetType sql.NullString `gorm:"type:varchar(32);column:target_type" json:"-"`
	Read       bool           `gorm:"not null;default:false;index:notifications_user_read_ix,priority:2;column:read" json:"read"`
	CreatedAt  time.Time      `gorm:"not null;column:created_at" json:"createdAt"`

	// Relationships
	Actor *User `gorm:"foreignKey:ActorID;references:ID" json:"-"`
}

// TableName specifies the table name for Notification
func (Notification) TableName() string {
	return "notifications"
}

// Notification type constants
const (
	NotifyTypeConnection         = "connection"
	NotifyTypeConnectionAccepted = "connection_accepted"
	NotifyTypeLike               = "like"
	NotifyTypeComment            = "comment"
)

// Notification target type constants
const (
	TargetTypeConnection = "connection"
	TargetTypePost       = "post"
	TargetTypeComment    = "comment"
)
