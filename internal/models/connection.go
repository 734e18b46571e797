package models

import (
	"time"

	"gorm.io/gorm"
)

// ConnectionStatus is the state of a connection request
type ConnectionStatus string

// Connection status constants
const (
	ConnectionPending  ConnectionStatus = "pending"
	ConnectionAccepted ConnectionStatus = "accepted"
	ConnectionRejected ConnectionStatus = "rejected"
	ConnectionBlocked  ConnectionStatus = "blocked"
)

// Valid reports whether s is a known status
func (s ConnectionStatus) Valid() bool {
	switch s {
	case ConnectionPending, ConnectionAccepted, ConnectionRejected, ConnectionBlocked:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed out of s
func (s ConnectionStatus) Terminal() bool {
	return s != ConnectionPending
}

// Connection is a request from one user to another. PairLow/PairHigh hold the
// participants in sorted order so the unique index covers both directions.
type Connection struct {
	ID          int64            `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	RequesterID int64            `gorm:"not null;index:connections_requester_ix;column:requester_id" json:"requesterId"`
	ReceiverID  int64            `gorm:"not null;index:connections_receiver_ix;column:receiver_id" json:"receiverId"`
	Status      ConnectionStatus `gorm:"type:varchar(16);not null;default:'pending';column:status" json:"status"`
	PairLow     int64            `gorm:"not null;uniqueIndex:connections_pair_ux,priority:1;column:pair_low" json:"-"`
	PairHigh    int64            `gorm:"not null;uniqueIndex:connections_pair_ux,priority:2;column:pair_high" json:"-"`
	CreatedAt   time.Time        `gorm:"not null;column:created_at" json:"createdAt"`
	// Nil until the first status change
	UpdatedAt *time.Time `gorm:"autoUpdateTime:false;column:updated_at" json:"updatedAt,omitempty"`
}

// TableName specifies the table name for Connection
func (Connection) TableName() string {
	return "connections"
}

// BeforeCreate normalizes the unordered pair key
func (c *Connection) BeforeCreate(tx *gorm.DB) error {
	c.PairLow, c.PairHigh = OrderedPair(c.RequesterID, c.ReceiverID)
	if c.Status == "" {
		c.Status = ConnectionPending
	}
	return nil
}

// EffectiveAt is the time of the last state change
func (c *Connection) EffectiveAt() time.Time {
	if c.UpdatedAt != nil && !c.UpdatedAt.IsZero() {
		return *c.UpdatedAt
	}
	return c.CreatedAt
}

// Other returns the participant that is not userID
func (c *Connection) Other(userID int64) int64 {
	if c.RequesterID == userID {
		return c.ReceiverID
	}
	return c.RequesterID
}

// OrderedPair returns a and b in ascending order
func OrderedPair(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}
