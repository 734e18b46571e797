package models

import (
	"time"
)

// User represents a member of the network, usually a small business or its owner
type User struct {
	ID          int64  `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Username    string `gorm:"type:varchar(32);not null;uniqueIndex:users_username_ux;column:username" json:"username"`
	Email       string `gorm:"type:varchar(255);not null;uniqueIndex:users_email_ux;column:email" json:"-"`
	DisplayName string `gorm:"type:varchar(64);not null;default:'';column:display_name" json:"displayName"`
	Headline    string `gorm:"type:varchar(160);not null;default:'';column:headline" json:"headline"`
	Company     string `gorm:"type:varchar(100);not null;default:'';column:company" json:"company"`
	Industry    string `gorm:"type:varchar(64);not null;default:'';column:industry" json:"industry"`
	Location    string `gorm:"type:varchar(64);not null;default:'';column:location" json:"location"`
	AvatarURL   string `gorm:"type:varchar(1024);not null;default:'';column:avatar_url" json:"avatarUrl"`

	// Derived from accepted connections
	Connections int64 `gorm:"not null;default:0;column:connections" json:"connections"`
	// Supplied by the profile scoring flow
	BusinessScore float64 `gorm:"not null;default:0;index:users_business_score_ix;column:business_score" json:"businessScore"`

	CreatedAt time.Time `gorm:"not null;column:created_at" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;column:updated_at" json:"updatedAt"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// PublicProfile is the subset of a user that other members may see
type PublicProfile struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Headline    string `json:"headline"`
	Company     string `json:"company"`
	AvatarURL   string `json:"avatarUrl"`
}

// Public returns the user's public profile fields
func (u *User) Public() *PublicProfile {
	if u == nil {
		return nil
	}
	return &PublicProfile{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Headline:    u.Headline,
		Company:     u.Company,
		AvatarURL:   u.AvatarURL,
	}
}

// Name returns the display name, falling back to the username
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}
