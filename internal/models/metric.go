package models

import (
	"time"
)

// BusinessMetric holds per-user business dashboard numbers, one row per user
type BusinessMetric struct {
	ID              int64     `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	UserID          int64     `gorm:"not null;uniqueIndex:business_metrics_user_ux;column:user_id" json:"userId"`
	ProfileViews    int64     `gorm:"not null;default:0;column:profile_views" json:"profileViews"`
	NetworkGrowth   int64     `gorm:"not null;default:0;column:network_growth" json:"networkGrowth"`
	Opportunities   int64     `gorm:"not null;default:0;column:opportunities" json:"opportunities"`
	EngagementScore float64   `gorm:"not null;default:0;column:engagement_score" json:"engagementScore"`
	LastUpdated     time.Time `gorm:"not null;column:last_updated" json:"lastUpdated"`
}

// TableName specifies the table name for BusinessMetric
func (BusinessMetric) TableName() string {
	return "business_metrics"
}
