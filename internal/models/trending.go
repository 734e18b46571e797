package models

import (
	"time"
)

// TrendingTopic is one row per tag, refreshed by upsert
type TrendingTopic struct {
	ID          int64     `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Tag         string    `gorm:"type:varchar(32);not null;uniqueIndex:trending_topics_tag_ux;column:tag" json:"tag"`
	Count       int64     `gorm:"not null;default:0;column:count" json:"count"`
	GrowthRate  float64   `gorm:"not null;default:0;column:growth_rate" json:"growthRate"`
	LastUpdated time.Time `gorm:"not null;column:last_updated" json:"lastUpdated"`
}

// TableName specifies the table name for TrendingTopic
func (TrendingTopic) TableName() string {
	return "trending_topics"
}

// All returns every model for migrations
func All() []interface{} {
	return []interface{}{
		&User{},
		&Post{},
		&Like{},
		&Comment{},
		&Connection{},
		&Notification{},
		&AnalyticsEvent{},
		&TrendingTopic{},
		&BusinessMetric{},
	}
}
