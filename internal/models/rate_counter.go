package models

import "time"

// RateCounter is a fixed-window request counter used when rate limits are
// shared through the database.
type RateCounter struct {
	Key       string    `gorm:"column:rate_key;primaryKey;size:191"`
	Count     int64     `gorm:"not null;default:0"`
	ExpiresAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}
