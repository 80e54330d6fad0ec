package domain

import "time"

// RateLimitRecord is one admitted request. Rows are purged once they fall
// outside the longest configured window.
type RateLimitRecord struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Identifier string    `gorm:"type:text;not null;index:idx_rate_limit_lookup,priority:1" json:"identifier"`
	Endpoint   string    `gorm:"type:text;not null;index:idx_rate_limit_lookup,priority:2;index:idx_rate_limit_endpoint" json:"endpoint"`
	Timestamp  time.Time `gorm:"not null;index:idx_rate_limit_lookup,priority:3" json:"timestamp"`
}

func (RateLimitRecord) TableName() string {
	return "rate_limit_records"
}
