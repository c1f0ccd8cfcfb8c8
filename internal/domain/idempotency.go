package domain

import "time"

// Idempotency pins an Idempotency-Key to the sync job its first trigger
// created, scoped to (user_id, source_id, key). While the record is inside
// its TTL window, retries of the same trigger are answered with JobID
// instead of re-executing side effects or tripping the cooldown. Status
// holds the HTTP status the original trigger returned.
type Idempotency struct {
	ID        string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	UserID    string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_source_key,priority:1"`
	SourceID  string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_source_key,priority:2"`
	Key       string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_source_key,priority:3"`
	JobID     string    `gorm:"type:TEXT NOT NULL"`
	Status    int       `gorm:"type:INTEGER NOT NULL"`
	CreatedAt time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName returns the database table name for Idempotency.
func (Idempotency) TableName() string { return "idempotency" }
