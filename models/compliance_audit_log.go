package models

import "time"

// ComplianceAuditLog is an append-only record of classification changes.
// No code path updates or deletes rows in this table.
type ComplianceAuditLog struct {
	ID           string  `gorm:"primaryKey;type:uuid" json:"id"`
	ActorID      string  `gorm:"not null;index" json:"actor_id"`
	TargetUserID string  `gorm:"type:uuid;not null;index" json:"target_user_id"`
	Action       string  `gorm:"not null" json:"action"`
	Category     string  `gorm:"not null;index" json:"category"`
	PreviousValue JSONMap `gorm:"type:jsonb" json:"previous_value"`
	NewValue      JSONMap `gorm:"type:jsonb" json:"new_value"`
	Reason        string  `json:"reason"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}
