// models/notification.go
package models

import "time"

// Notification is an in-app message for a user.
type Notification struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`

	Title string `gorm:"not null" json:"title"`
	Body  string `json:"body"`
	Kind  string `gorm:"default:'info'" json:"kind"`

	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
}
