package models

import "time"

// Investment and Distribution are owned by the (separate) investment
// processing flow. This service reads them for dashboard stats and raise
// reconciliation but never writes them.

type Investment struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`
	DealID string `gorm:"type:uuid;not null;index" json:"deal_id"`

	Amount   float64 `gorm:"not null" json:"amount"`
	Currency string  `gorm:"type:varchar(8);not null;default:'EUR'" json:"currency"`
	Status   string  `gorm:"not null;default:'pending';index" json:"status"` // pending | settled | cancelled

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type Distribution struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`
	DealID string `gorm:"type:uuid;not null;index" json:"deal_id"`

	Amount   float64   `gorm:"not null" json:"amount"`
	Currency string    `gorm:"type:varchar(8);not null;default:'EUR'" json:"currency"`
	PaidAt   time.Time `json:"paid_at"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
