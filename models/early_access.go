package models

import "time"

// EarlyAccessSubmission is a pre-launch waitlist entry. When a user with a
// matching email is later created through identity sync, the most recent
// submission seeds their profile and is linked via UserID.
type EarlyAccessSubmission struct {
	ID    string `gorm:"primaryKey;type:uuid" json:"id"`
	Email string `gorm:"not null;index" json:"email"`

	Country           *string  `json:"country,omitempty"`
	InvestorStatus    string   `json:"investor_status"` // retail | professional | qualified
	AnnualIncome      *float64 `json:"annual_income,omitempty"`
	InvestableCapital *float64 `json:"investable_capital,omitempty"`
	Preferences       JSONMap  `gorm:"type:jsonb" json:"preferences,omitempty"`

	UserID *string `gorm:"type:uuid;index" json:"user_id,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
