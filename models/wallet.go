// models/wallet.go
package models

import "time"

const (
	WalletTypeFiat  = "fiat"
	DefaultCurrency = "EUR"
)

// Wallet is a per-user, currency-scoped ledger stub. Exactly one default fiat
// wallet is created in the same transaction as its owning User.
type Wallet struct {
	ID             string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID         string    `gorm:"type:uuid;not null;index" json:"user_id"`
	Currency       string    `gorm:"type:varchar(8);not null;default:'EUR'" json:"currency"`
	Balance        float64   `gorm:"not null;default:0" json:"balance"`
	PendingBalance float64   `gorm:"not null;default:0" json:"pending_balance"`
	Type           string    `gorm:"type:varchar(16);not null;default:'fiat'" json:"type"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
