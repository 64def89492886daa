package models

import (
	"time"
)

// Investor classification tiers. The tier decides which deal categories and
// ticket sizes a user may access.
const (
	InvestorTypeRetail        = "RETAIL"
	InvestorTypeProfessional  = "PROFESSIONAL"
	InvestorTypeQualified     = "QUALIFIED"
	InvestorTypeInstitutional = "INSTITUTIONAL"
)

// KYC review states.
const (
	KycStatusPending  = "PENDING"
	KycStatusInReview = "IN_REVIEW"
	KycStatusApproved = "APPROVED"
	KycStatusRejected = "REJECTED"
)

// ValidInvestorTypes is the closed set accepted by the admin classification API.
var ValidInvestorTypes = map[string]bool{
	InvestorTypeRetail:        true,
	InvestorTypeProfessional:  true,
	InvestorTypeQualified:     true,
	InvestorTypeInstitutional: true,
}

// ValidKycStatuses is the closed set accepted by the admin KYC API.
var ValidKycStatuses = map[string]bool{
	KycStatusPending:  true,
	KycStatusInReview: true,
	KycStatusApproved: true,
	KycStatusRejected: true,
}

// User is a platform participant (investor). The row is owned by the identity
// sync engine: created on the first identity-provider event (or first
// authenticated touch) and overwritten on every subsequent sync event.
//
// "Deleted" users are never removed — deletion at the identity provider flips
// IsActive/IsBanned so investment history stays intact.
type User struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	ClerkUserID string `gorm:"uniqueIndex;not null" json:"clerk_user_id"`

	Email         string  `gorm:"uniqueIndex;not null" json:"email"`
	EmailVerified bool    `gorm:"default:false" json:"email_verified"`
	PhoneNumber   *string `json:"phone_number,omitempty"`
	PhoneVerified bool    `gorm:"default:false" json:"phone_verified"`

	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	FullName  string  `json:"full_name"`
	AvatarURL *string `json:"avatar_url,omitempty"`
	Country   *string `json:"country,omitempty"`

	// Classification — mutated only through the compliance service.
	InvestorType      string     `gorm:"not null;default:'RETAIL';index" json:"investor_type"`
	InvestorTypeSetAt *time.Time `json:"investor_type_set_at,omitempty"`
	KycStatus         string     `gorm:"not null;default:'PENDING';index" json:"kyc_status"`
	KycApprovedAt     *time.Time `json:"kyc_approved_at,omitempty"`
	KycNotes          *string    `json:"kyc_notes,omitempty"`
	KycReviewedBy     *string    `json:"kyc_reviewed_by,omitempty"`
	ComplianceStatus  string     `gorm:"default:'UNREVIEWED'" json:"compliance_status"`
	RiskScore         int        `gorm:"default:0" json:"risk_score"`
	IsPEP             bool       `gorm:"default:false" json:"is_pep"`
	IsSanctioned      bool       `gorm:"default:false" json:"is_sanctioned"`

	// Financial snapshot, backfilled from early-access submissions.
	TotalInvested     float64  `gorm:"default:0" json:"total_invested"`
	AnnualIncome      *float64 `json:"annual_income,omitempty"`
	InvestableCapital *float64 `json:"investable_capital,omitempty"`
	Preferences       JSONMap  `gorm:"type:jsonb" json:"preferences,omitempty"`

	ReferralCode string `gorm:"uniqueIndex;not null" json:"referral_code"`

	IsAdmin   bool    `gorm:"default:false" json:"is_admin"`
	IsActive  bool    `gorm:"default:true" json:"is_active"`
	IsBanned  bool    `gorm:"default:false" json:"is_banned"`
	BanReason *string `json:"ban_reason,omitempty"`

	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Wallets []Wallet `gorm:"foreignKey:UserID" json:"wallets,omitempty"`
}
