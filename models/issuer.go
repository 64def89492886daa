package models

import (
	"time"

	"gorm.io/gorm"
)

// Issuer is a legal entity sponsoring one or more deals.
//
// Deletion is guarded at the application layer: an issuer with live deals
// cannot be removed (the handler reports the blocking count). Verification is
// a one-way, idempotent transition.
type Issuer struct {
	ID                 string `gorm:"primaryKey;type:uuid" json:"id"`
	Name               string `gorm:"not null;index" json:"name"`
	LegalName          string `gorm:"not null" json:"legal_name"`
	RegistrationNumber string `json:"registration_number"`
	Jurisdiction       string `json:"jurisdiction"`

	ContactEmail string  `json:"contact_email"`
	ContactPhone *string `json:"contact_phone,omitempty"`
	Website      *string `json:"website,omitempty"`

	// Governance records: each entry {name, ownership_percent, is_pep}.
	Directors        JSONSlice `gorm:"type:jsonb" json:"directors,omitempty"`
	BeneficialOwners JSONSlice `gorm:"type:jsonb" json:"beneficial_owners,omitempty"`

	RegulatoryStatus string     `json:"regulatory_status"`
	IsVerified       bool       `gorm:"default:false" json:"is_verified"`
	VerifiedAt       *time.Time `json:"verified_at,omitempty"`
	VerifiedBy       *string    `json:"verified_by,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Deals []Deal `gorm:"foreignKey:IssuerID" json:"deals,omitempty"`
}
