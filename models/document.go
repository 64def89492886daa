// models/document.go
package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	DocumentKindProspectus  = "prospectus"
	DocumentKindKycEvidence = "kyc-evidence"
	DocumentKindReport      = "report"
)

// Document is a file attached to an issuer or a deal. The binary lives on R2;
// this row keeps the object key and the public URL.
type Document struct {
	ID        string `gorm:"primaryKey;type:uuid" json:"id"`
	OwnerType string `gorm:"not null;index:idx_doc_owner" json:"owner_type"` // "issuer" or "deal"
	OwnerID   string `gorm:"type:uuid;not null;index:idx_doc_owner" json:"owner_id"`

	Title      string `gorm:"not null" json:"title"`
	Kind       string `gorm:"not null" json:"kind"`
	ObjectKey  string `gorm:"not null" json:"object_key"`
	URL        string `gorm:"not null" json:"url"`
	UploadedBy string `json:"uploaded_by"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
