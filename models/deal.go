package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Deal lifecycle states.
const (
	DealStatusDraft  = "draft"
	DealStatusActive = "active"
	DealStatusClosed = "closed"
)

// Deal categories. Each category carries its own content schema.
const (
	DealCategoryRealEstate    = "REAL_ESTATE"
	DealCategoryEntertainment = "ENTERTAINMENT"
	DealCategoryPrivateCredit = "PRIVATE_CREDIT"
	DealCategoryInfra         = "INFRASTRUCTURE"
)

var ValidDealCategories = map[string]bool{
	DealCategoryRealEstate:    true,
	DealCategoryEntertainment: true,
	DealCategoryPrivateCredit: true,
	DealCategoryInfra:         true,
}

// DealContent is the category-specific body of a deal, stored as one JSON
// column. The Category tag inside the blob must match the deal's category;
// which sections are required depends on it (see Validate).
type DealContent struct {
	Category    string                   `json:"category"`
	Strategies  []map[string]interface{} `json:"strategies,omitempty"`
	TrackRecord map[string]interface{}   `json:"track_record,omitempty"`
	CaseStudies []map[string]interface{} `json:"case_studies,omitempty"`
	Risks       []map[string]interface{} `json:"risks,omitempty"`
	MarketData  map[string]interface{}   `json:"market_data,omitempty"`
}

func (c DealContent) Value() (driver.Value, error) {
	return json.Marshal(c)
}

func (c *DealContent) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*c = DealContent{}
		return nil
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	default:
		return fmt.Errorf("unsupported type %T for DealContent", value)
	}
}

// Validate checks the content blob against its category's schema. Risks are
// mandatory everywhere; real-estate and infrastructure deals must carry market
// data, credit deals a track record.
func (c DealContent) Validate(category string) error {
	if c.Category != "" && c.Category != category {
		return fmt.Errorf("content category %q does not match deal category %q", c.Category, category)
	}
	if len(c.Risks) == 0 {
		return fmt.Errorf("deal content requires at least one risk disclosure")
	}
	switch category {
	case DealCategoryRealEstate, DealCategoryInfra:
		if len(c.MarketData) == 0 {
			return fmt.Errorf("%s deals require market_data", category)
		}
	case DealCategoryPrivateCredit:
		if len(c.TrackRecord) == 0 {
			return fmt.Errorf("%s deals require track_record", category)
		}
	}
	return nil
}

// Deal is an investment opportunity linked to exactly one Issuer. The slug is
// the external lookup key: globally unique, and immutable once the deal has
// left draft.
type Deal struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	IssuerID string `gorm:"type:uuid;not null;index" json:"issuer_id"`

	Title    string `gorm:"not null" json:"title"`
	Slug     string `gorm:"uniqueIndex;not null" json:"slug"`
	Category string `gorm:"not null;index" json:"category"`
	Status   string `gorm:"not null;default:'draft';index" json:"status"`

	Currency      string  `gorm:"type:varchar(8);not null;default:'EUR'" json:"currency"`
	MinTicket     float64 `gorm:"not null;default:0" json:"min_ticket"`
	MaxTicket     float64 `json:"max_ticket"`
	TotalRaise    float64 `gorm:"not null;default:0" json:"total_raise"`
	CurrentRaised float64 `gorm:"not null;default:0" json:"current_raised"`
	TargetReturn  float64 `json:"target_return"`
	TermMonths    int     `json:"term_months"`
	RiskLevel     string  `json:"risk_level"`

	Content DealContent `gorm:"type:jsonb" json:"content"`

	OpensAt  *time.Time `json:"opens_at,omitempty"`
	ClosesAt *time.Time `json:"closes_at,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Documents []Document `gorm:"polymorphic:Owner;polymorphicValue:deal" json:"documents,omitempty"`
}
