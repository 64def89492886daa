package services

import (
	"log"

	"rwa-invest-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClassificationChanged is emitted by the compliance service after every
// successful classification mutation.
type ClassificationChanged struct {
	ActorID      string
	TargetUserID string
	Action       string
	Category     string
	Previous     models.JSONMap
	New          models.JSONMap
	Reason       string
}

// AuditPublisher receives classification events. Implementations must never
// fail the caller: the primary mutation is authoritative, audit is advisory.
type AuditPublisher interface {
	Publish(change ClassificationChanged)
}

// dbAuditRecorder is the default subscriber: it appends one
// ComplianceAuditLog row per event. Write failures are logged and dropped.
type dbAuditRecorder struct {
	db *gorm.DB
}

func NewAuditRecorder(db *gorm.DB) AuditPublisher {
	return &dbAuditRecorder{db: db}
}

func (r *dbAuditRecorder) Publish(change ClassificationChanged) {
	entry := models.ComplianceAuditLog{
		ID:            uuid.NewString(),
		ActorID:       change.ActorID,
		TargetUserID:  change.TargetUserID,
		Action:        change.Action,
		Category:      change.Category,
		PreviousValue: change.Previous,
		NewValue:      change.New,
		Reason:        change.Reason,
	}
	if err := r.db.Create(&entry).Error; err != nil {
		log.Printf("⚠️ [AUDIT] Failed to append audit log for user %s (%s): %v",
			change.TargetUserID, change.Action, err)
	}
}
