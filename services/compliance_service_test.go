package services

import (
	"testing"
	"time"

	"rwa-invest-backend/models"

	"github.com/google/uuid"
)

func seedUser(t *testing.T, svc *UserService) *models.User {
	t.Helper()
	user, err := svc.CreateUser(adaIdentity())
	if err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

func TestSetInvestorTypeWritesAuditTrail(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, NewUserService(db))
	svc := NewComplianceService(db, NewAuditRecorder(db))

	updated, err := svc.SetInvestorType(user.ID, models.InvestorTypeQualified, "MiFID assessment passed", "admin_1")
	if err != nil {
		t.Fatalf("SetInvestorType failed: %v", err)
	}
	if updated.InvestorType != models.InvestorTypeQualified {
		t.Fatalf("expected QUALIFIED, got %q", updated.InvestorType)
	}
	if updated.InvestorTypeSetAt == nil {
		t.Error("expected classification timestamp to be set")
	}

	var entries []models.ComplianceAuditLog
	if err := db.Where("target_user_id = ?", user.ID).Find(&entries).Error; err != nil {
		t.Fatalf("audit lookup failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly one audit entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.PreviousValue["investorType"] != models.InvestorTypeRetail {
		t.Errorf("expected previous RETAIL, got %v", entry.PreviousValue["investorType"])
	}
	if entry.NewValue["investorType"] != models.InvestorTypeQualified {
		t.Errorf("expected new QUALIFIED, got %v", entry.NewValue["investorType"])
	}
	if entry.ActorID != "admin_1" || entry.Reason != "MiFID assessment passed" {
		t.Errorf("unexpected audit metadata: %+v", entry)
	}
}

func TestSetInvestorTypeSurvivesAuditFailure(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, NewUserService(db))

	// Dropping the audit table makes every audit write fail.
	if err := db.Migrator().DropTable(&models.ComplianceAuditLog{}); err != nil {
		t.Fatalf("failed to drop audit table: %v", err)
	}

	svc := NewComplianceService(db, NewAuditRecorder(db))
	updated, err := svc.SetInvestorType(user.ID, models.InvestorTypeProfessional, "reclassified", "admin_1")
	if err != nil {
		t.Fatalf("mutation must succeed despite audit failure: %v", err)
	}
	if updated.InvestorType != models.InvestorTypeProfessional {
		t.Fatalf("expected PROFESSIONAL, got %q", updated.InvestorType)
	}
}

func TestSetInvestorTypeValidation(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, NewUserService(db))
	svc := NewComplianceService(db, NewAuditRecorder(db))

	if _, err := svc.SetInvestorType(user.ID, "WHALE", "", "admin_1"); err == nil {
		t.Fatal("expected error for unknown investor type")
	}
	if _, err := svc.SetInvestorType(uuid.NewString(), models.InvestorTypeRetail, "", "admin_1"); err != ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound for unknown user, got %v", err)
	}
}

func TestKycApprovalTimestampIsSticky(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, NewUserService(db))
	svc := NewComplianceService(db, NewAuditRecorder(db))

	approved, err := svc.SetKycStatus(user.ID, models.KycStatusApproved, "docs ok", "admin_1")
	if err != nil {
		t.Fatalf("SetKycStatus failed: %v", err)
	}
	if approved.KycApprovedAt == nil {
		t.Fatal("expected approval timestamp on transition to APPROVED")
	}
	approvedAt := *approved.KycApprovedAt

	time.Sleep(5 * time.Millisecond)

	rejected, err := svc.SetKycStatus(user.ID, models.KycStatusRejected, "new adverse media", "admin_2")
	if err != nil {
		t.Fatalf("SetKycStatus failed: %v", err)
	}
	if rejected.KycStatus != models.KycStatusRejected {
		t.Fatalf("expected REJECTED, got %q", rejected.KycStatus)
	}
	if rejected.KycApprovedAt == nil || !rejected.KycApprovedAt.Equal(approvedAt) {
		t.Error("expected last approval time to survive the status change")
	}

	var entries int64
	db.Model(&models.ComplianceAuditLog{}).Where("target_user_id = ?", user.ID).Count(&entries)
	if entries != 2 {
		t.Fatalf("expected one audit entry per change, got %d", entries)
	}
}
