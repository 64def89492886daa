package services

import (
	"testing"

	"rwa-invest-backend/models"

	"github.com/google/uuid"
)

func adaIdentity() models.ClerkUserData {
	return models.ClerkUserData{
		ID: "ext_1",
		EmailAddresses: []models.ClerkEmailAddress{
			{
				ID:           "e1",
				EmailAddress: "a@b.com",
				Verification: &models.ClerkVerification{Status: "verified"},
			},
		},
		PrimaryEmailAddressID: strPtr("e1"),
		FirstName:             strPtr("Ada"),
		LastName:              strPtr("Lovelace"),
		PublicMetadata:        map[string]interface{}{},
	}
}

func TestCreateUserExampleScenario(t *testing.T) {
	svc := NewUserService(newTestDB(t))

	user, err := svc.CreateUser(adaIdentity())
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	if user.Email != "a@b.com" {
		t.Errorf("expected email a@b.com, got %q", user.Email)
	}
	if !user.EmailVerified {
		t.Error("expected email_verified true")
	}
	if user.FullName != "Ada Lovelace" {
		t.Errorf("expected full name 'Ada Lovelace', got %q", user.FullName)
	}
	if user.InvestorType != models.InvestorTypeRetail {
		t.Errorf("expected RETAIL with no early-access record, got %q", user.InvestorType)
	}

	var wallets []models.Wallet
	if err := svc.DB.Where("user_id = ?", user.ID).Find(&wallets).Error; err != nil {
		t.Fatalf("wallet lookup failed: %v", err)
	}
	if len(wallets) != 1 {
		t.Fatalf("expected exactly one default wallet, got %d", len(wallets))
	}
	if wallets[0].Currency != "EUR" || wallets[0].Balance != 0 {
		t.Errorf("expected zero-balance EUR wallet, got %+v", wallets[0])
	}
}

func TestCreateUserIsIdempotent(t *testing.T) {
	svc := NewUserService(newTestDB(t))

	first, err := svc.CreateUser(adaIdentity())
	if err != nil {
		t.Fatalf("first CreateUser failed: %v", err)
	}
	second, err := svc.CreateUser(adaIdentity())
	if err != nil {
		t.Fatalf("second CreateUser failed: %v", err)
	}

	if first.ID != second.ID {
		t.Fatalf("expected same user id on duplicate delivery, got %s and %s", first.ID, second.ID)
	}

	var count int64
	svc.DB.Model(&models.User{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected exactly one user row, got %d", count)
	}
}

func TestCreateUserRequiresEmail(t *testing.T) {
	svc := NewUserService(newTestDB(t))

	identity := adaIdentity()
	identity.PrimaryEmailAddressID = strPtr("e_missing")
	if _, err := svc.CreateUser(identity); err == nil {
		t.Fatal("expected error when primary email id has no matching record")
	}

	identity = adaIdentity()
	identity.PrimaryEmailAddressID = nil
	if _, err := svc.CreateUser(identity); err == nil {
		t.Fatal("expected error when primary email id is absent")
	}
}

func TestCreateUserBackfillsEarlyAccess(t *testing.T) {
	db := newTestDB(t)
	income := 250000.0
	submission := models.EarlyAccessSubmission{
		ID:             uuid.NewString(),
		Email:          "a@b.com",
		Country:        strPtr("DE"),
		InvestorStatus: "professional",
		AnnualIncome:   &income,
	}
	if err := db.Create(&submission).Error; err != nil {
		t.Fatalf("failed to seed submission: %v", err)
	}

	svc := NewUserService(db)
	user, err := svc.CreateUser(adaIdentity())
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	if user.InvestorType != models.InvestorTypeProfessional {
		t.Errorf("expected PROFESSIONAL from submission, got %q", user.InvestorType)
	}
	if user.Country == nil || *user.Country != "DE" {
		t.Errorf("expected country backfill DE, got %v", user.Country)
	}
	if user.AnnualIncome == nil || *user.AnnualIncome != income {
		t.Errorf("expected income backfill, got %v", user.AnnualIncome)
	}

	var linked models.EarlyAccessSubmission
	if err := db.First(&linked, "id = ?", submission.ID).Error; err != nil {
		t.Fatalf("submission lookup failed: %v", err)
	}
	if linked.UserID == nil || *linked.UserID != user.ID {
		t.Error("expected submission to be linked to the created user")
	}
}

func TestCreateUserAdminRole(t *testing.T) {
	svc := NewUserService(newTestDB(t))

	identity := adaIdentity()
	identity.PublicMetadata = map[string]interface{}{"role": "super_admin"}
	user, err := svc.CreateUser(identity)
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if !user.IsAdmin {
		t.Error("expected super_admin role claim to set IsAdmin")
	}
}

func TestUpdateUserOverwritesProfile(t *testing.T) {
	svc := NewUserService(newTestDB(t))
	if _, err := svc.CreateUser(adaIdentity()); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	identity := adaIdentity()
	identity.FirstName = strPtr("Augusta")
	identity.EmailAddresses[0].Verification = &models.ClerkVerification{Status: "unverified"}

	user, err := svc.UpdateUser(identity)
	if err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}
	if user.FullName != "Augusta Lovelace" {
		t.Errorf("expected overwritten name, got %q", user.FullName)
	}
	if user.EmailVerified {
		t.Error("expected verification flag overwritten to false")
	}
}

func TestUpdateUserCreatesWhenUnknown(t *testing.T) {
	svc := NewUserService(newTestDB(t))

	// Out-of-order delivery: the update arrives before the create.
	user, err := svc.UpdateUser(adaIdentity())
	if err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}
	if user.ClerkUserID != "ext_1" {
		t.Fatalf("expected self-healing create, got %+v", user)
	}

	var count int64
	svc.DB.Model(&models.Wallet{}).Where("user_id = ?", user.ID).Count(&count)
	if count != 1 {
		t.Fatalf("expected the healed create to seed a wallet, got %d", count)
	}
}

func TestDeleteUserSoftDeletes(t *testing.T) {
	svc := NewUserService(newTestDB(t))
	created, err := svc.CreateUser(adaIdentity())
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	deleted, err := svc.DeleteUser("ext_1")
	if err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}
	if deleted.IsActive || !deleted.IsBanned {
		t.Errorf("expected IsActive=false IsBanned=true, got active=%t banned=%t", deleted.IsActive, deleted.IsBanned)
	}

	// The row remains queryable by id.
	var row models.User
	if err := svc.DB.First(&row, "id = ?", created.ID).Error; err != nil {
		t.Fatalf("expected soft-deleted row to remain queryable: %v", err)
	}
}

func TestDeleteUnknownUserIsNoOp(t *testing.T) {
	svc := NewUserService(newTestDB(t))

	user, err := svc.DeleteUser("ext_never_seen")
	if err != nil {
		t.Fatalf("expected no error for unknown id, got %v", err)
	}
	if user != nil {
		t.Fatalf("expected nil result for unknown id, got %+v", user)
	}
}

func TestGetOrCreateUserFirstTouch(t *testing.T) {
	svc := NewUserService(newTestDB(t))

	user, err := svc.GetOrCreateUser("ext_9", "first@touch.com")
	if err != nil {
		t.Fatalf("GetOrCreateUser failed: %v", err)
	}

	again, err := svc.GetOrCreateUser("ext_9", "ignored@touch.com")
	if err != nil {
		t.Fatalf("second GetOrCreateUser failed: %v", err)
	}
	if again.ID != user.ID {
		t.Fatal("expected existing user on second touch")
	}
	if again.Email != "first@touch.com" {
		t.Errorf("second touch must not rewrite email, got %q", again.Email)
	}
}

func TestReferralCodesDistinctAcrossUsers(t *testing.T) {
	svc := NewUserService(newTestDB(t))
	codes := make(map[string]bool)

	for i := 0; i < 100; i++ {
		identity := adaIdentity()
		identity.ID = uuid.NewString()
		identity.EmailAddresses[0].EmailAddress = uuid.NewString() + "@b.com"

		user, err := svc.CreateUser(identity)
		if err != nil {
			t.Fatalf("CreateUser %d failed: %v", i, err)
		}
		if codes[user.ReferralCode] {
			t.Fatalf("duplicate referral code %q", user.ReferralCode)
		}
		codes[user.ReferralCode] = true
	}
}
