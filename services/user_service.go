package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"rwa-invest-backend/models"
	"rwa-invest-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNoUsableEmail means the identity payload carries no email record matching
// its declared primary id. A user cannot be created without one.
var ErrNoUsableEmail = errors.New("identity has no usable email address")

// UserService reconciles identity-provider records with local User rows and
// serves the user-facing API. One local User per external identity id.
type UserService struct {
	DB       *gorm.DB
	Referral *utils.ReferralCodeGenerator
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{
		DB:       db,
		Referral: utils.NewReferralCodeGenerator(),
	}
}

// primaryEmail resolves the identity's declared primary email id against its
// email records.
func primaryEmail(identity models.ClerkUserData) (*models.ClerkEmailAddress, error) {
	if identity.PrimaryEmailAddressID == nil {
		return nil, ErrNoUsableEmail
	}
	for i := range identity.EmailAddresses {
		if identity.EmailAddresses[i].ID == *identity.PrimaryEmailAddressID {
			return &identity.EmailAddresses[i], nil
		}
	}
	return nil, ErrNoUsableEmail
}

func primaryPhone(identity models.ClerkUserData) *models.ClerkPhoneNumber {
	if identity.PrimaryPhoneNumberID == nil {
		return nil
	}
	for i := range identity.PhoneNumbers {
		if identity.PhoneNumbers[i].ID == *identity.PrimaryPhoneNumberID {
			return &identity.PhoneNumbers[i]
		}
	}
	return nil
}

func isVerified(v *models.ClerkVerification) bool {
	return v != nil && v.Status == "verified"
}

func fullNameOf(first, last *string) string {
	var parts []string
	if first != nil && *first != "" {
		parts = append(parts, *first)
	}
	if last != nil && *last != "" {
		parts = append(parts, *last)
	}
	return strings.Join(parts, " ")
}

// investorTypeFromStatus maps an early-access declared status onto a
// classification tier. Unknown or empty statuses land on the retail tier.
func investorTypeFromStatus(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "professional":
		return models.InvestorTypeProfessional
	case "qualified":
		return models.InvestorTypeQualified
	default:
		return models.InvestorTypeRetail
	}
}

func isAdminRole(publicMetadata map[string]interface{}) bool {
	role, _ := publicMetadata["role"].(string)
	return role == "admin" || role == "super_admin"
}

func (s *UserService) generateReferralCode(tx *gorm.DB) (string, error) {
	return s.Referral.Generate(func(code string) (bool, error) {
		var count int64
		if err := tx.Model(&models.User{}).Where("referral_code = ?", code).Count(&count).Error; err != nil {
			return false, err
		}
		return count > 0, nil
	})
}

// CreateUser materializes a local User (plus its default wallet) from an
// identity payload. Idempotent: a second delivery for the same external id
// returns the existing row unchanged.
func (s *UserService) CreateUser(identity models.ClerkUserData) (*models.User, error) {
	email, err := primaryEmail(identity)
	if err != nil {
		return nil, err
	}

	// Duplicate webhook delivery — return what we already have.
	var existing models.User
	err = s.DB.Where("clerk_user_id = ?", identity.ID).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	user := &models.User{
		ID:            uuid.NewString(),
		ClerkUserID:   identity.ID,
		Email:         email.EmailAddress,
		EmailVerified: isVerified(email.Verification),
		FirstName:     identity.FirstName,
		LastName:      identity.LastName,
		FullName:      fullNameOf(identity.FirstName, identity.LastName),
		AvatarURL:     identity.ImageURL,
		InvestorType:  models.InvestorTypeRetail,
		KycStatus:     models.KycStatusPending,
		IsAdmin:       isAdminRole(identity.PublicMetadata),
		IsActive:      true,
	}
	if phone := primaryPhone(identity); phone != nil {
		user.PhoneNumber = &phone.PhoneNumber
		user.PhoneVerified = isVerified(phone.Verification)
	}

	// Backfill the profile from the latest early-access submission for this
	// email, if one exists.
	var submission models.EarlyAccessSubmission
	subErr := s.DB.Where("email = ?", email.EmailAddress).
		Order("created_at DESC").
		First(&submission).Error
	haveSubmission := subErr == nil
	if haveSubmission {
		user.Country = submission.Country
		user.InvestorType = investorTypeFromStatus(submission.InvestorStatus)
		user.AnnualIncome = submission.AnnualIncome
		user.InvestableCapital = submission.InvestableCapital
		user.Preferences = submission.Preferences
	} else if !errors.Is(subErr, gorm.ErrRecordNotFound) {
		log.Printf("⚠️ [SYNC] Early-access lookup failed for %s: %v", email.EmailAddress, subErr)
	}

	// User, default wallet, and the submission link commit together.
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		code, err := s.generateReferralCode(tx)
		if err != nil {
			return err
		}
		user.ReferralCode = code

		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		wallet := &models.Wallet{
			ID:       uuid.NewString(),
			UserID:   user.ID,
			Currency: models.DefaultCurrency,
			Type:     models.WalletTypeFiat,
		}
		if err := tx.Create(wallet).Error; err != nil {
			return fmt.Errorf("failed to create default wallet: %w", err)
		}

		if haveSubmission {
			if err := tx.Model(&models.EarlyAccessSubmission{}).
				Where("id = ?", submission.ID).
				Update("user_id", user.ID).Error; err != nil {
				return fmt.Errorf("failed to link early-access submission: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ [SYNC] Created user %s (clerk=%s, type=%s)", user.ID, identity.ID, user.InvestorType)
	return user, nil
}

// UpdateUser overwrites the identity-owned profile fields, last-write-wins.
// An update for an unknown external id falls through to CreateUser, which
// heals out-of-order webhook delivery.
func (s *UserService) UpdateUser(identity models.ClerkUserData) (*models.User, error) {
	var user models.User
	err := s.DB.Where("clerk_user_id = ?", identity.ID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.CreateUser(identity)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user for update: %w", err)
	}

	email, err := primaryEmail(identity)
	if err != nil {
		return nil, err
	}

	user.Email = email.EmailAddress
	user.EmailVerified = isVerified(email.Verification)
	user.FirstName = identity.FirstName
	user.LastName = identity.LastName
	user.FullName = fullNameOf(identity.FirstName, identity.LastName)
	user.AvatarURL = identity.ImageURL
	if phone := primaryPhone(identity); phone != nil {
		user.PhoneNumber = &phone.PhoneNumber
		user.PhoneVerified = isVerified(phone.Verification)
	} else {
		user.PhoneNumber = nil
		user.PhoneVerified = false
	}

	if err := s.DB.Save(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return &user, nil
}

// DeleteUser soft-deletes: the row survives with IsActive=false and
// IsBanned=true. Unknown external ids are a no-op, not an error — the
// provider may notify us about identities we never materialized.
func (s *UserService) DeleteUser(clerkUserID string) (*models.User, error) {
	var user models.User
	err := s.DB.Where("clerk_user_id = ?", clerkUserID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("[SYNC] Delete for unknown clerk user %s — ignoring", clerkUserID)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user for delete: %w", err)
	}

	reason := "identity deleted by provider"
	user.IsActive = false
	user.IsBanned = true
	user.BanReason = &reason
	if err := s.DB.Save(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to soft-delete user: %w", err)
	}

	log.Printf("🗑️ [SYNC] Soft-deleted user %s (clerk=%s)", user.ID, clerkUserID)
	return &user, nil
}

// UpdateLastLogin is best-effort activity tracking: failures are logged and
// swallowed.
func (s *UserService) UpdateLastLogin(clerkUserID string) *models.User {
	var user models.User
	if err := s.DB.Where("clerk_user_id = ?", clerkUserID).First(&user).Error; err != nil {
		log.Printf("⚠️ [SYNC] Last-login touch failed for %s: %v", clerkUserID, err)
		return nil
	}
	now := time.Now()
	user.LastLoginAt = &now
	if err := s.DB.Save(&user).Error; err != nil {
		log.Printf("⚠️ [SYNC] Last-login save failed for %s: %v", clerkUserID, err)
		return nil
	}
	return &user
}

// GetOrCreateUser is the non-webhook creation path, used on the first
// authenticated request. It seeds a minimal User plus the default wallet.
func (s *UserService) GetOrCreateUser(clerkUserID, email string) (*models.User, error) {
	var user models.User
	err := s.DB.Where("clerk_user_id = ?", clerkUserID).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if email == "" {
		return nil, ErrNoUsableEmail
	}

	created := &models.User{
		ID:           uuid.NewString(),
		ClerkUserID:  clerkUserID,
		Email:        email,
		FullName:     "",
		InvestorType: models.InvestorTypeRetail,
		KycStatus:    models.KycStatusPending,
		IsActive:     true,
	}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		code, err := s.generateReferralCode(tx)
		if err != nil {
			return err
		}
		created.ReferralCode = code
		if err := tx.Create(created).Error; err != nil {
			return err
		}
		return tx.Create(&models.Wallet{
			ID:       uuid.NewString(),
			UserID:   created.ID,
			Currency: models.DefaultCurrency,
			Type:     models.WalletTypeFiat,
		}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create user on first touch: %w", err)
	}
	return created, nil
}

// GetMe returns (and on first touch creates) the caller's User record.
// GET /api/users/me?clerkUserId=...&email=...
func (s *UserService) GetMe(c *fiber.Ctx) error {
	clerkUserID := c.Query("clerkUserId")
	if clerkUserID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "clerkUserId query parameter is required",
		})
	}

	user, err := s.GetOrCreateUser(clerkUserID, c.Query("email"))
	if err != nil {
		if errors.Is(err, ErrNoUsableEmail) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	s.UpdateLastLogin(clerkUserID)

	return c.JSON(fiber.Map{"success": true, "user": user})
}

// UserStats is the dashboard aggregate over the (read-only) investment and
// distribution tables.
type UserStats struct {
	TotalInvested         float64 `json:"total_invested"`
	ActiveInvestments     int64   `json:"active_investments"`
	TotalDistributions    float64 `json:"total_distributions"`
	DistributionsReceived int64   `json:"distributions_received"`
}

// GetUserStats handles GET /api/users/:id/stats.
func (s *UserService) GetUserStats(c *fiber.Ctx) error {
	id := c.Params("id")

	var user models.User
	if err := s.DB.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"error":   "user not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "DB error"})
	}

	var stats UserStats
	s.DB.Model(&models.Investment{}).
		Where("user_id = ? AND status = ?", id, "settled").
		Select("COALESCE(SUM(amount), 0)").Scan(&stats.TotalInvested)
	s.DB.Model(&models.Investment{}).
		Where("user_id = ? AND status = ?", id, "settled").
		Count(&stats.ActiveInvestments)
	s.DB.Model(&models.Distribution{}).
		Where("user_id = ?", id).
		Select("COALESCE(SUM(amount), 0)").Scan(&stats.TotalDistributions)
	s.DB.Model(&models.Distribution{}).
		Where("user_id = ?", id).
		Count(&stats.DistributionsReceived)

	return c.JSON(fiber.Map{"success": true, "stats": stats})
}
