package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"rwa-invest-backend/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

// ComplianceService applies classification changes to users. Every mutation
// goes through here so nothing changes investor type or KYC status without an
// audit event. The audit write is decoupled: its failure never blocks or
// rolls back the primary mutation.
type ComplianceService struct {
	DB    *gorm.DB
	Audit AuditPublisher
}

func NewComplianceService(db *gorm.DB, audit AuditPublisher) *ComplianceService {
	return &ComplianceService{DB: db, Audit: audit}
}

// SetInvestorType reclassifies a user. The target must exist — unlike webhook
// sync, the caller here is an admin acting on a specific known record.
func (s *ComplianceService) SetInvestorType(userID, newType, reason, actorID string) (*models.User, error) {
	if !models.ValidInvestorTypes[newType] {
		return nil, fmt.Errorf("invalid investor type %q", newType)
	}

	var user models.User
	if err := s.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	previous := user.InvestorType
	now := time.Now()
	user.InvestorType = newType
	user.InvestorTypeSetAt = &now
	if err := s.DB.Save(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to update investor type: %w", err)
	}

	s.Audit.Publish(ClassificationChanged{
		ActorID:      actorID,
		TargetUserID: user.ID,
		Action:       "SET_INVESTOR_TYPE",
		Category:     "classification",
		Previous:     models.JSONMap{"investorType": previous},
		New:          models.JSONMap{"investorType": newType},
		Reason:       reason,
	})

	return &user, nil
}

// SetKycStatus updates a user's KYC state. The approval timestamp is sticky:
// it is set on the transition to APPROVED and never cleared afterwards, so
// the last approval time survives later status changes.
func (s *ComplianceService) SetKycStatus(userID, newStatus, notes, reviewedBy string) (*models.User, error) {
	if !models.ValidKycStatuses[newStatus] {
		return nil, fmt.Errorf("invalid KYC status %q", newStatus)
	}

	var user models.User
	if err := s.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	previous := user.KycStatus
	user.KycStatus = newStatus
	if notes != "" {
		user.KycNotes = &notes
	}
	if reviewedBy != "" {
		user.KycReviewedBy = &reviewedBy
	}
	if newStatus == models.KycStatusApproved {
		now := time.Now()
		user.KycApprovedAt = &now
	}
	if err := s.DB.Save(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to update KYC status: %w", err)
	}

	s.Audit.Publish(ClassificationChanged{
		ActorID:      reviewedBy,
		TargetUserID: user.ID,
		Action:       "SET_KYC_STATUS",
		Category:     "kyc",
		Previous:     models.JSONMap{"kycStatus": previous},
		New:          models.JSONMap{"kycStatus": newStatus},
		Reason:       notes,
	})

	return &user, nil
}

// SetInvestorTypeHandler handles PUT /api/admin/users/:id/investor-type.
func (s *ComplianceService) SetInvestorTypeHandler(c *fiber.Ctx) error {
	var body struct {
		InvestorType string `json:"investor_type"`
		Reason       string `json:"reason"`
	}
	if err := c.BodyParser(&body); err != nil || body.InvestorType == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "investor_type is required",
		})
	}

	actorID, _ := c.Locals("user_id").(string)
	user, err := s.SetInvestorType(c.Params("id"), body.InvestorType, body.Reason, actorID)
	if err != nil {
		return complianceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "user": user})
}

// SetKycStatusHandler handles PUT /api/admin/users/:id/kyc.
func (s *ComplianceService) SetKycStatusHandler(c *fiber.Ctx) error {
	var body struct {
		KycStatus string `json:"kyc_status"`
		Notes     string `json:"notes"`
	}
	if err := c.BodyParser(&body); err != nil || body.KycStatus == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "kyc_status is required",
		})
	}

	reviewedBy, _ := c.Locals("user_id").(string)
	user, err := s.SetKycStatus(c.Params("id"), body.KycStatus, body.Notes, reviewedBy)
	if err != nil {
		return complianceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "user": user})
}

// GetAuditTrailHandler handles GET /api/admin/users/:id/audit — the audit
// trail is read-only; there is no update or delete surface.
func (s *ComplianceService) GetAuditTrailHandler(c *fiber.Ctx) error {
	var entries []models.ComplianceAuditLog
	if err := s.DB.Where("target_user_id = ?", c.Params("id")).
		Order("created_at DESC").
		Find(&entries).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "DB error"})
	}
	return c.JSON(fiber.Map{"success": true, "entries": entries})
}

func complianceError(c *fiber.Ctx, err error) error {
	if errors.Is(err, ErrUserNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": err.Error()})
	}
	status := fiber.StatusInternalServerError
	if strings.HasPrefix(err.Error(), "invalid") {
		status = fiber.StatusBadRequest
	}
	return c.Status(status).JSON(fiber.Map{"success": false, "error": err.Error()})
}
