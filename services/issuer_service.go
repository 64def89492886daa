package services

import (
	"errors"
	"time"

	"rwa-invest-backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type IssuerService struct {
	DB *gorm.DB
}

func NewIssuerService(db *gorm.DB) *IssuerService {
	return &IssuerService{DB: db}
}

// CreateIssuer handles POST /api/issuers.
func (s *IssuerService) CreateIssuer(c *fiber.Ctx) error {
	var issuer models.Issuer
	if err := c.BodyParser(&issuer); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "invalid issuer payload"})
	}
	if issuer.Name == "" || issuer.LegalName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "name and legal_name are required"})
	}

	issuer.ID = uuid.NewString()
	issuer.IsVerified = false
	issuer.VerifiedAt = nil
	issuer.VerifiedBy = nil

	if err := s.DB.Create(&issuer).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "issuer": issuer})
}

// GetAllIssuers handles GET /api/issuers.
func (s *IssuerService) GetAllIssuers(c *fiber.Ctx) error {
	var issuers []models.Issuer
	if err := s.DB.Find(&issuers).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "failed to fetch issuers"})
	}
	return c.JSON(fiber.Map{"success": true, "issuers": issuers})
}

// GetIssuerByID handles GET /api/issuers/:id.
func (s *IssuerService) GetIssuerByID(c *fiber.Ctx) error {
	var issuer models.Issuer
	if err := s.DB.Preload("Deals").First(&issuer, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": "issuer not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "DB error"})
	}
	return c.JSON(fiber.Map{"success": true, "issuer": issuer})
}

// UpdateIssuer handles PUT /api/issuers/:id. Verification state is not
// writable here — VerifyIssuer owns that transition.
func (s *IssuerService) UpdateIssuer(c *fiber.Ctx) error {
	var issuer models.Issuer
	if err := s.DB.First(&issuer, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": "issuer not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "DB error"})
	}

	var body models.Issuer
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "invalid issuer payload"})
	}

	issuer.Name = body.Name
	issuer.LegalName = body.LegalName
	issuer.RegistrationNumber = body.RegistrationNumber
	issuer.Jurisdiction = body.Jurisdiction
	issuer.ContactEmail = body.ContactEmail
	issuer.ContactPhone = body.ContactPhone
	issuer.Website = body.Website
	issuer.Directors = body.Directors
	issuer.BeneficialOwners = body.BeneficialOwners
	issuer.RegulatoryStatus = body.RegulatoryStatus

	if err := s.DB.Save(&issuer).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error()})
	}
	return c.JSON(fiber.Map{"success": true, "issuer": issuer})
}

// VerifyIssuer handles POST /api/issuers/:id/verify. One-way and idempotent:
// verifying an already-verified issuer succeeds without touching the record.
func (s *IssuerService) VerifyIssuer(c *fiber.Ctx) error {
	var issuer models.Issuer
	if err := s.DB.First(&issuer, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": "issuer not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "DB error"})
	}

	if issuer.IsVerified {
		return c.JSON(fiber.Map{"success": true, "issuer": issuer})
	}

	now := time.Now()
	actorID, _ := c.Locals("user_id").(string)
	issuer.IsVerified = true
	issuer.VerifiedAt = &now
	if actorID != "" {
		issuer.VerifiedBy = &actorID
	}
	if err := s.DB.Save(&issuer).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error()})
	}
	return c.JSON(fiber.Map{"success": true, "issuer": issuer})
}

// DeleteIssuer handles DELETE /api/issuers/:id. An issuer with deals cannot
// be deleted; the blocking count comes back to the caller. The count check
// and the delete run inside one transaction so a deal created mid-request
// cannot slip between them.
func (s *IssuerService) DeleteIssuer(c *fiber.Ctx) error {
	id := c.Params("id")

	var blockingDeals int64
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var issuer models.Issuer
		if err := tx.First(&issuer, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Deal{}).Where("issuer_id = ?", id).Count(&blockingDeals).Error; err != nil {
			return err
		}
		if blockingDeals > 0 {
			return gorm.ErrForeignKeyViolated
		}
		return tx.Delete(&issuer).Error
	})

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": "issuer not found"})
		}
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success":        false,
				"error":          "issuer has linked deals and cannot be deleted",
				"blocking_deals": blockingDeals,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	return c.JSON(fiber.Map{"success": true})
}
