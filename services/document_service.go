package services

import (
	"errors"
	"path/filepath"

	"rwa-invest-backend/models"
	"rwa-invest-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DocumentService struct {
	DB *gorm.DB
}

func NewDocumentService(db *gorm.DB) *DocumentService {
	return &DocumentService{DB: db}
}

// UploadDocument handles POST /api/:ownerType/:id/documents. The file goes to
// R2; the metadata row is created after a successful upload.
func (s *DocumentService) UploadDocument(c *fiber.Ctx) error {
	ownerType := c.Params("ownerType")
	if ownerType != "issuer" && ownerType != "deal" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "owner must be issuer or deal"})
	}
	ownerID := c.Params("id")

	// The owner row must exist before we accept a file for it.
	var err error
	if ownerType == "issuer" {
		err = s.DB.First(&models.Issuer{}, "id = ?", ownerID).Error
	} else {
		err = s.DB.First(&models.Deal{}, "id = ?", ownerID).Error
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": ownerType + " not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "DB error"})
	}

	file, err := c.FormFile("document")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "document file is required"})
	}
	if file.Size > 50*1024*1024 { // 50MB
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "file too large (max 50MB)"})
	}

	ext := filepath.Ext(file.Filename)
	if ext == "" {
		ext = ".pdf"
	}
	objectKey := "documents/" + ownerType + "/" + uuid.NewString() + ext
	url, err := utils.UploadFileToR2(file, objectKey)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "failed to upload document"})
	}

	uploadedBy, _ := c.Locals("user_id").(string)
	doc := models.Document{
		ID:         uuid.NewString(),
		OwnerType:  ownerType,
		OwnerID:    ownerID,
		Title:      c.FormValue("title", file.Filename),
		Kind:       c.FormValue("kind", models.DocumentKindReport),
		ObjectKey:  objectKey,
		URL:        url,
		UploadedBy: uploadedBy,
	}
	if err := s.DB.Create(&doc).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "document": doc})
}

// ListDocuments handles GET /api/:ownerType/:id/documents.
func (s *DocumentService) ListDocuments(c *fiber.Ctx) error {
	ownerType := c.Params("ownerType")
	if ownerType != "issuer" && ownerType != "deal" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "owner must be issuer or deal"})
	}

	var docs []models.Document
	if err := s.DB.Where("owner_type = ? AND owner_id = ?", ownerType, c.Params("id")).
		Find(&docs).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "failed to fetch documents"})
	}
	return c.JSON(fiber.Map{"success": true, "documents": docs})
}

// DeleteDocument handles DELETE /api/documents/:id. The metadata row is
// removed; the R2 object is kept for audit purposes.
func (s *DocumentService) DeleteDocument(c *fiber.Ctx) error {
	var doc models.Document
	if err := s.DB.First(&doc, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": "document not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "DB error"})
	}
	if err := s.DB.Delete(&doc).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error()})
	}
	return c.JSON(fiber.Map{"success": true})
}
