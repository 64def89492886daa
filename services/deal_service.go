package services

import (
	"errors"
	"log"
	"time"

	"rwa-invest-backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type DealService struct {
	DB *gorm.DB
}

func NewDealService(db *gorm.DB) *DealService {
	return &DealService{DB: db}
}

// dealPayload is the writable subset of a deal accepted by create/update.
type dealPayload struct {
	IssuerID     string             `json:"issuer_id"`
	Title        string             `json:"title"`
	Category     string             `json:"category"`
	Currency     string             `json:"currency"`
	MinTicket    float64            `json:"min_ticket"`
	MaxTicket    float64            `json:"max_ticket"`
	TotalRaise   float64            `json:"total_raise"`
	TargetReturn float64            `json:"target_return"`
	TermMonths   int                `json:"term_months"`
	RiskLevel    string             `json:"risk_level"`
	Content      models.DealContent `json:"content"`
	OpensAt      *time.Time         `json:"opens_at,omitempty"`
	ClosesAt     *time.Time         `json:"closes_at,omitempty"`
}

// CreateDeal handles POST /api/deals. New deals start as drafts; the slug is
// derived from the title. A duplicate slug surfaces the unique-constraint
// violation from the database.
func (s *DealService) CreateDeal(c *fiber.Ctx) error {
	var body dealPayload
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "invalid deal payload"})
	}
	if body.Title == "" || body.IssuerID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "title and issuer_id are required"})
	}
	if !models.ValidDealCategories[body.Category] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "unknown deal category"})
	}
	if err := body.Content.Validate(body.Category); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	var issuer models.Issuer
	if err := s.DB.First(&issuer, "id = ?", body.IssuerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": "issuer not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "DB error"})
	}

	deal := models.Deal{
		ID:           uuid.NewString(),
		IssuerID:     body.IssuerID,
		Title:        body.Title,
		Slug:         slug.Make(body.Title),
		Category:     body.Category,
		Status:       models.DealStatusDraft,
		Currency:     body.Currency,
		MinTicket:    body.MinTicket,
		MaxTicket:    body.MaxTicket,
		TotalRaise:   body.TotalRaise,
		TargetReturn: body.TargetReturn,
		TermMonths:   body.TermMonths,
		RiskLevel:    body.RiskLevel,
		Content:      body.Content,
		OpensAt:      body.OpensAt,
		ClosesAt:     body.ClosesAt,
	}
	if deal.Currency == "" {
		deal.Currency = models.DefaultCurrency
	}

	if err := s.DB.Create(&deal).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "deal": deal})
}

// GetAllDeals handles GET /api/deals. Optional ?status= and ?category= filters.
func (s *DealService) GetAllDeals(c *fiber.Ctx) error {
	db := s.DB.Model(&models.Deal{})
	if status := c.Query("status"); status != "" {
		db = db.Where("status = ?", status)
	}
	if category := c.Query("category"); category != "" {
		db = db.Where("category = ?", category)
	}

	var deals []models.Deal
	if err := db.Find(&deals).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "failed to fetch deals"})
	}
	return c.JSON(fiber.Map{"success": true, "deals": deals})
}

// GetDealByID handles GET /api/deals/:id.
func (s *DealService) GetDealByID(c *fiber.Ctx) error {
	var deal models.Deal
	if err := s.DB.Preload("Documents").First(&deal, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": "deal not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "DB error"})
	}
	return c.JSON(fiber.Map{"success": true, "deal": deal})
}

// GetDealBySlug handles GET /api/deals/slug/:slug — the slug is the external
// lookup key used by the storefront.
func (s *DealService) GetDealBySlug(c *fiber.Ctx) error {
	var deal models.Deal
	if err := s.DB.Preload("Documents").First(&deal, "slug = ?", c.Params("slug")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": "deal not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "DB error"})
	}
	return c.JSON(fiber.Map{"success": true, "deal": deal})
}

// UpdateDeal handles PUT /api/deals/:id. The slug tracks the title only while
// the deal is still a draft; once published it is immutable. CurrentRaised is
// never writable through this path.
func (s *DealService) UpdateDeal(c *fiber.Ctx) error {
	var deal models.Deal
	if err := s.DB.First(&deal, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": "deal not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "DB error"})
	}

	var body dealPayload
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "invalid deal payload"})
	}

	category := deal.Category
	if body.Category != "" {
		if !models.ValidDealCategories[body.Category] {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "unknown deal category"})
		}
		category = body.Category
	}
	if err := body.Content.Validate(category); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	if body.Title != "" {
		deal.Title = body.Title
		if deal.Status == models.DealStatusDraft {
			deal.Slug = slug.Make(body.Title)
		}
	}
	deal.Category = category
	deal.MinTicket = body.MinTicket
	deal.MaxTicket = body.MaxTicket
	deal.TotalRaise = body.TotalRaise
	deal.TargetReturn = body.TargetReturn
	deal.TermMonths = body.TermMonths
	deal.RiskLevel = body.RiskLevel
	deal.Content = body.Content
	deal.OpensAt = body.OpensAt
	deal.ClosesAt = body.ClosesAt
	if body.Currency != "" {
		deal.Currency = body.Currency
	}

	if err := s.DB.Save(&deal).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error()})
	}
	return c.JSON(fiber.Map{"success": true, "deal": deal})
}

// UpdateDealStatus handles PATCH /api/deals/:id/status. Transitions only move
// forward: draft → active → closed.
func (s *DealService) UpdateDealStatus(c *fiber.Ctx) error {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil || body.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "status is required"})
	}

	var deal models.Deal
	if err := s.DB.First(&deal, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": "deal not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "DB error"})
	}

	if !validDealTransition(deal.Status, body.Status) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid status transition from " + deal.Status + " to " + body.Status,
		})
	}

	deal.Status = body.Status
	if err := s.DB.Save(&deal).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error()})
	}
	return c.JSON(fiber.Map{"success": true, "deal": deal})
}

func validDealTransition(from, to string) bool {
	switch from {
	case models.DealStatusDraft:
		return to == models.DealStatusActive
	case models.DealStatusActive:
		return to == models.DealStatusClosed
	default:
		return false
	}
}

// DeleteDeal handles DELETE /api/deals/:id. Drafts only — a deal that has
// been visible to investors stays queryable.
func (s *DealService) DeleteDeal(c *fiber.Ctx) error {
	var deal models.Deal
	if err := s.DB.First(&deal, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": "deal not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "DB error"})
	}
	if deal.Status != models.DealStatusDraft {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"success": false, "error": "only draft deals can be deleted"})
	}
	if err := s.DB.Delete(&deal).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error()})
	}
	return c.JSON(fiber.Map{"success": true})
}

// ActivateDueDeals opens drafts whose OpensAt has passed and closes active
// deals past ClosesAt. Called from the scheduler; exposed for tests.
func (s *DealService) ActivateDueDeals(now time.Time) {
	var toOpen []models.Deal
	if err := s.DB.Where("status = ? AND opens_at IS NOT NULL AND opens_at <= ?", models.DealStatusDraft, now).
		Find(&toOpen).Error; err != nil {
		log.Printf("[Scheduler] DB error: %v", err)
		return
	}
	for _, d := range toOpen {
		d.Status = models.DealStatusActive
		if err := s.DB.Save(&d).Error; err != nil {
			log.Printf("[Scheduler] Failed to activate deal %s: %v", d.ID, err)
		} else {
			log.Printf("✅ Auto-activated deal: %s", d.Slug)
		}
	}

	var toClose []models.Deal
	if err := s.DB.Where("status = ? AND closes_at IS NOT NULL AND closes_at <= ?", models.DealStatusActive, now).
		Find(&toClose).Error; err != nil {
		log.Printf("[Scheduler] DB error: %v", err)
		return
	}
	for _, d := range toClose {
		d.Status = models.DealStatusClosed
		if err := s.DB.Save(&d).Error; err != nil {
			log.Printf("[Scheduler] Failed to close deal %s: %v", d.ID, err)
		} else {
			log.Printf("✅ Auto-closed deal: %s", d.Slug)
		}
	}
}
