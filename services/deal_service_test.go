package services

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rwa-invest-backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func dealApp(svc *DealService) *fiber.App {
	app := fiber.New()
	app.Post("/api/deals", svc.CreateDeal)
	app.Put("/api/deals/:id", svc.UpdateDeal)
	app.Patch("/api/deals/:id/status", svc.UpdateDealStatus)
	app.Get("/api/deals/slug/:slug", svc.GetDealBySlug)
	return app
}

func validDealContent(category string) models.DealContent {
	content := models.DealContent{
		Category: category,
		Risks:    []map[string]interface{}{{"title": "Illiquidity", "severity": "high"}},
	}
	switch category {
	case models.DealCategoryRealEstate, models.DealCategoryInfra:
		content.MarketData = map[string]interface{}{"vacancy_rate": 0.04}
	case models.DealCategoryPrivateCredit:
		content.TrackRecord = map[string]interface{}{"default_rate": 0.01}
	}
	return content
}

func postDeal(t *testing.T, app *fiber.App, payload map[string]interface{}) *http.Response {
	t.Helper()
	raw, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/api/deals", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func TestCreateDealGeneratesSlug(t *testing.T) {
	db := newTestDB(t)
	issuer := seedIssuer(t, db)
	app := dealApp(NewDealService(db))

	resp := postDeal(t, app, map[string]interface{}{
		"issuer_id": issuer.ID,
		"title":     "Vienna Office Tower II",
		"category":  models.DealCategoryRealEstate,
		"content":   validDealContent(models.DealCategoryRealEstate),
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var deal models.Deal
	if err := db.First(&deal, "slug = ?", "vienna-office-tower-ii").Error; err != nil {
		t.Fatalf("expected slug derived from title: %v", err)
	}
	if deal.Status != models.DealStatusDraft {
		t.Fatalf("new deals must start as drafts, got %q", deal.Status)
	}
	if deal.Currency != "EUR" {
		t.Fatalf("expected EUR default currency, got %q", deal.Currency)
	}
}

func TestCreateDealValidatesContent(t *testing.T) {
	db := newTestDB(t)
	issuer := seedIssuer(t, db)
	app := dealApp(NewDealService(db))

	tests := []struct {
		name    string
		payload map[string]interface{}
	}{
		{
			name: "missing risks",
			payload: map[string]interface{}{
				"issuer_id": issuer.ID,
				"title":     "No Risks Disclosed",
				"category":  models.DealCategoryEntertainment,
				"content":   models.DealContent{Category: models.DealCategoryEntertainment},
			},
		},
		{
			name: "real estate without market data",
			payload: map[string]interface{}{
				"issuer_id": issuer.ID,
				"title":     "No Market Data",
				"category":  models.DealCategoryRealEstate,
				"content": models.DealContent{
					Category: models.DealCategoryRealEstate,
					Risks:    []map[string]interface{}{{"title": "x"}},
				},
			},
		},
		{
			name: "category mismatch",
			payload: map[string]interface{}{
				"issuer_id": issuer.ID,
				"title":     "Mismatched",
				"category":  models.DealCategoryRealEstate,
				"content":   validDealContent(models.DealCategoryPrivateCredit),
			},
		},
		{
			name: "unknown category",
			payload: map[string]interface{}{
				"issuer_id": issuer.ID,
				"title":     "Unknown",
				"category":  "CRYPTO",
				"content":   validDealContent(models.DealCategoryRealEstate),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postDeal(t, app, tt.payload)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", resp.StatusCode)
			}
		})
	}
}

func TestSlugImmutableOncePublished(t *testing.T) {
	db := newTestDB(t)
	issuer := seedIssuer(t, db)
	svc := NewDealService(db)
	app := dealApp(svc)

	resp := postDeal(t, app, map[string]interface{}{
		"issuer_id": issuer.ID,
		"title":     "Original Title",
		"category":  models.DealCategoryEntertainment,
		"content":   validDealContent(models.DealCategoryEntertainment),
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var deal models.Deal
	if err := db.First(&deal, "slug = ?", "original-title").Error; err != nil {
		t.Fatalf("lookup failed: %v", err)
	}

	// Retitle while still a draft: the slug follows.
	update := map[string]interface{}{
		"title":    "Draft Retitle",
		"category": models.DealCategoryEntertainment,
		"content":  validDealContent(models.DealCategoryEntertainment),
	}
	raw, _ := json.Marshal(update)
	req := httptest.NewRequest(http.MethodPut, "/api/deals/"+deal.ID, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if resp, err := app.Test(req); err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("draft update failed: %v / %d", err, resp.StatusCode)
	}
	db.First(&deal, "id = ?", deal.ID)
	if deal.Slug != "draft-retitle" {
		t.Fatalf("expected slug to track title in draft, got %q", deal.Slug)
	}

	// Publish, then retitle again: the slug must not move.
	statusRaw, _ := json.Marshal(map[string]string{"status": models.DealStatusActive})
	req = httptest.NewRequest(http.MethodPatch, "/api/deals/"+deal.ID+"/status", bytes.NewReader(statusRaw))
	req.Header.Set("Content-Type", "application/json")
	if resp, err := app.Test(req); err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("status update failed: %v / %d", err, resp.StatusCode)
	}

	update["title"] = "Published Retitle"
	raw, _ = json.Marshal(update)
	req = httptest.NewRequest(http.MethodPut, "/api/deals/"+deal.ID, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if resp, err := app.Test(req); err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("published update failed: %v / %d", err, resp.StatusCode)
	}
	db.First(&deal, "id = ?", deal.ID)
	if deal.Slug != "draft-retitle" {
		t.Fatalf("slug must be immutable once published, got %q", deal.Slug)
	}
	if deal.Title != "Published Retitle" {
		t.Fatalf("title itself stays editable, got %q", deal.Title)
	}
}

func TestDealStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{models.DealStatusDraft, models.DealStatusActive, true},
		{models.DealStatusActive, models.DealStatusClosed, true},
		{models.DealStatusDraft, models.DealStatusClosed, false},
		{models.DealStatusClosed, models.DealStatusActive, false},
		{models.DealStatusActive, models.DealStatusDraft, false},
		{models.DealStatusClosed, models.DealStatusDraft, false},
	}
	for _, tt := range tests {
		if got := validDealTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("validDealTransition(%s, %s) = %t, want %t", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestActivateDueDeals(t *testing.T) {
	db := newTestDB(t)
	issuer := seedIssuer(t, db)
	svc := NewDealService(db)

	now := time.Now()
	past := now.Add(-1 * time.Hour)
	future := now.Add(1 * time.Hour)

	dueDraft := models.Deal{
		ID: uuid.NewString(), IssuerID: issuer.ID, Title: "Due", Slug: "due",
		Category: models.DealCategoryEntertainment, Status: models.DealStatusDraft, OpensAt: &past,
	}
	notDueDraft := models.Deal{
		ID: uuid.NewString(), IssuerID: issuer.ID, Title: "Later", Slug: "later",
		Category: models.DealCategoryEntertainment, Status: models.DealStatusDraft, OpensAt: &future,
	}
	expiredActive := models.Deal{
		ID: uuid.NewString(), IssuerID: issuer.ID, Title: "Expired", Slug: "expired",
		Category: models.DealCategoryEntertainment, Status: models.DealStatusActive, ClosesAt: &past,
	}
	for _, d := range []models.Deal{dueDraft, notDueDraft, expiredActive} {
		if err := db.Create(&d).Error; err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	svc.ActivateDueDeals(now)

	var got models.Deal
	db.First(&got, "id = ?", dueDraft.ID)
	if got.Status != models.DealStatusActive {
		t.Errorf("due draft should be active, got %q", got.Status)
	}
	got = models.Deal{}
	db.First(&got, "id = ?", notDueDraft.ID)
	if got.Status != models.DealStatusDraft {
		t.Errorf("future draft should stay draft, got %q", got.Status)
	}
	got = models.Deal{}
	db.First(&got, "id = ?", expiredActive.ID)
	if got.Status != models.DealStatusClosed {
		t.Errorf("expired active deal should be closed, got %q", got.Status)
	}
}
