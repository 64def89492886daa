package services

import (
	"encoding/json"
	"errors"
	"log"
	"os"

	"rwa-invest-backend/models"
	"rwa-invest-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// WebhookService is the entry point for identity-provider notifications.
// Nothing mutates until the HMAC signature over the raw body checks out.
type WebhookService struct {
	Users  *UserService
	Secret string
}

func NewWebhookService(users *UserService) *WebhookService {
	secret := os.Getenv("CLERK_WEBHOOK_SECRET")
	if secret == "" {
		log.Fatal("❌ CLERK_WEBHOOK_SECRET is not set — cannot verify identity webhooks")
	}
	return &WebhookService{Users: users, Secret: secret}
}

// HandleClerkWebhook handles POST /api/webhooks/clerk.
func (s *WebhookService) HandleClerkWebhook(c *fiber.Ctx) error {
	// c.Body() is the raw transport body — the signature must be computed
	// over these exact bytes, never a re-serialized payload.
	rawBody := c.Body()
	sigHeader := c.Get("x-clerk-signature")

	if !utils.VerifyWebhookSignature(rawBody, sigHeader, s.Secret) {
		log.Printf("🚫 [WEBHOOK] Rejected delivery with bad signature (%d bytes)", len(rawBody))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "invalid webhook signature",
		})
	}

	var event models.ClerkWebhookEvent
	if err := json.Unmarshal(rawBody, &event); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid webhook payload",
		})
	}

	log.Printf("📨 [WEBHOOK] Received %s", event.Type)

	switch event.Type {
	case "user.created":
		var identity models.ClerkUserData
		if err := json.Unmarshal(event.Data, &identity); err != nil {
			return badPayload(c)
		}
		user, err := s.Users.CreateUser(identity)
		if err != nil {
			return webhookError(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "user_id": user.ID})

	case "user.updated":
		var identity models.ClerkUserData
		if err := json.Unmarshal(event.Data, &identity); err != nil {
			return badPayload(c)
		}
		user, err := s.Users.UpdateUser(identity)
		if err != nil {
			return webhookError(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "user_id": user.ID})

	case "user.deleted":
		var deleted models.ClerkDeletedData
		if err := json.Unmarshal(event.Data, &deleted); err != nil {
			return badPayload(c)
		}
		if _, err := s.Users.DeleteUser(deleted.ID); err != nil {
			return webhookError(c, err)
		}
		return c.JSON(fiber.Map{"success": true})

	default:
		// Unknown event types are acknowledged so the provider stops retrying.
		log.Printf("[WEBHOOK] Ignoring unhandled event type %s", event.Type)
		return c.JSON(fiber.Map{"success": true})
	}
}

func badPayload(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"error":   "invalid event data",
	})
}

func webhookError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	if errors.Is(err, ErrNoUsableEmail) {
		status = fiber.StatusBadRequest
	}
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}
