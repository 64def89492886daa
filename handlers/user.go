// handlers/user_routes.go
package handlers

import (
	"rwa-invest-backend/middleware"
	"rwa-invest-backend/services"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app *fiber.App, userService *services.UserService, webhookService *services.WebhookService, notificationService *services.NotificationService) {
	// Webhook deliveries authenticate with their own HMAC signature — they
	// bypass the gateway token check but nothing else.
	app.Post("/api/webhooks/clerk", webhookService.HandleClerkWebhook)

	api := app.Group("/api", middleware.UserContextMiddleware())

	api.Get("/users/me", userService.GetMe)
	api.Get("/users/:id/stats", userService.GetUserStats)
	api.Get("/users/:id/notifications", notificationService.ListNotifications)
	api.Post("/notifications/:id/read", notificationService.MarkNotificationRead)
}
