// services/notification_service.go
package services

import (
	"errors"
	"time"

	"rwa-invest-backend/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type NotificationService struct {
	DB *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{DB: db}
}

// ListNotifications handles GET /api/users/:id/notifications.
func (s *NotificationService) ListNotifications(c *fiber.Ctx) error {
	var notifications []models.Notification
	if err := s.DB.Where("user_id = ?", c.Params("id")).
		Order("created_at DESC").
		Limit(100).
		Find(&notifications).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "failed to fetch notifications"})
	}
	return c.JSON(fiber.Map{"success": true, "notifications": notifications})
}

// MarkNotificationRead handles POST /api/notifications/:id/read.
func (s *NotificationService) MarkNotificationRead(c *fiber.Ctx) error {
	var notification models.Notification
	if err := s.DB.First(&notification, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": "notification not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "DB error"})
	}

	if notification.ReadAt == nil {
		now := time.Now()
		notification.ReadAt = &now
		if err := s.DB.Save(&notification).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error()})
		}
	}
	return c.JSON(fiber.Map{"success": true, "notification": notification})
}
