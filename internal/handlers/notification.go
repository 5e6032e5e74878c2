package handlers

import (
	"github.com/gofiber/fiber/v2"

	"quncipay/internal/services/notification"
	"quncipay/internal/utils/response"
)

type NotificationHandler struct {
	notifications *notification.Service
}

func NewNotificationHandler(svc *notification.Service) *NotificationHandler {
	return &NotificationHandler{notifications: svc}
}

// GetNotifications returns the recent user-visible notices for polling.
func (h *NotificationHandler) GetNotifications(c *fiber.Ctx) error {
	return response.Success(c, "notifications", h.notifications.Recent())
}
