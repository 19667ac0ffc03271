package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tillwork/posadmin/internal/service"
)

// ActivityHandler serves the session's recent change feed.
type ActivityHandler struct {
	notifications *service.NotificationService
}

// NewActivityHandler constructs handler.
func NewActivityHandler(notifications *service.NotificationService) *ActivityHandler {
	return &ActivityHandler{notifications: notifications}
}

// Recent handles GET /activity.
func (h *ActivityHandler) Recent(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	limit := c.QueryInt("limit", 20)
	return c.JSON(fiber.Map{"data": h.notifications.Recent(principal.SessionID, limit)})
}
