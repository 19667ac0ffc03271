package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/tillwork/posadmin/internal/api/dto"
	"github.com/tillwork/posadmin/internal/domain"
	"github.com/tillwork/posadmin/internal/service"
)

// StaffHandler exposes the staff actions that are not plain page CRUD.
type StaffHandler struct {
	accounts *service.AccountService
	staff    *service.StaffService
}

// NewStaffHandler constructs handler.
func NewStaffHandler(accounts *service.AccountService, staff *service.StaffService) *StaffHandler {
	return &StaffHandler{accounts: accounts, staff: staff}
}

// Create handles POST /staff.
func (h *StaffHandler) Create(c *fiber.Ctx) error {
	sessionID, actor, err := h.actor(c)
	if err != nil {
		return err
	}
	var req dto.StaffCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Status == "" {
		req.Status = domain.StatusActive
	}
	member, err := h.staff.CreateStaff(c.UserContext(), sessionID, actor, req.StaffMember, req.PIN)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": member})
}

// UpdatePIN handles POST /staff/:id/pin.
func (h *StaffHandler) UpdatePIN(c *fiber.Ctx) error {
	sessionID, actor, err := h.actor(c)
	if err != nil {
		return err
	}
	var req dto.StaffPINRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := h.staff.UpdateStaffPIN(c.UserContext(), sessionID, actor, param(c, "id"), req.PIN); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "pin_updated"}})
}

// ToggleStatus handles POST /staff/:id/toggle-status.
func (h *StaffHandler) ToggleStatus(c *fiber.Ctx) error {
	sessionID, actor, err := h.actor(c)
	if err != nil {
		return err
	}
	member, err := h.staff.ToggleStaffStatus(c.UserContext(), sessionID, actor, param(c, "id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": member})
}

// actor returns the signed-in user, fetching the profile when the session
// token did not carry it.
func (h *StaffHandler) actor(c *fiber.Ctx) (string, *domain.Profile, error) {
	principal, err := requirePrincipal(c)
	if err != nil {
		return "", nil, err
	}
	if principal.Profile != nil {
		return principal.SessionID, principal.Profile, nil
	}
	profile, err := h.accounts.Profile(c.UserContext(), principal.SessionID)
	if err != nil {
		return "", nil, err
	}
	return principal.SessionID, &profile, nil
}
