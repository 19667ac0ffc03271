package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tillwork/posadmin/internal/api/dto"
	"github.com/tillwork/posadmin/internal/workspace"
)

// BranchesHandler resolves branch references for the console.
type BranchesHandler struct {
	registry *workspace.Registry
}

// NewBranchesHandler constructs handler.
func NewBranchesHandler(registry *workspace.Registry) *BranchesHandler {
	return &BranchesHandler{registry: registry}
}

// Resolve handles GET /branches/resolve/:code.
func (h *BranchesHandler) Resolve(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	ref := param(c, "code")
	id, err := h.registry.ResolveBranch(c.UserContext(), principal.SessionID, ref)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.BranchResolveResponse{Ref: ref, ID: id}})
}
