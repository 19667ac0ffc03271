package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/tillwork/posadmin/internal/api/dto"
	"github.com/tillwork/posadmin/internal/auth"
	"github.com/tillwork/posadmin/internal/domain"
	"github.com/tillwork/posadmin/internal/service"
	"github.com/tillwork/posadmin/internal/workspace"
)

// AuthHandler signs console sessions in and out.
type AuthHandler struct {
	accounts      *service.AccountService
	tokens        *auth.TokenManager
	registry      *workspace.Registry
	notifications *service.NotificationService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(accounts *service.AccountService, tokens *auth.TokenManager, registry *workspace.Registry, notifications *service.NotificationService) *AuthHandler {
	return &AuthHandler{accounts: accounts, tokens: tokens, registry: registry, notifications: notifications}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	sessionID := uuid.NewString()
	creds, err := h.accounts.Login(c.UserContext(), sessionID, service.LoginRequest{Email: req.Email, Password: req.Password})
	if err != nil {
		return err
	}
	return h.issue(c, http.StatusCreated, sessionID, creds)
}

// LoginPIN handles POST /auth/login/pin.
func (h *AuthHandler) LoginPIN(c *fiber.Ctx) error {
	var req dto.PINLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	sessionID := uuid.NewString()
	creds, err := h.accounts.LoginPIN(c.UserContext(), sessionID, service.PINLoginRequest{PIN: req.PIN})
	if err != nil {
		return err
	}
	return h.issue(c, http.StatusCreated, sessionID, creds)
}

// Refresh handles POST /auth/refresh. It rotates the remote tokens and
// extends the console token.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	creds, err := h.accounts.Refresh(c.UserContext(), principal.SessionID)
	if err != nil {
		return err
	}
	return h.issue(c, http.StatusOK, principal.SessionID, creds)
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	h.registry.Close(principal.SessionID)
	if h.notifications != nil {
		h.notifications.Forget(principal.SessionID)
	}
	if err := h.accounts.Logout(c.UserContext(), principal.SessionID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "signed_out"}})
}

// Profile handles GET /auth/profile.
func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	profile, err := h.accounts.Profile(c.UserContext(), principal.SessionID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": profile})
}

func (h *AuthHandler) issue(c *fiber.Ctx, status int, sessionID string, creds domain.Credentials) error {
	token, exp, err := h.tokens.GenerateToken(sessionID, creds.User)
	if err != nil {
		return err
	}
	h.registry.Open(sessionID)
	tenant := creds.TenantSlug
	if tenant == "" {
		tenant = creds.TenantID
	}
	return c.Status(status).JSON(fiber.Map{
		"data": dto.AuthResponse{Token: token, ExpiresAt: exp, User: creds.User, Tenant: tenant},
	})
}

func requirePrincipal(c *fiber.Ctx) (*auth.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil, fiber.NewError(http.StatusUnauthorized, "authentication required")
	}
	return principal, nil
}
