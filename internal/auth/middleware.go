package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/tillwork/posadmin/internal/domain"
	"github.com/tillwork/posadmin/internal/session"
	apperrors "github.com/tillwork/posadmin/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Principal represents the authenticated console session.
type Principal struct {
	SessionID string
	Profile   *domain.Profile
	Role      domain.StaffRole
}

// AuthMiddleware validates bearer tokens and checks that the session still
// holds remote credentials.
type AuthMiddleware struct {
	tokens *TokenManager
	store  session.Store
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, store session.Store) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, store: store}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	creds, err := m.store.Load(c.UserContext(), claims.SessionID)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if !creds.Authenticated() {
		return apperrors.NewUnauthorized("session expired, please sign in again")
	}

	principal := &Principal{SessionID: claims.SessionID, Profile: creds.User, Role: claims.Role}
	if creds.User != nil && creds.User.Role != "" {
		principal.Role = creds.User.Role
	}

	c.Locals(principalKey, principal)
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated session.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
