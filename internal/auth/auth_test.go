package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillwork/posadmin/internal/domain"
	"github.com/tillwork/posadmin/internal/session"
	apperrors "github.com/tillwork/posadmin/pkg/util/errorutil"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	token, exp, err := tm.GenerateToken("s1", &domain.Profile{ID: "u1", Role: domain.StaffRoleManager})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "s1", claims.SessionID)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, domain.StaffRoleManager, claims.Role)
}

func TestTokenRejectsForeignAndExpired(t *testing.T) {
	tm := NewTokenManager("secret", time.Minute)
	token, _, err := tm.GenerateToken("s1", nil)
	require.NoError(t, err)

	_, err = NewTokenManager("other", time.Minute).ParseToken(token)
	assert.Error(t, err)

	later := NewTokenManager("secret", time.Minute)
	later.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = later.ParseToken(token)
	assert.Error(t, err)

	_, _, err = tm.GenerateToken("", nil)
	assert.Error(t, err)
}

func newApp(t *testing.T, store session.Store, tm *TokenManager, roles ...domain.StaffRole) *fiber.App {
	t.Helper()
	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		var code int
		if fe, ok := err.(*fiber.Error); ok {
			code = fe.Code
		} else {
			code = apperrors.ToDomainError(err).HTTPStatus
		}
		return c.SendStatus(code)
	}})
	mw := NewAuthMiddleware(tm, store)
	app.Get("/me", mw.Handle, RequireRole(roles...), func(c *fiber.Ctx) error {
		p, ok := PrincipalFromContext(c)
		if !ok {
			return c.SendStatus(http.StatusInternalServerError)
		}
		return c.SendString(p.SessionID + ":" + string(p.Role))
	})
	return app
}

func TestMiddleware(t *testing.T) {
	store := session.NewMemoryStore()
	tm := NewTokenManager("secret", time.Hour)
	require.NoError(t, store.Save(context.Background(), "s1", domain.Credentials{
		AccessToken: "tok",
		User:        &domain.Profile{ID: "u1", Role: domain.StaffRoleCashier},
	}))
	live, _, err := tm.GenerateToken("s1", &domain.Profile{ID: "u1", Role: domain.StaffRoleCashier})
	require.NoError(t, err)
	gone, _, err := tm.GenerateToken("s2", nil)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		roles  []domain.StaffRole
		want   int
	}{
		{name: "missing header", want: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", want: http.StatusUnauthorized},
		{name: "bad token", header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "signed out session", header: "Bearer " + gone, want: http.StatusUnauthorized},
		{name: "ok", header: "Bearer " + live, want: http.StatusOK},
		{name: "role allowed", header: "Bearer " + live, roles: []domain.StaffRole{domain.StaffRoleCashier}, want: http.StatusOK},
		{name: "role denied", header: "Bearer " + live, roles: []domain.StaffRole{domain.StaffRoleAdmin}, want: http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newApp(t, store, tm, tt.roles...)
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}
