package service

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tillwork/posadmin/internal/apiclient"
	"github.com/tillwork/posadmin/internal/domain"
	"github.com/tillwork/posadmin/internal/observability"
	"github.com/tillwork/posadmin/internal/session"
	"github.com/tillwork/posadmin/internal/transform"
	apperrors "github.com/tillwork/posadmin/pkg/util/errorutil"
)

// LoginRequest carries email/password credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// PINLoginRequest carries a terminal PIN.
type PINLoginRequest struct {
	PIN string `json:"pin" validate:"required,numeric,min=4,max=6"`
}

type loginResponse struct {
	AccessToken  string               `json:"accessToken"`
	Token        string               `json:"token"`
	RefreshToken string               `json:"refreshToken"`
	User         *transform.StaffWire `json:"user"`
	Tenant       *struct {
		ID   string `json:"_id"`
		Slug string `json:"slug"`
	} `json:"tenant"`
}

// AccountService signs console sessions in and out of the POS API and keeps
// their credentials in the session store.
type AccountService struct {
	clients  *session.Clients
	validate *validator.Validate
	logger   *zap.Logger
}

// NewAccountService builds the service.
func NewAccountService(clients *session.Clients, logger *zap.Logger) *AccountService {
	return &AccountService{
		clients:  clients,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   observability.OrNop(logger),
	}
}

// Login authenticates with email and password and stores the issued tokens
// under sessionID.
func (s *AccountService) Login(ctx context.Context, sessionID string, req LoginRequest) (domain.Credentials, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validate.Struct(req); err != nil {
		return domain.Credentials{}, apperrors.NewValidationError("email and password required", nil)
	}
	return s.signIn(ctx, sessionID, "/auth/login", req)
}

// LoginPIN authenticates with a staff PIN.
func (s *AccountService) LoginPIN(ctx context.Context, sessionID string, req PINLoginRequest) (domain.Credentials, error) {
	if err := s.validate.Struct(req); err != nil {
		return domain.Credentials{}, apperrors.NewValidationError("PIN must be 4 to 6 digits", nil)
	}
	return s.signIn(ctx, sessionID, "/auth/pin-login", req)
}

func (s *AccountService) signIn(ctx context.Context, sessionID, path string, body any) (domain.Credentials, error) {
	env := apiclient.Post[loginResponse](ctx, s.clients.Anonymous(), path, body)
	if err := env.Err(); err != nil {
		s.logger.Info("sign in rejected", zap.String("path", path), zap.Error(err))
		return domain.Credentials{}, err
	}
	access := env.Data.AccessToken
	if access == "" {
		access = env.Data.Token
	}
	if access == "" {
		return domain.Credentials{}, apperrors.NewUpstreamError("sign in response missing access token", nil)
	}

	creds := domain.Credentials{
		AccessToken:  access,
		RefreshToken: env.Data.RefreshToken,
		UpdatedAt:    time.Now().UTC(),
	}
	if env.Data.User != nil {
		profile := transform.ProfileFromWire(*env.Data.User)
		creds.User = &profile
	}
	if env.Data.Tenant != nil {
		creds.TenantID = env.Data.Tenant.ID
		creds.TenantSlug = env.Data.Tenant.Slug
	}

	s.clients.Forget(sessionID)
	if err := s.clients.Store().Save(ctx, sessionID, creds); err != nil {
		return domain.Credentials{}, apperrors.NewInternalError(err)
	}
	return creds, nil
}

// Refresh rotates the session's tokens. Failure ends the session.
func (s *AccountService) Refresh(ctx context.Context, sessionID string) (domain.Credentials, error) {
	client := s.clients.For(sessionID)
	if err := client.Refresh(ctx); err != nil {
		return domain.Credentials{}, err
	}
	return s.clients.Store().Load(ctx, sessionID)
}

// Logout tells the API, then forgets the session's credentials whatever the
// API answered.
func (s *AccountService) Logout(ctx context.Context, sessionID string) error {
	creds, err := s.clients.Store().Load(ctx, sessionID)
	if err == nil && creds.Authenticated() {
		env := apiclient.Call[json.RawMessage](ctx, s.clients.For(sessionID), apiclient.Request{
			Method: http.MethodPost,
			Path:   "/auth/logout",
			Body:   map[string]string{"refreshToken": creds.RefreshToken},
		})
		if env.Err() != nil && !apiclient.IsAuthExpired(env.Err()) {
			s.logger.Warn("remote logout failed", zap.Error(env.Err()))
		}
	}
	s.clients.Forget(sessionID)
	return s.clients.Store().Clear(ctx, sessionID)
}

// Profile returns the signed-in user, fetching it when the session only
// holds tokens.
func (s *AccountService) Profile(ctx context.Context, sessionID string) (domain.Profile, error) {
	creds, err := s.clients.Store().Load(ctx, sessionID)
	if err != nil {
		return domain.Profile{}, apperrors.NewInternalError(err)
	}
	if !creds.Authenticated() {
		return domain.Profile{}, apperrors.NewUnauthorized("not signed in")
	}
	if creds.User != nil {
		return *creds.User, nil
	}

	env := apiclient.Get[transform.StaffWire](ctx, s.clients.For(sessionID), "/auth/profile", nil)
	if err := env.Err(); err != nil {
		return domain.Profile{}, err
	}
	profile := transform.ProfileFromWire(env.Data)
	creds, err = s.clients.Store().Load(ctx, sessionID)
	if err != nil || !creds.Authenticated() {
		return profile, nil
	}
	creds.User = &profile
	if err := s.clients.Store().Save(ctx, sessionID, creds); err != nil {
		s.logger.Warn("caching profile", zap.Error(err))
	}
	return profile, nil
}
