package dto

import (
	"time"

	"github.com/tillwork/posadmin/internal/domain"
)

// LoginRequest payload for email sign in.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PINLoginRequest payload for PIN sign in.
type PINLoginRequest struct {
	PIN string `json:"pin"`
}

// AuthResponse is returned by every endpoint that starts or extends a
// console session.
type AuthResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	User      *domain.Profile `json:"user,omitempty"`
	Tenant    string          `json:"tenant,omitempty"`
}
