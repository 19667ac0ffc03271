package domain

import "time"

// Profile describes the signed-in back-office user.
type Profile struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Role     StaffRole `json:"role"`
	BranchID string    `json:"branchId,omitempty"`
}

// Credentials is the client state persisted between requests: remote tokens,
// the signed-in user and the tenant the calls are scoped to.
type Credentials struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	User         *Profile  `json:"user,omitempty"`
	TenantSlug   string    `json:"tenantSlug,omitempty"`
	TenantID     string    `json:"tenantId,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Authenticated reports whether an access token is present.
func (c Credentials) Authenticated() bool {
	return c.AccessToken != ""
}
