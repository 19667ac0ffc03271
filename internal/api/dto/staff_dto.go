package dto

import "github.com/tillwork/posadmin/internal/domain"

// StaffCreateRequest payload for adding a staff member with a PIN.
type StaffCreateRequest struct {
	domain.StaffMember
	PIN string `json:"pin"`
}

// StaffPINRequest payload for setting a staff PIN.
type StaffPINRequest struct {
	PIN string `json:"pin"`
}

// BranchResolveResponse reports the id a branch reference resolved to.
type BranchResolveResponse struct {
	Ref string `json:"ref"`
	ID  string `json:"id"`
}
