package transform

import (
	"strings"

	"github.com/tillwork/posadmin/internal/domain"
)

// StaffWire is a staff member as the POS API returns it.
type StaffWire struct {
	ObjectID  string `json:"_id,omitempty"`
	ID        string `json:"id,omitempty"`
	FullName  string `json:"fullName,omitempty"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Role      string `json:"role,omitempty"`
	BranchID  string `json:"branchId,omitempty"`
	HasPIN    bool   `json:"hasPin,omitempty"`
	IsActive  *bool  `json:"isActive,omitempty"`
	StatusRaw string `json:"status,omitempty"`
}

func StaffFromWire(w StaffWire, index int) domain.StaffMember {
	return domain.StaffMember{
		ID:       pickID(w.ObjectID, w.ID, index),
		Name:     firstNonEmpty(w.FullName, w.Name),
		Email:    w.Email,
		Phone:    w.Phone,
		Role:     staffRole(w.Role),
		BranchID: w.BranchID,
		HasPIN:   w.HasPIN,
		Status:   statusOf(w.IsActive, w.StatusRaw),
	}
}

func StaffToWire(s domain.StaffMember) StaffWire {
	return StaffWire{
		FullName: s.Name,
		Email:    s.Email,
		Phone:    s.Phone,
		Role:     strings.ToLower(string(s.Role)),
		BranchID: s.BranchID,
		IsActive: activeFlag(s.Status),
	}
}

func staffRole(raw string) domain.StaffRole {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "admin", "owner":
		return domain.StaffRoleAdmin
	case "manager":
		return domain.StaffRoleManager
	case "waiter", "server":
		return domain.StaffRoleWaiter
	case "chef", "kitchen":
		return domain.StaffRoleChef
	}
	return domain.StaffRoleCashier
}

// ProfileFromWire maps the signed-in user returned by the auth endpoints.
func ProfileFromWire(w StaffWire) domain.Profile {
	return domain.Profile{
		ID:       pickID(w.ObjectID, w.ID, -1),
		Name:     firstNonEmpty(w.FullName, w.Name),
		Email:    w.Email,
		Role:     staffRole(w.Role),
		BranchID: w.BranchID,
	}
}
