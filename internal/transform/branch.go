package transform

import "github.com/tillwork/posadmin/internal/domain"

// BranchWire is a branch as the POS API returns it.
type BranchWire struct {
	ObjectID  string `json:"_id,omitempty"`
	ID        string `json:"id,omitempty"`
	Code      string `json:"code,omitempty"`
	Name      string `json:"name"`
	Address   string `json:"address,omitempty"`
	Phone     string `json:"phone,omitempty"`
	IsActive  *bool  `json:"isActive,omitempty"`
	StatusRaw string `json:"status,omitempty"`
}

func BranchFromWire(w BranchWire, index int) domain.Branch {
	return domain.Branch{
		ID:      pickID(w.ObjectID, w.ID, index),
		Code:    w.Code,
		Name:    w.Name,
		Address: w.Address,
		Phone:   w.Phone,
		Status:  statusOf(w.IsActive, w.StatusRaw),
	}
}

func BranchToWire(b domain.Branch) BranchWire {
	return BranchWire{
		Code:     b.Code,
		Name:     b.Name,
		Address:  b.Address,
		Phone:    b.Phone,
		IsActive: activeFlag(b.Status),
	}
}
