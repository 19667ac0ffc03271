package transform

import "github.com/tillwork/posadmin/internal/domain"

// CustomerWire is a loyalty customer as the POS API returns it.
type CustomerWire struct {
	ObjectID  string `json:"_id,omitempty"`
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Points    int    `json:"loyaltyPoints,omitempty"`
	IsActive  *bool  `json:"isActive,omitempty"`
	StatusRaw string `json:"status,omitempty"`
}

func CustomerFromWire(w CustomerWire, index int) domain.Customer {
	points := w.Points
	if points < 0 {
		points = 0
	}
	return domain.Customer{
		ID:            pickID(w.ObjectID, w.ID, index),
		Name:          w.Name,
		Email:         w.Email,
		Phone:         w.Phone,
		LoyaltyPoints: points,
		Status:        statusOf(w.IsActive, w.StatusRaw),
	}
}

func CustomerToWire(c domain.Customer) CustomerWire {
	return CustomerWire{
		Name:     c.Name,
		Email:    c.Email,
		Phone:    c.Phone,
		Points:   c.LoyaltyPoints,
		IsActive: activeFlag(c.Status),
	}
}

// VendorWire is a supplier as the POS API returns it.
type VendorWire struct {
	ObjectID    string `json:"_id,omitempty"`
	ID          string `json:"id,omitempty"`
	Name        string `json:"name,omitempty"`
	CompanyName string `json:"companyName,omitempty"`
	ContactName string `json:"contactPerson,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	IsActive    *bool  `json:"isActive,omitempty"`
	StatusRaw   string `json:"status,omitempty"`
}

func VendorFromWire(w VendorWire, index int) domain.Vendor {
	return domain.Vendor{
		ID:          pickID(w.ObjectID, w.ID, index),
		Name:        firstNonEmpty(w.CompanyName, w.Name),
		ContactName: w.ContactName,
		Email:       w.Email,
		Phone:       w.Phone,
		Status:      statusOf(w.IsActive, w.StatusRaw),
	}
}

func VendorToWire(v domain.Vendor) VendorWire {
	return VendorWire{
		CompanyName: v.Name,
		ContactName: v.ContactName,
		Email:       v.Email,
		Phone:       v.Phone,
		IsActive:    activeFlag(v.Status),
	}
}
