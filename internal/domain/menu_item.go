package domain

import "github.com/shopspring/decimal"

// MenuItem is a sellable dish or product.
type MenuItem struct {
	ID        string          `json:"id"`
	Name      string          `json:"name" validate:"required"`
	Category  string          `json:"category" validate:"required"`
	Price     decimal.Decimal `json:"price"`
	Modifiers []string        `json:"modifiers,omitempty"`
	Status    Status          `json:"status" validate:"required,oneof=Active Inactive"`
}

func (m MenuItem) EntityID() string { return m.ID }

func (m MenuItem) Clone() MenuItem {
	m.Modifiers = cloneStrings(m.Modifiers)
	return m
}
