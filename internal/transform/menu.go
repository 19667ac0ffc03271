package transform

import (
	"github.com/shopspring/decimal"

	"github.com/tillwork/posadmin/internal/domain"
)

// MenuItemWire is a menu entry as the POS API returns it.
type MenuItemWire struct {
	ObjectID  string              `json:"_id,omitempty"`
	ID        string              `json:"id,omitempty"`
	Name      string              `json:"name"`
	Category  string              `json:"category,omitempty"`
	Price     decimal.NullDecimal `json:"price"`
	Modifiers []string            `json:"modifiers,omitempty"`
	Available *bool               `json:"isAvailable,omitempty"`
	IsActive  *bool               `json:"isActive,omitempty"`
	StatusRaw string              `json:"status,omitempty"`
}

func MenuItemFromWire(w MenuItemWire, index int) domain.MenuItem {
	active := w.IsActive
	if active == nil {
		active = w.Available
	}
	var modifiers []string
	if len(w.Modifiers) > 0 {
		modifiers = append([]string(nil), w.Modifiers...)
	}
	return domain.MenuItem{
		ID:        pickID(w.ObjectID, w.ID, index),
		Name:      w.Name,
		Category:  w.Category,
		Price:     decimalOr(w.Price),
		Modifiers: modifiers,
		Status:    statusOf(active, w.StatusRaw),
	}
}

func MenuItemToWire(m domain.MenuItem) MenuItemWire {
	return MenuItemWire{
		Name:      m.Name,
		Category:  m.Category,
		Price:     nullDecimal(m.Price),
		Modifiers: append([]string(nil), m.Modifiers...),
		IsActive:  activeFlag(m.Status),
	}
}
