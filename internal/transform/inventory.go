package transform

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tillwork/posadmin/internal/domain"
)

// InventoryWire is a stock line as the POS API returns it.
type InventoryWire struct {
	ObjectID     string              `json:"_id,omitempty"`
	ID           string              `json:"id,omitempty"`
	SKU          string              `json:"sku,omitempty"`
	Name         string              `json:"name,omitempty"`
	ItemName     string              `json:"itemName,omitempty"`
	Category     string              `json:"category,omitempty"`
	BranchID     string              `json:"branchId,omitempty"`
	Quantity     decimal.NullDecimal `json:"quantity"`
	Unit         string              `json:"unit,omitempty"`
	ReorderLevel decimal.NullDecimal `json:"reorderLevel"`
	UnitCost     decimal.NullDecimal `json:"unitCost"`
	IsActive     *bool               `json:"isActive,omitempty"`
	StatusRaw    string              `json:"status,omitempty"`
}

func InventoryFromWire(w InventoryWire, index int) domain.InventoryItem {
	return domain.InventoryItem{
		ID:           pickID(w.ObjectID, w.ID, index),
		SKU:          w.SKU,
		Name:         firstNonEmpty(w.Name, w.ItemName),
		Category:     w.Category,
		BranchID:     w.BranchID,
		Quantity:     decimalOr(w.Quantity),
		Unit:         stockUnit(w.Unit),
		ReorderLevel: decimalOr(w.ReorderLevel),
		UnitCost:     decimalOr(w.UnitCost),
		Status:       statusOf(w.IsActive, w.StatusRaw),
	}
}

func InventoryToWire(i domain.InventoryItem) InventoryWire {
	return InventoryWire{
		SKU:          i.SKU,
		Name:         i.Name,
		Category:     i.Category,
		BranchID:     i.BranchID,
		Quantity:     nullDecimal(i.Quantity),
		Unit:         string(i.Unit),
		ReorderLevel: nullDecimal(i.ReorderLevel),
		UnitCost:     nullDecimal(i.UnitCost),
		IsActive:     activeFlag(i.Status),
	}
}

func stockUnit(raw string) domain.StockUnit {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "kg", "kilogram", "kilograms":
		return domain.UnitKilogram
	case "l", "liter", "litre", "liters":
		return domain.UnitLiter
	}
	return domain.UnitPiece
}
