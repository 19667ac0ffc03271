package domain

import "github.com/shopspring/decimal"

// StockUnit is the unit an inventory quantity is counted in.
type StockUnit string

const (
	UnitPiece    StockUnit = "pcs"
	UnitKilogram StockUnit = "kg"
	UnitLiter    StockUnit = "l"
)

// InventoryItem is a stock line held at one branch.
type InventoryItem struct {
	ID           string          `json:"id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name" validate:"required"`
	Category     string          `json:"category"`
	BranchID     string          `json:"branchId" validate:"required"`
	Quantity     decimal.Decimal `json:"quantity"`
	Unit         StockUnit       `json:"unit"`
	ReorderLevel decimal.Decimal `json:"reorderLevel"`
	UnitCost     decimal.Decimal `json:"unitCost"`
	Status       Status          `json:"status" validate:"required,oneof=Active Inactive"`
}

func (i InventoryItem) EntityID() string { return i.ID }

func (i InventoryItem) Clone() InventoryItem { return i }

// LowStock reports whether the quantity is at or below the reorder level.
func (i InventoryItem) LowStock() bool {
	return i.Quantity.LessThanOrEqual(i.ReorderLevel)
}

// StockValue is quantity times unit cost.
func (i InventoryItem) StockValue() decimal.Decimal {
	return i.Quantity.Mul(i.UnitCost)
}
