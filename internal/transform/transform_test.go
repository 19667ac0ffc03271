package transform

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillwork/posadmin/internal/domain"
)

func decodeWire[W any](t *testing.T, raw string) W {
	t.Helper()
	var w W
	require.NoError(t, json.Unmarshal([]byte(raw), &w))
	return w
}

func TestStaffFromWire(t *testing.T) {
	w := decodeWire[StaffWire](t, `{"_id":"665f","fullName":"Ahmed Ali","role":"MANAGER","isActive":false,"branchId":"b1"}`)

	got := StaffFromWire(w, 0)

	assert.Equal(t, domain.StaffMember{
		ID:       "665f",
		Name:     "Ahmed Ali",
		Role:     domain.StaffRoleManager,
		BranchID: "b1",
		Status:   domain.StatusInactive,
	}, got)
}

func TestStatusDefaults(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want domain.Status
	}{
		{name: "flag wins over text", raw: `{"isActive":true,"status":"inactive"}`, want: domain.StatusActive},
		{name: "text status", raw: `{"status":"INACTIVE"}`, want: domain.StatusInactive},
		{name: "missing defaults to active", raw: `{}`, want: domain.StatusActive},
		{name: "garbage defaults to active", raw: `{"status":"pending"}`, want: domain.StatusActive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := decodeWire[BranchWire](t, tt.raw)
			assert.Equal(t, tt.want, BranchFromWire(w, 0).Status)
		})
	}
}

func TestPositionalIDFallback(t *testing.T) {
	wires := []CustomerWire{{Name: "A"}, {ID: "c-2", Name: "B"}, {Name: "C"}}

	rows := All(wires, CustomerFromWire)

	require.Len(t, rows, 3)
	assert.Equal(t, "row-1", rows[0].ID)
	assert.Equal(t, "c-2", rows[1].ID)
	assert.Equal(t, "row-3", rows[2].ID)
}

func TestTransformIsDeterministic(t *testing.T) {
	w := decodeWire[MenuItemWire](t, `{"id":"m1","name":"Latte","price":"4.50","modifiers":["oat"],"isAvailable":false}`)

	first := MenuItemFromWire(w, 3)
	second := MenuItemFromWire(w, 3)

	assert.Equal(t, first, second)
	assert.True(t, decimal.RequireFromString("4.5").Equal(first.Price))
	assert.Equal(t, domain.StatusInactive, first.Status)

	first.Modifiers[0] = "soy"
	assert.Equal(t, "oat", w.Modifiers[0])
}

func TestInventoryNumericFields(t *testing.T) {
	w := decodeWire[InventoryWire](t, `{"_id":"i1","itemName":"Flour","quantity":12.5,"unit":"Kilogram","reorderLevel":"20"}`)

	got := InventoryFromWire(w, 0)

	assert.Equal(t, "Flour", got.Name)
	assert.Equal(t, domain.UnitKilogram, got.Unit)
	assert.Equal(t, "12.5", got.Quantity.String())
	assert.True(t, got.UnitCost.IsZero())
	assert.True(t, got.LowStock())
}

func TestTerminalRoundTripFields(t *testing.T) {
	w := decodeWire[TerminalWire](t, `{"id":"t1","deviceName":"Front Till","branch":"b2","connectionStatus":"connected"}`)

	row := TerminalFromWire(w, 0)
	assert.Equal(t, "Front Till", row.Name)
	assert.Equal(t, "b2", row.BranchID)
	assert.Equal(t, domain.TerminalOnline, row.State)

	back := TerminalToWire(row)
	assert.Equal(t, "online", back.Connection)
	require.NotNil(t, back.IsActive)
	assert.True(t, *back.IsActive)
}

func TestVendorToWire(t *testing.T) {
	out, err := json.Marshal(VendorToWire(domain.Vendor{Name: "Acme", Status: domain.StatusInactive}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"companyName":"Acme","isActive":false}`, string(out))
}

func TestProfileFromWire(t *testing.T) {
	w := decodeWire[StaffWire](t, `{"id":"u1","name":"Sara","email":"sara@example.com","role":"owner"}`)

	assert.Equal(t, domain.Profile{
		ID:    "u1",
		Name:  "Sara",
		Email: "sara@example.com",
		Role:  domain.StaffRoleAdmin,
	}, ProfileFromWire(w))
}
