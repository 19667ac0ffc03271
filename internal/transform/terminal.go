package transform

import (
	"strings"
	"time"

	"github.com/tillwork/posadmin/internal/domain"
)

// TerminalWire is a POS terminal as the POS API returns it.
type TerminalWire struct {
	ObjectID     string     `json:"_id,omitempty"`
	ID           string     `json:"id,omitempty"`
	Name         string     `json:"name,omitempty"`
	DeviceName   string     `json:"deviceName,omitempty"`
	SerialNumber string     `json:"serialNumber,omitempty"`
	Branch       string     `json:"branch,omitempty"`
	BranchID     string     `json:"branchId,omitempty"`
	Connection   string     `json:"connectionStatus,omitempty"`
	IsActive     *bool      `json:"isActive,omitempty"`
	StatusRaw    string     `json:"status,omitempty"`
	LastSeenAt   *time.Time `json:"lastSeenAt,omitempty"`
}

func TerminalFromWire(w TerminalWire, index int) domain.Terminal {
	t := domain.Terminal{
		ID:           pickID(w.ObjectID, w.ID, index),
		Name:         firstNonEmpty(w.Name, w.DeviceName),
		SerialNumber: w.SerialNumber,
		BranchID:     firstNonEmpty(w.BranchID, w.Branch),
		State:        terminalState(w.Connection),
		Status:       statusOf(w.IsActive, w.StatusRaw),
	}
	if w.LastSeenAt != nil {
		seen := *w.LastSeenAt
		t.LastSeen = &seen
	}
	return t
}

func TerminalToWire(t domain.Terminal) TerminalWire {
	return TerminalWire{
		Name:         t.Name,
		SerialNumber: t.SerialNumber,
		BranchID:     t.BranchID,
		Connection:   strings.ToLower(string(t.State)),
		IsActive:     activeFlag(t.Status),
	}
}

func terminalState(raw string) domain.TerminalState {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "online", "connected":
		return domain.TerminalOnline
	case "maintenance":
		return domain.TerminalMaintenance
	}
	return domain.TerminalOffline
}
