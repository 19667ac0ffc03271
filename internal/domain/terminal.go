package domain

import "time"

// TerminalState is the connectivity state reported by a POS terminal.
type TerminalState string

const (
	TerminalOnline      TerminalState = "Online"
	TerminalOffline     TerminalState = "Offline"
	TerminalMaintenance TerminalState = "Maintenance"
)

// Terminal is a POS device registered to a branch.
type Terminal struct {
	ID           string        `json:"id"`
	Name         string        `json:"name" validate:"required"`
	SerialNumber string        `json:"serialNumber" validate:"required"`
	BranchID     string        `json:"branchId"`
	State        TerminalState `json:"state"`
	Status       Status        `json:"status" validate:"required,oneof=Active Inactive"`
	LastSeen     *time.Time    `json:"lastSeen,omitempty"`
}

func (t Terminal) EntityID() string { return t.ID }

func (t Terminal) Clone() Terminal {
	if t.LastSeen != nil {
		seen := *t.LastSeen
		t.LastSeen = &seen
	}
	return t
}
