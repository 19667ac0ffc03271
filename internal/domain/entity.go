package domain

import (
	"fmt"
	"strings"
)

// Record is implemented by every back-office row type. Clone must return a
// deep copy so edit forms never alias the collection.
type Record[T any] interface {
	EntityID() string
	Clone() T
}

// Status is the activation state shared by all entities.
type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
)

// StatusFromActive maps the wire boolean to a Status.
func StatusFromActive(active bool) Status {
	if active {
		return StatusActive
	}
	return StatusInactive
}

// IsActive reports whether the status is Active.
func (s Status) IsActive() bool {
	return s == StatusActive
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// ParseStatus accepts Active/Inactive in any case, plus true/false.
func ParseStatus(raw string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "active", "true", "1":
		return StatusActive, nil
	case "inactive", "false", "0":
		return StatusInactive, nil
	}
	return "", fmt.Errorf("unknown status %q", raw)
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
