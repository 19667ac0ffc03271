package manager

import (
	"context"
	"fmt"

	"github.com/tillwork/posadmin/internal/filter"
	"github.com/tillwork/posadmin/internal/toast"
)

// ModalMode is the state of the page's single form.
type ModalMode string

const (
	ModalClosed   ModalMode = "closed"
	ModalCreating ModalMode = "creating"
	ModalEditing  ModalMode = "editing"
)

// Modal is the form slot. Form is always a private copy; edits reach the
// collection only through a successful Submit.
type Modal[T any] struct {
	Mode     ModalMode `json:"mode"`
	TargetID string    `json:"targetId,omitempty"`
	Form     *T        `json:"form,omitempty"`
}

func (m Modal[T]) clone() Modal[T] {
	out := Modal[T]{Mode: m.Mode, TargetID: m.TargetID}
	if out.Mode == "" {
		out.Mode = ModalClosed
	}
	if m.Form != nil {
		cloned := cloneOne(*m.Form)
		out.Form = &cloned
	}
	return out
}

func cloneOne[T any](v T) T {
	if c, ok := any(v).(interface{ Clone() T }); ok {
		return c.Clone()
	}
	return v
}

// Snapshot is the renderable state of a page.
type Snapshot[T any] struct {
	Resource      string       `json:"resource"`
	Items         []T          `json:"items"`
	Total         int          `json:"total"`
	Filter        filter.State `json:"filter"`
	Dimensions    []string     `json:"dimensions"`
	Selected      []string     `json:"selected"`
	Modal         Modal[T]     `json:"modal"`
	Toast         *toast.Toast `json:"toast,omitempty"`
	Loading       bool         `json:"loading"`
	Loaded        bool         `json:"loaded"`
	ActionLoading bool         `json:"actionLoading"`
}

// Modal returns a copy of the form slot.
func (m *Manager[T]) Modal() Modal[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.modal.clone()
}

// OpenCreate opens a blank form. It is a no-op while rows are selected,
// since bulk mode and create mode exclude each other.
func (m *Manager[T]) OpenCreate() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.selected) > 0 {
		return false
	}
	var blank T
	if m.def.Blank != nil {
		blank = m.def.Blank()
	}
	m.modal = Modal[T]{Mode: ModalCreating, Form: &blank}
	return true
}

// OpenEdit opens the form on a copy of entity.
func (m *Manager[T]) OpenEdit(entity T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	form := entity.Clone()
	m.modal = Modal[T]{Mode: ModalEditing, TargetID: entity.EntityID(), Form: &form}
}

// OpenEditByID opens the form on the collection row with the given id.
func (m *Manager[T]) OpenEditByID(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := indexOf(m.items, id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	form := m.items[i].Clone()
	m.modal = Modal[T]{Mode: ModalEditing, TargetID: id, Form: &form}
	return nil
}

// SetForm replaces the draft in the open form.
func (m *Manager[T]) SetForm(draft T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.modal.Mode == ModalClosed || m.modal.Mode == "" {
		return ErrNoModal
	}
	form := draft.Clone()
	m.modal.Form = &form
	return nil
}

// CloseModal discards the form.
func (m *Manager[T]) CloseModal() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modal = Modal[T]{Mode: ModalClosed}
}

// Submit saves the open form: create in Creating mode, update in Editing mode.
func (m *Manager[T]) Submit(ctx context.Context) (T, error) {
	m.mu.Lock()
	modal := m.modal.clone()
	m.mu.Unlock()

	var zero T
	if modal.Form == nil {
		return zero, ErrNoModal
	}
	switch modal.Mode {
	case ModalCreating:
		return m.Create(ctx, *modal.Form)
	case ModalEditing:
		return m.Update(ctx, modal.TargetID, *modal.Form)
	}
	return zero, ErrNoModal
}
