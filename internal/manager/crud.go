package manager

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/tillwork/posadmin/internal/events"
)

// Create validates data, sends it to the API and, on success, adds the
// returned record to the collection, closes the form and shows a success
// toast. On failure the state, including an open form, is left untouched.
func (m *Manager[T]) Create(ctx context.Context, data T) (T, error) {
	var zero T
	if err := m.validate(data); err != nil {
		return zero, m.failWith(ctx, err.(*OpError))
	}
	if !m.beginAction() {
		return zero, ErrClosed
	}
	defer m.endAction()

	callCtx, cancel := m.callContext(ctx)
	defer cancel()
	created, err := m.svc.Create(callCtx, data)
	if m.isClosed() {
		return zero, ErrClosed
	}
	if err != nil {
		return zero, m.fail(ctx, OpCreate, fmt.Sprintf("Failed to create %s: %s", strings.ToLower(m.def.Singular), err.Error()), err)
	}

	m.settleWrite(ctx, created.EntityID(), created, fmt.Sprintf("%s created successfully", m.def.Singular))
	m.publish(ctx, events.EventEntityCreated, events.EntityPayload{EntityID: created.EntityID()})
	return created.Clone(), nil
}

// Update validates data and replaces the row with the given id. Semantics
// mirror Create.
func (m *Manager[T]) Update(ctx context.Context, id string, data T) (T, error) {
	var zero T
	if err := m.validate(data); err != nil {
		return zero, m.failWith(ctx, err.(*OpError))
	}
	if !m.beginAction() {
		return zero, ErrClosed
	}
	defer m.endAction()

	callCtx, cancel := m.callContext(ctx)
	defer cancel()
	updated, err := m.svc.Update(callCtx, id, data)
	if m.isClosed() {
		return zero, ErrClosed
	}
	if err != nil {
		return zero, m.fail(ctx, OpUpdate, fmt.Sprintf("Failed to update %s: %s", strings.ToLower(m.def.Singular), err.Error()), err)
	}

	m.settleWrite(ctx, id, updated, fmt.Sprintf("%s updated successfully", m.def.Singular))
	m.publish(ctx, events.EventEntityUpdated, events.EntityPayload{EntityID: id})
	return updated.Clone(), nil
}

// settleWrite closes the form and shows the success toast, then reloads when
// the write calls for it. A reload failure surfaces through Load's own toast,
// not as a failed write.
func (m *Manager[T]) settleWrite(ctx context.Context, id string, saved T, message string) {
	reload := m.reload || saved.EntityID() == ""

	m.mu.Lock()
	m.modal = Modal[T]{Mode: ModalClosed}
	if !reload {
		if i := indexOf(m.items, id); i >= 0 {
			m.items[i] = saved.Clone()
		} else {
			m.items = append(m.items, saved.Clone())
		}
		m.invalidateLocked()
	}
	m.mu.Unlock()

	m.toasts.Success(message)
	if !reload {
		return
	}
	if err := m.Load(ctx); err != nil {
		m.logger.Warn("reload after write failed", zap.Error(err))
	}
}
