package manager

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tillwork/posadmin/internal/events"
)

// DeleteMany deletes ids concurrently, one call per id. The policy is best
// effort: ids whose call succeeded leave the collection and the selection,
// ids whose call failed stay in both. Any failure yields a DeleteFailed
// error carrying the failed and total counts; nothing is rolled back.
func (m *Manager[T]) DeleteMany(ctx context.Context, ids []string) error {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return nil
	}
	if !m.beginAction() {
		return ErrClosed
	}
	defer m.endAction()

	callCtx, cancel := m.callContext(ctx)
	defer cancel()

	errs := make([]error, len(ids))
	var g errgroup.Group
	g.SetLimit(m.bulkLimit)
	for i, id := range ids {
		g.Go(func() error {
			errs[i] = m.svc.Delete(callCtx, id)
			return nil
		})
	}
	_ = g.Wait()

	var deleted, failed []string
	var firstErr error
	for i, id := range ids {
		if errs[i] != nil {
			failed = append(failed, id)
			if firstErr == nil {
				firstErr = errs[i]
			}
			m.logger.Warn("delete failed", zap.String("id", id), zap.Error(errs[i]))
			continue
		}
		deleted = append(deleted, id)
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	m.removeLocked(deleted)
	m.mu.Unlock()

	m.publish(ctx, events.EventEntitiesDeleted, events.EntitiesDeletedPayload{
		Requested: len(ids),
		Deleted:   deleted,
		Failed:    failed,
	})

	if len(failed) > 0 {
		return m.failWith(ctx, &OpError{
			Op:      OpDelete,
			Message: fmt.Sprintf("Failed to delete %d of %d %s: %s", len(failed), len(ids), m.def.Plural, firstErr.Error()),
			Failed:  len(failed),
			Total:   len(ids),
			Err:     firstErr,
		})
	}

	if len(deleted) == 1 {
		m.toasts.Success(fmt.Sprintf("%s deleted successfully", m.def.Singular))
	} else {
		m.toasts.Success(fmt.Sprintf("%d %s deleted successfully", len(deleted), m.def.Plural))
	}
	return nil
}

// DeleteSelected deletes the current selection.
func (m *Manager[T]) DeleteSelected(ctx context.Context) error {
	return m.DeleteMany(ctx, m.Selected())
}

// Delete removes a single row.
func (m *Manager[T]) Delete(ctx context.Context, id string) error {
	return m.DeleteMany(ctx, []string{id})
}

func (m *Manager[T]) removeLocked(ids []string) {
	if len(ids) == 0 {
		return
	}
	gone := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		gone[id] = struct{}{}
		delete(m.selected, id)
	}
	kept := m.items[:0:0]
	for _, item := range m.items {
		if _, ok := gone[item.EntityID()]; !ok {
			kept = append(kept, item)
		}
	}
	m.items = kept
	if m.modal.Mode == ModalEditing {
		if _, ok := gone[m.modal.TargetID]; ok {
			m.modal = Modal[T]{Mode: ModalClosed}
		}
	}
	m.invalidateLocked()
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
