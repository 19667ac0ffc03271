// Package manager implements the list page state shared by every back-office
// screen: one collection fetched from the POS API, a filter and its derived
// view, a selection for bulk actions, a single create/edit form, and a toast.
package manager

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tillwork/posadmin/internal/csvio"
	"github.com/tillwork/posadmin/internal/domain"
	"github.com/tillwork/posadmin/internal/events"
	"github.com/tillwork/posadmin/internal/filter"
	"github.com/tillwork/posadmin/internal/observability"
	"github.com/tillwork/posadmin/internal/toast"
)

// Service is the remote collection a manager drives.
type Service[T any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, item T) (T, error)
	Update(ctx context.Context, id string, item T) (T, error)
	Delete(ctx context.Context, id string) error
}

// Definition describes one page: what it lists and how rows are filtered,
// sorted, defaulted, validated and exported.
type Definition[T any] struct {
	Resource string
	// Singular and Plural label the entity in toast messages.
	Singular string
	Plural   string
	Filter   filter.Spec[T]
	// Less, when set, orders the filtered view. Nil keeps collection order.
	Less     func(a, b T) bool
	Blank    func() T
	Validate func(T) error
	CSV      csvio.Codec[T]
}

// Options wires a manager to its collaborators. Zero values are usable.
type Options struct {
	SessionID  string
	Toasts     *toast.Notifier
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Validator  *validator.Validate
	// BulkConcurrency bounds parallel deletes. Defaults to 8.
	BulkConcurrency int
	// ReloadAfterWrite re-fetches the collection after create and update
	// instead of patching the returned record in.
	ReloadAfterWrite bool
}

// Manager owns the state of one list page for one console session.
type Manager[T domain.Record[T]] struct {
	def        Definition[T]
	svc        Service[T]
	toasts     *toast.Notifier
	ownsToasts bool
	dispatcher events.Dispatcher
	logger     *zap.Logger
	validator  *validator.Validate
	sessionID  string
	bulkLimit  int
	reload     bool

	life   context.Context
	cancel context.CancelFunc

	mu            sync.Mutex
	items         []T
	state         filter.State
	view          []T
	viewValid     bool
	selected      map[string]struct{}
	modal         Modal[T]
	loading       bool
	loaded        bool
	actionLoading int
	generation    uint64
	closed        bool
}

// New builds a manager. Call Close when the page goes away.
func New[T domain.Record[T]](def Definition[T], svc Service[T], opts Options) *Manager[T] {
	life, cancel := context.WithCancel(context.Background())
	m := &Manager[T]{
		def:        def,
		svc:        svc,
		toasts:     opts.Toasts,
		dispatcher: opts.Dispatcher,
		logger:     observability.OrNop(opts.Logger).With(zap.String("resource", def.Resource)),
		validator:  opts.Validator,
		sessionID:  opts.SessionID,
		bulkLimit:  opts.BulkConcurrency,
		reload:     opts.ReloadAfterWrite,
		life:       life,
		cancel:     cancel,
		selected:   make(map[string]struct{}),
	}
	if m.toasts == nil {
		m.toasts = toast.New(toast.DefaultTTL)
		m.ownsToasts = true
	}
	if m.validator == nil {
		m.validator = defaultValidator
	}
	if m.bulkLimit <= 0 {
		m.bulkLimit = 8
	}
	if m.def.Singular == "" {
		m.def.Singular = "Item"
	}
	if m.def.Plural == "" {
		m.def.Plural = strings.ToLower(m.def.Singular) + "s"
	}
	return m
}

// Resource returns the page's resource name.
func (m *Manager[T]) Resource() string { return m.def.Resource }

// Toasts exposes the page notifier.
func (m *Manager[T]) Toasts() *toast.Notifier { return m.toasts }

// Close cancels in-flight calls; their results are dropped.
func (m *Manager[T]) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.generation++
	m.mu.Unlock()

	m.cancel()
	if m.ownsToasts {
		m.toasts.Close()
	}
}

// Load fetches the full collection. On failure the collection is left empty
// and an error toast is shown. A Load superseded by a later Load, or by
// Close, does not touch state.
func (m *Manager[T]) Load(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	m.generation++
	gen := m.generation
	m.loading = true
	m.mu.Unlock()

	ctx, cancel := m.callContext(ctx)
	defer cancel()
	items, err := m.svc.List(ctx)

	m.mu.Lock()
	if m.closed || gen != m.generation {
		m.mu.Unlock()
		m.logger.Debug("dropping stale load result", zap.Uint64("generation", gen))
		return nil
	}
	m.loading = false
	if err != nil {
		m.items = nil
		m.loaded = false
		m.invalidateLocked()
		m.mu.Unlock()
		return m.fail(ctx, OpLoad, fmt.Sprintf("Failed to load %s: %s", m.def.Plural, err.Error()), err)
	}
	m.items = cloneAll(items)
	m.loaded = true
	m.invalidateLocked()
	count := len(m.items)
	m.mu.Unlock()

	m.logger.Debug("collection loaded", zap.Int("count", count))
	m.publish(ctx, events.EventCollectionLoaded, events.CollectionLoadedPayload{Count: count})
	return nil
}

// Items returns a copy of the whole collection.
func (m *Manager[T]) Items() []T {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneAll(m.items)
}

// FilteredView returns the rows matching the current filter, in collection
// order unless the definition sorts. It is recomputed only after the
// collection or the filter change.
func (m *Manager[T]) FilteredView() []T {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneAll(m.viewLocked())
}

// Filter returns the current filter state.
func (m *Manager[T]) Filter() filter.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone()
}

// SetSearch replaces the free-text term.
func (m *Manager[T]) SetSearch(term string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Search = term
	m.invalidateLocked()
}

// SetFilter sets one discrete dimension; an empty value unsets it.
func (m *Manager[T]) SetFilter(dimension, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if value == "" {
		delete(m.state.Discrete, dimension)
	} else {
		if m.state.Discrete == nil {
			m.state.Discrete = make(map[string]string)
		}
		m.state.Discrete[dimension] = value
	}
	m.invalidateLocked()
}

// SetFilterState replaces the whole filter.
func (m *Manager[T]) SetFilterState(state filter.State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state.Clone()
	m.invalidateLocked()
}

// ClearFilters resets search and every discrete dimension.
func (m *Manager[T]) ClearFilters() {
	m.SetFilterState(filter.State{})
}

// Select adds or removes one id. Ids outside the filtered view cannot be
// selected.
func (m *Manager[T]) Select(id string, checked bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !checked {
		delete(m.selected, id)
		return true
	}
	for _, item := range m.viewLocked() {
		if item.EntityID() == id {
			m.selected[id] = struct{}{}
			return true
		}
	}
	return false
}

// SelectAll selects exactly the filtered view, or clears the selection.
func (m *Manager[T]) SelectAll(checked bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selected = make(map[string]struct{})
	if !checked {
		return
	}
	for _, item := range m.viewLocked() {
		m.selected[item.EntityID()] = struct{}{}
	}
}

// Selected returns the selected ids in collection order.
func (m *Manager[T]) Selected() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selectedLocked()
}

// Snapshot captures everything a page needs to render.
func (m *Manager[T]) Snapshot() Snapshot[T] {
	m.mu.Lock()
	snap := Snapshot[T]{
		Resource:      m.def.Resource,
		Items:         cloneAll(m.viewLocked()),
		Total:         len(m.items),
		Filter:        m.state.Clone(),
		Dimensions:    m.def.Filter.Dimensions(),
		Selected:      m.selectedLocked(),
		Modal:         m.modal.clone(),
		Loading:       m.loading,
		Loaded:        m.loaded,
		ActionLoading: m.actionLoading > 0,
	}
	m.mu.Unlock()

	sort.Strings(snap.Dimensions)
	if t, ok := m.toasts.Current(); ok {
		snap.Toast = &t
	}
	return snap
}

func (m *Manager[T]) viewLocked() []T {
	if m.viewValid {
		return m.view
	}
	view := filter.Apply(m.items, m.def.Filter, m.state)
	if m.def.Less != nil {
		sort.SliceStable(view, func(i, j int) bool { return m.def.Less(view[i], view[j]) })
	}
	m.view = view
	m.viewValid = true
	return m.view
}

func (m *Manager[T]) invalidateLocked() {
	m.viewValid = false
	m.view = nil
	m.pruneSelectionLocked()
}

// pruneSelectionLocked keeps the selection a subset of the filtered view.
func (m *Manager[T]) pruneSelectionLocked() {
	if len(m.selected) == 0 {
		return
	}
	visible := make(map[string]struct{}, len(m.selected))
	for _, item := range m.viewLocked() {
		visible[item.EntityID()] = struct{}{}
	}
	for id := range m.selected {
		if _, ok := visible[id]; !ok {
			delete(m.selected, id)
		}
	}
}

func (m *Manager[T]) selectedLocked() []string {
	out := make([]string, 0, len(m.selected))
	for _, item := range m.items {
		if _, ok := m.selected[item.EntityID()]; ok {
			out = append(out, item.EntityID())
		}
	}
	return out
}

// callContext ties a call to both the caller and the manager's lifetime.
func (m *Manager[T]) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(m.life, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

func (m *Manager[T]) beginAction() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false
	}
	m.actionLoading++
	return true
}

func (m *Manager[T]) endAction() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.actionLoading > 0 {
		m.actionLoading--
	}
}

func (m *Manager[T]) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// fail shows msg as an error toast, publishes the failure and returns the OpError.
func (m *Manager[T]) fail(ctx context.Context, op Op, msg string, cause error) *OpError {
	opErr := &OpError{Op: op, Message: msg, Err: cause}
	return m.failWith(ctx, opErr)
}

func (m *Manager[T]) failWith(ctx context.Context, opErr *OpError) *OpError {
	m.toasts.Error(opErr.Message)
	m.logger.Warn("operation failed", zap.String("op", string(opErr.Op)), zap.Error(opErr))
	m.publish(ctx, events.EventOperationFailed, events.OperationFailedPayload{
		Operation: string(opErr.Op),
		Message:   opErr.Message,
	})
	return opErr
}

func (m *Manager[T]) publish(ctx context.Context, typ events.EventType, payload any) {
	if m.dispatcher == nil {
		return
	}
	err := m.dispatcher.Publish(context.WithoutCancel(ctx), events.Event{
		Type:      typ,
		SessionID: m.sessionID,
		Resource:  m.def.Resource,
		Payload:   payload,
	})
	if err != nil {
		m.logger.Warn("event handler failed", zap.String("event", string(typ)), zap.Error(err))
	}
}

func cloneAll[T domain.Record[T]](items []T) []T {
	if items == nil {
		return []T{}
	}
	out := make([]T, len(items))
	for i, item := range items {
		out[i] = item.Clone()
	}
	return out
}

func indexOf[T domain.Record[T]](items []T, id string) int {
	for i, item := range items {
		if item.EntityID() == id {
			return i
		}
	}
	return -1
}
