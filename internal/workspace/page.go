package workspace

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/tillwork/posadmin/internal/domain"
	"github.com/tillwork/posadmin/internal/filter"
	"github.com/tillwork/posadmin/internal/manager"
	"github.com/tillwork/posadmin/internal/toast"
)

// Page is a list manager with its row type erased, so transports can drive
// any page through one set of handlers. Rows cross it as JSON.
type Page interface {
	Resource() string
	Load(ctx context.Context) error
	View() any
	SetSearch(term string)
	SetFilter(dimension, value string)
	SetFilterState(state filter.State)
	ClearFilters()
	Select(id string, checked bool) bool
	SelectAll(checked bool)
	Selected() []string
	OpenCreate() bool
	OpenEditByID(id string) error
	CloseModal()
	SetFormJSON(raw []byte) error
	SubmitForm(ctx context.Context) (any, error)
	Delete(ctx context.Context, id string) error
	DeleteSelected(ctx context.Context) error
	ExportCSV(w io.Writer) error
	ExportXLSX(w io.Writer) error
	ImportCSV(ctx context.Context, r io.Reader) (manager.ImportResult, error)
	Toasts() *toast.Notifier
	Close()
}

type page[T domain.Record[T]] struct {
	*manager.Manager[T]
	toasts *toast.Notifier
}

func (p *page[T]) View() any { return p.Snapshot() }

// SetFormJSON merges raw onto the open form, so a client may send only the
// fields it changed.
func (p *page[T]) SetFormJSON(raw []byte) error {
	modal := p.Modal()
	if modal.Form == nil {
		return manager.ErrNoModal
	}
	draft := *modal.Form
	if err := json.Unmarshal(raw, &draft); err != nil {
		return fmt.Errorf("invalid form payload: %w", err)
	}
	return p.SetForm(draft)
}

func (p *page[T]) SubmitForm(ctx context.Context) (any, error) {
	return p.Submit(ctx)
}

func (p *page[T]) Close() {
	p.Manager.Close()
	p.toasts.Close()
}
