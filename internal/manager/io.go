package manager

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/tillwork/posadmin/internal/csvio"
	"github.com/tillwork/posadmin/internal/events"
)

// ImportResult summarizes an ImportCSV run.
type ImportResult struct {
	Imported int      `json:"imported"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors,omitempty"`
}

// ExportCSV writes the whole collection, not just the filtered view.
func (m *Manager[T]) ExportCSV(w io.Writer) error {
	return m.def.CSV.Encode(w, m.Items())
}

// ExportXLSX writes the whole collection as a workbook.
func (m *Manager[T]) ExportXLSX(w io.Writer) error {
	return m.def.CSV.EncodeXLSX(w, m.def.Plural, m.Items())
}

// ImportCSV parses r and creates every parsed row through the API, one at a
// time. Rows that fail to parse, validate or save are counted and reported;
// the collection is reloaded once at the end when anything was created.
func (m *Manager[T]) ImportCSV(ctx context.Context, r io.Reader) (ImportResult, error) {
	var res ImportResult
	rows, parseErr := m.def.CSV.DecodeLines(r)
	if parseErr != nil {
		var joined interface{ Unwrap() []error }
		if errors.As(parseErr, &joined) {
			for _, e := range joined.Unwrap() {
				res.Errors = append(res.Errors, e.Error())
			}
			res.Failed = len(joined.Unwrap())
		} else {
			res.Errors = append(res.Errors, parseErr.Error())
		}
		if len(rows) == 0 {
			return res, m.failWith(ctx, &OpError{
				Op:      OpImport,
				Message: fmt.Sprintf("Failed to import %s: %s", m.def.Plural, parseErr.Error()),
				Failed:  res.Failed,
				Err:     parseErr,
			})
		}
	}

	if !m.beginAction() {
		return res, ErrClosed
	}
	callCtx, cancel := m.callContext(ctx)
	for _, row := range rows {
		if err := m.validate(row.Item); err != nil {
			res.Failed++
			res.Errors = append(res.Errors, (&csvio.RowError{Line: row.Number, Err: err}).Error())
			continue
		}
		if _, err := m.svc.Create(callCtx, row.Item); err != nil {
			res.Failed++
			res.Errors = append(res.Errors, (&csvio.RowError{Line: row.Number, Err: err}).Error())
			continue
		}
		res.Imported++
	}
	cancel()
	m.endAction()

	if res.Imported > 0 {
		if err := m.Load(ctx); err != nil {
			return res, err
		}
	}
	m.publish(ctx, events.EventEntitiesImported, events.EntitiesImportedPayload{Imported: res.Imported, Failed: res.Failed})

	if res.Failed > 0 {
		return res, m.failWith(ctx, &OpError{
			Op:      OpImport,
			Message: fmt.Sprintf("Imported %d %s, %d failed", res.Imported, m.def.Plural, res.Failed),
			Failed:  res.Failed,
			Total:   res.Imported + res.Failed,
		})
	}
	m.toasts.Success(fmt.Sprintf("Imported %d %s", res.Imported, m.def.Plural))
	return res, nil
}
