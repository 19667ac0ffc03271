// Package csvio imports and exports page collections as CSV, and exports
// them as XLSX workbooks. Columns are matched by header name on import, so
// column order in the file does not matter.
package csvio

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Column binds one CSV header to a field of T. A column with a nil Set is
// exported but ignored on import.
type Column[T any] struct {
	Header   string
	Get      func(T) string
	Set      func(*T, string) error
	Required bool
}

// Codec converts between []T and CSV.
type Codec[T any] struct {
	Columns []Column[T]
	// New returns the zero row each imported record starts from.
	New func() T
}

// RowError reports a problem with one data line of an import.
type RowError struct {
	Line   int
	Column string
	Err    error
}

func (e *RowError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d, column %q: %v", e.Line, e.Column, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// ErrMissingHeader is returned when a required column is absent.
var ErrMissingHeader = errors.New("missing required header column")

// Headers returns the header row.
func (c Codec[T]) Headers() []string {
	out := make([]string, len(c.Columns))
	for i, col := range c.Columns {
		out[i] = col.Header
	}
	return out
}

// Record returns the exported cells of one item.
func (c Codec[T]) Record(item T) []string {
	out := make([]string, len(c.Columns))
	for i, col := range c.Columns {
		out[i] = col.Get(item)
	}
	return out
}

// Encode writes a header row followed by one record per item.
func (c Codec[T]) Encode(w io.Writer, items []T) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(c.Headers()); err != nil {
		return err
	}
	for _, item := range items {
		if err := cw.Write(c.Record(item)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Line is one decoded row with the file line it started on.
type Line[T any] struct {
	Number int
	Item   T
}

// Decode parses a CSV document. Rows that fail to convert are skipped and
// reported together in the returned error; the rest are returned.
func (c Codec[T]) Decode(r io.Reader) ([]T, error) {
	lines, err := c.DecodeLines(r)
	if lines == nil {
		return nil, err
	}
	out := make([]T, len(lines))
	for i, l := range lines {
		out[i] = l.Item
	}
	return out, err
}

// DecodeLines is Decode keeping each row's line number, so later per-row
// failures can be reported in the same terms as parse failures.
func (c Codec[T]) DecodeLines(r io.Reader) ([]Line[T], error) {
	cr := csv.NewReader(stripBOM(bufio.NewReader(r)))
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty file", ErrMissingHeader)
		}
		return nil, err
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range c.Columns {
		if _, ok := index[strings.ToLower(col.Header)]; col.Required && !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingHeader, col.Header)
		}
	}

	var (
		out  []Line[T]
		errs []error
	)
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				errs = append(errs, &RowError{Line: parseErr.Line, Err: parseErr.Err})
				continue
			}
			errs = append(errs, err)
			break
		}
		line, _ := cr.FieldPos(0)
		if blank(record) {
			continue
		}
		item, rowErr := c.decodeRecord(record, index, line)
		if rowErr != nil {
			errs = append(errs, rowErr)
			continue
		}
		out = append(out, Line[T]{Number: line, Item: item})
	}
	return out, errors.Join(errs...)
}

func (c Codec[T]) decodeRecord(record []string, index map[string]int, line int) (T, error) {
	var item T
	if c.New != nil {
		item = c.New()
	}
	for _, col := range c.Columns {
		if col.Set == nil {
			continue
		}
		pos, ok := index[strings.ToLower(col.Header)]
		if !ok || pos >= len(record) {
			continue
		}
		value := strings.TrimSpace(record[pos])
		if value == "" && col.Required {
			return item, &RowError{Line: line, Column: col.Header, Err: errors.New("value required")}
		}
		if err := col.Set(&item, value); err != nil {
			return item, &RowError{Line: line, Column: col.Header, Err: err}
		}
	}
	return item, nil
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func stripBOM(r *bufio.Reader) *bufio.Reader {
	b, err := r.Peek(3)
	if err == nil && len(b) == 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		_, _ = r.Discard(3)
	}
	return r
}
