// Package transform maps raw POS API records onto the row types the console
// renders, and rows back onto request payloads. Every function here is pure.
package transform

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tillwork/posadmin/internal/domain"
)

// Func maps one wire record, with its position in the response, to a row.
type Func[W, T any] func(wire W, index int) T

// All applies fn to every record, preserving order.
func All[W, T any](wires []W, fn Func[W, T]) []T {
	out := make([]T, 0, len(wires))
	for i, w := range wires {
		out = append(out, fn(w, i))
	}
	return out
}

// pickID prefers the document id, then the plain id, then a positional one.
func pickID(objectID, id string, index int) string {
	if s := strings.TrimSpace(objectID); s != "" {
		return s
	}
	if s := strings.TrimSpace(id); s != "" {
		return s
	}
	if index < 0 {
		return ""
	}
	return fmt.Sprintf("row-%d", index+1)
}

// statusOf prefers the boolean flag and falls back to a textual status,
// defaulting to Active when neither is usable.
func statusOf(isActive *bool, status string) domain.Status {
	if isActive != nil {
		return domain.StatusFromActive(*isActive)
	}
	if parsed, err := domain.ParseStatus(status); err == nil {
		return parsed
	}
	return domain.StatusActive
}

func activeFlag(s domain.Status) *bool {
	active := s.IsActive()
	return &active
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

func decimalOr(v decimal.NullDecimal) decimal.Decimal {
	if v.Valid {
		return v.Decimal
	}
	return decimal.Zero
}

func nullDecimal(v decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: v, Valid: true}
}
