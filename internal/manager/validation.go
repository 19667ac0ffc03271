package manager

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var defaultValidator = validator.New(validator.WithRequiredStructEnabled())

// validate runs struct tag rules and then the definition's own check.
// Any failure is a ValidationFailed OpError and no remote call is made.
func (m *Manager[T]) validate(item T) error {
	fields := map[string]string{}
	if err := m.validator.Struct(item); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return &OpError{Op: OpValidate, Message: err.Error(), Err: err}
		}
		for _, fe := range verrs {
			fields[fe.Field()] = fieldMessage(fe)
		}
	}
	if len(fields) == 0 && m.def.Validate != nil {
		if err := m.def.Validate(item); err != nil {
			return &OpError{Op: OpValidate, Message: err.Error(), Err: err}
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return &OpError{Op: OpValidate, Message: joinFieldMessages(fields), Fields: fields}
}

func fieldMessage(fe validator.FieldError) string {
	name := humanize(fe.Field())
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "email":
		return name + " must be a valid email address"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", name, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gte", "min":
		return fmt.Sprintf("%s must be at least %s", name, fe.Param())
	}
	return fmt.Sprintf("%s is invalid", name)
}

func joinFieldMessages(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, fields[k])
	}
	return strings.Join(msgs, "; ")
}

// humanize turns "BranchID" into "Branch ID" and "SerialNumber" into "Serial number".
func humanize(field string) string {
	var b strings.Builder
	runes := []rune(field)
	for i, r := range runes {
		upper := r >= 'A' && r <= 'Z'
		if i > 0 && upper {
			prevLower := runes[i-1] >= 'a' && runes[i-1] <= 'z'
			nextLower := i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z'
			if prevLower || nextLower {
				b.WriteRune(' ')
			}
			if nextLower {
				r = r - 'A' + 'a'
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}
