package manager

import (
	"errors"
	"net/http"

	"github.com/tillwork/posadmin/pkg/util/errorutil"
)

// Op names the manager operation that failed.
type Op string

const (
	OpLoad     Op = "LoadFailed"
	OpCreate   Op = "CreateFailed"
	OpUpdate   Op = "UpdateFailed"
	OpDelete   Op = "DeleteFailed"
	OpValidate Op = "ValidationFailed"
	OpImport   Op = "ImportFailed"
)

// OpError is what every failing manager operation returns. Message is shown
// to the user verbatim as toast text.
type OpError struct {
	Op      Op
	Message string
	// Fields maps a form field to its validation message.
	Fields map[string]string
	// Failed and Total are set for bulk operations.
	Failed int
	Total  int
	Err    error
}

func (e *OpError) Error() string { return e.Message }

func (e *OpError) Unwrap() error { return e.Err }

// Is matches any OpError with the same Op.
func (e *OpError) Is(target error) bool {
	t, ok := target.(*OpError)
	return ok && t.Op == e.Op && t.Message == ""
}

// HTTPStatus implements errorutil.StatusCoder.
func (e *OpError) HTTPStatus() int {
	if e.Op == OpValidate {
		return http.StatusBadRequest
	}
	var coded errorutil.StatusCoder
	if e.Err != nil && errors.As(e.Err, &coded) {
		return coded.HTTPStatus()
	}
	return http.StatusBadGateway
}

// ErrorCode implements errorutil.StatusCoder.
func (e *OpError) ErrorCode() string {
	var coded errorutil.StatusCoder
	if e.Err != nil && errors.As(e.Err, &coded) && coded.HTTPStatus() == http.StatusUnauthorized {
		return coded.ErrorCode()
	}
	switch e.Op {
	case OpLoad:
		return "LOAD_FAILED"
	case OpCreate:
		return "CREATE_FAILED"
	case OpUpdate:
		return "UPDATE_FAILED"
	case OpDelete:
		return "DELETE_FAILED"
	case OpImport:
		return "IMPORT_FAILED"
	}
	return "VALIDATION_FAILED"
}

// Sentinels for errors.Is.
var (
	ErrLoadFailed       = &OpError{Op: OpLoad}
	ErrCreateFailed     = &OpError{Op: OpCreate}
	ErrUpdateFailed     = &OpError{Op: OpUpdate}
	ErrDeleteFailed     = &OpError{Op: OpDelete}
	ErrValidationFailed = &OpError{Op: OpValidate}
	ErrImportFailed     = &OpError{Op: OpImport}
)

// ErrClosed is returned by operations on a closed manager.
var ErrClosed = errors.New("manager closed")

// ErrNoModal is returned by Submit when no form is open.
var ErrNoModal = errors.New("no form is open")

// ErrNotFound is returned when an id is not in the collection.
var ErrNotFound = errors.New("entity not found")
