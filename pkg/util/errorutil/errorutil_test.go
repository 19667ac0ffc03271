package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

type coded struct{}

func (coded) Error() string     { return "upstream said no" }
func (coded) HTTPStatus() int   { return http.StatusConflict }
func (coded) ErrorCode() string { return "UPSTREAM_FAILED" }

func TestToDomainError(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))

	notFound := NewNotFound("branch", nil)
	got := ToDomainError(fmt.Errorf("wrapped: %w", notFound))
	assert.Equal(t, "NOT_FOUND", got.Code)
	assert.Equal(t, http.StatusNotFound, got.HTTPStatus)

	got = ToDomainError(fmt.Errorf("call: %w", coded{}))
	assert.Equal(t, "UPSTREAM_FAILED", got.Code)
	assert.Equal(t, http.StatusConflict, got.HTTPStatus)

	got = ToDomainError(errors.New("boom"))
	assert.Equal(t, "INTERNAL_ERROR", got.Code)
	assert.Equal(t, "internal server error", got.Message)
}

func TestFromStatus(t *testing.T) {
	tests := []struct {
		status int
		code   string
	}{
		{http.StatusBadRequest, "BAD_REQUEST"},
		{http.StatusUnauthorized, "UNAUTHORIZED"},
		{http.StatusConflict, "CONFLICT"},
		{http.StatusGatewayTimeout, "TIMEOUT"},
		{http.StatusBadGateway, "INTERNAL_ERROR"},
		{http.StatusTeapot, "REQUEST_FAILED"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.code, FromStatus(tt.status, "x").Code)
	}
}

func TestDomainErrorMessage(t *testing.T) {
	err := NewUpstreamError("sign in failed", errors.New("eof"))
	assert.Equal(t, "sign in failed: eof", err.Error())
	assert.ErrorContains(t, NewInternalError(nil), "internal server error")
}
