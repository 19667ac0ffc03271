package apiclient

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantSuccess bool
		wantData    string
		wantMessage string
		wantKind    FailureKind
	}{
		{
			name:        "canonical envelope",
			status:      http.StatusOK,
			body:        `{"success":true,"data":{"id":"1"},"message":"ok"}`,
			wantSuccess: true,
			wantData:    `{"id":"1"}`,
			wantMessage: "ok",
		},
		{
			name:        "result wrapper",
			status:      http.StatusOK,
			body:        `{"result":{"id":"2"}}`,
			wantSuccess: true,
			wantData:    `{"id":"2"}`,
		},
		{
			name:        "result wins over data without success",
			status:      http.StatusOK,
			body:        `{"result":{"id":"2"},"data":"meta"}`,
			wantSuccess: true,
			wantData:    `{"id":"2"}`,
		},
		{
			name:        "canonical data wins over result",
			status:      http.StatusOK,
			body:        `{"success":true,"data":{"id":"1"},"result":"meta"}`,
			wantSuccess: true,
			wantData:    `{"id":"1"}`,
		},
		{
			name:        "items wrapper",
			status:      http.StatusOK,
			body:        `{"items":[{"id":"3"}],"total":1}`,
			wantSuccess: true,
			wantData:    `[{"id":"3"}]`,
		},
		{
			name:        "paginated data",
			status:      http.StatusOK,
			body:        `{"data":{"items":[{"id":"4"}],"page":1}}`,
			wantSuccess: true,
			wantData:    `[{"id":"4"}]`,
		},
		{
			name:        "bare array",
			status:      http.StatusOK,
			body:        `[{"id":"5"}]`,
			wantSuccess: true,
			wantData:    `[{"id":"5"}]`,
		},
		{
			name:        "success false on 200",
			status:      http.StatusOK,
			body:        `{"success":false,"message":"Branch code already exists"}`,
			wantMessage: "Branch code already exists",
			wantKind:    FailureAPI,
		},
		{
			name:        "error object on 400",
			status:      http.StatusBadRequest,
			body:        `{"error":{"message":"name is required"}}`,
			wantMessage: "name is required",
			wantKind:    FailureAPI,
		},
		{
			name:        "non json body",
			status:      http.StatusBadGateway,
			body:        `<html>upstream down</html>`,
			wantMessage: "invalid JSON response (status 502): <html>upstream down</html>",
			wantKind:    FailureNetwork,
		},
		{
			name:        "empty 204",
			status:      http.StatusNoContent,
			body:        ``,
			wantSuccess: true,
		},
		{
			name:        "empty 500",
			status:      http.StatusInternalServerError,
			body:        ``,
			wantMessage: "500 Internal Server Error",
			wantKind:    FailureAPI,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := normalize(tt.status, []byte(tt.body))
			assert.Equal(t, tt.wantSuccess, env.Success)
			assert.Equal(t, tt.wantMessage, env.Message)
			assert.Equal(t, tt.wantKind, env.Kind)
			if tt.wantData == "" {
				assert.Empty(t, env.Data)
			} else {
				assert.JSONEq(t, tt.wantData, string(env.Data))
			}
		})
	}
}

func TestEnvelopeErr(t *testing.T) {
	ok := Envelope[int]{Success: true}
	assert.NoError(t, ok.Err())

	failed := Envelope[int]{Kind: FailureAuthExpired, Status: 401, Message: "expired"}
	err := failed.Err()
	assert.ErrorIs(t, err, ErrAuthExpired)
	assert.NotErrorIs(t, err, ErrNetwork)
	assert.True(t, IsAuthExpired(err))
}
