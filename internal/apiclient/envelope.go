package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Envelope is the canonical result of every remote call. It is always
// returned, never an error: failures set Success=false with Kind and Message.
type Envelope[T any] struct {
	Success bool        `json:"success"`
	Data    T           `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Status  int         `json:"-"`
	Kind    FailureKind `json:"-"`
}

// Err returns nil for a successful envelope and an *Error otherwise.
func (e Envelope[T]) Err() error {
	if e.Success {
		return nil
	}
	kind := e.Kind
	if kind == FailureNone {
		kind = FailureAPI
	}
	msg := e.Message
	if msg == "" {
		msg = "request failed"
	}
	return &Error{Kind: kind, Status: e.Status, Message: msg}
}

func failure[T any](kind FailureKind, status int, msg string) Envelope[T] {
	return Envelope[T]{Success: false, Kind: kind, Status: status, Message: msg}
}

const maxDiagnosticLen = 240

// normalize maps the backend's envelope variants onto Envelope. Recognized
// shapes, in order: {success,data,message}, {result}, {items}, {data}, and a
// bare array or object which is taken as the data itself.
func normalize(status int, body []byte) Envelope[json.RawMessage] {
	ok := status >= 200 && status < 300
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		if ok {
			return Envelope[json.RawMessage]{Success: true, Status: status}
		}
		return failure[json.RawMessage](FailureAPI, status, statusMessage(status))
	}
	if !json.Valid(trimmed) {
		return failure[json.RawMessage](FailureNetwork, status,
			fmt.Sprintf("invalid JSON response (status %d): %s", status, diagnostic(trimmed)))
	}

	if trimmed[0] != '{' {
		if ok {
			return Envelope[json.RawMessage]{Success: true, Status: status, Data: json.RawMessage(trimmed)}
		}
		return failure[json.RawMessage](FailureAPI, status, statusMessage(status))
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return failure[json.RawMessage](FailureNetwork, status, "invalid JSON response: "+err.Error())
	}

	env := Envelope[json.RawMessage]{Success: ok, Status: status}
	if raw, exists := fields["success"]; exists {
		var flag bool
		if err := json.Unmarshal(raw, &flag); err == nil {
			env.Success = ok && flag
		}
	} else if raw, hasErr := fields["error"]; hasErr && !isNull(raw) {
		env.Success = false
	}
	env.Message = messageFrom(fields)
	env.Data = dataFrom(fields, trimmed)

	if !env.Success {
		env.Kind = FailureAPI
		if env.Message == "" {
			env.Message = statusMessage(status)
		}
	}
	return env
}

// dataKeys lists payload keys by precedence. A canonical envelope (one
// carrying success) keeps its data first; otherwise the wrappers apply in
// the order result, items, data.
func dataKeys(fields map[string]json.RawMessage) []string {
	if _, canonical := fields["success"]; canonical {
		return []string{"data", "result", "items"}
	}
	return []string{"result", "items", "data"}
}

func dataFrom(fields map[string]json.RawMessage, whole []byte) json.RawMessage {
	for _, key := range dataKeys(fields) {
		raw, exists := fields[key]
		if !exists || isNull(raw) {
			continue
		}
		return unwrapItems(raw)
	}
	if _, hasSuccess := fields["success"]; hasSuccess {
		return nil
	}
	if _, hasError := fields["error"]; hasError {
		return nil
	}
	return json.RawMessage(whole)
}

// unwrapItems flattens paginated payloads such as {"items":[...],"total":3}.
func unwrapItems(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return raw
	}
	var inner map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &inner); err != nil {
		return raw
	}
	if items, ok := inner["items"]; ok && len(bytes.TrimSpace(items)) > 0 && bytes.TrimSpace(items)[0] == '[' {
		return items
	}
	return raw
}

func messageFrom(fields map[string]json.RawMessage) string {
	var msg string
	if raw, ok := fields["message"]; ok {
		if err := json.Unmarshal(raw, &msg); err == nil && msg != "" {
			return msg
		}
	}
	raw, ok := fields["error"]
	if !ok {
		return ""
	}
	if err := json.Unmarshal(raw, &msg); err == nil {
		return msg
	}
	var nested struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &nested); err == nil {
		return nested.Message
	}
	return ""
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

func statusMessage(status int) string {
	if text := http.StatusText(status); text != "" {
		return fmt.Sprintf("%d %s", status, text)
	}
	return fmt.Sprintf("unexpected status %d", status)
}

func diagnostic(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxDiagnosticLen {
		s = s[:maxDiagnosticLen] + "..."
	}
	return s
}
