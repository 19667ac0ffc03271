package http

import (
	"encoding/json"
	"io"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillwork/posadmin/internal/api/http/handlers"
	"github.com/tillwork/posadmin/internal/apiclient"
	"github.com/tillwork/posadmin/internal/auth"
	"github.com/tillwork/posadmin/internal/branch"
	"github.com/tillwork/posadmin/internal/config"
	"github.com/tillwork/posadmin/internal/events"
	"github.com/tillwork/posadmin/internal/observability"
	"github.com/tillwork/posadmin/internal/service"
	"github.com/tillwork/posadmin/internal/session"
	"github.com/tillwork/posadmin/internal/workspace"
)

type posAPI struct {
	mu    sync.Mutex
	calls []string
}

func (p *posAPI) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	p.mu.Lock()
	p.calls = append(p.calls, r.Method+" "+r.URL.Path)
	p.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	switch r.Method + " " + r.URL.Path {
	case "POST /api/auth/login":
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret" {
			w.WriteHeader(stdhttp.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"success":false,"message":"Invalid credentials"}`)
			return
		}
		_, _ = io.WriteString(w, `{"success":true,"data":{"accessToken":"a1","refreshToken":"r1",
			"user":{"_id":"u1","fullName":"Mona","email":"mona@pos.test","role":"manager"},
			"tenant":{"_id":"t1","slug":"downtown"}}}`)
	case "POST /api/auth/logout":
		_, _ = io.WriteString(w, `{"success":true}`)
	case "GET /api/branches":
		_, _ = io.WriteString(w, `{"success":true,"data":[
			{"_id":"665f1c2ab3e4d5f6a7b8c9d0","code":"DT","name":"Downtown","isActive":true},
			{"_id":"665f1c2ab3e4d5f6a7b8c9d1","code":"AP","name":"Airport","isActive":false}]}`)
	case "PUT /api/branches/665f1c2ab3e4d5f6a7b8c9d0":
		_, _ = io.WriteString(w, `{"success":true,"data":{"_id":"665f1c2ab3e4d5f6a7b8c9d0","code":"DT","name":"Downtown Central","isActive":true}}`)
	case "PATCH /api/staff/u2/toggle-status":
		_, _ = io.WriteString(w, `{"success":true,"data":{"_id":"u2","fullName":"Omar","role":"waiter","isActive":false}}`)
	default:
		w.WriteHeader(stdhttp.StatusNotFound)
		_, _ = io.WriteString(w, `{"success":false,"message":"not found"}`)
	}
}

type harness struct {
	app      *fiber.App
	api      *posAPI
	registry *workspace.Registry
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	api := &posAPI{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	metrics := observability.NewMetrics()
	base := apiclient.New(config.RemoteConfig{BaseURL: srv.URL + "/api", TimeoutSeconds: 5}, apiclient.WithMetrics(metrics))
	store := session.NewMemoryStore()
	clients := session.NewClients(base, store)
	cache := branch.NewMemoryCache(time.Minute, 0)
	t.Cleanup(cache.Close)

	dispatcher := events.NewInMemoryDispatcher()
	notifications := service.NewNotificationService(dispatcher, nil, config.NotificationConfig{FeedSize: 10})
	notifications.RegisterHandlers()

	registry := workspace.NewRegistry(clients, branch.NewResolver(cache, nil), workspace.Options{ToastTTL: time.Minute, Dispatcher: dispatcher})
	workspace.RegisterDefaults(registry)
	t.Cleanup(registry.CloseAll)

	accounts := service.NewAccountService(clients, nil)
	tokens := auth.NewTokenManager("test-secret", time.Hour)

	app := fiber.New()
	RegisterMiddlewares(app, nil, metrics, 5*time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("posadmin", "test", nil, metrics),
		Auth:           handlers.NewAuthHandler(accounts, tokens, registry, notifications),
		Pages:          handlers.NewPagesHandler(registry),
		Staff:          handlers.NewStaffHandler(accounts, service.NewStaffService(clients)),
		Branches:       handlers.NewBranchesHandler(registry),
		Activity:       handlers.NewActivityHandler(notifications),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, store),
	})
	return &harness{app: app, api: api, registry: registry}
}

func (h *harness) do(t *testing.T, method, path, token, body string) (*stdhttp.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := h.app.Test(req, 5000)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func (h *harness) login(t *testing.T) string {
	t.Helper()
	resp, raw := h.do(t, stdhttp.MethodPost, "/auth/login", "", `{"email":"mona@pos.test","password":"secret"}`)
	require.Equal(t, stdhttp.StatusCreated, resp.StatusCode, string(raw))
	var out struct {
		Data struct {
			Token  string `json:"token"`
			Tenant string `json:"tenant"`
			User   struct {
				Role string `json:"role"`
			} `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))
	require.NotEmpty(t, out.Data.Token)
	assert.Equal(t, "downtown", out.Data.Tenant)
	assert.Equal(t, "Manager", out.Data.User.Role)
	return out.Data.Token
}

func errorCode(t *testing.T, raw []byte) string {
	t.Helper()
	var out struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return out.Error.Code
}

func TestHealthLive(t *testing.T) {
	h := newHarness(t)
	resp, raw := h.do(t, stdhttp.MethodGet, "/health/live", "", "")
	assert.Equal(t, stdhttp.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), `"alive"`)

	resp, _ = h.do(t, stdhttp.MethodGet, "/health/ready", "", "")
	assert.Equal(t, stdhttp.StatusOK, resp.StatusCode)
}

func TestMetricsEndpoints(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	resp, _ := h.do(t, stdhttp.MethodGet, "/health/live", "", "")
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)

	resp, raw := h.do(t, stdhttp.MethodGet, "/metrics/prometheus", "", "")
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)
	body := string(raw)
	assert.Contains(t, body, "posadmin_http_requests_total{")
	assert.Contains(t, body, `path="/health/live"`)
	assert.Contains(t, body, "posadmin_remote_call_duration_seconds_bucket")

	resp, raw = h.do(t, stdhttp.MethodGet, "/metrics", "", "")
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)
	var out struct {
		Data observability.MetricsSnapshot `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, int64(1), out.Data.Requests["/health/live|GET|200"])
	assert.NotEmpty(t, out.Data.RemoteCalls)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	h := newHarness(t)
	resp, raw := h.do(t, stdhttp.MethodGet, "/pages", "", "")
	assert.Equal(t, stdhttp.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, raw))
}

func TestLoginRejected(t *testing.T) {
	h := newHarness(t)
	resp, raw := h.do(t, stdhttp.MethodPost, "/auth/login", "", `{"email":"mona@pos.test","password":"wrong"}`)
	assert.Equal(t, stdhttp.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, string(raw), "Invalid credentials")

	resp, raw = h.do(t, stdhttp.MethodPost, "/auth/login", "", `{"email":"nope","password":"x"}`)
	assert.Equal(t, stdhttp.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, raw))
}

func TestPageLifecycle(t *testing.T) {
	h := newHarness(t)
	token := h.login(t)

	resp, raw := h.do(t, stdhttp.MethodGet, "/pages", token, "")
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), `"inventory"`)

	resp, raw = h.do(t, stdhttp.MethodPost, "/pages/branches/load", token, "")
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode, string(raw))
	var snap struct {
		Data struct {
			Items []struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"items"`
			Total int `json:"total"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &snap))
	assert.Equal(t, 2, snap.Data.Total)
	require.Len(t, snap.Data.Items, 2)
	assert.Equal(t, "Airport", snap.Data.Items[0].Name)

	resp, raw = h.do(t, stdhttp.MethodPut, "/pages/branches/filters", token, `{"search":"down"}`)
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(raw, &snap))
	require.Len(t, snap.Data.Items, 1)
	assert.Equal(t, "Downtown", snap.Data.Items[0].Name)

	resp, _ = h.do(t, stdhttp.MethodPost, "/pages/branches/select", token, `{"id":"665f1c2ab3e4d5f6a7b8c9d1","checked":true}`)
	assert.Equal(t, stdhttp.StatusNotFound, resp.StatusCode)

	resp, raw = h.do(t, stdhttp.MethodPost, "/pages/branches/select-all", token, `{"checked":true}`)
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "665f1c2ab3e4d5f6a7b8c9d0")

	resp, _ = h.do(t, stdhttp.MethodPost, "/pages/branches/modal/create", token, "")
	assert.Equal(t, stdhttp.StatusConflict, resp.StatusCode)

	resp, raw = h.do(t, stdhttp.MethodPut, "/pages/branches/form", token, `{"name":"x"}`)
	assert.Equal(t, stdhttp.StatusConflict, resp.StatusCode)
	assert.Equal(t, "CONFLICT", errorCode(t, raw))

	resp, _ = h.do(t, stdhttp.MethodPost, "/pages/branches/modal/edit/missing", token, "")
	assert.Equal(t, stdhttp.StatusNotFound, resp.StatusCode)

	resp, _ = h.do(t, stdhttp.MethodGet, "/pages/reports", token, "")
	assert.Equal(t, stdhttp.StatusNotFound, resp.StatusCode)
}

func (p *posAPI) last() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.calls) == 0 {
		return ""
	}
	return p.calls[len(p.calls)-1]
}

func TestPageStateSurvivesLaterRequests(t *testing.T) {
	h := newHarness(t)
	token := h.login(t)
	noise := "/pages/" + strings.Repeat("z", 64)

	resp, _ := h.do(t, stdhttp.MethodPost, "/pages/branches/load", token, "")
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)
	resp, _ = h.do(t, stdhttp.MethodPost, "/pages/branches/modal/edit/665f1c2ab3e4d5f6a7b8c9d0", token, "")
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)

	resp, _ = h.do(t, stdhttp.MethodGet, noise, token, "")
	require.Equal(t, stdhttp.StatusNotFound, resp.StatusCode)

	resp, raw := h.do(t, stdhttp.MethodPut, "/pages/branches/form", token, `{"name":"Downtown Central"}`)
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode, string(raw))
	resp, raw = h.do(t, stdhttp.MethodPost, "/pages/branches/submit", token, "")
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode, string(raw))
	assert.Equal(t, "PUT /api/branches/665f1c2ab3e4d5f6a7b8c9d0", h.api.last())
	assert.Contains(t, string(raw), "Downtown Central")

	resp, _ = h.do(t, stdhttp.MethodPut, "/pages/branches/filters", token, `{"search":"central"}`)
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)
	resp, _ = h.do(t, stdhttp.MethodGet, noise, token, "")
	require.Equal(t, stdhttp.StatusNotFound, resp.StatusCode)

	resp, raw = h.do(t, stdhttp.MethodGet, "/pages/branches", token, "")
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)
	var snap struct {
		Data struct {
			Items []struct {
				Name string `json:"name"`
			} `json:"items"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &snap))
	require.Len(t, snap.Data.Items, 1)
	assert.Equal(t, "Downtown Central", snap.Data.Items[0].Name)
}

func TestExportCSV(t *testing.T) {
	h := newHarness(t)
	token := h.login(t)
	resp, _ := h.do(t, stdhttp.MethodPost, "/pages/branches/load", token, "")
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)

	resp, raw := h.do(t, stdhttp.MethodGet, "/pages/branches/export.csv", token, "")
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), `filename="branches.csv"`)
	assert.True(t, strings.HasPrefix(string(raw), "ID,Code,Name,Address,Phone,Status\n"), string(raw))
}

func TestResolveBranchAndActivity(t *testing.T) {
	h := newHarness(t)
	token := h.login(t)

	resp, raw := h.do(t, stdhttp.MethodGet, "/branches/resolve/ap", token, "")
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode, string(raw))
	assert.Contains(t, string(raw), "665f1c2ab3e4d5f6a7b8c9d1")

	resp, _ = h.do(t, stdhttp.MethodGet, "/branches/resolve/mall", token, "")
	assert.Equal(t, stdhttp.StatusNotFound, resp.StatusCode)

	resp, raw = h.do(t, stdhttp.MethodGet, "/activity?limit=5", token, "")
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), `"data":[]`)
}

func TestStaffToggleAndLogout(t *testing.T) {
	h := newHarness(t)
	token := h.login(t)

	resp, raw := h.do(t, stdhttp.MethodPost, "/staff/u2/toggle-status", token, "")
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode, string(raw))
	assert.Contains(t, string(raw), `"Inactive"`)

	resp, _ = h.do(t, stdhttp.MethodPost, "/staff/u1/toggle-status", token, "")
	assert.Equal(t, stdhttp.StatusConflict, resp.StatusCode)

	resp, _ = h.do(t, stdhttp.MethodPost, "/auth/logout", token, "")
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, h.registry.Sessions())

	resp, _ = h.do(t, stdhttp.MethodGet, "/auth/profile", token, "")
	assert.Equal(t, stdhttp.StatusUnauthorized, resp.StatusCode)
}
