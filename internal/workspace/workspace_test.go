package workspace

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillwork/posadmin/internal/apiclient"
	"github.com/tillwork/posadmin/internal/branch"
	"github.com/tillwork/posadmin/internal/config"
	"github.com/tillwork/posadmin/internal/domain"
	"github.com/tillwork/posadmin/internal/events"
	"github.com/tillwork/posadmin/internal/filter"
	"github.com/tillwork/posadmin/internal/manager"
	"github.com/tillwork/posadmin/internal/session"
)

type remote struct {
	mu     sync.Mutex
	posted []map[string]any
	status map[string]int
}

func (rm *remote) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	if code, ok := rm.status[r.Method+" "+r.URL.Path]; ok {
		w.WriteHeader(code)
		_, _ = io.WriteString(w, `{"success":false,"message":"denied"}`)
		return
	}
	switch r.Method + " " + r.URL.Path {
	case "GET /api/branches":
		_, _ = io.WriteString(w, `{"success":true,"data":[
			{"_id":"665f1c2ab3e4d5f6a7b8c9d0","code":"DT","name":"Downtown","isActive":true},
			{"_id":"665f1c2ab3e4d5f6a7b8c9d1","code":"AP","name":"Airport","isActive":false}]}`)
	case "GET /api/inventory":
		_, _ = io.WriteString(w, `{"items":[
			{"_id":"i1","itemName":"Flour","branchId":"665f1c2ab3e4d5f6a7b8c9d0","quantity":2,"reorderLevel":5,"unit":"kg"},
			{"_id":"i2","itemName":"Sugar","branchId":"665f1c2ab3e4d5f6a7b8c9d0","quantity":20,"reorderLevel":5,"unit":"kg"}]}`)
	case "POST /api/inventory":
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		rm.posted = append(rm.posted, body)
		body["_id"] = "i3"
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": body})
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"success":false,"message":"not found"}`)
	}
}

func newRegistry(t *testing.T, rm *remote, dispatcher events.Dispatcher) (*Registry, *session.Clients) {
	t.Helper()
	srv := httptest.NewServer(rm)
	t.Cleanup(srv.Close)
	base := apiclient.New(config.RemoteConfig{BaseURL: srv.URL + "/api", TimeoutSeconds: 5})
	clients := session.NewClients(base, session.NewMemoryStore())
	cache := branch.NewMemoryCache(time.Minute, 0)
	t.Cleanup(cache.Close)
	reg := NewRegistry(clients, branch.NewResolver(cache, nil), Options{ToastTTL: time.Minute, Dispatcher: dispatcher})
	RegisterDefaults(reg)
	t.Cleanup(reg.CloseAll)
	require.NoError(t, clients.Store().Save(context.Background(), "s1", domain.Credentials{
		AccessToken: "tok", RefreshToken: "ref", TenantSlug: "downtown",
	}))
	return reg, clients
}

func TestRegistryBuildsPagesLazily(t *testing.T) {
	reg, _ := newRegistry(t, &remote{}, nil)

	assert.Equal(t, []string{"branches", "customers", "inventory", "menu", "staff", "terminals", "vendors"}, reg.Resources())

	p1, err := reg.Page(context.Background(), "s1", Branches)
	require.NoError(t, err)
	p2, err := reg.Page(context.Background(), "s1", Branches)
	require.NoError(t, err)
	assert.Same(t, p1, p2)

	_, err = reg.Page(context.Background(), "s1", "reports")
	assert.ErrorIs(t, err, ErrUnknownResource)
	_, err = reg.Page(context.Background(), "", Branches)
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestPageLoadAndFilter(t *testing.T) {
	reg, _ := newRegistry(t, &remote{}, nil)
	p, err := reg.Page(context.Background(), "s1", Inventory)
	require.NoError(t, err)

	require.NoError(t, p.Load(context.Background()))
	p.SetFilter("stock", "low")

	snap, ok := p.View().(manager.Snapshot[domain.InventoryItem])
	require.True(t, ok)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "Flour", snap.Items[0].Name)
	assert.Equal(t, 2, snap.Total)
	assert.Equal(t, []string{"branch", "category", "status", "stock"}, snap.Dimensions)
}

func TestCreateResolvesBranchCode(t *testing.T) {
	rm := &remote{}
	reg, _ := newRegistry(t, rm, nil)
	p, err := reg.Page(context.Background(), "s1", Inventory)
	require.NoError(t, err)
	require.NoError(t, p.Load(context.Background()))

	require.True(t, p.OpenCreate())
	require.NoError(t, p.SetFormJSON([]byte(`{"name":"Salt","branchId":"dt","quantity":"3"}`)))
	created, err := p.SubmitForm(context.Background())

	require.NoError(t, err)
	item := created.(domain.InventoryItem)
	assert.Equal(t, "i3", item.ID)
	assert.True(t, item.Quantity.Equal(decimal.NewFromInt(3)))
	require.Len(t, rm.posted, 1)
	assert.Equal(t, "665f1c2ab3e4d5f6a7b8c9d0", rm.posted[0]["branchId"])

	snap := p.View().(manager.Snapshot[domain.InventoryItem])
	assert.Equal(t, 3, snap.Total)
	assert.Equal(t, manager.ModalClosed, snap.Modal.Mode)
}

func TestCreateWithUnknownBranchFails(t *testing.T) {
	rm := &remote{}
	reg, _ := newRegistry(t, rm, nil)
	p, err := reg.Page(context.Background(), "s1", Inventory)
	require.NoError(t, err)

	require.True(t, p.OpenCreate())
	require.NoError(t, p.SetFormJSON([]byte(`{"name":"Salt","branchId":"nowhere"}`)))
	_, err = p.SubmitForm(context.Background())

	assert.ErrorIs(t, err, manager.ErrCreateFailed)
	assert.ErrorIs(t, err, branch.ErrUnknownBranch)
	assert.Empty(t, rm.posted)
}

func TestSetFormJSONRequiresModal(t *testing.T) {
	reg, _ := newRegistry(t, &remote{}, nil)
	p, err := reg.Page(context.Background(), "s1", Branches)
	require.NoError(t, err)

	assert.ErrorIs(t, p.SetFormJSON([]byte(`{}`)), manager.ErrNoModal)
	require.True(t, p.OpenCreate())
	assert.Error(t, p.SetFormJSON([]byte(`{"name":`)))
}

func TestCloseSessionReplacesPages(t *testing.T) {
	reg, _ := newRegistry(t, &remote{}, nil)
	p1, err := reg.Page(context.Background(), "s1", Branches)
	require.NoError(t, err)

	reg.Close("s1")
	assert.ErrorIs(t, p1.Load(context.Background()), manager.ErrClosed)
	assert.Equal(t, 0, reg.Sessions())

	p2, err := reg.Page(context.Background(), "s1", Branches)
	require.NoError(t, err)
	assert.NotSame(t, p1, p2)
}

func TestAuthExpiryClosesSession(t *testing.T) {
	rm := &remote{status: map[string]int{
		"GET /api/branches":      http.StatusUnauthorized,
		"POST /api/auth/refresh": http.StatusUnauthorized,
	}}
	dispatcher := events.NewInMemoryDispatcher()
	var expired []string
	dispatcher.Subscribe(events.EventSessionExpired, func(_ context.Context, e events.Event) error {
		expired = append(expired, e.SessionID)
		return nil
	})
	reg, clients := newRegistry(t, rm, dispatcher)
	p, err := reg.Page(context.Background(), "s1", Branches)
	require.NoError(t, err)

	err = p.Load(context.Background())

	assert.Equal(t, []string{"s1"}, expired)
	assert.Equal(t, 0, reg.Sessions())
	if err != nil {
		assert.True(t, apiclient.IsAuthExpired(err))
	}
	creds, _ := clients.Store().Load(context.Background(), "s1")
	assert.False(t, creds.Authenticated())
}

func TestMenuSearchIsFuzzy(t *testing.T) {
	items := []domain.MenuItem{
		{ID: "1", Name: "Grilled Chicken", Category: "Mains"},
		{ID: "2", Name: "Caesar Salad", Category: "Starters"},
	}
	got := filter.Apply(items, MenuPage().Filter, filter.State{Search: "chkn"})
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
}

func TestStaffCSVImportParsesRoles(t *testing.T) {
	codec := StaffPage().CSV
	rows, err := codec.Decode(strings.NewReader("name,role,status\nOmar,waiter,inactive\nLina,,\n"))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, domain.StaffRoleWaiter, rows[0].Role)
	assert.Equal(t, domain.StatusInactive, rows[0].Status)
	assert.Equal(t, domain.StaffRoleCashier, rows[1].Role)
	assert.Equal(t, domain.StatusActive, rows[1].Status)

	_, err = codec.Decode(strings.NewReader("email\nx@y.z\n"))
	assert.Error(t, err, "Name is a required column")

	_, err = codec.Decode(strings.NewReader("name,role\nOmar,pilot\n"))
	assert.ErrorContains(t, err, `unknown role "pilot"`)
}

func TestInventoryExportIncludesStockValue(t *testing.T) {
	var buf bytes.Buffer
	err := InventoryPage().CSV.Encode(&buf, []domain.InventoryItem{{
		ID: "i1", SKU: "FL-1", Name: "Flour", BranchID: "b1", Unit: domain.UnitKilogram,
		Quantity: decimal.NewFromInt(4), ReorderLevel: decimal.NewFromInt(5), UnitCost: decimal.RequireFromString("1.25"),
		Status: domain.StatusActive,
	}})
	require.NoError(t, err)
	assert.Equal(t,
		"ID,SKU,Name,Category,Branch,Quantity,Unit,Reorder Level,Unit Cost,Stock Value,Status\n"+
			"i1,FL-1,Flour,,b1,4,kg,5,1.25,5.00,Active\n",
		buf.String())
}

func TestResolveBranch(t *testing.T) {
	reg, _ := newRegistry(t, &remote{}, nil)

	id, err := reg.ResolveBranch(context.Background(), "s1", "Airport")
	require.NoError(t, err)
	assert.Equal(t, "665f1c2ab3e4d5f6a7b8c9d1", id)

	_, err = reg.ResolveBranch(context.Background(), "s1", "mall")
	assert.ErrorIs(t, err, branch.ErrUnknownBranch)
	_, err = reg.ResolveBranch(context.Background(), "", "AP")
	assert.ErrorIs(t, err, ErrSessionClosed)
}
