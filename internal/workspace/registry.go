// Package workspace owns the list pages of every console session. Pages are
// built on first use and closed together when the session ends, which
// cancels their in-flight calls.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tillwork/posadmin/internal/apiclient"
	"github.com/tillwork/posadmin/internal/branch"
	"github.com/tillwork/posadmin/internal/domain"
	"github.com/tillwork/posadmin/internal/events"
	"github.com/tillwork/posadmin/internal/manager"
	"github.com/tillwork/posadmin/internal/observability"
	"github.com/tillwork/posadmin/internal/service"
	"github.com/tillwork/posadmin/internal/session"
	"github.com/tillwork/posadmin/internal/toast"
	"github.com/tillwork/posadmin/internal/transform"
)

var (
	// ErrUnknownResource is returned for a resource with no registered page.
	ErrUnknownResource = errors.New("unknown resource")
	// ErrSessionClosed is returned when a page is requested for an empty session id.
	ErrSessionClosed = errors.New("session closed")
)

// Env is what a page factory gets to build one page for one session.
type Env struct {
	SessionID string
	Client    *apiclient.Client
	Resolver  *branch.Resolver
	Branches  branch.Lister
	Scope     string
	Options   manager.Options
}

type factory func(env Env) Page

// Options tunes the pages a registry builds.
type Options struct {
	ToastTTL         time.Duration
	BulkConcurrency  int
	ReloadAfterWrite bool
	Dispatcher       events.Dispatcher
	Logger           *zap.Logger
}

// Registry maps console sessions to their open pages.
type Registry struct {
	clients  *session.Clients
	resolver *branch.Resolver
	opts     Options
	logger   *zap.Logger

	factories map[string]factory

	mu       sync.Mutex
	sessions map[string]map[string]Page
}

// NewRegistry builds an empty registry. Call RegisterDefaults to add the
// built-in pages. Sessions whose credentials expire are closed.
func NewRegistry(clients *session.Clients, resolver *branch.Resolver, opts Options) *Registry {
	r := &Registry{
		clients:   clients,
		resolver:  resolver,
		opts:      opts,
		logger:    observability.OrNop(opts.Logger),
		factories: make(map[string]factory),
		sessions:  make(map[string]map[string]Page),
	}
	clients.OnExpire(r.expire)
	return r
}

// BranchRef points a page at the branch reference field of its rows. The
// reference is resolved to a branch id before every create and update.
type BranchRef[T any] struct {
	Get func(T) string
	Set func(*T, string)
}

// Register adds a page backed by the remote collection at path.
func Register[W any, T domain.Record[T]](r *Registry, path string, from func(W, int) T, to func(T) W, def manager.Definition[T], ref *BranchRef[T]) {
	r.factories[def.Resource] = func(env Env) Page {
		var svc manager.Service[T] = service.NewResource[W, T](env.Client, path, from, to)
		if ref != nil && env.Resolver != nil {
			svc = &resolving[T]{Service: svc, ref: ref, resolver: env.Resolver, lister: env.Branches, scope: env.Scope}
		}
		return &page[T]{Manager: manager.New[T](def, svc, env.Options), toasts: env.Options.Toasts}
	}
}

// Resources lists the registered resource names.
func (r *Registry) Resources() []string {
	out := make([]string, 0, len(r.factories))
	for name := range r.factories {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Open makes sure the session exists. It is idempotent.
func (r *Registry) Open(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[sessionID]; !ok {
		r.sessions[sessionID] = make(map[string]Page)
	}
}

// Page returns the session's page for resource, building it on first use.
func (r *Registry) Page(ctx context.Context, sessionID, resource string) (Page, error) {
	if sessionID == "" {
		return nil, ErrSessionClosed
	}
	build, ok := r.factories[resource]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownResource, resource)
	}

	r.mu.Lock()
	pages, ok := r.sessions[sessionID]
	if !ok {
		pages = make(map[string]Page)
		r.sessions[sessionID] = pages
	}
	if p, ok := pages[resource]; ok {
		r.mu.Unlock()
		return p, nil
	}
	r.mu.Unlock()

	p := build(r.env(ctx, sessionID))

	r.mu.Lock()
	defer r.mu.Unlock()
	pages, ok = r.sessions[sessionID]
	if !ok {
		// closed while building
		p.Close()
		return nil, ErrSessionClosed
	}
	if existing, ok := pages[resource]; ok {
		p.Close()
		return existing, nil
	}
	pages[resource] = p
	return p, nil
}

// Close closes every page of the session. Late results of their calls are
// dropped.
func (r *Registry) Close(sessionID string) {
	r.mu.Lock()
	pages := r.sessions[sessionID]
	delete(r.sessions, sessionID)
	r.mu.Unlock()
	for _, p := range pages {
		p.Close()
	}
}

// CloseAll closes every session, used on shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.Unlock()
	for _, id := range ids {
		r.Close(id)
	}
}

// Sessions reports the number of open sessions.
func (r *Registry) Sessions() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// ResolveBranch maps a branch code, name or id to the branch id, using the
// session's tenant cache scope.
func (r *Registry) ResolveBranch(ctx context.Context, sessionID, ref string) (string, error) {
	if sessionID == "" {
		return "", ErrSessionClosed
	}
	return r.resolver.Resolve(ctx, r.scope(ctx, sessionID), ref, branchLister(r.clients.For(sessionID)))
}

func (r *Registry) expire(sessionID string) {
	r.logger.Info("session expired, closing pages", zap.String("session_id", sessionID))
	r.Close(sessionID)
	if r.opts.Dispatcher != nil {
		if err := r.opts.Dispatcher.Publish(context.Background(), events.Event{
			Type:      events.EventSessionExpired,
			SessionID: sessionID,
		}); err != nil {
			r.logger.Warn("publishing session expiry", zap.Error(err))
		}
	}
}

// scope keys the branch cache by tenant so tenants never share codes.
func (r *Registry) scope(ctx context.Context, sessionID string) string {
	creds, err := r.clients.Store().Load(ctx, sessionID)
	if err != nil {
		return "default"
	}
	switch {
	case creds.TenantSlug != "":
		return creds.TenantSlug
	case creds.TenantID != "":
		return creds.TenantID
	}
	return "default"
}

func branchLister(client *apiclient.Client) branch.Lister {
	return service.NewResource[transform.BranchWire, domain.Branch](client, "/branches", transform.BranchFromWire, transform.BranchToWire)
}

func (r *Registry) env(ctx context.Context, sessionID string) Env {
	client := r.clients.For(sessionID)
	return Env{
		SessionID: sessionID,
		Client:    client,
		Resolver:  r.resolver,
		Branches:  branchLister(client),
		Scope:     r.scope(ctx, sessionID),
		Options: manager.Options{
			SessionID:        sessionID,
			Toasts:           toast.New(r.opts.ToastTTL),
			Dispatcher:       r.opts.Dispatcher,
			Logger:           r.logger,
			BulkConcurrency:  r.opts.BulkConcurrency,
			ReloadAfterWrite: r.opts.ReloadAfterWrite,
		},
	}
}

// resolving rewrites the branch reference of rows before they are sent.
type resolving[T any] struct {
	manager.Service[T]
	ref      *BranchRef[T]
	resolver *branch.Resolver
	lister   branch.Lister
	scope    string
}

func (s *resolving[T]) resolve(ctx context.Context, item T) (T, error) {
	raw := s.ref.Get(item)
	if raw == "" {
		return item, nil
	}
	id, err := s.resolver.Resolve(ctx, s.scope, raw, s.lister)
	if err != nil {
		return item, err
	}
	s.ref.Set(&item, id)
	return item, nil
}

func (s *resolving[T]) Create(ctx context.Context, item T) (T, error) {
	item, err := s.resolve(ctx, item)
	if err != nil {
		return item, err
	}
	return s.Service.Create(ctx, item)
}

func (s *resolving[T]) Update(ctx context.Context, id string, item T) (T, error) {
	item, err := s.resolve(ctx, item)
	if err != nil {
		return item, err
	}
	return s.Service.Update(ctx, id, item)
}
