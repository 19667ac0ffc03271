package session

import (
	"sync"

	"github.com/tillwork/posadmin/internal/apiclient"
)

// Clients hands out one remote client per console session, each bound to
// that session's credentials. A session whose refresh fails is forgotten and
// every OnExpire callback runs.
type Clients struct {
	base  *apiclient.Client
	store Store

	mu       sync.Mutex
	bound    map[string]*apiclient.Client
	onExpire []func(sessionID string)
}

// NewClients wraps an anonymous base client.
func NewClients(base *apiclient.Client, store Store) *Clients {
	return &Clients{base: base, store: store, bound: make(map[string]*apiclient.Client)}
}

// Anonymous returns the client without credentials, used for sign-in calls.
func (c *Clients) Anonymous() *apiclient.Client { return c.base }

// Store returns the underlying credential store.
func (c *Clients) Store() Store { return c.store }

// For returns the client bound to sessionID.
func (c *Clients) For(sessionID string) *apiclient.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	if client, ok := c.bound[sessionID]; ok {
		return client
	}
	client := c.base.WithStore(Bind(c.store, sessionID, c.expired))
	c.bound[sessionID] = client
	return client
}

// Forget drops the cached client of a session.
func (c *Clients) Forget(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.bound, sessionID)
}

// OnExpire registers fn to run when a session's credentials are cleared.
func (c *Clients) OnExpire(fn func(sessionID string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onExpire = append(c.onExpire, fn)
}

func (c *Clients) expired(sessionID string) {
	c.mu.Lock()
	delete(c.bound, sessionID)
	hooks := append([]func(string){}, c.onExpire...)
	c.mu.Unlock()
	for _, fn := range hooks {
		fn(sessionID)
	}
}
