// Package session persists the remote API credentials of each console
// session: tokens, the signed-in user and the tenant scope.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/tillwork/posadmin/internal/apiclient"
	"github.com/tillwork/posadmin/internal/domain"
)

// ErrEmptySessionID is returned for calls without a session id.
var ErrEmptySessionID = errors.New("session id required")

// Store keeps credentials keyed by console session id. Loading an unknown
// session returns zero credentials and no error.
type Store interface {
	Load(ctx context.Context, sessionID string) (domain.Credentials, error)
	Save(ctx context.Context, sessionID string, creds domain.Credentials) error
	Clear(ctx context.Context, sessionID string) error
}

// Bind adapts one session of store to the apiclient credential interface.
// onClear, when set, runs after the credentials were cleared, which is how a
// forced logout on AuthExpired reaches the rest of the console.
func Bind(store Store, sessionID string, onClear func(sessionID string)) apiclient.CredentialStore {
	return &bound{store: store, id: sessionID, onClear: onClear}
}

type bound struct {
	store   Store
	id      string
	onClear func(string)
}

func (b *bound) Load(ctx context.Context) (domain.Credentials, error) {
	return b.store.Load(ctx, b.id)
}

func (b *bound) Save(ctx context.Context, creds domain.Credentials) error {
	return b.store.Save(ctx, b.id, creds)
}

func (b *bound) Clear(ctx context.Context) error {
	err := b.store.Clear(ctx, b.id)
	if b.onClear != nil {
		b.onClear(b.id)
	}
	return err
}

// MemoryStore keeps credentials in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	creds map[string]domain.Credentials
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{creds: make(map[string]domain.Credentials)}
}

func (s *MemoryStore) Load(_ context.Context, sessionID string) (domain.Credentials, error) {
	if sessionID == "" {
		return domain.Credentials{}, ErrEmptySessionID
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	creds := s.creds[sessionID]
	if creds.User != nil {
		user := *creds.User
		creds.User = &user
	}
	return creds, nil
}

func (s *MemoryStore) Save(_ context.Context, sessionID string, creds domain.Credentials) error {
	if sessionID == "" {
		return ErrEmptySessionID
	}
	if creds.User != nil {
		user := *creds.User
		creds.User = &user
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds[sessionID] = creds
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.creds, sessionID)
	return nil
}
