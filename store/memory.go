package store

import (
	"context"
	"sync"
)

// MemoryStore keeps credentials in process memory. Useful for tests and for
// short-lived tools that should not leave tokens on disk.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string, 2)}
}

func (m *MemoryStore) Load(ctx context.Context) (Credentials, error) {
	if err := ctx.Err(); err != nil {
		return Credentials{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Credentials{
		AccessToken:  m.values[KeyAccessToken],
		RefreshToken: m.values[KeyRefreshToken],
	}, nil
}

func (m *MemoryStore) Save(ctx context.Context, creds Credentials) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[KeyAccessToken] = creds.AccessToken
	if creds.RefreshToken == "" {
		delete(m.values, KeyRefreshToken)
	} else {
		m.values[KeyRefreshToken] = creds.RefreshToken
	}
	return nil
}

func (m *MemoryStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, KeyAccessToken)
	delete(m.values, KeyRefreshToken)
	return nil
}

// Has reports whether key is currently stored.
func (m *MemoryStore) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.values[key]
	return ok
}
