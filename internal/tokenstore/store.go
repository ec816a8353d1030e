// Package tokenstore persists the client's single bearer token under a
// well-known key.
package tokenstore

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/me/examdesk/internal/config"
)

// TokenKey is the key the bearer token is stored under.
const TokenKey = "token"

// Store persists the bearer token. Get returns "" and a nil error when no
// token is stored.
type Store interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, token string) error
	Clear(ctx context.Context) error
	Close() error
}

// Open returns the store selected by cfg.TokenStore.
func Open(cfg config.ClientConfig, logger *slog.Logger) (Store, error) {
	switch cfg.TokenStore {
	case config.StoreSQLite:
		st, err := NewSQLiteStore(cfg.TokenPath, logger)
		if err != nil {
			return nil, err
		}
		if err := st.Migrate(context.Background()); err != nil {
			st.Close()
			return nil, err
		}
		return st, nil
	case config.StoreFile, "":
		return NewFileStore(cfg.TokenPath), nil
	default:
		return nil, fmt.Errorf("unknown token store %q", cfg.TokenStore)
	}
}

// MemoryStore keeps the token in process memory. It is used by tests and
// by callers that must not touch disk.
type MemoryStore struct {
	mu    sync.Mutex
	token string
}

// NewMemoryStore creates a MemoryStore holding token.
func NewMemoryStore(token string) *MemoryStore {
	return &MemoryStore{token: token}
}

func (m *MemoryStore) Get(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *MemoryStore) Set(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

func (m *MemoryStore) Close() error { return nil }
