package mocks

import (
	"context"
	"sync"

	"github.com/user/ainspire/pkg/ports"
)

// CredentialStore is an in-memory ports.CredentialStore.
type CredentialStore struct {
	mu     sync.Mutex
	token  string
	set    bool
	clears int
}

// NewCredentialStore creates a store holding token; an empty token means unset.
func NewCredentialStore(token string) *CredentialStore {
	return &CredentialStore{token: token, set: token != ""}
}

func (m *CredentialStore) Load(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return "", ports.ErrNoCredential
	}
	return m.token, nil
}

func (m *CredentialStore) Save(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	m.set = true
	return nil
}

func (m *CredentialStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.set = false
	m.clears++
	return nil
}

// Clears returns the number of Clear calls.
func (m *CredentialStore) Clears() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clears
}

var _ ports.CredentialStore = (*CredentialStore)(nil)
