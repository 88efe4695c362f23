package main

import (
	"context"
	"sync"

	"github.com/user/ainspire/pkg/ports"
)

// envCredentials serves a key from the environment ahead of the stored one.
// Clearing or replacing the key drops the environment value for the rest of
// the process.
type envCredentials struct {
	ports.CredentialStore

	mu    sync.Mutex
	token string
}

func newEnvCredentials(token string, stored ports.CredentialStore) *envCredentials {
	return &envCredentials{CredentialStore: stored, token: token}
}

func (e *envCredentials) Load(ctx context.Context) (string, error) {
	e.mu.Lock()
	token := e.token
	e.mu.Unlock()
	if token != "" {
		return token, nil
	}
	return e.CredentialStore.Load(ctx)
}

func (e *envCredentials) Save(ctx context.Context, token string) error {
	e.mu.Lock()
	e.token = ""
	e.mu.Unlock()
	return e.CredentialStore.Save(ctx, token)
}

func (e *envCredentials) Clear(ctx context.Context) error {
	e.mu.Lock()
	e.token = ""
	e.mu.Unlock()
	return e.CredentialStore.Clear(ctx)
}

var _ ports.CredentialStore = (*envCredentials)(nil)
