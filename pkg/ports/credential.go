package ports

import (
	"context"
	"errors"
)

// ErrNoCredential is returned by CredentialStore.Load when nothing is stored.
var ErrNoCredential = errors.New("credential: not set")

// CredentialStore persists the single classifier token.
type CredentialStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	// Clear removes the token. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}
