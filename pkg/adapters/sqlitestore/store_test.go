package sqlitestore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/user/ainspire/pkg/ports"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "credentials.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestCredentialStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)
	creds := s.Credentials()

	if _, err := creds.Load(ctx); !errors.Is(err, ports.ErrNoCredential) {
		t.Fatalf("expected ErrNoCredential on empty store, got %v", err)
	}

	if err := creds.Save(ctx, "sk-one"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := creds.Save(ctx, "sk-two"); err != nil {
		t.Fatalf("Save replace: %v", err)
	}
	got, err := creds.Load(ctx)
	if err != nil || got != "sk-two" {
		t.Errorf("expected sk-two, got %q (%v)", got, err)
	}

	if err := creds.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if err := creds.Clear(ctx); err != nil {
		t.Errorf("clearing an empty store should succeed, got %v", err)
	}
	if _, err := creds.Load(ctx); !errors.Is(err, ports.ErrNoCredential) {
		t.Errorf("expected ErrNoCredential after Clear, got %v", err)
	}
}

func TestStore_PersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	s, path := openTemp(t)
	if err := s.Credentials().Save(ctx, "sk-persist"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	s.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Credentials().Load(ctx)
	if err != nil || got != "sk-persist" {
		t.Errorf("expected persisted key, got %q (%v)", got, err)
	}
}

func TestStore_KeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)

	if err := s.Set(ctx, "other", "value"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Credentials().Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if v, err := s.Get(ctx, "other"); err != nil || v != "value" {
		t.Errorf("clearing the credential must not touch other keys, got %q (%v)", v, err)
	}
}
