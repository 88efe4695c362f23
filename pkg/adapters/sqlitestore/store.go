// Package sqlitestore persists settings such as the classifier API key in a
// local SQLite database.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/user/ainspire/pkg/ports"
)

// CredentialKey is the settings row holding the classifier API key.
const CredentialKey = "classifier-api-key"

// Store is a key/value table in SQLite.
type Store struct {
	conn *sql.DB
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{conn: conn}
	if err := s.createTables(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

func (s *Store) createTables() error {
	query := `
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);
	`
	_, err := s.conn.Exec(query)
	return err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Get returns the value stored under key, or ports.ErrNoCredential.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.conn.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ports.ErrNoCredential
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	return value, nil
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.conn.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Credentials returns a ports.CredentialStore over the API key row.
func (s *Store) Credentials() *CredentialStore {
	return &CredentialStore{store: s}
}

// CredentialStore implements ports.CredentialStore.
type CredentialStore struct {
	store *Store
}

func (c *CredentialStore) Load(ctx context.Context) (string, error) {
	return c.store.Get(ctx, CredentialKey)
}

func (c *CredentialStore) Save(ctx context.Context, token string) error {
	return c.store.Set(ctx, CredentialKey, token)
}

func (c *CredentialStore) Clear(ctx context.Context) error {
	return c.store.Delete(ctx, CredentialKey)
}

var _ ports.CredentialStore = (*CredentialStore)(nil)
