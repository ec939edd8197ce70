package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"spaces-client/models"

	_ "github.com/mattn/go-sqlite3"
)

const (
	keyToken = "auth_token"
	keyUser  = "current_user"
)

// Store persists the session token and cached user between runs. It has no
// notion of expiry; a stale token is discovered when the backend answers 401.
type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
			return nil, fmt.Errorf("create session dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	// one connection so :memory: databases survive across calls
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.init(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *Store) init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) set(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	return err
}

func (s *Store) get(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

func (s *Store) SetToken(token string) error {
	return s.set(keyToken, token)
}

// Token returns the stored bearer token, or "" when logged out.
func (s *Store) Token() string {
	token, err := s.get(keyToken)
	if err != nil {
		return ""
	}
	return token
}

func (s *Store) IsAuthenticated() bool {
	return s.Token() != ""
}

// Clear removes the token and the cached user.
func (s *Store) Clear() error {
	_, err := s.db.Exec("DELETE FROM kv WHERE key IN (?, ?)", keyToken, keyUser)
	return err
}

func (s *Store) CacheUser(u *models.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return s.set(keyUser, string(data))
}

// CachedUser returns nil when nothing is cached or the cached value is unreadable.
func (s *Store) CachedUser() *models.User {
	raw, err := s.get(keyUser)
	if err != nil || raw == "" {
		return nil
	}
	var u models.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil
	}
	return &u
}
