// Package scratch provides an in-memory scratchpad toolset backed by
// sqlite. Nothing survives process exit.
package scratch

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("scratch key not found")

type Entry struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

func NewStore() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}

	// Every new pool connection to :memory: opens a fresh empty database,
	// so the pool must stay at exactly one connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, err
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) initSchema() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS scratch (
		id TEXT PRIMARY KEY,
		key TEXT UNIQUE NOT NULL,
		value TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_scratch_key ON scratch(key)`)
	if err != nil {
		return fmt.Errorf("init scratch schema: %w", err)
	}
	return nil
}

// Put creates or replaces the entry for key, keeping the original id and
// creation time on update.
func (s *Store) Put(key, value string) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()

	existing, err := s.get(key)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	if existing != nil {
		if _, err := s.db.Exec(
			"UPDATE scratch SET value = ?, updated_at = ? WHERE key = ?",
			value, now, key,
		); err != nil {
			return nil, err
		}
		existing.Value = value
		existing.UpdatedAt = now
		return existing, nil
	}

	entry := &Entry{
		ID:        uuid.NewString(),
		Key:       key,
		Value:     value,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.db.Exec(
		"INSERT INTO scratch (id, key, value, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		entry.ID, entry.Key, entry.Value, entry.CreatedAt, entry.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *Store) Get(key string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.get(key)
}

func (s *Store) get(key string) (*Entry, error) {
	var entry Entry
	err := s.db.QueryRow(
		"SELECT id, key, value, created_at, updated_at FROM scratch WHERE key = ?", key,
	).Scan(&entry.ID, &entry.Key, &entry.Value, &entry.CreatedAt, &entry.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// List returns all entries ordered by key.
func (s *Store) List() ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		"SELECT id, key, value, created_at, updated_at FROM scratch ORDER BY key")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(&entry.ID, &entry.Key, &entry.Value, &entry.CreatedAt, &entry.UpdatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.Exec("DELETE FROM scratch WHERE key = ?", key)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
