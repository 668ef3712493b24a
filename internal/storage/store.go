package storage

import (
	"encoding/json"
	"errors"
	"fmt"
)

// DefaultPrefix namespaces every key written by the session client.
const DefaultPrefix = "ecosistema_"

// ErrNotFound is returned by a Backend when a key has no value.
var ErrNotFound = errors.New("storage: key not found")

// Backend is a raw key-value store. Implementations must be safe for
// concurrent use.
type Backend interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
	Close() error
}

// Store wraps a Backend with a key prefix and JSON encoding of values.
type Store struct {
	backend Backend
	prefix  string
}

// NewStore creates a store over backend. An empty prefix falls back to
// DefaultPrefix.
func NewStore(backend Backend, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{backend: backend, prefix: prefix}
}

// Key returns the namespaced form of key as stored in the backend.
func (s *Store) Key(key string) string {
	return s.prefix + key
}

// Get decodes the value stored under key into v.
// Returns false, nil if the key doesn't exist.
func (s *Store) Get(key string, v any) (bool, error) {
	data, err := s.backend.Get(s.Key(key))
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

// Set encodes v as JSON and stores it under key.
func (s *Store) Set(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.backend.Set(s.Key(key), data); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Remove deletes keys. Missing keys are not an error. All keys are attempted
// even if one of them fails.
func (s *Store) Remove(keys ...string) error {
	var errs []error
	for _, key := range keys {
		if err := s.backend.Delete(s.Key(key)); err != nil && !errors.Is(err, ErrNotFound) {
			errs = append(errs, fmt.Errorf("failed to remove %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

// Close closes the underlying backend.
func (s *Store) Close() error {
	return s.backend.Close()
}
