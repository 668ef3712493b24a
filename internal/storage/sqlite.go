package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// SQLiteBackend implements Backend using SQLite with encrypted values.
type SQLiteBackend struct {
	db            *sql.DB
	encryptionKey []byte
	mu            sync.RWMutex
}

// NewSQLiteBackend opens (or creates) the database at dbPath.
// The encryptionKey is used to encrypt/decrypt every stored value.
func NewSQLiteBackend(dbPath string, encryptionKey []byte) (*SQLiteBackend, error) {
	// WAL mode and busy timeout so the CLI and a running watcher can share the file
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	b := &SQLiteBackend{
		db:            db,
		encryptionKey: encryptionKey,
	}

	if err := b.init(); err != nil {
		db.Close()
		return nil, err
	}

	if err := os.Chmod(dbPath, 0600); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Str("dbPath", dbPath).Msg("failed to restrict database permissions")
	}

	return b, nil
}

func (b *SQLiteBackend) init() error {
	query := `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		encrypted_value TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);
	`
	if _, err := b.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create kv table: %w", err)
	}
	return nil
}

func (b *SQLiteBackend) Get(key string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var encrypted string
	err := b.db.QueryRow("SELECT encrypted_value FROM kv WHERE key = ?", key).Scan(&encrypted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query value: %w", err)
	}

	value, err := Decrypt(encrypted, b.encryptionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt value: %w", err)
	}
	return value, nil
}

func (b *SQLiteBackend) Set(key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	encrypted, err := Encrypt(value, b.encryptionKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt value: %w", err)
	}

	_, err = b.db.Exec(`
		INSERT INTO kv (key, encrypted_value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			encrypted_value = excluded.encrypted_value,
			updated_at = excluded.updated_at
	`, key, encrypted, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save value: %w", err)
	}
	return nil
}

func (b *SQLiteBackend) Delete(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.db.Exec("DELETE FROM kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete value: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
