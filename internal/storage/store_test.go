package storage

import (
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

type record struct {
	ID   int    `json:"id"`
	Role string `json:"role"`
}

func newSQLiteBackend(t *testing.T) *SQLiteBackend {
	t.Helper()
	key, err := DeriveKey("test-passphrase")
	require.NoError(t, err)
	b, err := NewSQLiteBackend(filepath.Join(t.TempDir(), "session.db"), key)
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })
	return b
}

func backends(t *testing.T) map[string]Backend {
	mr := miniredis.RunT(t)
	keyring.MockInit()

	return map[string]Backend{
		"memory":  NewMemoryBackend(),
		"sqlite":  newSQLiteBackend(t),
		"redis":   NewRedisBackend(mr.Addr()),
		"keyring": NewKeyringBackend(""),
	}
}

func TestStore_RoundTrip(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store := NewStore(backend, "")

			require.NoError(t, store.Set("currentUser", record{ID: 1, Role: "mentor"}))

			var got record
			found, err := store.Get("currentUser", &got)
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, record{ID: 1, Role: "mentor"}, got)
		})
	}
}

func TestStore_MissingKey(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store := NewStore(backend, "missing_")

			var token string
			found, err := store.Get("authToken", &token)
			assert.NoError(t, err)
			assert.False(t, found)
			assert.Empty(t, token)
		})
	}
}

func TestStore_Remove(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store := NewStore(backend, "remove_")

			require.NoError(t, store.Set("authToken", "T"))
			require.NoError(t, store.Set("refreshToken", "R"))

			// Removing keys that were never written is fine
			require.NoError(t, store.Remove("authToken", "refreshToken", "authToken_expires_at"))

			var v string
			found, err := store.Get("authToken", &v)
			assert.NoError(t, err)
			assert.False(t, found)
			found, err = store.Get("refreshToken", &v)
			assert.NoError(t, err)
			assert.False(t, found)
		})
	}
}

func TestStore_PrefixesKeys(t *testing.T) {
	backend := NewMemoryBackend()
	store := NewStore(backend, "")

	require.NoError(t, store.Set("authToken", "T"))

	assert.Equal(t, []string{"ecosistema_authToken"}, backend.Keys())
	raw, err := backend.Get("ecosistema_authToken")
	require.NoError(t, err)
	assert.Equal(t, `"T"`, string(raw))
}

func TestStore_DecodeError(t *testing.T) {
	backend := NewMemoryBackend()
	require.NoError(t, backend.Set("ecosistema_currentUser", []byte("{not json")))

	var got record
	found, err := NewStore(backend, "").Get("currentUser", &got)
	assert.Error(t, err)
	assert.False(t, found)
}

func TestSQLiteBackend_EncryptsValues(t *testing.T) {
	b := newSQLiteBackend(t)
	require.NoError(t, b.Set("ecosistema_authToken", []byte(`"secret-token"`)))

	var stored string
	require.NoError(t, b.db.QueryRow("SELECT encrypted_value FROM kv WHERE key = ?", "ecosistema_authToken").Scan(&stored))
	assert.NotContains(t, stored, "secret-token")
}

func TestSQLiteBackend_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")
	key, err := DeriveKey("reopen")
	require.NoError(t, err)

	b, err := NewSQLiteBackend(path, key)
	require.NoError(t, err)
	require.NoError(t, b.Set("k", []byte("v")))
	require.NoError(t, b.Close())

	b, err = NewSQLiteBackend(path, key)
	require.NoError(t, err)
	defer b.Close()

	v, err := b.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(v))
}

func TestRedisBackend_StoresRawValue(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewStore(NewRedisBackend(mr.Addr()), "app_")

	require.NoError(t, store.Set("authToken", "T"))

	v, err := mr.Get("app_authToken")
	require.NoError(t, err)
	assert.Equal(t, `"T"`, v)
}

func TestCrypto(t *testing.T) {
	key, err := DeriveKey("passphrase")
	require.NoError(t, err)
	assert.Len(t, key, 32)

	again, err := DeriveKey("passphrase")
	require.NoError(t, err)
	assert.Equal(t, key, again)

	encoded, err := Encrypt([]byte("hello"), key)
	require.NoError(t, err)

	plain, err := Decrypt(encoded, key)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(plain))

	other, err := DeriveKey("another")
	require.NoError(t, err)
	_, err = Decrypt(encoded, other)
	assert.Error(t, err)

	_, err = DeriveKey("")
	assert.Error(t, err)
}
