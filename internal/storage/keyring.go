package storage

import (
	"errors"

	"github.com/zalando/go-keyring"
)

// DefaultKeyringService is the service name keyring items are filed under.
const DefaultKeyringService = "ecosistema-session"

// KeyringBackend stores each value as a separate item in the operating
// system keyring.
type KeyringBackend struct {
	service string
}

func NewKeyringBackend(service string) *KeyringBackend {
	if service == "" {
		service = DefaultKeyringService
	}
	return &KeyringBackend{service: service}
}

func (k *KeyringBackend) Get(key string) ([]byte, error) {
	v, err := keyring.Get(k.service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(v), nil
}

func (k *KeyringBackend) Set(key string, value []byte) error {
	return keyring.Set(k.service, key, string(value))
}

func (k *KeyringBackend) Delete(key string) error {
	err := keyring.Delete(k.service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

func (k *KeyringBackend) Close() error {
	return nil
}
