package auth

import (
	"encoding/json"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "steamfetch"
	keyringKey     = "steamdb_cookies"
)

// KeyringStore keeps the cookie set in the system keychain.
type KeyringStore struct{}

// NewKeyringStore creates a keyring-based cookie store, verifying the
// keyring is usable on this system first.
func NewKeyringStore() (*KeyringStore, error) {
	testKey := "availability_test"
	if err := keyring.Set(keyringService, testKey, "test"); err != nil {
		return nil, fmt.Errorf("keyring not available: %w", err)
	}
	_ = keyring.Delete(keyringService, testKey)
	return &KeyringStore{}, nil
}

// Name identifies the store
func (k *KeyringStore) Name() string { return "keyring" }

// Load reads the cookie set from the keychain
func (k *KeyringStore) Load() (map[string]string, error) {
	data, err := keyring.Get(keyringService, keyringKey)
	if err != nil {
		if err == keyring.ErrNotFound {
			return nil, ErrNoCookies
		}
		return nil, fmt.Errorf("failed to read from keyring: %w", err)
	}

	var cookies map[string]string
	if err := json.Unmarshal([]byte(data), &cookies); err != nil {
		return nil, fmt.Errorf("corrupt keyring entry: %w", err)
	}
	return cookies, nil
}

// Save writes the cookie set to the keychain
func (k *KeyringStore) Save(cookies map[string]string) error {
	data, err := json.Marshal(cookies)
	if err != nil {
		return fmt.Errorf("failed to marshal cookies: %w", err)
	}
	if err := keyring.Set(keyringService, keyringKey, string(data)); err != nil {
		return fmt.Errorf("failed to store in keyring: %w", err)
	}
	return nil
}

// Exists checks for a keychain entry
func (k *KeyringStore) Exists() bool {
	_, err := keyring.Get(keyringService, keyringKey)
	return err == nil
}

// Delete removes the keychain entry
func (k *KeyringStore) Delete() error {
	if err := keyring.Delete(keyringService, keyringKey); err != nil && err != keyring.ErrNotFound {
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}
	return nil
}
