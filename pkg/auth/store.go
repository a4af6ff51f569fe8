// Package auth manages the SteamDB session cookies used by the cookie
// access strategy. Cookies are loaded once at scraper startup and never
// mutated by the run itself.
package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNoCookies indicates that no store holds a cookie set.
var ErrNoCookies = errors.New("no steamdb cookies found")

// Store is the interface for loading and saving a cookie set.
type Store interface {
	// Name identifies the store in logs and CLI output
	Name() string

	// Load returns the stored cookie key-value pairs
	Load() (map[string]string, error)

	// Save persists the cookie set
	Save(cookies map[string]string) error

	// Exists checks whether the store holds a cookie set
	Exists() bool
}

// Manager chains cookie stores with fallback: keyring, then encrypted
// file, then the plain cookies.txt, then environment.
type Manager struct {
	stores []Store
}

// NewManager creates a cookie manager over the available backends.
// cookieFile is the plain-text cookies.txt path from configuration.
func NewManager(cookieFile string) (*Manager, error) {
	var stores []Store

	// System keychain first, when available.
	if ks, err := NewKeyringStore(); err == nil {
		stores = append(stores, ks)
	}

	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	es, err := NewEncryptedFileStore(filepath.Join(configDir, "cookies.enc"))
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted store: %w", err)
	}
	stores = append(stores, es)

	if cookieFile != "" {
		stores = append(stores, NewFileStore(cookieFile))
	}

	stores = append(stores, NewEnvStore())

	return &Manager{stores: stores}, nil
}

// Load returns the cookie set from the first store that has one.
func (m *Manager) Load() (map[string]string, string, error) {
	for _, s := range m.stores {
		if !s.Exists() {
			continue
		}
		cookies, err := s.Load()
		if err != nil || len(cookies) == 0 {
			continue
		}
		return cookies, s.Name(), nil
	}
	return nil, "", ErrNoCookies
}

// Save persists the cookie set in the first store that accepts it.
func (m *Manager) Save(cookies map[string]string) (string, error) {
	if len(cookies) == 0 {
		return "", errors.New("cookie set is empty")
	}
	var lastErr error
	for _, s := range m.stores {
		if _, ok := s.(*EnvStore); ok {
			continue // environment is read-only
		}
		if err := s.Save(cookies); err != nil {
			lastErr = err
			continue
		}
		return s.Name(), nil
	}
	if lastErr == nil {
		lastErr = errors.New("no writable cookie store available")
	}
	return "", lastErr
}

// Delete removes the cookie set from every store that has one.
func (m *Manager) Delete() error {
	var errs []error
	for _, s := range m.stores {
		type deleter interface{ Delete() error }
		d, ok := s.(deleter)
		if !ok || !s.Exists() {
			continue
		}
		if err := d.Delete(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// getConfigDir returns the steamfetch config directory, creating it if
// needed.
func getConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(base, "steamfetch")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	return dir, nil
}
