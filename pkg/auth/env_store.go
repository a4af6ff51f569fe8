package auth

import (
	"errors"
	"os"
)

// cookieEnvVar holds a browser-style cookie header: "k=v; k2=v2".
const cookieEnvVar = "STEAMFETCH_STEAMDB_COOKIES"

// EnvStore reads the cookie set from the environment. Read-only.
type EnvStore struct{}

// NewEnvStore creates an environment-backed cookie store
func NewEnvStore() *EnvStore { return &EnvStore{} }

// Name identifies the store
func (e *EnvStore) Name() string { return "environment" }

// Load parses the cookie header from the environment
func (e *EnvStore) Load() (map[string]string, error) {
	header := os.Getenv(cookieEnvVar)
	if header == "" {
		return nil, ErrNoCookies
	}
	return ParseCookieHeader(header), nil
}

// Save is not supported for the environment store
func (e *EnvStore) Save(map[string]string) error {
	return errors.New("environment store is read-only")
}

// Exists checks whether the environment variable is set
func (e *EnvStore) Exists() bool {
	return os.Getenv(cookieEnvVar) != ""
}
