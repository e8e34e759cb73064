// Package keyring keeps the postgres connection string out of config files.
package keyring

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/daynote/internal/constants"
)

var (
	// ErrNotFound is returned when no credentials are stored
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// Source reports where a connection string was resolved from.
type Source string

const (
	SourceNone    Source = "none"
	SourceEnv     Source = "env"
	SourceKeyring Source = "keyring"
)

// Credentials addresses one keyring entry.
type Credentials struct {
	Service string
	User    string
}

// Default returns the entry daynote stores its connection string under.
func Default() Credentials {
	return Credentials{Service: constants.AppName, User: constants.DefaultKeyringUser}
}

// Get retrieves the connection string. Returns ErrNotFound if nothing is stored.
func (c Credentials) Get() (string, error) {
	connStr, err := keyring.Get(c.Service, c.User)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return connStr, nil
}

// Set stores the connection string.
func (c Credentials) Set(connStr string) error {
	if strings.TrimSpace(connStr) == "" {
		return errors.New("connection string cannot be empty")
	}
	if err := keyring.Set(c.Service, c.User, connStr); err != nil {
		return fmt.Errorf("failed to store credentials in keyring: %w", err)
	}
	return nil
}

// Delete removes the stored connection string.
func (c Credentials) Delete() error {
	if err := keyring.Delete(c.Service, c.User); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete credentials from keyring: %w", err)
	}
	return nil
}

// Resolve returns the connection string from DAYNOTE_DB_CONNECTION, falling
// back to the keyring. An empty string with SourceNone means neither is set.
func (c Credentials) Resolve() (string, Source, error) {
	if v := strings.TrimSpace(os.Getenv(constants.EnvDBConnection)); v != "" {
		return v, SourceEnv, nil
	}
	connStr, err := c.Get()
	switch {
	case err == nil:
		return connStr, SourceKeyring, nil
	case errors.Is(err, ErrNotFound):
		return "", SourceNone, nil
	default:
		return "", SourceNone, err
	}
}

// IsAvailable is a best-effort check that the OS keyring answers.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
