package keyring

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/hourplan/internal/constants"
)

var (
	// ErrNotFound is returned when nothing is stored under the entry.
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring cannot be reached.
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// Entry addresses one secret in the OS keyring.
type Entry struct {
	Service string
	User    string
}

// Default is the entry holding the PostgreSQL connection string.
func Default() Entry {
	return Entry{Service: constants.AppName, User: constants.DefaultKeyringUser}
}

func (e Entry) Get() (string, error) {
	secret, err := keyring.Get(e.Service, e.User)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return secret, nil
}

func (e Entry) Set(secret string) error {
	if err := keyring.Set(e.Service, e.User, secret); err != nil {
		return fmt.Errorf("failed to store credentials in keyring: %w", err)
	}
	return nil
}

func (e Entry) Delete() error {
	err := keyring.Delete(e.Service, e.User)
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete credentials from keyring: %w", err)
	}
	return nil
}

// GetConnectionString reads the stored PostgreSQL connection string.
func GetConnectionString() (string, error) {
	return Default().Get()
}

// SetConnectionString stores a PostgreSQL connection string.
func SetConnectionString(connStr string) error {
	connStr = strings.TrimSpace(connStr)
	if connStr == "" {
		return errors.New("connection string cannot be empty")
	}
	if !strings.HasPrefix(connStr, "postgres://") && !strings.HasPrefix(connStr, "postgresql://") {
		return errors.New("connection string must be a postgres:// or postgresql:// URL")
	}
	return Default().Set(connStr)
}

// DeleteConnectionString removes the stored connection string.
func DeleteConnectionString() error {
	return Default().Delete()
}

// IsAvailable tries a read against the keyring. A missing entry still means
// the keyring works.
func IsAvailable() bool {
	_, err := Entry{Service: constants.AppName, User: "availability-check"}.Get()
	return err == nil || errors.Is(err, ErrNotFound)
}
