// Package keyring keeps proofstreak secrets in the OS keyring so they never
// land in config files or shell history.
package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/proofstreak/internal/constants"
)

// Secret names an entry stored under the proofstreak service.
type Secret string

const (
	ConnectionString Secret = constants.DefaultKeyringUser
	WebhookSecret    Secret = "webhook-secret"
	RedisPassword    Secret = "redis-password"
)

var (
	// ErrNotFound is returned when the secret is not stored
	ErrNotFound = errors.New("secret not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
	ErrUnknownSecret      = errors.New("unknown secret")
)

// ParseSecret maps a command-line name to a Secret.
func ParseSecret(name string) (Secret, error) {
	switch s := Secret(name); s {
	case ConnectionString, WebhookSecret, RedisPassword:
		return s, nil
	case "connection-string", "database":
		return ConnectionString, nil
	}
	return "", fmt.Errorf("%w %q (expected connection-string, webhook-secret or redis-password)", ErrUnknownSecret, name)
}

func Get(secret Secret) (string, error) {
	value, err := keyring.Get(constants.AppName, string(secret))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return value, nil
}

func Set(secret Secret, value string) error {
	if value == "" {
		return fmt.Errorf("%s cannot be empty", secret)
	}
	if err := keyring.Set(constants.AppName, string(secret), value); err != nil {
		return fmt.Errorf("failed to store %s in keyring: %w", secret, err)
	}
	return nil
}

func Delete(secret Secret) error {
	if err := keyring.Delete(constants.AppName, string(secret)); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete %s from keyring: %w", secret, err)
	}
	return nil
}

// Lookup returns the stored secret, or fallback when the keyring has no
// entry or cannot be reached.
func Lookup(secret Secret, fallback string) string {
	value, err := Get(secret)
	if err != nil {
		return fallback
	}
	return value
}

// IsAvailable checks if the OS keyring is available on the current system.
// This is a best-effort check and may not catch all failure scenarios.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
