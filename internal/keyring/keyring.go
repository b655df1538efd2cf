package keyring

import (
	"errors"
	"path/filepath"

	"github.com/zalando/go-keyring"
)

const serviceName = "sprintdeck"

var ErrNotFound = keyring.ErrNotFound

// account maps a store path to a keyring account so that every
// session database gets its own passphrase entry
func account(storePath string) string {
	if abs, err := filepath.Abs(storePath); err == nil {
		return abs
	}
	return storePath
}

// SavePassphrase stores the vault passphrase in the OS keyring
func SavePassphrase(storePath, passphrase string) error {
	return keyring.Set(serviceName, account(storePath), passphrase)
}

// GetPassphrase retrieves the vault passphrase from the OS keyring
func GetPassphrase(storePath string) (string, error) {
	return keyring.Get(serviceName, account(storePath))
}

// DeletePassphrase removes the vault passphrase from the OS keyring
func DeletePassphrase(storePath string) error {
	return keyring.Delete(serviceName, account(storePath))
}

// HasPassphrase checks if a passphrase is stored in the keyring
func HasPassphrase(storePath string) bool {
	_, err := GetPassphrase(storePath)
	return err == nil
}

// IsNotFound reports whether err means no entry exists
func IsNotFound(err error) bool {
	return errors.Is(err, keyring.ErrNotFound)
}
