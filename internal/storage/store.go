package storage

import (
	"errors"

	"github.com/google/uuid"
)

var (
	ErrQuotaExceeded = errors.New("storage quota exceeded")
	ErrNoSession     = errors.New("session not found")
)

// Store is a session-scoped string key/value store.
type Store interface {
	// GetItem returns the value stored under key and whether it was present.
	GetItem(key string) (string, bool, error)
	// SetItem stores value under key, replacing any previous value.
	SetItem(key, value string) error
	// RemoveItem deletes key. Removing a missing key is not an error.
	RemoveItem(key string) error
	// Clear deletes every key in the session.
	Clear() error
	// Keys enumerates the keys currently stored.
	Keys() ([]string, error)
	// Len returns the number of stored keys.
	Len() (int, error)
}

// NewSessionID returns a fresh random session identifier
func NewSessionID() string {
	return uuid.NewString()
}
