package storage

import (
	"errors"
	"fmt"
	"os"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	SessionsBucket = []byte("sessions") // One nested bucket per session ID
)

// BoltStore is a Store backed by a BBolt database, scoped to one session.
type BoltStore struct {
	db        *bolt.DB
	sessionID []byte
}

// OpenBolt opens or creates the database at path and selects the session.
// The session bucket is created if it does not exist yet.
func OpenBolt(path, sessionID string) (*BoltStore, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session id must not be empty")
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &BoltStore{db: db, sessionID: []byte(sessionID)}
	if err := s.ensureSession(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path
func (s *BoltStore) Path() string {
	return s.db.Path()
}

// SessionID returns the session this store is scoped to
func (s *BoltStore) SessionID() string {
	return string(s.sessionID)
}

func (s *BoltStore) ensureSession() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		sessions, err := tx.CreateBucketIfNotExists(SessionsBucket)
		if err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", SessionsBucket, err)
		}
		if _, err := sessions.CreateBucketIfNotExists(s.sessionID); err != nil {
			return fmt.Errorf("failed to create session bucket: %w", err)
		}
		return nil
	})
}

// session returns the bucket of the current session, or nil if it was dropped
func (s *BoltStore) session(tx *bolt.Tx) *bolt.Bucket {
	sessions := tx.Bucket(SessionsBucket)
	if sessions == nil {
		return nil
	}
	return sessions.Bucket(s.sessionID)
}

// GetItem retrieves the value stored under key
func (s *BoltStore) GetItem(key string) (string, bool, error) {
	var (
		value string
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := s.session(tx)
		if b == nil {
			return nil
		}
		data := b.Get([]byte(key))
		if data == nil {
			return nil
		}
		// string() copies, the slice is only valid during the transaction
		value = string(data)
		found = true
		return nil
	})
	return value, found, err
}

// SetItem stores value under key
func (s *BoltStore) SetItem(key, value string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := s.session(tx)
		if b == nil {
			sessions, err := tx.CreateBucketIfNotExists(SessionsBucket)
			if err != nil {
				return err
			}
			if b, err = sessions.CreateBucket(s.sessionID); err != nil {
				return err
			}
		}
		return b.Put([]byte(key), []byte(value))
	})
}

// RemoveItem removes key from the session
func (s *BoltStore) RemoveItem(key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := s.session(tx)
		if b == nil {
			return nil
		}
		return b.Delete([]byte(key))
	})
}

// Clear removes every item of the session, keeping the session itself
func (s *BoltStore) Clear() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		sessions, err := tx.CreateBucketIfNotExists(SessionsBucket)
		if err != nil {
			return err
		}
		if sessions.Bucket(s.sessionID) != nil {
			if err := sessions.DeleteBucket(s.sessionID); err != nil {
				return err
			}
		}
		_, err = sessions.CreateBucket(s.sessionID)
		return err
	})
}

// Keys returns all keys of the session
func (s *BoltStore) Keys() ([]string, error) {
	var keys []string
	err := s.db.View(func(tx *bolt.Tx) error {
		b := s.session(tx)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	return keys, err
}

// Len returns the number of keys in the session
func (s *BoltStore) Len() (int, error) {
	var n int
	err := s.db.View(func(tx *bolt.Tx) error {
		b := s.session(tx)
		if b == nil {
			return nil
		}
		n = b.Stats().KeyN
		return nil
	})
	return n, err
}

// Sessions lists every session ID stored in the database
func (s *BoltStore) Sessions() ([]string, error) {
	var ids []string
	err := s.db.View(func(tx *bolt.Tx) error {
		sessions := tx.Bucket(SessionsBucket)
		if sessions == nil {
			return nil
		}
		return sessions.ForEachBucket(func(k []byte) error {
			ids = append(ids, string(k))
			return nil
		})
	})
	return ids, err
}

// DropSession ends the session by deleting its bucket and everything in it
func (s *BoltStore) DropSession() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		sessions := tx.Bucket(SessionsBucket)
		if sessions == nil || sessions.Bucket(s.sessionID) == nil {
			return ErrNoSession
		}
		return sessions.DeleteBucket(s.sessionID)
	})
}

// Compact creates a compacted copy of the database, removing unused space.
// This is useful after dropping sessions to reclaim disk space.
func (s *BoltStore) Compact() error {
	srcPath := s.db.Path()
	tmpPath := srcPath + ".compact"

	// Create new database
	dst, err := bolt.Open(tmpPath, 0600, nil)
	if err != nil {
		return fmt.Errorf("failed to create compact database: %w", err)
	}

	// bolt.Compact walks nested buckets as well
	if err := bolt.Compact(dst, s.db, 0); err != nil {
		dst.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to copy data: %w", err)
	}

	if err := dst.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close compact database: %w", err)
	}

	if err := s.db.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close source database: %w", err)
	}

	// Atomic replace
	backupPath := srcPath + ".backup"
	if err := os.Rename(srcPath, backupPath); err != nil {
		os.Remove(tmpPath)
		return s.reopen(srcPath, fmt.Errorf("failed to backup original: %w", err))
	}
	if err := os.Rename(tmpPath, srcPath); err != nil {
		os.Rename(backupPath, srcPath) // rollback
		os.Remove(tmpPath)
		return s.reopen(srcPath, fmt.Errorf("failed to replace database: %w", err))
	}
	os.Remove(backupPath)

	return s.reopen(srcPath, nil)
}

// reopen opens the database at path again after Compact closed it and
// returns cause joined with any open failure
func (s *BoltStore) reopen(path string, cause error) error {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return errors.Join(cause, fmt.Errorf("failed to reopen database: %w", err))
	}
	s.db = db
	return cause
}
