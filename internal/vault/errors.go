package vault

import (
	"errors"
	"fmt"
)

var (
	ErrStorage    = errors.New("storage error")
	ErrDecryption = errors.New("decryption error")
	ErrValidation = errors.New("validation error")
	ErrCorruption = errors.New("corrupted item")
)

// StorageError reports that the underlying store rejected an operation
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("vault: failed to %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error        { return e.Err }
func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// DecryptionError reports an encrypted item that could not be decrypted
type DecryptionError struct {
	Key string
	Err error
}

func (e *DecryptionError) Error() string {
	return fmt.Sprintf("vault: cannot decrypt %q: %v", e.Key, e.Err)
}

func (e *DecryptionError) Unwrap() error        { return e.Err }
func (e *DecryptionError) Is(target error) bool { return target == ErrDecryption }

// ValidationError reports a malformed domain object
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("vault: invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// CorruptionError reports an envelope or payload that cannot be parsed
type CorruptionError struct {
	Key string
	Err error
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("vault: corrupted item %q: %v", e.Key, e.Err)
}

func (e *CorruptionError) Unwrap() error        { return e.Err }
func (e *CorruptionError) Is(target error) bool { return target == ErrCorruption }
