package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/pbkdf2"
)

const (
	SaltSize      = 16     // Salt size in bytes
	KeySize       = 32     // AES-256 key size
	NonceSize     = 12     // GCM nonce size
	TagSize       = 16     // GCM authentication tag size
	MinIterations = 100000 // PBKDF2 iteration floor
)

var (
	ErrDecryption        = errors.New("decryption failed")
	ErrInvalidCiphertext = errors.New("invalid ciphertext")
	ErrAuthFailed        = errors.New("authentication failed")
	ErrDestroyed         = errors.New("sealer destroyed")
)

// Blob is an encrypted value together with the parameters needed to reverse it.
type Blob struct {
	Data string `json:"data"`
	IV   string `json:"iv"`
	Salt string `json:"salt"`
}

// DeriveKey derives an AES-256 key from a password and salt.
// Iteration counts below MinIterations are raised to MinIterations.
func DeriveKey(password, salt []byte, iterations int) []byte {
	if iterations < MinIterations {
		iterations = MinIterations
	}
	return pbkdf2.Key(password, salt, iterations, KeySize, sha256.New)
}

// Sealer encrypts and decrypts values under a static passphrase
type Sealer struct {
	mu         sync.RWMutex
	password   []byte
	iterations int
	destroyed  bool
}

// NewSealer creates a sealer for the given passphrase
func NewSealer(password []byte, iterations int) *Sealer {
	if iterations < MinIterations {
		iterations = MinIterations
	}
	p := make([]byte, len(password))
	copy(p, password)
	return &Sealer{
		password:   p,
		iterations: iterations,
	}
}

// Iterations returns the PBKDF2 iteration count in use
func (s *Sealer) Iterations() int {
	return s.iterations
}

// Encrypt encrypts plaintext with a freshly derived key.
// Salt and nonce are regenerated on every call.
func (s *Sealer) Encrypt(plaintext string) (*Blob, error) {
	salt, err := GenerateRandom(SaltSize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	nonce, err := GenerateRandom(NonceSize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	key, err := s.deriveKey(salt)
	if err != nil {
		return nil, err
	}
	defer ClearBytes(key)

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	ciphertext := gcm.Seal(nil, nonce, []byte(plaintext), nil)

	return &Blob{
		Data: hex.EncodeToString(ciphertext),
		IV:   hex.EncodeToString(nonce),
		Salt: hex.EncodeToString(salt),
	}, nil
}

// Decrypt reverses Encrypt. Every failure wraps ErrDecryption.
func (s *Sealer) Decrypt(blob *Blob) (string, error) {
	if blob == nil {
		return "", fmt.Errorf("%w: %w", ErrDecryption, ErrInvalidCiphertext)
	}

	ciphertext, err := hex.DecodeString(blob.Data)
	if err != nil {
		return "", fmt.Errorf("%w: data: %w", ErrDecryption, err)
	}
	nonce, err := hex.DecodeString(blob.IV)
	if err != nil {
		return "", fmt.Errorf("%w: iv: %w", ErrDecryption, err)
	}
	salt, err := hex.DecodeString(blob.Salt)
	if err != nil {
		return "", fmt.Errorf("%w: salt: %w", ErrDecryption, err)
	}

	if len(nonce) != NonceSize || len(salt) != SaltSize || len(ciphertext) < TagSize {
		return "", fmt.Errorf("%w: %w", ErrDecryption, ErrInvalidCiphertext)
	}

	key, err := s.deriveKey(salt)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDecryption, err)
	}
	defer ClearBytes(key)

	gcm, err := newGCM(key)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDecryption, err)
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDecryption, ErrAuthFailed)
	}

	return string(plaintext), nil
}

func (s *Sealer) deriveKey(salt []byte) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.destroyed {
		return nil, ErrDestroyed
	}
	return DeriveKey(s.password, salt, s.iterations), nil
}

// Destroy clears the sealer's passphrase from memory. Encrypt and Decrypt
// fail with ErrDestroyed afterwards.
func (s *Sealer) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	ClearBytes(s.password)
	s.password = nil
	s.destroyed = true
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}

// ClearBytes securely clears a byte slice
func ClearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// ConstantTimeCompare performs a constant-time comparison of two byte slices
func ConstantTimeCompare(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

// GenerateRandom generates n random bytes
func GenerateRandom(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return b, nil
}
