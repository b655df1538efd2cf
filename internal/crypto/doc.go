// Package crypto provides the cryptographic primitives behind the sprintdeck vault.
//
// Encryption uses AES-256-GCM with:
//   - 32-byte key derived from the operator passphrase via PBKDF2
//   - 12-byte random nonce per encryption operation
//   - Authenticated encryption prevents tampering
//
// Key derivation uses PBKDF2-HMAC-SHA256 with:
//   - 16-byte random salt, regenerated on every encryption
//   - at least 100,000 iterations
//
// Ciphertext, nonce and salt travel together as a hex-encoded Blob so that a
// value can be decrypted with nothing but the passphrase.
package crypto
