// Package vault implements the sprintdeck credential vault: a session-scoped
// key/value store that encrypts selected values, expires every item after a
// session timeout, and garbage-collects stale or corrupted entries.
//
// Every value is wrapped in an Item envelope before it reaches the underlying
// storage.Store. Encrypted values carry a crypto.Blob serialized as JSON.
//
// Reads degrade gracefully: an item that is expired, unparsable or cannot be
// decrypted is removed and reported as absent. Writes surface storage
// failures to the caller.
//
// The vault has an explicit lifecycle. Start runs a cleanup sweep and then
// sweeps periodically; Stop ends the periodic sweep and runs one final pass.
package vault
