// Package storage provides the session-scoped key/value stores backing the vault.
//
// A Store is a flat string-to-string map scoped to one session. It offers no
// confidentiality or integrity of its own; the vault layer encrypts whatever
// needs protecting before it reaches a Store.
//
// The BBolt database uses one top-level bucket:
//   - sessions: one nested bucket per session ID, holding that session's items
//
// Ending a session drops its nested bucket. BBolt provides ACID transactions,
// file locking, and corruption detection, so every single-key operation is
// atomic.
//
// MemoryStore keeps items in process memory and is used for ephemeral runs
// and tests.
package storage
