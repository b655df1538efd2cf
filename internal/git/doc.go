// Package git checks that the session database is kept out of version
// control.
//
// The database holds tracker credentials. Even though email and token are
// encrypted, the default passphrase is public, so the file must never be
// committed. Checks performed:
//   - Whether the store is tracked by git (must not be)
//   - Whether the store is matched by .gitignore (should be)
package git
