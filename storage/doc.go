// Package storage defines the key-value persistence boundary the session
// core hydrates from and commits to, plus two implementations: an embedded
// in-memory store and a Redis-backed store.
//
// The session core treats persistence as best-effort: a read failure is
// "no session", a write failure does not roll back in-memory state. The
// implementations here therefore only need to be honest about
// [ErrNotFound] versus [ErrUnavailable]; retry policy belongs to neither.
//
// # What this package must NOT do
//
//   - Interpret the stored value (serialization is the caller's concern).
//   - Import the shellauth root package (no upward imports).
package storage
