// Package shellauth is the session and authentication core of the Article
// Artisan desktop shell. It owns the in-memory user session, its persistence
// round-trip across application restarts, and the state consulted by the
// navigation guard on every view transition.
//
// The package is deliberately small: it knows nothing about rendering,
// window management, or the host bridge's transport. Those collaborators are
// reached through four narrow interfaces — [Authenticator] for credential
// verification, storage.KV for session persistence, [Navigator] for view
// transitions, and [Notifier] for user-visible messages.
//
// # Architecture boundaries
//
// shellauth is the public surface. It exposes [Store], [Facade], [Builder],
// [Config], and value types (UserRecord, AuthResponse, Notification). Event
// dispatch internals live under internal/event; route interception lives in
// the guard subpackage.
//
// # What this package must NOT do
//
//   - Perform network I/O outside of Store.Login / Store.Register (the
//     navigation guard must stay synchronous on the in-memory snapshot).
//   - Validate or refresh tokens — the token returned by the authenticator
//     is opaque to this core and is stored by the host bridge, not here.
//   - Crash the shell: authenticator and storage failures resolve to state,
//     boolean returns, and notifications, never to an unhandled fault.
package shellauth
