// Package guard enforces the shell's navigation policy: routes flagged as
// requiring authentication are unreachable without a session, and the
// login/registration entry points are unreachable once a session exists.
//
// The guard runs before every navigation, including the first one, and
// decides purely from route metadata and the in-memory session snapshot.
// The only I/O it can trigger is the store's one-shot hydration from
// persistent storage; it never waits on the network.
//
// # What this package must NOT do
//
//   - Call the authenticator (the remote check happens only inside
//     Store.Login / Store.Register).
//   - Act as a security boundary: a route without metadata fails open.
package guard
