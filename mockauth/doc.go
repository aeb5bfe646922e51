// Package mockauth is the reference authentication backend for the desktop
// shell demo. It implements shellauth.Authenticator entirely in process:
// one seeded account (admin / 123456), open registration with basic form
// validation, signed HS256 tokens, and a fixed-window throttle on failed
// logins.
//
// It exists so the shell runs without any server. Nothing in it is meant
// for production: passwords are stored in plain text and the signing
// secret defaults to a well-known demo value.
package mockauth
