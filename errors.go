package shellauth

import "errors"

var (
	// ErrAttemptInFlight is recorded as the last error when a login or
	// registration attempt is rejected because another one has not settled.
	ErrAttemptInFlight = errors.New("authentication already in progress")
	// ErrAuthenticatorRequired is returned by [Builder.Build] when no
	// authenticator was supplied.
	ErrAuthenticatorRequired = errors.New("authenticator required")
	// ErrStorageRequired is returned by [Builder.Build] when no persistence
	// backend was supplied.
	ErrStorageRequired = errors.New("storage backend required")
	// ErrBuilderUsed is returned by [Builder.Build] on reuse.
	ErrBuilderUsed = errors.New("builder already used")
)
