package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Get when the key has no value.
	ErrNotFound = errors.New("storage: key not found")
	// ErrUnavailable wraps backend transport failures.
	ErrUnavailable = errors.New("storage: backend unavailable")
)

// KV is the persistence boundary of the session core. Implementations must
// be safe for concurrent use.
type KV interface {
	// Get returns the value under key, or an error wrapping [ErrNotFound]
	// when absent.
	Get(ctx context.Context, key string) (string, error)
	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key, value string) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}
