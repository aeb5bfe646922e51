package shellauth

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/articleartisan/shellauth/internal/event"
	"github.com/articleartisan/shellauth/storage"
)

const eventSource = "session.store"

// Store is the single source of truth for the shell's authentication state.
// Exactly one Store exists per running application; it is constructed via
// [Builder.Build] and handed to the guard and facade by reference.
//
// All methods are safe for concurrent use. Login and Register block on the
// authenticator; every other method only touches the in-memory snapshot.
type Store struct {
	cfg    Config
	auth   Authenticator
	kv     storage.KV
	events *event.Dispatcher

	mu       sync.Mutex
	user     *UserRecord
	loading  bool
	lastErr  string
	hydrated bool
}

// Initialize hydrates the session from persistent storage. It runs at most
// once per store: repeated calls after the first hydration attempt (or
// after a successful login) are no-ops.
//
// A missing, unreadable, or malformed persisted value is "no session":
// Initialize never fails, and a malformed record is removed from storage
// so it cannot poison the next start.
func (s *Store) Initialize(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hydrated || s.user != nil {
		return
	}
	s.hydrated = true

	raw, err := s.kv.Get(ctx, s.cfg.Storage.Key)
	if err != nil {
		return
	}

	var user UserRecord
	if err := json.Unmarshal([]byte(raw), &user); err != nil || !user.Valid() {
		_ = s.kv.Remove(ctx, s.cfg.Storage.Key)
		s.emit(ctx, event.Event{
			EventType: event.TypeSessionDiscarded,
			Priority:  event.PriorityHigh,
			Error:     "malformed persisted session",
		})
		return
	}

	s.user = &user
	s.emit(ctx, event.Event{
		EventType: event.TypeSessionHydrated,
		Username:  user.Username,
		Priority:  event.PriorityNormal,
		Success:   true,
	})
}

// Login authenticates against the remote backend. It reports true on
// success and false on credential failure, transport failure, or when
// another attempt is still in flight; LastError carries the reason.
//
// The loading flag is true for exactly the duration of the authenticator
// call and is reset on every exit path.
func (s *Store) Login(ctx context.Context, username, password string) bool {
	if !s.begin() {
		return false
	}

	resp, err := s.auth.Login(ctx, username, password)

	return s.settle(ctx, resp, err, attempt{
		username:    username,
		successType: event.TypeLoginSuccess,
		failureType: event.TypeLoginFailed,
		fallback:    "login failed",
	})
}

// Register creates an account through the remote backend, forwarding all
// four form fields verbatim. The store performs no confirm-password
// matching of its own; that is the authenticator's concern. The return
// contract is identical to [Store.Login].
func (s *Store) Register(ctx context.Context, username, email, password, confirmPassword string) bool {
	if !s.begin() {
		return false
	}

	resp, err := s.auth.Register(ctx, RegisterRequest{
		Username:        username,
		Email:           email,
		Password:        password,
		ConfirmPassword: confirmPassword,
	})

	return s.settle(ctx, resp, err, attempt{
		username:    username,
		successType: event.TypeRegisterSuccess,
		failureType: event.TypeRegisterFailed,
		fallback:    "registration failed",
	})
}

// Logout clears the session and purges persisted state. It never fails:
// storage and backend errors are absorbed, the in-memory session is gone
// either way.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	var username string
	if s.user != nil {
		username = s.user.Username
	}
	s.user = nil
	s.lastErr = ""
	_ = s.kv.Remove(ctx, s.cfg.Storage.Key)
	s.mu.Unlock()

	// Best-effort backend notification; the local session is already gone.
	_ = s.auth.Logout(ctx)

	s.emit(ctx, event.Event{
		EventType: event.TypeLogout,
		Username:  username,
		Priority:  event.PriorityNormal,
		Success:   true,
	})
}

// IsAuthenticated reports whether a user is present in memory.
func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil
}

// Username returns the current user's name, or "" when unauthenticated.
func (s *Store) Username() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return ""
	}
	return s.user.Username
}

// CurrentUser returns a copy of the current user record and whether one
// exists.
func (s *Store) CurrentUser() (UserRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return UserRecord{}, false
	}
	return *s.user, true
}

// IsLoading reports whether a login or registration call is in flight.
func (s *Store) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// LastError returns the failure message of the most recent attempt, or ""
// when the last attempt succeeded or none was made.
func (s *Store) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Routes exposes the configured route paths for the guard and facade.
func (s *Store) Routes() RouteConfig {
	return s.cfg.Routes
}

// EventsDropped returns the number of session events discarded due to
// dispatcher buffer saturation.
func (s *Store) EventsDropped() uint64 {
	return s.events.Dropped()
}

// Close stops the event dispatcher after draining buffered events. The
// store remains usable; further events are silently dropped.
func (s *Store) Close() {
	s.events.Close()
}

// attempt carries the per-operation constants threaded through settle.
type attempt struct {
	username    string
	successType string
	failureType string
	fallback    string
}

// begin latches the loading flag. A second attempt while one is in flight
// is rejected rather than raced: it reports false and records
// [ErrAttemptInFlight] without disturbing the running attempt.
func (s *Store) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loading {
		s.lastErr = ErrAttemptInFlight.Error()
		return false
	}
	s.loading = true
	s.lastErr = ""
	return true
}

// settle resolves an authenticator response into session state. The
// loading flag is cleared on every path.
func (s *Store) settle(ctx context.Context, resp *AuthResponse, err error, a attempt) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false

	if err != nil {
		s.lastErr = err.Error()
		s.emit(ctx, event.Event{
			EventType: a.failureType,
			Username:  a.username,
			Priority:  event.PriorityHigh,
			Error:     s.lastErr,
		})
		return false
	}

	if resp == nil || !resp.Success || resp.Data == nil || !resp.Data.User.Valid() {
		s.lastErr = failureMessage(resp, a.fallback)
		s.emit(ctx, event.Event{
			EventType: a.failureType,
			Username:  a.username,
			Priority:  event.PriorityHigh,
			Error:     s.lastErr,
		})
		return false
	}

	// Commit order: persist first, then flip the in-memory state, so a
	// crash between the two leaves storage ahead of memory, never behind.
	user := resp.Data.User
	s.persist(ctx, user)
	s.user = &user
	s.hydrated = true
	s.lastErr = ""

	s.emit(ctx, event.Event{
		EventType: a.successType,
		Username:  user.Username,
		Priority:  event.PriorityNormal,
		Success:   true,
	})
	return true
}

// persist writes the session record through to storage. A write failure
// does not roll back the attempt; it is surfaced as a critical event so
// the host can observe the divergence.
func (s *Store) persist(ctx context.Context, user UserRecord) {
	data, err := json.Marshal(user)
	if err == nil {
		err = s.kv.Set(ctx, s.cfg.Storage.Key, string(data))
	}
	if err != nil {
		s.emit(ctx, event.Event{
			EventType: event.TypePersistFailed,
			Username:  user.Username,
			Priority:  event.PriorityCritical,
			Error:     err.Error(),
		})
	}
}

func (s *Store) emit(ctx context.Context, e event.Event) {
	if s.events == nil {
		return
	}
	e.Timestamp = time.Now()
	e.Source = eventSource
	s.events.Emit(ctx, e)
}

func failureMessage(resp *AuthResponse, fallback string) string {
	if resp != nil {
		if resp.Error != "" {
			return resp.Error
		}
		if resp.Message != "" {
			return resp.Message
		}
	}
	return fallback
}
