package shellauth

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/articleartisan/shellauth/storage"
)

type stubAuthenticator struct {
	mu           sync.Mutex
	loginResp    *AuthResponse
	loginErr     error
	registerResp *AuthResponse
	registerErr  error
	lastLogin    [2]string
	lastRegister RegisterRequest
	logoutCalls  int

	// When set, Login blocks until the channel is closed.
	block chan struct{}
}

func (a *stubAuthenticator) Login(_ context.Context, username, password string) (*AuthResponse, error) {
	a.mu.Lock()
	a.lastLogin = [2]string{username, password}
	block := a.block
	a.mu.Unlock()

	if block != nil {
		<-block
	}
	return a.loginResp, a.loginErr
}

func (a *stubAuthenticator) Register(_ context.Context, req RegisterRequest) (*AuthResponse, error) {
	a.mu.Lock()
	a.lastRegister = req
	a.mu.Unlock()
	return a.registerResp, a.registerErr
}

func (a *stubAuthenticator) Logout(context.Context) error {
	a.mu.Lock()
	a.logoutCalls++
	a.mu.Unlock()
	return nil
}

// failingKV accepts nothing: Set always errors, Get always misses.
type failingKV struct{}

func (failingKV) Get(context.Context, string) (string, error) {
	return "", storage.ErrNotFound
}

func (failingKV) Set(context.Context, string, string) error {
	return errors.New("disk full")
}

func (failingKV) Remove(context.Context, string) error { return nil }

func newTestStore(t *testing.T, auth Authenticator, kv storage.KV) *Store {
	t.Helper()

	store, err := New().WithAuthenticator(auth).WithStorage(kv).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(store.Close)
	return store
}

func okResponse(user UserRecord) *AuthResponse {
	return &AuthResponse{
		Success: true,
		Data: &AuthPayload{
			User:      user,
			Token:     "opaque-token",
			ExpiresIn: 3600,
		},
		Message: "ok",
	}
}

func testUser() UserRecord {
	return UserRecord{ID: "1", Username: "admin", Email: "admin@example.com", Avatar: "https://via.placeholder.com/40"}
}

func TestLoginSuccessCommitsAndPersists(t *testing.T) {
	kv := storage.NewMemory()
	auth := &stubAuthenticator{loginResp: okResponse(testUser())}
	store := newTestStore(t, auth, kv)

	if !store.Login(context.Background(), "admin", "123456") {
		t.Fatalf("Login failed: %s", store.LastError())
	}
	if !store.IsAuthenticated() {
		t.Fatal("expected authenticated state after successful login")
	}
	if got := store.Username(); got != "admin" {
		t.Fatalf("Username = %q, want admin", got)
	}
	if store.IsLoading() {
		t.Fatal("loading flag still set after login settled")
	}
	if store.LastError() != "" {
		t.Fatalf("LastError = %q, want empty", store.LastError())
	}

	raw, err := kv.Get(context.Background(), "user")
	if err != nil {
		t.Fatalf("persisted session missing: %v", err)
	}
	var persisted UserRecord
	if err := json.Unmarshal([]byte(raw), &persisted); err != nil {
		t.Fatalf("persisted session unparseable: %v", err)
	}
	if persisted != testUser() {
		t.Fatalf("persisted record = %+v, want %+v", persisted, testUser())
	}
}

func TestLoginCredentialFailure(t *testing.T) {
	auth := &stubAuthenticator{loginResp: &AuthResponse{Success: false, Error: "invalid username or password"}}
	store := newTestStore(t, auth, storage.NewMemory())

	if store.Login(context.Background(), "ghost", "wrong") {
		t.Fatal("expected login to fail")
	}
	if store.IsAuthenticated() {
		t.Fatal("failed login must not authenticate")
	}
	if got := store.LastError(); got != "invalid username or password" {
		t.Fatalf("LastError = %q", got)
	}
	if store.IsLoading() {
		t.Fatal("loading flag still set after failure")
	}
}

func TestLoginAdapterError(t *testing.T) {
	auth := &stubAuthenticator{loginErr: errors.New("bridge unreachable")}
	store := newTestStore(t, auth, storage.NewMemory())

	if store.Login(context.Background(), "admin", "123456") {
		t.Fatal("expected login to fail on adapter error")
	}
	if got := store.LastError(); got != "bridge unreachable" {
		t.Fatalf("LastError = %q", got)
	}
	if store.IsAuthenticated() {
		t.Fatal("adapter error must not authenticate")
	}
	if store.IsLoading() {
		t.Fatal("loading flag still set after adapter error")
	}
}

func TestLoginFallbackMessage(t *testing.T) {
	auth := &stubAuthenticator{loginResp: &AuthResponse{Success: false}}
	store := newTestStore(t, auth, storage.NewMemory())

	store.Login(context.Background(), "ghost", "wrong")
	if got := store.LastError(); got != "login failed" {
		t.Fatalf("LastError = %q, want generic fallback", got)
	}
}

func TestLoginRejectsResponseWithoutValidUser(t *testing.T) {
	// Success=true but no usable user record must not create a session.
	cases := []*AuthResponse{
		{Success: true, Data: nil, Message: "ok"},
		{Success: true, Data: &AuthPayload{User: UserRecord{Username: "no-id"}}},
		{Success: true, Data: &AuthPayload{User: UserRecord{ID: "no-name"}}},
	}

	for i, resp := range cases {
		auth := &stubAuthenticator{loginResp: resp}
		store := newTestStore(t, auth, storage.NewMemory())

		if store.Login(context.Background(), "admin", "123456") {
			t.Fatalf("case %d: expected login to fail", i)
		}
		if store.IsAuthenticated() {
			t.Fatalf("case %d: partial session created", i)
		}
		if store.LastError() == "" {
			t.Fatalf("case %d: expected non-empty last error", i)
		}
	}
}

func TestLoginClearsPreviousError(t *testing.T) {
	auth := &stubAuthenticator{loginResp: &AuthResponse{Success: false, Error: "nope"}}
	store := newTestStore(t, auth, storage.NewMemory())

	store.Login(context.Background(), "ghost", "wrong")
	if store.LastError() == "" {
		t.Fatal("expected error after failed attempt")
	}

	auth.mu.Lock()
	auth.loginResp = okResponse(testUser())
	auth.mu.Unlock()

	if !store.Login(context.Background(), "admin", "123456") {
		t.Fatalf("second login failed: %s", store.LastError())
	}
	if store.LastError() != "" {
		t.Fatalf("LastError = %q after success, want empty", store.LastError())
	}
}

func TestRegisterForwardsAllFieldsVerbatim(t *testing.T) {
	// The store forwards the form blindly: mismatched confirm passwords are
	// the authenticator's call, not the store's.
	auth := &stubAuthenticator{registerResp: okResponse(testUser())}
	store := newTestStore(t, auth, storage.NewMemory())

	store.Register(context.Background(), "alice", "alice@example.com", "pw-one", "pw-two")

	want := RegisterRequest{
		Username:        "alice",
		Email:           "alice@example.com",
		Password:        "pw-one",
		ConfirmPassword: "pw-two",
	}
	auth.mu.Lock()
	got := auth.lastRegister
	auth.mu.Unlock()
	if got != want {
		t.Fatalf("forwarded request = %+v, want %+v", got, want)
	}
}

func TestRegisterFailureSetsLastError(t *testing.T) {
	auth := &stubAuthenticator{registerResp: &AuthResponse{Success: false, Error: "username already taken"}}
	store := newTestStore(t, auth, storage.NewMemory())

	if store.Register(context.Background(), "admin", "a@b.c", "pw", "pw") {
		t.Fatal("expected registration to fail")
	}
	if got := store.LastError(); got != "username already taken" {
		t.Fatalf("LastError = %q", got)
	}
	if store.IsLoading() {
		t.Fatal("loading flag still set after failed registration")
	}
}

func TestLogoutClearsStateAndStorage(t *testing.T) {
	kv := storage.NewMemory()
	auth := &stubAuthenticator{loginResp: okResponse(testUser())}
	store := newTestStore(t, auth, kv)

	if !store.Login(context.Background(), "admin", "123456") {
		t.Fatalf("Login failed: %s", store.LastError())
	}

	store.Logout(context.Background())

	if store.IsAuthenticated() {
		t.Fatal("still authenticated after logout")
	}
	if store.Username() != "" {
		t.Fatal("username survives logout")
	}
	if store.LastError() != "" {
		t.Fatal("last error survives logout")
	}
	if _, err := kv.Get(context.Background(), "user"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("persisted session still present after logout: %v", err)
	}

	auth.mu.Lock()
	calls := auth.logoutCalls
	auth.mu.Unlock()
	if calls != 1 {
		t.Fatalf("authenticator Logout called %d times, want 1", calls)
	}
}

func TestInitializeRoundTrip(t *testing.T) {
	kv := storage.NewMemory()
	want := testUser()
	data, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := kv.Set(context.Background(), "user", string(data)); err != nil {
		t.Fatalf("seed: %v", err)
	}

	store := newTestStore(t, &stubAuthenticator{}, kv)
	store.Initialize(context.Background())

	got, ok := store.CurrentUser()
	if !ok {
		t.Fatal("expected hydrated session")
	}
	if got != want {
		t.Fatalf("hydrated record = %+v, want %+v", got, want)
	}
}

func TestInitializeMalformedValueDiscarded(t *testing.T) {
	kv := storage.NewMemory()
	if err := kv.Set(context.Background(), "user", `{"id":"1","username":"adm`); err != nil {
		t.Fatalf("seed: %v", err)
	}

	store := newTestStore(t, &stubAuthenticator{}, kv)
	store.Initialize(context.Background())

	if store.IsAuthenticated() {
		t.Fatal("malformed value must not authenticate")
	}
	if _, err := kv.Get(context.Background(), "user"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("malformed value not purged: %v", err)
	}
}

func TestInitializeInvalidRecordDiscarded(t *testing.T) {
	// Parseable JSON that does not form a valid user record is equally
	// "no session".
	kv := storage.NewMemory()
	if err := kv.Set(context.Background(), "user", `{"email":"a@b.c"}`); err != nil {
		t.Fatalf("seed: %v", err)
	}

	store := newTestStore(t, &stubAuthenticator{}, kv)
	store.Initialize(context.Background())

	if store.IsAuthenticated() {
		t.Fatal("invalid record must not authenticate")
	}
	if _, err := kv.Get(context.Background(), "user"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("invalid record not purged: %v", err)
	}
}

func TestInitializeIsOneShot(t *testing.T) {
	kv := storage.NewMemory()
	store := newTestStore(t, &stubAuthenticator{}, kv)

	store.Initialize(context.Background())
	if store.IsAuthenticated() {
		t.Fatal("empty storage must not authenticate")
	}

	// A value appearing after the first hydration attempt is ignored.
	data, _ := json.Marshal(testUser())
	_ = kv.Set(context.Background(), "user", string(data))

	store.Initialize(context.Background())
	if store.IsAuthenticated() {
		t.Fatal("second Initialize must be a no-op")
	}
}

func TestOverlappingAttemptRejected(t *testing.T) {
	block := make(chan struct{})
	auth := &stubAuthenticator{loginResp: okResponse(testUser()), block: block}
	store := newTestStore(t, auth, storage.NewMemory())

	done := make(chan bool, 1)
	go func() {
		done <- store.Login(context.Background(), "admin", "123456")
	}()

	waitFor(t, store.IsLoading)

	if store.Login(context.Background(), "admin", "123456") {
		t.Fatal("overlapping login must be rejected")
	}
	if got := store.LastError(); got != ErrAttemptInFlight.Error() {
		t.Fatalf("LastError = %q, want %q", got, ErrAttemptInFlight.Error())
	}
	if store.Register(context.Background(), "a", "a@b.c", "pw", "pw") {
		t.Fatal("overlapping register must be rejected")
	}

	close(block)
	if !<-done {
		t.Fatalf("first login failed: %s", store.LastError())
	}
	if !store.IsAuthenticated() {
		t.Fatal("first login should have authenticated")
	}
	if store.IsLoading() {
		t.Fatal("loading flag still set after first login settled")
	}
}

func TestPersistFailureDoesNotRollBack(t *testing.T) {
	auth := &stubAuthenticator{loginResp: okResponse(testUser())}
	sink := NewChannelSink(8)
	store, err := New().
		WithAuthenticator(auth).
		WithStorage(failingKV{}).
		WithEventSink(sink).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer store.Close()

	if !store.Login(context.Background(), "admin", "123456") {
		t.Fatalf("login should succeed despite persistence failure: %s", store.LastError())
	}
	if !store.IsAuthenticated() {
		t.Fatal("in-memory state rolled back on persistence failure")
	}

	// The divergence is observable as a persist_failed event.
	e := nextEvent(t, sink)
	if e.EventType != "session.persist_failed" {
		t.Fatalf("event = %q, want session.persist_failed", e.EventType)
	}
}

func TestLoginEmitsEvents(t *testing.T) {
	auth := &stubAuthenticator{loginResp: okResponse(testUser())}
	sink := NewChannelSink(8)
	store, err := New().
		WithAuthenticator(auth).
		WithStorage(storage.NewMemory()).
		WithEventSink(sink).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer store.Close()

	store.Login(context.Background(), "admin", "123456")

	e := nextEvent(t, sink)
	if e.EventType != "auth.login.success" {
		t.Fatalf("event = %q, want auth.login.success", e.EventType)
	}
	if e.Username != "admin" || !e.Success {
		t.Fatalf("unexpected event payload: %+v", e)
	}

	store.Logout(context.Background())
	e = nextEvent(t, sink)
	if e.EventType != "auth.logout" {
		t.Fatalf("event = %q, want auth.logout", e.EventType)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(time.Millisecond)
	}
}

func nextEvent(t *testing.T, sink *ChannelSink) Event {
	t.Helper()

	select {
	case e := <-sink.Events():
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("no event delivered before deadline")
		return Event{}
	}
}
