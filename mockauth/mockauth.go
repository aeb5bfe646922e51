package mockauth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/articleartisan/shellauth"
)

const (
	defaultAvatar   = "https://via.placeholder.com/40"
	defaultTokenTTL = time.Hour
	defaultCooldown = time.Minute
)

// ErrRateLimited is returned from Login when a username exceeds the failed
// attempt budget inside the cooldown window.
var ErrRateLimited = errors.New("too many failed login attempts")

// Config tunes the mock backend. Zero values fall back to demo defaults.
type Config struct {
	// Secret signs issued tokens. Defaults to a well-known demo value.
	Secret []byte
	// TokenTTL is the issued token lifetime. Defaults to one hour.
	TokenTTL time.Duration
	// MaxAttempts is the failed-login budget per username per cooldown
	// window. Zero disables throttling.
	MaxAttempts int
	// Cooldown is the fixed throttle window. Defaults to one minute.
	Cooldown time.Duration
}

type account struct {
	user     shellauth.UserRecord
	password string
}

type attemptWindow struct {
	count   int
	resetAt time.Time
}

// Provider is the in-process authentication backend. Safe for concurrent
// use.
type Provider struct {
	cfg Config
	now func() time.Time

	mu       sync.Mutex
	accounts map[string]account
	attempts map[string]attemptWindow
}

// New creates a Provider seeded with the demo admin account.
func New(cfg Config) *Provider {
	if len(cfg.Secret) == 0 {
		cfg.Secret = []byte("shellauth-demo-secret")
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = defaultCooldown
	}

	p := &Provider{
		cfg:      cfg,
		now:      time.Now,
		accounts: make(map[string]account),
		attempts: make(map[string]attemptWindow),
	}

	p.accounts["admin"] = account{
		user: shellauth.UserRecord{
			ID:       "1",
			Username: "admin",
			Email:    "admin@example.com",
			Avatar:   defaultAvatar,
		},
		password: "123456",
	}

	return p
}

// Login implements shellauth.Authenticator. Credential failures come back
// as an unsuccessful response; throttling comes back as an error, matching
// the two failure channels the session core distinguishes.
func (p *Provider) Login(_ context.Context, username, password string) (*shellauth.AuthResponse, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return failure("username and password are required"), nil
	}

	p.mu.Lock()
	if p.throttledLocked(username) {
		p.mu.Unlock()
		return nil, ErrRateLimited
	}

	acct, ok := p.accounts[username]
	if !ok || acct.password != password {
		p.recordFailureLocked(username)
		p.mu.Unlock()
		return failure("invalid username or password"), nil
	}

	delete(p.attempts, username)
	user := acct.user
	p.mu.Unlock()

	token, err := p.signToken(user)
	if err != nil {
		return nil, err
	}

	return p.success(user, token, "login successful"), nil
}

// Register implements shellauth.Authenticator. All four fields are
// required, the passwords must match, and the username must be free. A new
// account is logged in immediately, mirroring the login response shape.
func (p *Provider) Register(_ context.Context, req shellauth.RegisterRequest) (*shellauth.AuthResponse, error) {
	if strings.TrimSpace(req.Username) == "" ||
		strings.TrimSpace(req.Email) == "" ||
		req.Password == "" ||
		req.ConfirmPassword == "" {
		return failure("all fields are required"), nil
	}
	if req.Password != req.ConfirmPassword {
		return failure("passwords do not match"), nil
	}

	p.mu.Lock()
	if _, exists := p.accounts[req.Username]; exists {
		p.mu.Unlock()
		return failure("username already taken"), nil
	}

	user := shellauth.UserRecord{
		ID:       uuid.NewString(),
		Username: req.Username,
		Email:    req.Email,
		Avatar:   defaultAvatar,
	}
	p.accounts[req.Username] = account{user: user, password: req.Password}
	p.mu.Unlock()

	token, err := p.signToken(user)
	if err != nil {
		return nil, err
	}

	return p.success(user, token, "registration successful"), nil
}

// Logout implements shellauth.Authenticator. The mock backend keeps no
// server-side session, so there is nothing to tear down.
func (p *Provider) Logout(context.Context) error {
	return nil
}

// VerifyToken parses a token issued by this provider and returns its
// claims. Used by the demo's host bridge to inspect what it stored.
func (p *Provider) VerifyToken(token string) (jwt.MapClaims, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.cfg.Secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("unexpected claims type")
	}
	return claims, nil
}

func (p *Provider) signToken(user shellauth.UserRecord) (string, error) {
	now := p.now()
	claims := jwt.MapClaims{
		"sub":      user.ID,
		"username": user.Username,
		"iat":      now.Unix(),
		"exp":      now.Add(p.cfg.TokenTTL).Unix(),
		"jti":      uuid.NewString(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.cfg.Secret)
}

func (p *Provider) success(user shellauth.UserRecord, token, message string) *shellauth.AuthResponse {
	return &shellauth.AuthResponse{
		Success: true,
		Data: &shellauth.AuthPayload{
			User:      user,
			Token:     token,
			ExpiresIn: int(p.cfg.TokenTTL.Seconds()),
		},
		Message: message,
	}
}

func failure(message string) *shellauth.AuthResponse {
	return &shellauth.AuthResponse{
		Success: false,
		Message: message,
		Error:   message,
	}
}

// throttledLocked reports whether the username is over budget inside the
// current window. Caller holds p.mu.
func (p *Provider) throttledLocked(username string) bool {
	if p.cfg.MaxAttempts <= 0 {
		return false
	}
	w, ok := p.attempts[username]
	if !ok || p.now().After(w.resetAt) {
		return false
	}
	return w.count >= p.cfg.MaxAttempts
}

// recordFailureLocked counts a failed attempt, starting a new window when
// the previous one has lapsed. Caller holds p.mu.
func (p *Provider) recordFailureLocked(username string) {
	if p.cfg.MaxAttempts <= 0 {
		return
	}
	now := p.now()
	w, ok := p.attempts[username]
	if !ok || now.After(w.resetAt) {
		w = attemptWindow{resetAt: now.Add(p.cfg.Cooldown)}
	}
	w.count++
	p.attempts[username] = w
}
